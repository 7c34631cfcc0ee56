package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resource struct {
	released int
}

func (r *resource) Release() {
	r.released++
}

func TestDictSetReplaces(t *testing.T) {
	d := NewDict[int]()
	d.Set("a", 1)
	d.Set("b", 2)
	e := d.Set("a", 3)

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, "a", e.Key)

	v, err := d.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestDictGetMissing(t *testing.T) {
	d := NewDict[string]()
	_, err := d.Get("nope")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `"nope"`)
	assert.False(t, d.Has("nope"))
}

func TestDictKeysOrder(t *testing.T) {
	d := NewDict[int]()
	for _, k := range []string{"z", "a", "m", "a"} {
		d.Set(k, 0)
	}

	assert.Equal(t, []string{"z", "a", "m"}, d.Keys().Slice())
}

func TestDictReleasesValues(t *testing.T) {
	d := NewDict[*resource]()
	first := &resource{}
	second := &resource{}
	third := &resource{}

	d.Set("k", first)
	d.Set("k", second)
	assert.Equal(t, 1, first.released)
	assert.Equal(t, 0, second.released)

	d.Set("j", third)
	require.NoError(t, d.Delete("j"))
	assert.Equal(t, 1, third.released)
	require.ErrorIs(t, d.Delete("j"), ErrNotFound)

	d.Clear()
	assert.Equal(t, 1, second.released)
	assert.Equal(t, 0, d.Len())
}

func TestDictSetSameValue(t *testing.T) {
	d := NewDict[*resource]()
	r := &resource{}

	d.Set("k", r)
	d.Set("k", r)
	assert.Equal(t, 0, r.released)

	got, err := d.Get("k")
	require.NoError(t, err)
	assert.Same(t, r, got)

	d.Clear()
	assert.Equal(t, 1, r.released)
}

type sliceValue []int

func (sliceValue) Release() {}

func TestDictSetUncomparable(t *testing.T) {
	d := NewDict[sliceValue]()
	d.Set("k", sliceValue{1})

	assert.NotPanics(t, func() {
		d.Set("k", sliceValue{2})
	})

	v, err := d.Get("k")
	require.NoError(t, err)
	assert.Equal(t, sliceValue{2}, v)
}

func TestDictEach(t *testing.T) {
	d := NewDict[int]()
	d.Set("a", 1)
	d.Set("b", 2)
	d.Set("c", 3)

	sum := 0
	d.Each(func(key string, value int) bool {
		sum += value
		return key != "b"
	})
	assert.Equal(t, 3, sum)
}
