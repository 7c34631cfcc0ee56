package huffman

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack(t *testing.T) {
	tests := []struct {
		bits string
		want []byte
	}{
		{"", []byte{0}},
		{"1", []byte{7, 0x80}},
		{"10100101", []byte{0, 0xa5}},
		{"111100001", []byte{7, 0xf0, 0x80}},
	}

	for _, tt := range tests {
		got, err := Pack(tt.bits)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.bits)

		bits, err := Unpack(got)
		require.NoError(t, err)
		assert.Equal(t, tt.bits, bits)
	}
}

func TestPackInvalid(t *testing.T) {
	_, err := Pack("0120")
	require.ErrorIs(t, err, ErrInvalidBit)
}

func TestUnpackInvalid(t *testing.T) {
	_, err := Unpack(nil)
	require.ErrorIs(t, err, ErrIncompleteCode)

	_, err = Unpack([]byte{9, 0})
	require.ErrorIs(t, err, ErrIncompleteCode)

	_, err = Unpack([]byte{3})
	require.ErrorIs(t, err, ErrIncompleteCode)
}

func TestCompress(t *testing.T) {
	text := strings.Repeat("a man a plan a canal panama ", 20)
	_, table, err := Build(text)
	require.NoError(t, err)

	data, err := Compress(table, text)
	require.NoError(t, err)
	assert.Less(t, len(data), len(text))
	assert.NotEqual(t, byte(rawMarker), data[0])

	decoded, err := Decompress(table, data)
	require.NoError(t, err)
	assert.Equal(t, text, decoded)
}

func TestCompressRawFallback(t *testing.T) {
	// one packed byte is no gain over one raw byte
	text := "x"
	_, table, err := Build(text)
	require.NoError(t, err)

	data, err := Compress(table, text)
	require.NoError(t, err)
	assert.Equal(t, byte(rawMarker), data[0])
	assert.True(t, bytes.Equal([]byte(text), data[1:]))

	decoded, err := Decompress(table, data)
	require.NoError(t, err)
	assert.Equal(t, text, decoded)
}

func TestCompressUnknownSymbol(t *testing.T) {
	_, table, err := Build("aabbbc")
	require.NoError(t, err)

	_, err = Compress(table, "abz")
	require.ErrorIs(t, err, ErrUnknownSymbol)
}
