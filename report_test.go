package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmeaw/huffkit/huffman"
)

func TestReport(t *testing.T) {
	r, err := NewReport("aabbbc", 80, true)
	require.NoError(t, err)

	assert.Equal(t, []huffman.Count{{Symbol: "a", Freq: 2}, {Symbol: "b", Freq: 3}, {Symbol: "c", Freq: 1}}, r.Frequencies)
	assert.Equal(t, 6, r.Symbols)
	assert.Equal(t, 9, r.Bits)
	assert.Equal(t, 2, r.Depth)
	assert.Equal(t, 6, r.RawBytes)
	assert.Equal(t, 3, r.PackedBytes)
	assert.Greater(t, r.ZstdBytes, 0)
	assert.InDelta(t, 0.5, r.Ratio(), 1e-9)
	assert.Contains(t, r.Tree, "(b)")

	b := &bytes.Buffer{}
	require.NoError(t, r.Print(b))
	out := b.String()
	assert.Contains(t, out, "SYMBOL")
	assert.Contains(t, out, "bits: 9")
	assert.Contains(t, out, "raw: 6 bytes, packed: 3 bytes (50.0%)")
	assert.Contains(t, out, "zstd:")
}

func TestReportWithoutCompare(t *testing.T) {
	r, err := NewReport("hello world", 80, false)
	require.NoError(t, err)
	assert.Zero(t, r.ZstdBytes)

	b := &bytes.Buffer{}
	require.NoError(t, r.Print(b))
	assert.NotContains(t, b.String(), "zstd:")
}

func TestReportEmpty(t *testing.T) {
	_, err := NewReport("", 80, false)
	assert.ErrorIs(t, err, huffman.ErrEmptyInput)
}
