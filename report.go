package main

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/klauspost/compress/zstd"

	"github.com/kmeaw/huffkit/huffman"
)

// Report summarises how text codes.
type Report struct {
	Frequencies []huffman.Count `json:"frequencies"`
	Table       *huffman.Table  `json:"table"`
	Tree        string          `json:"tree"`
	Depth       int             `json:"depth"`
	Symbols     int             `json:"symbols"`
	Bits        int             `json:"bits"`
	RawBytes    int             `json:"raw_bytes"`
	PackedBytes int             `json:"packed_bytes"`
	ZstdBytes   int             `json:"zstd_bytes,omitempty"`
}

// NewReport runs the codec over text. The tree drawing is limited to width
// columns; compare adds the size zstd achieves on the same input.
func NewReport(text string, width int, compare bool) (*Report, error) {
	if err := huffman.CheckText(text); err != nil {
		return nil, err
	}

	nodes := huffman.Analyze(text)
	freqs := huffman.Counts(nodes)

	root, err := huffman.BuildTree(nodes)
	if err != nil {
		return nil, err
	}

	table, err := huffman.Generate(root)
	if err != nil {
		return nil, err
	}

	bits, err := table.BitLength(freqs)
	if err != nil {
		return nil, err
	}

	packed, err := huffman.Compress(table, text)
	if err != nil {
		return nil, err
	}

	tree := &bytes.Buffer{}
	if err := huffman.PrintTree(tree, root, width); err != nil {
		return nil, err
	}

	r := &Report{
		Frequencies: freqs,
		Table:       table,
		Tree:        tree.String(),
		Depth:       root.Depth(),
		Symbols:     root.Freq,
		Bits:        bits,
		RawBytes:    len(text),
		PackedBytes: len(packed),
	}

	if compare {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("cannot create zstd encoder: %w", err)
		}
		r.ZstdBytes = len(enc.EncodeAll([]byte(text), nil))
		enc.Close()
	}

	return r, nil
}

func (r *Report) Ratio() float64 {
	if r.RawBytes == 0 {
		return 0
	}
	return float64(r.PackedBytes) / float64(r.RawBytes)
}

func (r *Report) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tFREQ\tCODE")
	codes := r.Table.Codes()
	for _, c := range r.Frequencies {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", huffman.SymbolLabel(c.Symbol), c.Freq, codes[c.Symbol])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s\n", r.Tree)
	fmt.Fprintf(w, "symbols: %d, tree depth: %d, bits: %d\n", r.Symbols, r.Depth, r.Bits)
	fmt.Fprintf(w, "raw: %d bytes, packed: %d bytes (%.1f%%)\n", r.RawBytes, r.PackedBytes, 100*r.Ratio())
	if r.ZstdBytes > 0 {
		fmt.Fprintf(w, "zstd: %d bytes\n", r.ZstdBytes)
	}

	return nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
