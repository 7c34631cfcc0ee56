package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/mattn/anko/env"
	"github.com/mattn/anko/vm"
	"github.com/rs/zerolog/log"

	"github.com/kmeaw/huffkit/huffman"
)

// ScriptHost runs anko scripts with the codec exposed as builtins. Builtins
// never fail inside the script; they log, return a zero value and remember
// the error for Run.
type ScriptHost struct {
	Out    io.Writer
	Codec  *Codec
	Sample string
	Width  int

	e    *env.Env
	errs []error
	mu   sync.Mutex
}

func NewScriptHost(out io.Writer, codec *Codec, sample string) (*ScriptHost, error) {
	h := &ScriptHost{
		Out:    out,
		Codec:  codec,
		Sample: sample,
		Width:  80,
	}

	if err := h.define(); err != nil {
		return nil, err
	}

	return h, nil
}

func (h *ScriptHost) fail(op string, err error) {
	log.Error().Err(err).Str("builtin", op).Msg("script builtin failed")

	h.mu.Lock()
	h.errs = append(h.errs, fmt.Errorf("%s: %w", op, err))
	h.mu.Unlock()
}

func (h *ScriptHost) define() error {
	var errs []error

	h.e = env.NewEnv()

	errs = append(errs, h.e.DefineType("Pair", huffman.Pair{}))
	errs = append(errs, h.e.Define("sample", h.Sample))
	errs = append(errs, h.e.Define("analyze", func(text string) []interface{} {
		if err := huffman.CheckText(text); err != nil {
			h.fail("analyze", err)
			return nil
		}

		var result []interface{}
		for _, c := range huffman.Counts(huffman.Analyze(text)) {
			result = append(result, []interface{}{c.Symbol, int64(c.Freq)})
		}
		return result
	}))
	errs = append(errs, h.e.Define("build", func(text string) *huffman.Table {
		_, t, err := huffman.Build(text)
		if err != nil {
			h.fail("build", err)
			return nil
		}
		return t
	}))
	errs = append(errs, h.e.Define("encode", func(t *huffman.Table, text string) string {
		if t == nil {
			h.fail("encode", huffman.ErrInvalidTable)
			return ""
		}

		bits, err := huffman.Encode(t, text)
		if h.Codec != nil {
			h.Codec.publish("script", "encode", len([]rune(text)), len(bits), err)
		}
		if err != nil {
			h.fail("encode", err)
			return ""
		}
		return bits
	}))
	errs = append(errs, h.e.Define("decode", func(t *huffman.Table, bits string) string {
		if t == nil {
			h.fail("decode", huffman.ErrInvalidTable)
			return ""
		}

		text, err := huffman.Decode(t, bits)
		if h.Codec != nil {
			h.Codec.publish("script", "decode", len([]rune(text)), len(bits), err)
		}
		if err != nil {
			h.fail("decode", err)
			return ""
		}
		return text
	}))
	errs = append(errs, h.e.Define("codes", func(t *huffman.Table) map[string]string {
		if t == nil {
			h.fail("codes", huffman.ErrInvalidTable)
			return nil
		}
		return t.Codes()
	}))
	errs = append(errs, h.e.Define("pairs", func(t *huffman.Table) []huffman.Pair {
		if t == nil {
			h.fail("pairs", huffman.ErrInvalidTable)
			return nil
		}
		return t.Pairs()
	}))
	errs = append(errs, h.e.Define("tree", func(text string) string {
		root, _, err := huffman.Build(text)
		if err != nil {
			h.fail("tree", err)
			return ""
		}

		b := &bytes.Buffer{}
		if err := huffman.PrintTree(b, root, h.Width); err != nil {
			h.fail("tree", err)
			return ""
		}
		return b.String()
	}))
	errs = append(errs, h.e.Define("printf", func(format string, args ...interface{}) {
		fmt.Fprintf(h.Out, format, args...)
	}))

	return errors.Join(errs...)
}

// Run executes script and returns the value of its last statement. Builtin
// failures are joined into the returned error.
func (h *ScriptHost) Run(ctx context.Context, script string) (interface{}, error) {
	h.mu.Lock()
	h.errs = nil
	h.mu.Unlock()

	result, err := vm.ExecuteContext(ctx, h.e, nil, script)

	h.mu.Lock()
	errs := append([]error{err}, h.errs...)
	h.mu.Unlock()

	return result, errors.Join(errs...)
}

// vim: ai:ts=8:sw=8:noet:syntax=go
