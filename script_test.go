package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmeaw/huffkit/huffman"
)

func newTestScriptHost(t *testing.T) (*ScriptHost, *bytes.Buffer, *Broadcaster) {
	t.Helper()

	out := &bytes.Buffer{}
	events := NewBroadcaster()
	host, err := NewScriptHost(out, NewCodec(nil, events), "CITRONTRESCONTENT")
	require.NoError(t, err)
	return host, out, events
}

func TestScriptDefault(t *testing.T) {
	host, out, events := newTestScriptHost(t)

	config := &Config{}
	config.SetDefaultScript()

	_, err := host.Run(context.Background(), config.Script)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "17 symbols")
	assert.Contains(t, out.String(), `"C" -> `)
	assert.NotContains(t, out.String(), "mismatch")

	last, ok := events.Last()
	require.True(t, ok)
	assert.Equal(t, "script", last.Source)
	assert.Equal(t, "decode", last.Op)
}

func TestScriptBuiltins(t *testing.T) {
	host, _, _ := newTestScriptHost(t)
	ctx := context.Background()

	result, err := host.Run(ctx, `
a = analyze("aab")
a[0][0]
`)
	require.NoError(t, err)
	assert.Equal(t, "a", result)

	result, err = host.Run(ctx, `codes(build("aabbbc"))["a"]`)
	require.NoError(t, err)
	assert.Equal(t, "11", result)

	result, err = host.Run(ctx, `
t = build("aabbbc")
decode(t, encode(t, "cab"))
`)
	require.NoError(t, err)
	assert.Equal(t, "cab", result)

	result, err = host.Run(ctx, `tree("aabbbc")`)
	require.NoError(t, err)
	assert.Contains(t, result, "(a)")
}

func TestScriptBuiltinErrors(t *testing.T) {
	host, _, _ := newTestScriptHost(t)
	ctx := context.Background()

	result, err := host.Run(ctx, `
t = build("ab")
encode(t, "abc")
`)
	assert.ErrorIs(t, err, huffman.ErrUnknownSymbol)
	assert.Equal(t, "", result)

	_, err = host.Run(ctx, `build("")`)
	assert.ErrorIs(t, err, huffman.ErrEmptyInput)

	_, err = host.Run(ctx, `
t = build("ab")
decode(t, "2")
`)
	assert.ErrorIs(t, err, huffman.ErrInvalidBit)

	// errors do not leak into the next run
	_, err = host.Run(ctx, `1 + 1`)
	assert.NoError(t, err)
}

func TestScriptSyntaxError(t *testing.T) {
	host, _, _ := newTestScriptHost(t)

	_, err := host.Run(context.Background(), `func (`)
	assert.Error(t, err)
}
