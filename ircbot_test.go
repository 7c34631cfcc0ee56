package main

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func newTestIRCBot(t *testing.T) (*IRCBot, *Broadcaster) {
	t.Helper()

	events := NewBroadcaster()
	return NewIRCBot(testConfig(t), NewCodec(nil, events)), events
}

func TestIRCBotRespond(t *testing.T) {
	bot, events := newTestIRCBot(t)
	ctx := context.Background()

	tests := []struct {
		msg   string
		reply string
		ok    bool
	}{
		{"hello there", "", false},
		{"!dance", "", false},
		{"!help", ircHelp, true},
		{"!decode 0", "no table yet, use !encode first", true},
		{"!table", "no table yet, use !encode first", true},
		{"!encode", "usage: !encode TEXT", true},
		{"!encode aabbbc", "111100010 (9 bits)", true},
		{"!table", "b=0 c=10 a=11", true},
		{"!decode 111100010", "aabbbc", true},
		{"  !decode   0  ", "b", true},
	}

	for _, tt := range tests {
		reply, ok := bot.Respond(ctx, "alice", tt.msg)
		assert.Equal(t, tt.ok, ok, tt.msg)
		assert.Equal(t, tt.reply, reply, tt.msg)
	}

	last, ok := events.Last()
	assert.True(t, ok)
	assert.Equal(t, "irc:alice", last.Source)
	assert.Equal(t, "decode", last.Op)
}

func TestIRCBotErrors(t *testing.T) {
	bot, _ := newTestIRCBot(t)
	ctx := context.Background()

	bot.Respond(ctx, "bob", "!encode ab")

	reply, ok := bot.Respond(ctx, "bob", "!decode 2")
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(reply, "error: "), reply)
}

func TestIRCBotTruncates(t *testing.T) {
	bot, _ := newTestIRCBot(t)

	reply, ok := bot.Respond(context.Background(), "carol", "!encode "+strings.Repeat("ab", 300))
	assert.True(t, ok)
	assert.Contains(t, reply, "...")
	assert.Contains(t, reply, "(600 bits)")
}

func TestTruncateKeepsRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 10))
	assert.Equal(t, "h...", truncate("héllo", 2))
	assert.Equal(t, "hé...", truncate("héllo", 3))
	assert.Equal(t, "...", truncate("世界", 2))

	reply := truncate(strings.Repeat("世", 200), ircMaxReply)
	assert.True(t, utf8.ValidString(reply))
	assert.LessOrEqual(t, len(reply), ircMaxReply+len("..."))
}

func TestIRCBotRateLimit(t *testing.T) {
	bot, _ := newTestIRCBot(t)

	now := time.Unix(1000, 0)
	bot.now = func() time.Time { return now }

	assert.True(t, bot.allow())
	assert.False(t, bot.allow())

	now = now.Add(500 * time.Millisecond)
	assert.False(t, bot.allow())

	now = now.Add(500 * time.Millisecond)
	assert.True(t, bot.allow())
}
