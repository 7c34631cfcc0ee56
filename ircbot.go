package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gopkg.in/irc.v3"

	"github.com/kmeaw/huffkit/huffman"
)

const ircMaxReply = 400

const ircHelp = "commands: !encode TEXT, !decode BITS, !table, !help"

type IRCBot struct {
	Server      string
	UserName    string
	Password    string
	ChannelName string
	Codec       *Codec

	lastTable *huffman.Table
	nextReply time.Time
	now       func() time.Time

	client *irc.Client
	conn   net.Conn
	mu     sync.Mutex
}

func NewIRCBot(cfg *Config, codec *Codec) *IRCBot {
	return &IRCBot{
		Server:      cfg.IRCServer,
		UserName:    cfg.IRCNick,
		Password:    cfg.IRCPassword,
		ChannelName: strings.TrimPrefix(cfg.IRCChannel, "#"),
		Codec:       codec,
		now:         time.Now,
	}
}

// truncate cuts s to at most n bytes without splitting a character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// Respond computes the reply to a channel message. ok is false when the
// message is not addressed to the bot.
func (b *IRCBot) Respond(ctx context.Context, from, msg string) (reply string, ok bool) {
	msg = strings.TrimSpace(msg)
	if !strings.HasPrefix(msg, "!") {
		return "", false
	}

	cmd, arg, _ := strings.Cut(msg[1:], " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "help":
		return ircHelp, true

	case "encode":
		if arg == "" {
			return "usage: !encode TEXT", true
		}
		resp, err := b.Codec.Encode(ctx, "irc:"+from, EncodeRequest{Text: arg})
		if err != nil {
			return "error: " + err.Error(), true
		}

		b.mu.Lock()
		b.lastTable = resp.Table
		b.mu.Unlock()

		return fmt.Sprintf("%s (%d bits)", truncate(resp.Bits, ircMaxReply), len(resp.Bits)), true

	case "decode":
		b.mu.Lock()
		table := b.lastTable
		b.mu.Unlock()

		if table == nil {
			return "no table yet, use !encode first", true
		}

		resp, err := b.Codec.Decode(ctx, "irc:"+from, DecodeRequest{Bits: arg, Table: table})
		if err != nil {
			return "error: " + err.Error(), true
		}
		return truncate(resp.Text, ircMaxReply), true

	case "table":
		b.mu.Lock()
		table := b.lastTable
		b.mu.Unlock()

		if table == nil {
			return "no table yet, use !encode first", true
		}

		var items []string
		for _, p := range table.Pairs() {
			items = append(items, huffman.SymbolLabel(p.Symbol)+"="+p.Prefix)
		}
		return truncate(strings.Join(items, " "), ircMaxReply), true
	}

	return "", false
}

// allow reports whether a reply may be sent now, at most one per second.
func (b *IRCBot) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	t0 := b.now()
	if t0.Before(b.nextReply) {
		return false
	}
	b.nextReply = t0.Add(time.Second)
	return true
}

func (b *IRCBot) Reply(format string, rest ...interface{}) {
	b.mu.Lock()
	client := b.client
	b.mu.Unlock()

	if client == nil {
		return
	}

	err := client.WriteMessage(&irc.Message{
		Command: "PRIVMSG",
		Params: []string{
			"#" + b.ChannelName,
			fmt.Sprintf(format, rest...),
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("cannot send IRC reply")
	}
}

func (b *IRCBot) Handle(c *irc.Client, m *irc.Message) {
	if m.Command == "001" {
		// 001 is a welcome event, so we join channels there
		c.Write("JOIN #" + b.ChannelName)
	} else if m.Command == "PRIVMSG" && c.FromChannel(m) {
		if m.Prefix == nil {
			log.Warn().Str("message", m.String()).Msg("bogus message")
			return
		}

		from := m.Prefix.Name
		reply, ok := b.Respond(context.Background(), from, m.Trailing())
		if !ok {
			return
		}

		if !b.allow() {
			log.Debug().Str("from", from).Msg("reply dropped by rate limit")
			return
		}

		b.Reply("%s", reply)
	}
}

// Run connects over TLS and serves the channel until ctx is done or the
// connection fails.
func (b *IRCBot) Run(ctx context.Context) error {
	if b.UserName == "" || b.ChannelName == "" {
		return errors.New("IRC nick and channel are not set")
	}

	dialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: 10 * time.Second}}
	conn, err := dialer.DialContext(ctx, "tcp", b.Server)
	if err != nil {
		return err
	}

	client := irc.NewClient(conn, irc.ClientConfig{
		Nick:    b.UserName,
		Pass:    b.Password,
		User:    b.UserName,
		Name:    b.UserName,
		Handler: b,
	})

	b.mu.Lock()
	b.client = client
	b.conn = conn
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	log.Info().Str("server", b.Server).Str("channel", b.ChannelName).Msg("IRC bot connected")
	err = client.Run()

	b.mu.Lock()
	b.client = nil
	b.conn = nil
	b.mu.Unlock()

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// vim: ai:ts=8:sw=8:noet:syntax=go
