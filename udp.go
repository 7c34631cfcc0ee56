package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kmeaw/huffkit/huffman"
)

const frameTimeout = 30 * time.Second

type PacketClient struct {
	Addr *net.UDPAddr
	Size int

	nextID uint16
	mu     sync.Mutex
}

func NewPacketClient(hostport string, size int) (c *PacketClient, err error) {
	c = &PacketClient{Size: size}
	c.Addr, err = net.ResolveUDPAddr("udp", hostport)
	if err != nil {
		c = nil
		return
	}

	return
}

// Send codes text and writes it to the server as one frame.
func (c *PacketClient) Send(ctx context.Context, text string) (*Frame, error) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.mu.Unlock()

	frame, err := NewFrame(id, text)
	if err != nil {
		return nil, err
	}

	packets, err := frame.Packets(c.Size)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialUDP("udp", nil, c.Addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	}

	for _, p := range packets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := conn.Write(p.Marshal()); err != nil {
			return nil, fmt.Errorf("cannot send frame %d: %w", id, err)
		}
	}

	log.Debug().Uint16("frame", id).Int("packets", len(packets)).Int("bytes", len(frame.Data)).Msg("frame sent")
	return frame, nil
}

// ReceivedFrame is a frame decoded by the server.
type ReceivedFrame struct {
	From  string
	ID    uint16
	Table *huffman.Table
	Text  string
}

type pendingFrame struct {
	assembler *Assembler
	started   time.Time
}

type PacketServer struct {
	Events *Broadcaster

	conn    *net.UDPConn
	pending map[string]*pendingFrame
	frames  chan ReceivedFrame
	mu      sync.Mutex
}

func NewPacketServer(hostport string, events *Broadcaster) (*PacketServer, error) {
	addr, err := net.ResolveUDPAddr("udp", hostport)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}

	return &PacketServer{
		Events:  events,
		conn:    conn,
		pending: make(map[string]*pendingFrame),
		frames:  make(chan ReceivedFrame, 16),
	}, nil
}

func (s *PacketServer) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Frames delivers decoded frames. Frames are dropped while the channel is
// full.
func (s *PacketServer) Frames() <-chan ReceivedFrame {
	return s.frames
}

// Start reads packets until ctx is done or the server is closed.
func (s *PacketServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	buf := make([]byte, 65536)
	for {
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		p, err := ParsePacket(buf[:n])
		if err != nil {
			log.Warn().Err(err).Str("from", from.String()).Msg("dropping packet")
			continue
		}

		s.handle(from.String(), p)
	}
}

func (s *PacketServer) handle(from string, p Packet) {
	key := fmt.Sprintf("%s/%d", from, p.FrameID)

	s.mu.Lock()
	now := time.Now()
	for k, pf := range s.pending {
		if now.Sub(pf.started) > frameTimeout {
			log.Warn().Str("frame", k).Msg("frame timed out")
			delete(s.pending, k)
		}
	}

	pf, ok := s.pending[key]
	if !ok {
		pf = &pendingFrame{assembler: NewAssembler(p.FrameID), started: now}
		s.pending[key] = pf
	}

	err := pf.assembler.Add(p)
	if err != nil {
		s.mu.Unlock()
		log.Warn().Err(err).Str("frame", key).Msg("bad packet")
		return
	}

	if !pf.assembler.Complete() {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	event := CodecEvent{Source: "udp", Op: "decode", Symbols: pf.assembler.symbols, Bits: pf.assembler.bits}
	table, text, err := pf.assembler.Result()
	if err != nil {
		log.Error().Err(err).Str("frame", key).Msg("cannot decode frame")
		event.Error = err.Error()
	} else {
		log.Info().Str("frame", key).Int("symbols", event.Symbols).Msg("frame received")
	}

	if s.Events != nil {
		s.Events.Broadcast(event)
	}

	if err != nil {
		return
	}

	select {
	case s.frames <- ReceivedFrame{From: from, ID: p.FrameID, Table: table, Text: text}:
	default:
		log.Warn().Str("frame", key).Msg("frame queue is full")
	}
}

func (s *PacketServer) Close() error {
	return s.conn.Close()
}

// vim: ai:ts=8:sw=8:noet:syntax=go
