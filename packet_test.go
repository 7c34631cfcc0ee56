package main

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketMarshal(t *testing.T) {
	p := Packet{FrameID: 0x0102, Type: PacketBody, Index: 3, Payload: []byte("xy")}

	data := p.Marshal()
	assert.Equal(t, []byte{0x02, 0x01, PacketBody, 0x03, 0x00, 0x02, 0x00, 'x', 'y'}, data)

	parsed, err := ParsePacket(data)
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
}

func TestParsePacketErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrShortPacket},
		{"short header", []byte{1, 0, 0, 0, 0, 0}, ErrShortPacket},
		{"unknown type", []byte{1, 0, 9, 0, 0, 0, 0}, ErrUnknownPacket},
		{"truncated payload", []byte{1, 0, PacketBody, 0, 0, 5, 0, 'a'}, ErrShortPacket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePacket(tt.data)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFrameShuffledRoundTrip(t *testing.T) {
	text := strings.Repeat("a man a plan a canal panama ", 20)

	frame, err := NewFrame(7, text)
	require.NoError(t, err)

	packets, err := frame.Packets(24)
	require.NoError(t, err)
	require.Greater(t, len(packets), 4)

	for _, p := range packets {
		assert.LessOrEqual(t, len(p.Marshal()), 24)
	}

	rnd := rand.New(rand.NewSource(1))
	rnd.Shuffle(len(packets), func(i, j int) {
		packets[i], packets[j] = packets[j], packets[i]
	})

	a := NewAssembler(7)
	for i, p := range packets {
		parsed, err := ParsePacket(p.Marshal())
		require.NoError(t, err)
		require.NoError(t, a.Add(parsed))
		if i < len(packets)-1 {
			assert.False(t, a.Complete(), "complete after %d of %d packets", i+1, len(packets))
		}
	}
	require.True(t, a.Complete())

	table, decoded, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, text, decoded)
	assert.Equal(t, frame.Table.Pairs(), table.Pairs())
}

func TestFrameSingleSymbol(t *testing.T) {
	frame, err := NewFrame(1, "z")
	require.NoError(t, err)

	packets, err := frame.Packets(512)
	require.NoError(t, err)

	a := NewAssembler(1)
	for _, p := range packets {
		require.NoError(t, a.Add(p))
	}

	_, decoded, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, "z", decoded)
}

func TestFrameErrors(t *testing.T) {
	_, err := NewFrame(1, "")
	assert.Error(t, err)

	frame, err := NewFrame(1, "abc")
	require.NoError(t, err)
	_, err = frame.Packets(packetHeaderSize + 4)
	assert.ErrorIs(t, err, ErrPacketSize)
	_, err = frame.Packets(70000)
	assert.ErrorIs(t, err, ErrPacketSize)
}

func TestLargestPackets(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 3000)
	frame, err := NewFrame(9, text)
	require.NoError(t, err)

	packets, err := frame.Packets(maxPacketSize)
	require.NoError(t, err)

	a := NewAssembler(9)
	sent := 0
	for _, p := range packets {
		data := p.Marshal()
		assert.LessOrEqual(t, len(data), maxPacketSize)

		parsed, err := ParsePacket(data)
		require.NoError(t, err)
		assert.Equal(t, len(p.Payload), len(parsed.Payload))
		if p.Type == PacketBody {
			sent += len(p.Payload)
		}
		require.NoError(t, a.Add(parsed))
	}
	assert.Equal(t, len(frame.Data), sent)

	require.True(t, a.Complete())
	_, got, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestAssemblerErrors(t *testing.T) {
	a := NewAssembler(3)

	err := a.Add(Packet{FrameID: 4, Type: PacketHeader, Payload: make([]byte, 8)})
	assert.ErrorIs(t, err, ErrFrameMismatch)

	err = a.Add(Packet{FrameID: 3, Type: PacketHeader, Payload: []byte{1}})
	assert.ErrorIs(t, err, ErrShortPacket)

	err = a.Add(Packet{FrameID: 3, Type: PacketTail, Payload: []byte{1}})
	assert.ErrorIs(t, err, ErrShortPacket)

	_, _, err = a.Result()
	assert.Error(t, err)
}

func TestAssemblerSymbolCountMismatch(t *testing.T) {
	frame, err := NewFrame(2, "hello")
	require.NoError(t, err)
	frame.Symbols = 4

	packets, err := frame.Packets(64)
	require.NoError(t, err)

	a := NewAssembler(2)
	for _, p := range packets {
		require.NoError(t, a.Add(p))
	}

	_, _, err = a.Result()
	assert.ErrorContains(t, err, "header says 4")
}
