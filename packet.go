package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/kmeaw/huffkit/huffman"
)

// Every packet starts with frame id (u16), type (u8), chunk index (u16) and
// payload length (u16), little endian.
const packetHeaderSize = 7

// A packet must fit one UDP datagram over IPv4 and carry at least a frame
// header.
const (
	minPacketSize = packetHeaderSize + 8
	maxPacketSize = 65507
)

var ErrPacketSize = errors.New("bad packet size")

func checkPacketSize(size int) error {
	if size < minPacketSize || size > maxPacketSize {
		return fmt.Errorf("%w: %d is not within %d..%d", ErrPacketSize, size, minPacketSize, maxPacketSize)
	}
	return nil
}

const (
	PacketHeader byte = iota
	PacketDict
	PacketBody
	PacketTail
)

var ErrShortPacket = errors.New("short packet")
var ErrUnknownPacket = errors.New("unknown packet type")
var ErrFrameMismatch = errors.New("frame mismatch")

type Packet struct {
	FrameID uint16
	Type    byte
	Index   uint16
	Payload []byte
}

func (p Packet) Marshal() []byte {
	buf := make([]byte, packetHeaderSize, packetHeaderSize+len(p.Payload))
	binary.LittleEndian.PutUint16(buf[0:2], p.FrameID)
	buf[2] = p.Type
	binary.LittleEndian.PutUint16(buf[3:5], p.Index)
	binary.LittleEndian.PutUint16(buf[5:7], uint16(len(p.Payload)))
	return append(buf, p.Payload...)
}

func ParsePacket(data []byte) (Packet, error) {
	if len(data) < packetHeaderSize {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(data))
	}

	p := Packet{
		FrameID: binary.LittleEndian.Uint16(data[0:2]),
		Type:    data[2],
		Index:   binary.LittleEndian.Uint16(data[3:5]),
	}
	if p.Type > PacketTail {
		return Packet{}, fmt.Errorf("%w: %d", ErrUnknownPacket, p.Type)
	}

	size := int(binary.LittleEndian.Uint16(data[5:7]))
	if len(data) < packetHeaderSize+size {
		return Packet{}, fmt.Errorf("%w: want %d payload bytes, have %d", ErrShortPacket, size, len(data)-packetHeaderSize)
	}
	p.Payload = append([]byte(nil), data[packetHeaderSize:packetHeaderSize+size]...)

	return p, nil
}

// Frame is one text, coded and ready to be cut into packets.
type Frame struct {
	ID      uint16
	Table   *huffman.Table
	Symbols int
	Bits    int
	Data    []byte
}

func NewFrame(id uint16, text string) (*Frame, error) {
	_, table, err := huffman.Build(text)
	if err != nil {
		return nil, err
	}

	bits, err := huffman.Encode(table, text)
	if err != nil {
		return nil, err
	}

	data, err := huffman.Compress(table, text)
	if err != nil {
		return nil, err
	}

	return &Frame{
		ID:      id,
		Table:   table,
		Symbols: utf8.RuneCountInString(text),
		Bits:    len(bits),
		Data:    data,
	}, nil
}

func chunk(data []byte, size int) [][]byte {
	var chunks [][]byte
	for len(data) > size {
		chunks = append(chunks, data[:size])
		data = data[size:]
	}
	return append(chunks, data)
}

// Packets cuts the frame into packets of at most size bytes: a header, the
// table chunks, the body chunks and a tail announcing the chunk counts.
func (f *Frame) Packets(size int) ([]Packet, error) {
	if err := checkPacketSize(size); err != nil {
		return nil, err
	}
	room := size - packetHeaderSize

	dict, err := json.Marshal(f.Table)
	if err != nil {
		return nil, err
	}

	dict_chunks := chunk(dict, room)
	body_chunks := chunk(f.Data, room)
	if len(dict_chunks) > 0xffff || len(body_chunks) > 0xffff {
		return nil, fmt.Errorf("frame %d needs too many packets", f.ID)
	}

	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], uint32(f.Symbols))
	binary.LittleEndian.PutUint32(header[4:8], uint32(f.Bits))

	packets := []Packet{{FrameID: f.ID, Type: PacketHeader, Payload: header}}
	for i, c := range dict_chunks {
		packets = append(packets, Packet{FrameID: f.ID, Type: PacketDict, Index: uint16(i), Payload: c})
	}
	for i, c := range body_chunks {
		packets = append(packets, Packet{FrameID: f.ID, Type: PacketBody, Index: uint16(i), Payload: c})
	}

	tail := make([]byte, 4)
	binary.LittleEndian.PutUint16(tail[0:2], uint16(len(dict_chunks)))
	binary.LittleEndian.PutUint16(tail[2:4], uint16(len(body_chunks)))
	packets = append(packets, Packet{FrameID: f.ID, Type: PacketTail, Payload: tail})

	return packets, nil
}

// Assembler collects the packets of one frame in any order.
type Assembler struct {
	ID uint16

	header  bool
	symbols int
	bits    int

	tail  bool
	ndict int
	nbody int

	dict map[uint16][]byte
	body map[uint16][]byte
}

func NewAssembler(id uint16) *Assembler {
	return &Assembler{
		ID:   id,
		dict: make(map[uint16][]byte),
		body: make(map[uint16][]byte),
	}
}

func (a *Assembler) Add(p Packet) error {
	if p.FrameID != a.ID {
		return fmt.Errorf("%w: packet for frame %d, assembling %d", ErrFrameMismatch, p.FrameID, a.ID)
	}

	switch p.Type {
	case PacketHeader:
		if len(p.Payload) < 8 {
			return fmt.Errorf("%w: header of frame %d", ErrShortPacket, p.FrameID)
		}
		a.symbols = int(binary.LittleEndian.Uint32(p.Payload[0:4]))
		a.bits = int(binary.LittleEndian.Uint32(p.Payload[4:8]))
		a.header = true
	case PacketDict:
		a.dict[p.Index] = p.Payload
	case PacketBody:
		a.body[p.Index] = p.Payload
	case PacketTail:
		if len(p.Payload) < 4 {
			return fmt.Errorf("%w: tail of frame %d", ErrShortPacket, p.FrameID)
		}
		a.ndict = int(binary.LittleEndian.Uint16(p.Payload[0:2]))
		a.nbody = int(binary.LittleEndian.Uint16(p.Payload[2:4]))
		a.tail = true
	default:
		return fmt.Errorf("%w: %d", ErrUnknownPacket, p.Type)
	}

	return nil
}

func (a *Assembler) Complete() bool {
	return a.header && a.tail && len(a.dict) >= a.ndict && len(a.body) >= a.nbody
}

func join(chunks map[uint16][]byte, n int) ([]byte, error) {
	b := &bytes.Buffer{}
	for i := 0; i < n; i++ {
		c, ok := chunks[uint16(i)]
		if !ok {
			return nil, fmt.Errorf("missing chunk %d", i)
		}
		b.Write(c)
	}
	return b.Bytes(), nil
}

// Result decodes a complete frame.
func (a *Assembler) Result() (*huffman.Table, string, error) {
	if !a.Complete() {
		return nil, "", fmt.Errorf("frame %d is incomplete", a.ID)
	}

	dict, err := join(a.dict, a.ndict)
	if err != nil {
		return nil, "", fmt.Errorf("frame %d table: %w", a.ID, err)
	}
	body, err := join(a.body, a.nbody)
	if err != nil {
		return nil, "", fmt.Errorf("frame %d body: %w", a.ID, err)
	}

	table := &huffman.Table{}
	if err := json.Unmarshal(dict, table); err != nil {
		return nil, "", fmt.Errorf("frame %d table: %w", a.ID, err)
	}

	text, err := huffman.Decompress(table, body)
	if err != nil {
		return nil, "", fmt.Errorf("frame %d body: %w", a.ID, err)
	}

	if n := utf8.RuneCountInString(text); n != a.symbols {
		return nil, "", fmt.Errorf("frame %d: decoded %d symbols, header says %d", a.ID, n, a.symbols)
	}

	return table, text, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
