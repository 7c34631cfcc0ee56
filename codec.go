/**
 * Copyright 2025 kmeaw
 *
 * Licensed under the GNU Affero General Public License (AGPL).
 *
 * This program is free software: you can redistribute it and/or modify it
 * under the terms of the GNU Affero General Public License as published by the
 * Free Software Foundation, version 3 of the License.
 *
 * This program is distributed in the hope that it will be useful, but WITHOUT
 * ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
 * FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
 * for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */
package main

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/kmeaw/huffkit/huffman"
)

// Codec runs encode and decode requests for every front end and reports
// each of them to Events.
type Codec struct {
	Store  TableStore
	Events *Broadcaster
}

func NewCodec(store TableStore, events *Broadcaster) *Codec {
	return &Codec{Store: store, Events: events}
}

func (c *Codec) publish(source, op string, symbols, bits int, err error) {
	if c.Events == nil {
		return
	}

	event := CodecEvent{Source: source, Op: op, Symbols: symbols, Bits: bits}
	if err != nil {
		event.Error = err.Error()
	}
	c.Events.Broadcast(event)
}

// Encode builds a table for the text unless the request names one. Encoding
// against a given table fails on symbols it has no code for.
func (c *Codec) Encode(ctx context.Context, source string, req EncodeRequest) (*EncodeResponse, error) {
	resp, err := c.encode(ctx, req)
	bits := 0
	if resp != nil {
		bits = len(resp.Bits)
	}
	c.publish(source, "encode", utf8.RuneCountInString(req.Text), bits, err)

	return resp, err
}

func (c *Codec) encode(ctx context.Context, req EncodeRequest) (*EncodeResponse, error) {
	var table *huffman.Table
	var err error
	if req.Table == nil && req.TableName == "" {
		_, table, err = huffman.Build(req.Text)
	} else {
		table, err = c.table(ctx, req.Table, req.TableName)
	}
	if err != nil {
		return nil, err
	}

	bits, err := huffman.Encode(table, req.Text)
	if err != nil {
		return nil, err
	}

	packed, err := huffman.Pack(bits)
	if err != nil {
		return nil, err
	}

	return &EncodeResponse{Bits: bits, Table: table, Packed: packed}, nil
}

func (c *Codec) table(ctx context.Context, table *huffman.Table, name string) (*huffman.Table, error) {
	if table != nil {
		return table, nil
	}
	if name == "" || c.Store == nil {
		return nil, fmt.Errorf("%w: no table given", huffman.ErrInvalidTable)
	}

	return c.Store.Load(ctx, name)
}

func (c *Codec) Decode(ctx context.Context, source string, req DecodeRequest) (*DecodeResponse, error) {
	resp, err := c.decode(ctx, req)
	symbols := 0
	if resp != nil {
		symbols = utf8.RuneCountInString(resp.Text)
	}
	c.publish(source, "decode", symbols, len(req.Bits), err)

	return resp, err
}

func (c *Codec) decode(ctx context.Context, req DecodeRequest) (*DecodeResponse, error) {
	table, err := c.table(ctx, req.Table, req.TableName)
	if err != nil {
		return nil, err
	}

	bits := req.Bits
	if len(req.Packed) > 0 {
		bits, err = huffman.Unpack(req.Packed)
		if err != nil {
			return nil, err
		}
	}

	text, err := huffman.Decode(table, bits)
	if err != nil {
		return nil, err
	}

	return &DecodeResponse{Text: text}, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
