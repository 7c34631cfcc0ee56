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
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/websocket"

	"github.com/kmeaw/huffkit/huffman"
)

// StreamRequest is one websocket frame sent to /ws/stream.
type StreamRequest struct {
	Op string `json:"op"`
	DecodeRequest
	Text string `json:"text,omitempty"`
}

type StreamResponse struct {
	Op          string         `json:"op"`
	Text        string         `json:"text,omitempty"`
	Bits        string         `json:"bits,omitempty"`
	Table       *huffman.Table `json:"table,omitempty"`
	Packed      []byte         `json:"packed,omitempty"`
	Error       string         `json:"error,omitempty"`
	Description string         `json:"description,omitempty"`
}

// serveStream answers requests until the peer goes away. A decode without
// a table uses the table of the last successful encode on the connection.
func (s *Server) serveStream(ctx context.Context, ws *websocket.Conn) {
	var last *huffman.Table

	for {
		var req StreamRequest
		if err := websocket.JSON.Receive(ws, &req); err != nil {
			log.Debug().Err(err).Msg("stream closed")
			return
		}

		resp := StreamResponse{Op: req.Op}
		var err error
		switch req.Op {
		case "encode":
			var r *EncodeResponse
			r, err = s.Encode(ctx, "ws", EncodeRequest{
				Text:      req.Text,
				Table:     req.Table,
				TableName: req.TableName,
			})
			if err == nil {
				resp.Bits, resp.Table, resp.Packed = r.Bits, r.Table, r.Packed
				last = r.Table
			}
		case "decode":
			if req.Table == nil && req.TableName == "" {
				req.Table = last
			}
			var r *DecodeResponse
			r, err = s.Decode(ctx, "ws", req.DecodeRequest)
			if err == nil {
				resp.Text = r.Text
			}
		default:
			resp.Error = "bad_op"
			resp.Description = fmt.Sprintf("unknown op %q", req.Op)
		}

		if err != nil {
			resp.Error = errorKind(err)
			resp.Description = err.Error()
		}

		if err := websocket.JSON.Send(ws, resp); err != nil {
			log.Debug().Err(err).Msg("cannot send stream response")
			return
		}
	}
}

// StreamClient talks to /ws/stream of a running service.
type StreamClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// DialStream connects to base, a http:// or https:// service address.
func DialStream(base string) (*StreamClient, error) {
	origin, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	location := *origin
	switch origin.Scheme {
	case "http":
		location.Scheme = "ws"
	case "https":
		location.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", origin.Scheme)
	}
	location.Path = "/ws/stream"

	conn, err := websocket.DialConfig(&websocket.Config{
		Location: &location,
		Origin:   origin,
		Dialer: &net.Dialer{
			Timeout: 10 * time.Second,
		},
		Version: websocket.ProtocolVersionHybi13,
	})
	if err != nil {
		return nil, err
	}

	return &StreamClient{conn: conn}, nil
}

func (c *StreamClient) roundTrip(req StreamRequest) (*StreamResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := websocket.JSON.Send(c.conn, req); err != nil {
		return nil, err
	}

	var resp StreamResponse
	if err := websocket.JSON.Receive(c.conn, &resp); err != nil {
		return nil, err
	}

	if resp.Error != "" {
		return &resp, fmt.Errorf("%s: %s", resp.Error, resp.Description)
	}

	return &resp, nil
}

func (c *StreamClient) Encode(text string) (*StreamResponse, error) {
	return c.roundTrip(StreamRequest{Op: "encode", Text: text})
}

// Decode decodes bits. A nil table means the table of the previous Encode.
func (c *StreamClient) Decode(bits string, table *huffman.Table) (*StreamResponse, error) {
	return c.roundTrip(StreamRequest{
		Op:            "decode",
		DecodeRequest: DecodeRequest{Bits: bits, Table: table},
	})
}

func (c *StreamClient) Close() error {
	return c.conn.Close()
}

// vim: ai:ts=8:sw=8:noet:syntax=go
