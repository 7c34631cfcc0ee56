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
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/websocket"

	"github.com/kmeaw/huffkit/huffman"
)

type AnalyzeRequest struct {
	Text    string `json:"text"`
	Compare bool   `json:"compare,omitempty"`
}

// EncodeRequest may carry a table, or the name of a stored one, to encode
// with instead of building a new one.
type EncodeRequest struct {
	Text      string         `json:"text"`
	Table     *huffman.Table `json:"table,omitempty"`
	TableName string         `json:"table_name,omitempty"`
}

type EncodeResponse struct {
	Bits   string         `json:"bits"`
	Table  *huffman.Table `json:"table"`
	Packed []byte         `json:"packed"`
}

// DecodeRequest carries either bits or packed bytes, and either a table or
// the name of a stored one.
type DecodeRequest struct {
	Bits      string         `json:"bits,omitempty"`
	Packed    []byte         `json:"packed,omitempty"`
	Table     *huffman.Table `json:"table,omitempty"`
	TableName string         `json:"table_name,omitempty"`
}

type DecodeResponse struct {
	Text string `json:"text"`
}

type TableRequest struct {
	Text  string         `json:"text,omitempty"`
	Table *huffman.Table `json:"table,omitempty"`
}

type Server struct {
	*Codec

	Config *Config
	Width  int
}

func NewServer(cfg *Config, codec *Codec) *Server {
	return &Server{
		Codec:  codec,
		Config: cfg,
		Width:  120,
	}
}

// errorKind names a codec failure for API clients.
func errorKind(err error) string {
	switch {
	case errors.Is(err, huffman.ErrUnknownSymbol):
		return "unknown_symbol"
	case errors.Is(err, huffman.ErrIncompleteCode):
		return "incomplete_code"
	case errors.Is(err, huffman.ErrInvalidBit):
		return "invalid_bit"
	case errors.Is(err, huffman.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, huffman.ErrInvalidTable):
		return "invalid_table"
	case errors.Is(err, huffman.ErrInvalidText):
		return "invalid_text"
	case errors.Is(err, ErrNoTable):
		return "no_table"
	case errors.Is(err, ErrBadTableName):
		return "bad_table_name"
	}
	return "internal_error"
}

func errorStatus(err error) int {
	switch errorKind(err) {
	case "no_table":
		return http.StatusNotFound
	case "bad_table_name":
		return http.StatusBadRequest
	case "internal_error":
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}

func abortWithBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":       "bad_request",
		"description": err.Error(),
	})
}

func abortWithCodecError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errorStatus(err), gin.H{
		"error":       errorKind(err),
		"description": err.Error(),
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t0 := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= 500 {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(t0)).
			Msg("request")
	}
}

func (s *Server) Engine() (*gin.Engine, error) {
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())

	if err := s.Config.InitTemplates(r); err != nil {
		return nil, fmt.Errorf("cannot init templates: %w", err)
	}

	r.GET("/", func(c *gin.Context) {
		text := c.Query("text")
		if text == "" {
			text = s.Config.SampleText
		}

		report, err := NewReport(text, s.Width, false)
		if err != nil {
			c.HTML(http.StatusOK, "error.html", gin.H{"Text": text, "Error": err.Error()})
			return
		}

		c.HTML(http.StatusOK, "index.html", gin.H{
			"Text":   text,
			"Report": report,
			"Codes":  report.Table.Codes(),
		})
	})

	api := r.Group("/api")

	api.POST("/analyze", func(c *gin.Context) {
		var p AnalyzeRequest
		if err := c.ShouldBindJSON(&p); err != nil {
			abortWithBadRequest(c, err)
			return
		}

		report, err := NewReport(p.Text, s.Width, p.Compare)
		if err != nil {
			abortWithCodecError(c, err)
			return
		}

		c.JSON(http.StatusOK, report)
	})

	api.POST("/encode", func(c *gin.Context) {
		var p EncodeRequest
		if err := c.ShouldBindJSON(&p); err != nil {
			abortWithBadRequest(c, err)
			return
		}

		resp, err := s.Encode(c.Request.Context(), "http", p)
		if err != nil {
			abortWithCodecError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	api.POST("/decode", func(c *gin.Context) {
		var p DecodeRequest
		if err := c.ShouldBindJSON(&p); err != nil {
			abortWithBadRequest(c, err)
			return
		}

		resp, err := s.Decode(c.Request.Context(), "http", p)
		if err != nil {
			abortWithCodecError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	api.PUT("/tables/:name", func(c *gin.Context) {
		var p TableRequest
		if err := c.ShouldBindJSON(&p); err != nil {
			abortWithBadRequest(c, err)
			return
		}

		table := p.Table
		if table == nil {
			_, t, err := huffman.Build(p.Text)
			if err != nil {
				abortWithCodecError(c, err)
				return
			}
			table = t
		}

		if err := s.Store.Save(c.Request.Context(), c.Param("name"), table); err != nil {
			abortWithCodecError(c, err)
			return
		}

		c.JSON(http.StatusOK, table)
	})

	api.GET("/tables/:name", func(c *gin.Context) {
		table, err := s.Store.Load(c.Request.Context(), c.Param("name"))
		if err != nil {
			abortWithCodecError(c, err)
			return
		}

		c.JSON(http.StatusOK, table)
	})

	r.GET("/ws/stream", func(c *gin.Context) {
		handler := websocket.Handler(func(ws *websocket.Conn) {
			defer ws.Close()
			s.serveStream(c.Request.Context(), ws)
		})
		handler.ServeHTTP(c.Writer, c.Request)
	})

	r.GET("/ws/events", func(c *gin.Context) {
		handler := websocket.Handler(func(ws *websocket.Conn) {
			defer ws.Close()
			ch := s.Events.Subscribe(c.QueryArray("source")...)
			for {
				select {
				case <-c.Request.Context().Done():
					return
				case event, ok := <-ch:
					if !ok {
						return
					}
					err := websocket.JSON.Send(ws, event)
					if err != nil {
						log.Debug().Err(err).Msg("cannot send event")
						return
					}
				}
			}
		})
		handler.ServeHTTP(c.Writer, c.Request)
	})

	return r, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
