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
	"strings"
	"sync"
	"time"
)

// CodecEvent describes one encode or decode performed by any of the
// services.
type CodecEvent struct {
	Source  string    `json:"source"`
	Op      string    `json:"op"`
	Symbols int       `json:"symbols"`
	Bits    int       `json:"bits"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// Broadcaster fans the latest event out to every subscriber. A subscriber
// that does not pick an event up within a second is dropped.
type Broadcaster struct {
	lastEvent *CodecEvent
	mu        *sync.Mutex
	cv        *sync.Cond
}

func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{}
	b.mu = new(sync.Mutex)
	b.cv = sync.NewCond(b.mu)
	return b
}

func (b *Broadcaster) Broadcast(event CodecEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.Lock()
	b.lastEvent = &event
	b.mu.Unlock()

	b.cv.Broadcast()
}

// Last returns the most recent event, if any.
func (b *Broadcaster) Last() (CodecEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lastEvent == nil {
		return CodecEvent{}, false
	}
	return *b.lastEvent, true
}

// MatchSource reports whether source is one of sources or belongs to one of
// them: "irc" matches "irc:alice". No sources match everything.
func MatchSource(source string, sources []string) bool {
	if len(sources) == 0 {
		return true
	}

	for _, s := range sources {
		if source == s || strings.HasPrefix(source, s+":") {
			return true
		}
	}
	return false
}

// Subscribe returns a channel receiving every event from sources (see
// MatchSource) broadcast after the call. The channel is closed when the
// subscriber falls behind.
func (b *Broadcaster) Subscribe(sources ...string) <-chan CodecEvent {
	b.mu.Lock()
	last_event := b.lastEvent
	b.mu.Unlock()

	ch := make(chan CodecEvent)
	go func(ch chan CodecEvent) {
		defer close(ch)

		running := true
		for running {
			b.mu.Lock()
			var event *CodecEvent
			for {
				event = b.lastEvent
				if event != nil && event != last_event {
					break
				}
				b.cv.Wait()
			}
			b.mu.Unlock()

			last_event = event
			if !MatchSource(event.Source, sources) {
				continue
			}

			t := time.NewTimer(time.Second)
			select {
			case <-t.C:
				// timed out
				running = false
			case ch <- *event:
				// done
			}
			t.Stop()
		}
	}(ch)
	return ch
}

// vim: ai:ts=8:sw=8:noet:syntax=go
