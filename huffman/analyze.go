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

package huffman

import (
	"fmt"
	"unicode/utf8"

	"github.com/kmeaw/huffkit/collection"
)

// Count pairs a symbol with its number of occurrences.
type Count struct {
	Symbol string `json:"symbol"`
	Freq   int    `json:"freq"`
}

// CheckText fails on the first byte of text that does not start a valid UTF-8
// sequence. Such bytes would all read as U+FFFD and not survive a round trip.
func CheckText(text string) error {
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("%w: byte 0x%02x at offset %d", ErrInvalidText, text[i], i)
		}
		i += size
	}

	return nil
}

// Frequencies counts every symbol of text. Symbols appear in order of their
// first occurrence. text must pass CheckText.
func Frequencies(text string) *collection.Dict[int] {
	freqs := collection.NewDict[int]()
	for _, r := range text {
		key := string(r)
		freq, err := freqs.Get(key)
		if err != nil {
			freq = 0
		}
		freqs.Set(key, freq+1)
	}

	return freqs
}

// Analyze returns one leaf per distinct symbol of text, which must pass
// CheckText.
func Analyze(text string) *collection.Deque[*Node] {
	freqs := Frequencies(text)
	nodes := collection.NewDeque[*Node](freqs.Len())
	freqs.Keys().Each(func(_ int, key string) bool {
		freq, _ := freqs.Get(key)
		nodes.PushBack(NewLeaf(key, freq))
		return true
	})

	return nodes
}

// Leaves turns an explicit frequency list into leaves, keeping its order.
// Symbols with a zero count are skipped.
func Leaves(counts []Count) *collection.Deque[*Node] {
	nodes := collection.NewDeque[*Node](len(counts))
	for _, c := range counts {
		if c.Freq <= 0 {
			continue
		}
		nodes.PushBack(NewLeaf(c.Symbol, c.Freq))
	}

	return nodes
}

// Counts lists the frequencies of a leaf deque without consuming it.
func Counts(nodes *collection.Deque[*Node]) []Count {
	result := make([]Count, 0, nodes.Len())
	nodes.Each(func(_ int, n *Node) bool {
		result = append(result, Count{Symbol: n.Symbol(), Freq: n.Freq})
		return true
	})

	return result
}

// vim: ai:ts=8:sw=8:noet:syntax=go
