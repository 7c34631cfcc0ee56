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

// Package huffman builds prefix codes from symbol frequencies and uses them to
// encode and decode text. A symbol is a single character (rune).
package huffman

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyInput     = errors.New("empty input")
	ErrUnknownSymbol  = errors.New("unknown symbol")
	ErrIncompleteCode = errors.New("incomplete code")
	ErrInvalidBit     = errors.New("invalid bit")
	ErrInvalidTable   = errors.New("invalid code table")
	ErrInvalidText    = errors.New("invalid UTF-8 text")
)

// Node is a Huffman tree node. Leaves carry exactly one symbol; an internal
// node carries the payload of its left subtree followed by its right one and
// always has both children.
type Node struct {
	Freq    int
	Payload []string

	Left, Right *Node
}

func NewLeaf(symbol string, freq int) *Node {
	return &Node{
		Freq:    freq,
		Payload: []string{symbol},
	}
}

// Merge makes a new parent owning a and b. a becomes the left child.
func Merge(a, b *Node) *Node {
	payload := make([]string, 0, len(a.Payload)+len(b.Payload))
	payload = append(payload, a.Payload...)
	payload = append(payload, b.Payload...)

	return &Node{
		Freq:    a.Freq + b.Freq,
		Payload: payload,
		Left:    a,
		Right:   b,
	}
}

func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Symbol returns the symbol of a leaf.
func (n *Node) Symbol() string {
	if len(n.Payload) == 0 {
		return ""
	}
	return n.Payload[0]
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (n *Node) Depth() int {
	if n == nil || n.IsLeaf() {
		return 0
	}

	l, r := n.Left.Depth(), n.Right.Depth()
	if l > r {
		return l + 1
	}
	return r + 1
}

// Leaves returns the leaves left to right.
func (n *Node) Leaves() []*Node {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []*Node{n}
	}

	return append(n.Left.Leaves(), n.Right.Leaves()...)
}

// Release tears the subtree down, children first.
func (n *Node) Release() {
	if n == nil {
		return
	}

	n.Left.Release()
	n.Right.Release()
	n.Left = nil
	n.Right = nil
	n.Payload = nil
}

func (n *Node) String() string {
	return fmt.Sprintf("%d:%s", n.Freq, strings.Join(n.Payload, ""))
}

// vim: ai:ts=8:sw=8:noet:syntax=go
