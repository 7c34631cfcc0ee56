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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kmeaw/huffkit/collection"
)

// Pair is one code table entry as it is stored or sent over the wire.
type Pair struct {
	Prefix string `json:"prefix"`
	Symbol string `json:"symbol"`
}

// Table holds a prefix code in both directions. It is not modified after
// construction.
type Table struct {
	codes   *collection.Dict[string]
	symbols *collection.Dict[[]string]
}

func newTable() *Table {
	return &Table{
		codes:   collection.NewDict[string](),
		symbols: collection.NewDict[[]string](),
	}
}

func (t *Table) add(prefix string, payload []string) {
	t.symbols.Set(prefix, append([]string(nil), payload...))
	for _, s := range payload {
		t.codes.Set(s, prefix)
	}
}

func (t *Table) fill(n *Node, prefix string) {
	if n.IsLeaf() {
		t.add(prefix, n.Payload)
		return
	}

	if n.Left != nil {
		t.fill(n.Left, prefix+"0")
	}
	if n.Right != nil {
		t.fill(n.Right, prefix+"1")
	}
}

// Generate walks the tree and assigns 0 to left edges and 1 to right edges. A
// tree made of a single leaf gets the code "0".
func Generate(root *Node) (*Table, error) {
	if root == nil {
		return nil, ErrEmptyInput
	}

	t := newTable()
	if root.IsLeaf() {
		t.add("0", root.Payload)
	} else {
		t.fill(root, "")
	}

	return t, nil
}

// NewTable rebuilds a table from its entries, rejecting anything that is not
// a prefix code.
func NewTable(pairs []Pair) (*Table, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidTable)
	}

	t := newTable()
	for _, p := range pairs {
		if p.Prefix == "" || strings.Trim(p.Prefix, "01") != "" {
			return nil, fmt.Errorf("%w: bad prefix %q", ErrInvalidTable, p.Prefix)
		}
		if t.codes.Has(p.Symbol) {
			return nil, fmt.Errorf("%w: duplicate symbol %q", ErrInvalidTable, p.Symbol)
		}
		if t.symbols.Has(p.Prefix) {
			return nil, fmt.Errorf("%w: duplicate prefix %q", ErrInvalidTable, p.Prefix)
		}
		t.add(p.Prefix, []string{p.Symbol})
	}

	for i, a := range pairs {
		for j, b := range pairs {
			if i != j && strings.HasPrefix(b.Prefix, a.Prefix) {
				return nil, fmt.Errorf("%w: %q is a prefix of %q", ErrInvalidTable, a.Prefix, b.Prefix)
			}
		}
	}

	return t, nil
}

// Code returns the prefix assigned to symbol.
func (t *Table) Code(symbol string) (string, error) {
	code, err := t.codes.Get(symbol)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	return code, nil
}

// Lookup returns the symbols stored under a complete code.
func (t *Table) Lookup(prefix string) ([]string, bool) {
	payload, err := t.symbols.Get(prefix)
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (t *Table) Len() int {
	return t.symbols.Len()
}

// Pairs lists the entries in generation order.
func (t *Table) Pairs() []Pair {
	result := make([]Pair, 0, t.symbols.Len())
	t.symbols.Each(func(prefix string, payload []string) bool {
		for _, s := range payload {
			result = append(result, Pair{Prefix: prefix, Symbol: s})
		}
		return true
	})

	return result
}

// Codes returns a symbol to prefix map.
func (t *Table) Codes() map[string]string {
	result := make(map[string]string, t.codes.Len())
	t.codes.Each(func(symbol, prefix string) bool {
		result[symbol] = prefix
		return true
	})

	return result
}

// BitLength is the size in bits of text encoded with t.
func (t *Table) BitLength(counts []Count) (int, error) {
	bits := 0
	for _, c := range counts {
		code, err := t.Code(c.Symbol)
		if err != nil {
			return 0, err
		}
		bits += len(code) * c.Freq
	}

	return bits, nil
}

func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Pairs())
}

func (t *Table) UnmarshalJSON(data []byte) error {
	var pairs []Pair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTable, err)
	}

	parsed, err := NewTable(pairs)
	if err != nil {
		return err
	}

	*t = *parsed
	return nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
