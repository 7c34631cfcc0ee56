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
	"github.com/kmeaw/huffkit/collection"
)

// lowest returns the position of the node with the smallest frequency. Ties go
// to the node closest to the front.
func lowest(nodes *collection.Deque[*Node]) int {
	min_idx := -1
	min_freq := 0

	nodes.Each(func(i int, n *Node) bool {
		if min_idx == -1 || n.Freq < min_freq {
			min_idx, min_freq = i, n.Freq
		}
		return true
	})

	return min_idx
}

func takeLowest(nodes *collection.Deque[*Node]) *Node {
	n, err := nodes.RemoveAt(lowest(nodes))
	if err != nil {
		// lowest only returns valid positions of a non-empty deque
		panic(err)
	}
	return n
}

// BuildTree consumes nodes, repeatedly merging the two lowest-frequency nodes
// and appending the result, until a single root is left. The node removed
// first becomes the left child.
func BuildTree(nodes *collection.Deque[*Node]) (*Node, error) {
	if nodes.Len() == 0 {
		return nil, ErrEmptyInput
	}

	for nodes.Len() > 1 {
		first := takeLowest(nodes)
		second := takeLowest(nodes)
		nodes.PushBack(Merge(first, second))
	}

	return nodes.PopFront()
}

// Build runs the whole pipeline for text: analysis, tree and code table.
func Build(text string) (*Node, *Table, error) {
	if err := CheckText(text); err != nil {
		return nil, nil, err
	}

	root, err := BuildTree(Analyze(text))
	if err != nil {
		return nil, nil, err
	}

	table, err := Generate(root)
	if err != nil {
		return nil, nil, err
	}

	return root, table, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
