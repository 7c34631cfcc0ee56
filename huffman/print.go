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
	"bufio"
	"fmt"
	"io"
	"strings"
)

const cellWidth = 3

// SymbolLabel makes whitespace visible.
func SymbolLabel(s string) string {
	switch s {
	case " ":
		return "_"
	case "\n":
		return "⏎"
	case "\t":
		return "→"
	case "\r":
		return "←"
	}
	return s
}

func nodeLabel(n *Node) []rune {
	if n.IsLeaf() {
		label := []rune("(" + SymbolLabel(n.Symbol()) + ")")
		if len(label) == cellWidth {
			return label
		}
		return []rune("(?)")
	}
	return []rune(" o ")
}

func treeWidth(n *Node) int {
	if n == nil {
		return 0
	}
	return treeWidth(n.Left) + cellWidth + treeWidth(n.Right)
}

func drawTree(n *Node, is_left bool, offset, depth int, grid [][]rune) int {
	if n == nil {
		return 0
	}

	left := drawTree(n.Left, true, offset, depth+1, grid)
	right := drawTree(n.Right, false, offset+left+cellWidth, depth+1, grid)

	copy(grid[2*depth][offset+left:], nodeLabel(n))

	if depth > 0 {
		edge := grid[2*depth-1]
		if is_left {
			for i := 0; i < cellWidth+right; i++ {
				edge[offset+left+cellWidth/2+i] = '-'
			}
			edge[offset+left+cellWidth/2] = '+'
			edge[offset+left+cellWidth+right+cellWidth/2] = '+'
		} else {
			for i := 0; i < left+cellWidth; i++ {
				edge[offset-cellWidth/2+i] = '-'
			}
			edge[offset+left+cellWidth/2] = '+'
			edge[offset-cellWidth/2-1] = '+'
		}
	}

	return left + cellWidth + right
}

// PrintTree draws the tree top-down. If the drawing would be wider than
// width columns, an indented listing is written instead. A width of zero or
// less means no limit.
func PrintTree(w io.Writer, root *Node, width int) error {
	if root == nil {
		return ErrEmptyInput
	}

	cols := treeWidth(root) + 1
	if width > 0 && cols > width {
		return PrintOutline(w, root)
	}

	grid := make([][]rune, 2*root.Depth()+1)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	drawTree(root, false, 0, 0, grid)

	bw := bufio.NewWriter(w)
	for _, row := range grid {
		line := strings.TrimRight(string(row), " ")
		if line == "" {
			continue
		}
		bw.WriteString(line)
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// PrintOutline writes one line per node, indented by depth, with the edge bit
// and the frequency.
func PrintOutline(w io.Writer, root *Node) error {
	if root == nil {
		return ErrEmptyInput
	}

	bw := bufio.NewWriter(w)
	var walk func(n *Node, depth int, bit string)
	walk = func(n *Node, depth int, bit string) {
		fmt.Fprintf(bw, "%s%s", strings.Repeat("  ", depth), bit)
		if n.IsLeaf() {
			fmt.Fprintf(bw, "(%s) %d\n", SymbolLabel(n.Symbol()), n.Freq)
			return
		}
		fmt.Fprintf(bw, "%d\n", n.Freq)
		walk(n.Left, depth+1, "0 ")
		walk(n.Right, depth+1, "1 ")
	}
	walk(root, 0, "")

	return bw.Flush()
}

// vim: ai:ts=8:sw=8:noet:syntax=go
