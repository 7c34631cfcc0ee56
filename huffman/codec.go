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
	"strings"
)

// Encode replaces every symbol of plaintext with its code. The result is a
// string of '0' and '1' characters.
func Encode(t *Table, plaintext string) (string, error) {
	if err := CheckText(plaintext); err != nil {
		return "", err
	}

	sb := &strings.Builder{}

	offset := 0
	for _, r := range plaintext {
		code, err := t.Code(string(r))
		if err != nil {
			return "", fmt.Errorf("%w at offset %d", err, offset)
		}
		sb.WriteString(code)
		offset++
	}

	return sb.String(), nil
}

// Decode reads ciphertext one bit at a time and emits the symbols of every
// complete code it meets.
func Decode(t *Table, ciphertext string) (string, error) {
	out := &strings.Builder{}
	buf := &strings.Builder{}

	for i := 0; i < len(ciphertext); i++ {
		d := ciphertext[i]
		if d != '0' && d != '1' {
			return "", fmt.Errorf("%w: %q at offset %d", ErrInvalidBit, d, i)
		}

		buf.WriteByte(d)
		payload, ok := t.Lookup(buf.String())
		if !ok {
			continue
		}

		for _, s := range payload {
			out.WriteString(s)
		}
		buf.Reset()
	}

	if buf.Len() > 0 {
		return "", fmt.Errorf("%w: trailing bits %q", ErrIncompleteCode, buf.String())
	}

	return out.String(), nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
