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
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

// rawMarker in the first byte means the rest of the data is stored as is.
const rawMarker = 0xff

// Pack turns a '0'/'1' string into bytes, most significant bit first. The
// first byte holds the number of padding bits at the end of the last byte.
func Pack(bits string) ([]byte, error) {
	b := &bytes.Buffer{}
	b.WriteByte(byte((8 - len(bits)%8) % 8))

	w := bitio.NewWriter(b)
	for i := 0; i < len(bits); i++ {
		var err error
		switch bits[i] {
		case '0':
			err = w.WriteBool(false)
		case '1':
			err = w.WriteBool(true)
		default:
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidBit, bits[i], i)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unpack reverses Pack.
func Unpack(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: no header byte", ErrIncompleteCode)
	}

	pad := int(data[0])
	nbits := (len(data)-1)*8 - pad
	if pad > 7 || nbits < 0 {
		return "", fmt.Errorf("%w: bad padding %d for %d bytes", ErrIncompleteCode, pad, len(data)-1)
	}

	sb := &bytes.Buffer{}
	r := bitio.NewReader(bytes.NewReader(data[1:]))
	for i := 0; i < nbits; i++ {
		bit, err := r.ReadBool()
		if err != nil {
			return "", err
		}
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String(), nil
}

// Compress encodes and packs text. When coding does not make the text any
// smaller it is stored raw behind a marker byte.
func Compress(t *Table, text string) ([]byte, error) {
	bits, err := Encode(t, text)
	if err != nil {
		return nil, err
	}

	packed, err := Pack(bits)
	if err != nil {
		return nil, err
	}

	if len(text) <= len(packed)-1 {
		return append([]byte{rawMarker}, text...), nil
	}

	return packed, nil
}

// Decompress reverses Compress.
func Decompress(t *Table, data []byte) (string, error) {
	if len(data) > 0 && data[0] == rawMarker {
		return string(data[1:]), nil
	}

	bits, err := Unpack(data)
	if err != nil {
		return "", err
	}

	return Decode(t, bits)
}

// vim: ai:ts=8:sw=8:noet:syntax=go
