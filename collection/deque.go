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

// Package collection provides the ordered containers used by the codec:
// a ring-buffer deque and a small insertion-ordered string map.
package collection

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrEmptyCollection = errors.New("collection is empty")
	ErrNotFound        = errors.New("not found")
)

const minCapacity = 4

// Deque is a growable ring buffer. Element i lives at buf[(head+i)%len(buf)].
type Deque[T any] struct {
	buf  []T
	head int
	n    int
	eq   func(a, b T) bool
}

// NewDeque returns a deque comparing elements with ==.
func NewDeque[T comparable](capacity int) *Deque[T] {
	return NewDequeFunc[T](capacity, func(a, b T) bool { return a == b })
}

// NewDequeFunc returns a deque that uses eq for IndexOf and Remove.
func NewDequeFunc[T any](capacity int, eq func(a, b T) bool) *Deque[T] {
	if capacity < minCapacity {
		capacity = minCapacity
	}

	return &Deque[T]{
		buf: make([]T, capacity),
		eq:  eq,
	}
}

func (d *Deque[T]) Len() int {
	return d.n
}

func (d *Deque[T]) Cap() int {
	return len(d.buf)
}

func (d *Deque[T]) slot(i int) int {
	return (d.head + i) % len(d.buf)
}

func (d *Deque[T]) grow() {
	if d.n < len(d.buf) {
		return
	}

	buf := make([]T, len(d.buf)*2)
	for i := 0; i < d.n; i++ {
		buf[i] = d.buf[d.slot(i)]
	}
	d.buf = buf
	d.head = 0
}

func (d *Deque[T]) PushBack(x T) {
	d.grow()
	d.buf[d.slot(d.n)] = x
	d.n++
}

func (d *Deque[T]) PushFront(x T) {
	d.grow()
	d.head = (d.head - 1 + len(d.buf)) % len(d.buf)
	d.buf[d.head] = x
	d.n++
}

func (d *Deque[T]) At(i int) (T, error) {
	var zero T
	if i < 0 || i >= d.n {
		return zero, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, d.n)
	}

	return d.buf[d.slot(i)], nil
}

func (d *Deque[T]) PopFront() (T, error) {
	var zero T
	if d.n == 0 {
		return zero, ErrEmptyCollection
	}

	x := d.buf[d.head]
	d.buf[d.head] = zero
	d.head = (d.head + 1) % len(d.buf)
	d.n--

	return x, nil
}

func (d *Deque[T]) PopBack() (T, error) {
	var zero T
	if d.n == 0 {
		return zero, ErrEmptyCollection
	}

	i := d.slot(d.n - 1)
	x := d.buf[i]
	d.buf[i] = zero
	d.n--

	return x, nil
}

// IndexOf scans from the front and returns the first position holding a value
// equal to x.
func (d *Deque[T]) IndexOf(x T) (int, error) {
	for i := 0; i < d.n; i++ {
		if d.eq(d.buf[d.slot(i)], x) {
			return i, nil
		}
	}

	return -1, ErrNotFound
}

// Remove deletes the first element equal to x. The order of the remaining
// elements is kept.
func (d *Deque[T]) Remove(x T) (T, error) {
	i, err := d.IndexOf(x)
	if err != nil {
		var zero T
		return zero, err
	}

	return d.RemoveAt(i)
}

// RemoveAt deletes the element at position i, shifting whichever side of the
// ring is shorter.
func (d *Deque[T]) RemoveAt(i int) (T, error) {
	x, err := d.At(i)
	if err != nil {
		return x, err
	}

	var zero T
	if i < d.n/2 {
		for j := i; j > 0; j-- {
			d.buf[d.slot(j)] = d.buf[d.slot(j-1)]
		}
		d.buf[d.head] = zero
		d.head = (d.head + 1) % len(d.buf)
	} else {
		for j := i; j < d.n-1; j++ {
			d.buf[d.slot(j)] = d.buf[d.slot(j+1)]
		}
		d.buf[d.slot(d.n-1)] = zero
	}
	d.n--

	return x, nil
}

// Each calls fn for every element from the front until fn returns false.
func (d *Deque[T]) Each(fn func(i int, x T) bool) {
	for i := 0; i < d.n; i++ {
		if !fn(i, d.buf[d.slot(i)]) {
			return
		}
	}
}

// Slice returns a copy of the elements in order.
func (d *Deque[T]) Slice() []T {
	result := make([]T, 0, d.n)
	for i := 0; i < d.n; i++ {
		result = append(result, d.buf[d.slot(i)])
	}

	return result
}

// vim: ai:ts=8:sw=8:noet:syntax=go
