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

package collection

import (
	"fmt"
	"reflect"
)

// Releaser is implemented by values that must be torn down when a Dict drops
// them.
type Releaser interface {
	Release()
}

type Entry[V any] struct {
	Key   string
	Value V
}

// Dict maps strings to owned values. Entries stay in insertion order and every
// lookup is a linear scan, which is fine for single-character alphabets.
type Dict[V any] struct {
	entries *Deque[*Entry[V]]
}

func NewDict[V any]() *Dict[V] {
	return &Dict[V]{
		entries: NewDequeFunc[*Entry[V]](0, func(a, b *Entry[V]) bool {
			return a.Key == b.Key
		}),
	}
}

func release(v any) {
	if r, ok := v.(Releaser); ok {
		r.Release()
	}
}

// same reports whether a and b are one value, without panicking on types
// that cannot be compared.
func same(a, b any) bool {
	t := reflect.TypeOf(a)
	if t == nil || t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}

	return a == b
}

func (d *Dict[V]) find(key string) *Entry[V] {
	var found *Entry[V]
	d.entries.Each(func(_ int, e *Entry[V]) bool {
		if e.Key == key {
			found = e
			return false
		}
		return true
	})

	return found
}

// Set stores value under key. A value already stored under key is released
// and replaced in place, so the entry keeps its position. Storing the value
// that is already there changes nothing.
func (d *Dict[V]) Set(key string, value V) *Entry[V] {
	if e := d.find(key); e != nil {
		old := e.Value
		e.Value = value
		if !same(old, value) {
			release(old)
		}
		return e
	}

	e := &Entry[V]{Key: key, Value: value}
	d.entries.PushBack(e)
	return e
}

func (d *Dict[V]) Get(key string) (V, error) {
	if e := d.find(key); e != nil {
		return e.Value, nil
	}

	var zero V
	return zero, fmt.Errorf("%w: key %q", ErrNotFound, key)
}

func (d *Dict[V]) Has(key string) bool {
	return d.find(key) != nil
}

func (d *Dict[V]) Len() int {
	return d.entries.Len()
}

// Keys returns a snapshot of the keys in entry order.
func (d *Dict[V]) Keys() *Deque[string] {
	keys := NewDeque[string](d.entries.Len())
	d.entries.Each(func(_ int, e *Entry[V]) bool {
		keys.PushBack(e.Key)
		return true
	})

	return keys
}

func (d *Dict[V]) Delete(key string) error {
	e, err := d.entries.Remove(&Entry[V]{Key: key})
	if err != nil {
		return fmt.Errorf("%w: key %q", err, key)
	}

	release(e.Value)
	return nil
}

// Clear releases every value and empties the dict.
func (d *Dict[V]) Clear() {
	for d.entries.Len() > 0 {
		e, _ := d.entries.PopFront()
		release(e.Value)
	}
}

func (d *Dict[V]) Each(fn func(key string, value V) bool) {
	d.entries.Each(func(_ int, e *Entry[V]) bool {
		return fn(e.Key, e.Value)
	})
}

// vim: ai:ts=8:sw=8:noet:syntax=go
