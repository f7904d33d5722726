// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package xsync provides deterministic, insertion-ordered collections.
//
// The driver (§5 of the design) is single-threaded and synchronous by
// contract, so these types trade the teacher's sync.Map-backed
// concurrency-safety for insertion-order iteration: every collector walk
// must produce the same constraint order on every run, which a plain Go map
// cannot guarantee. This is the same role the original backend's
// ordered_map/ordered_set fill.
package xsync

import "iter"

// Map is an insertion-ordered map: iteration with [Map.All] always visits
// keys in the order they were first stored.
type Map[K comparable, V any] struct {
	index map[K]int
	keys  []K
	vals  []V
}

// Load returns the value stored for k, if any.
func (m *Map[K, V]) Load(k K) (V, bool) {
	i, ok := m.index[k]
	if !ok {
		var z V
		return z, false
	}
	return m.vals[i], true
}

// Store inserts or overwrites the value for k, preserving k's original
// insertion position.
func (m *Map[K, V]) Store(k K, v V) {
	if i, ok := m.index[k]; ok {
		m.vals[i] = v
		return
	}
	if m.index == nil {
		m.index = make(map[K]int)
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

// LoadOrStore loads a value if present, or constructs it with make and
// inserts it.
func (m *Map[K, V]) LoadOrStore(k K, make func() V) (actual V, loaded bool) {
	if v, ok := m.Load(k); ok {
		return v, true
	}
	v := make()
	m.Store(k, v)
	return v, false
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int { return len(m.keys) }

// All returns an iterator over the entries in this map, in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i, k := range m.keys {
			if !yield(k, m.vals[i]) {
				return
			}
		}
	}
}
