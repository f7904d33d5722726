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

package xsync

import "iter"

// Set is an insertion-ordered set.
type Set[K comparable] struct {
	m Map[K, struct{}]
}

// Load returns whether k is in the set.
func (s *Set[K]) Load(k K) bool {
	_, ok := s.m.Load(k)
	return ok
}

// Store inserts k into the set.
func (s *Set[K]) Store(k K) {
	s.m.Store(k, struct{}{})
}

// Len returns the number of elements in the set.
func (s *Set[K]) Len() int { return s.m.Len() }

// All returns an iterator over the values in this set, in insertion order.
func (s *Set[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range s.m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// PairSet is an insertion-ordered set of unordered pairs of comparable
// values, used to represent symmetric relations such as the no-pack matrix
// and mutual-alignment relation of §3.
type PairSet[K comparable] struct {
	set Set[[2]K]
	lt  func(a, b K) bool
}

// NewPairSet builds a PairSet that orders each pair's two elements using lt,
// so that (a, b) and (b, a) are stored and looked up identically.
func NewPairSet[K comparable](lt func(a, b K) bool) *PairSet[K] {
	return &PairSet[K]{lt: lt}
}

func (p *PairSet[K]) normalize(a, b K) [2]K {
	if p.lt(b, a) {
		a, b = b, a
	}
	return [2]K{a, b}
}

// Add records that (a, b) are related.
func (p *PairSet[K]) Add(a, b K) {
	p.set.Store(p.normalize(a, b))
}

// Has reports whether (a, b) were previously added.
func (p *PairSet[K]) Has(a, b K) bool {
	return p.set.Load(p.normalize(a, b))
}

// All iterates over every distinct pair added so far.
func (p *PairSet[K]) All() iter.Seq[[2]K] {
	return p.set.All()
}
