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

package solver

import (
	"sort"

	"github.com/barefootnetworks/flexpack/field"
)

// Placement is one field's position within a Container: Bit is its LSB
// offset.
type Placement struct {
	Field *field.Field
	Bit   uint32
}

// Container is one concrete PHV container in the reconstructed layout,
// with its fields ordered MSB first: the order a repacked struct literal
// (§4.5) is built in.
type Container struct {
	Size   uint32
	Fields []Placement
}

// End returns the bit immediately past c's highest-placed field.
func (c Container) End() uint32 {
	end := uint32(0)
	for _, p := range c.Fields {
		if hi := p.Bit + p.Field.Size; hi > end {
			end = hi
		}
	}
	return end
}

// Layout is the solver's final output: every flexible field placed into
// containers, ordered by solved container id, each container sized to the
// smallest size class that fits its contents.
type Layout struct {
	Containers []Container
}

// reconstruct groups the solved (container, offset) assignment by
// container id, picks the smallest size class that fits each container's
// contents, and orders each container's fields from the highest bit
// offset (MSB) to the lowest, matching the struct-literal field order the
// rewrite transform (§4.5) emits.
func reconstruct(p *Problem, o Oracle, sizes []uint32) (*Layout, error) {
	groups := make(map[int][]Placement)
	var containerIDs []int
	seen := make(map[int]bool)

	for _, id := range p.order {
		s := p.slots[id]
		cid := o.Value(s.container)
		bit := uint32(o.Value(s.offset))
		groups[cid] = append(groups[cid], Placement{Field: p.fields[id], Bit: bit})
		if !seen[cid] {
			seen[cid] = true
			containerIDs = append(containerIDs, cid)
		}
	}
	sort.Ints(containerIDs)

	layout := &Layout{}
	for _, cid := range containerIDs {
		fields := groups[cid]
		sort.Slice(fields, func(i, j int) bool { return fields[i].Bit > fields[j].Bit })

		c := Container{Fields: fields}
		c.Size = fitSize(c.End(), sizes)
		layout.Containers = append(layout.Containers, c)
	}
	return layout, nil
}

// fitSize returns the smallest size class that is at least bits wide,
// falling back to the largest size class if every field in a container
// somehow exceeds it (which a correct alignment/no-split translation
// should never produce).
func fitSize(bits uint32, sizes []uint32) uint32 {
	best := uint32(0)
	sorted := append([]uint32(nil), sizes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, s := range sorted {
		if s >= bits {
			return s
		}
		best = s
	}
	if best == 0 {
		return bits
	}
	return best
}

// Gap is one run of bits in a container that no field occupies: Width
// bits starting at bit offset Bit, so Gap{Bit: 0, Width: n} denotes n
// unoccupied bits starting at bit offset 0.
type Gap struct {
	Bit   uint32
	Width uint32
}

// Gaps returns every unfilled bit range in c, from its size down to 0,
// skipping the ranges its fields already occupy.
func (c Container) Gaps() []Gap {
	occupied := make([]bool, c.Size)
	for _, p := range c.Fields {
		for b := p.Bit; b < p.Bit+p.Field.Size && b < c.Size; b++ {
			occupied[b] = true
		}
	}

	var gaps []Gap
	for b := int(c.Size) - 1; b >= 0; {
		if occupied[b] {
			b--
			continue
		}
		hi := uint32(b) + 1
		for b >= 0 && !occupied[b] {
			b--
		}
		lo := uint32(b + 1)
		gaps = append(gaps, Gap{Bit: lo, Width: hi - lo})
	}
	return gaps
}
