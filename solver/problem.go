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
	"fmt"
	"sort"

	"github.com/barefootnetworks/flexpack/constraints"
	"github.com/barefootnetworks/flexpack/field"
)

// slot identifies one field's pair of oracle variables: which container it
// lands in, and at which bit offset within that container.
type slot struct {
	container Var
	offset    Var
}

// Problem is a constraint bag translated into oracle variables and
// assertions, ready for an Oracle.Check call. Copack assertions are kept
// separate from the rest, since they are the only kind conflict pruning
// (§4.3) is permitted to drop.
type Problem struct {
	db       *field.DB
	sizes    []uint32
	slots    map[field.ID]slot
	order    []field.ID
	fields   map[field.ID]*field.Field
	copack   []string // names of copack-tagged tracked assertions
	copackPushed bool
}

// maxContainers bounds how many containers the solver may allocate: one
// per flexible field is always enough (the trivial
// all-distinct layout), so that bound is used directly rather than trying
// to guess a tighter one.
func maxContainers(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

// Build declares one (container, offset) variable pair per flexible field
// in db and asserts every constraint in bag against o. Container variables
// range over [0, n) where n is the number of flexible fields, which is
// always a safe upper bound on the containers needed; the objectives Build
// registers last push fields toward low container indices.
func Build(o Oracle, db *field.DB, bag *constraints.Bag, sizes []uint32) (*Problem, error) {
	p := &Problem{
		db:     db,
		sizes:  sizes,
		slots:  make(map[field.ID]slot),
		fields: make(map[field.ID]*field.Field),
	}

	var flexible []*field.Field
	for f := range db.Flexible() {
		flexible = append(flexible, f)
	}
	n := maxContainers(len(flexible))

	for _, f := range flexible {
		p.order = append(p.order, f.ID)
		p.fields[f.ID] = f
		maxBits := int(maxSize(sizes))
		p.slots[f.ID] = slot{
			container: o.IntVar(fmt.Sprintf("container[%s]", f.Name), 0, n),
			offset:    o.IntVar(fmt.Sprintf("offset[%s]", f.Name), 0, maxBits),
		}
	}

	p.assertAlignment(o, bag)
	p.assertMutualAlignment(o, bag)
	p.assertFundamentalNonOverlap(o)
	p.assertNoPack(o, bag)
	p.assertNoOverlap(o, bag)
	p.assertSolitary(o, bag)
	p.assertNoSplit(o, bag)
	p.assertDeparsedToTM(o, bag)

	// Copack hints are pushed as their own frame so that Solve can drop
	// them with a single Pop on conflict, without disturbing any hard
	// constraint asserted above.
	if len(bag.Copack) > 0 {
		o.Push()
		p.copackPushed = true
	}
	p.assertCopack(o, bag)

	// Containers are minimized first; offsets are minimized second, as a
	// tie-break that pushes fields toward the lowest bits of whichever
	// container they land in once the container count is already optimal.
	for _, id := range p.order {
		o.Minimize(p.slots[id].container)
	}
	for _, id := range p.order {
		o.Minimize(p.slots[id].offset)
	}

	return p, nil
}

// noOverlap returns the assertion that [a, a+sizeA) and [b, b+sizeB) do not
// overlap: either they live in different containers, or one range starts
// at or past the other's end.
func noOverlap(a slot, sizeA int, b slot, sizeB int) Expr {
	return Or(
		NotEq(a.container, b.container),
		Ge(b.offset, a.offset, sizeA),
		Ge(a.offset, b.offset, sizeB),
	)
}

// assertFundamentalNonOverlap forbids every ordered pair of flexible fields
// from occupying overlapping bit ranges should the solver place them in the
// same container, independent of any discovered constraint. This is the
// baseline every layout must satisfy (§4.3 item 3); NoPackConstraint and
// NoOverlapConstraint add named, diagnosable instances of the same rule for
// conflict reporting, but the bag may not mention a pair at all even though
// the solver is still free to pick the same container for both.
func (p *Problem) assertFundamentalNonOverlap(o Oracle) {
	for i := 0; i < len(p.order); i++ {
		a := p.fields[p.order[i]]
		as := p.slots[a.ID]
		for j := i + 1; j < len(p.order); j++ {
			b := p.fields[p.order[j]]
			bs := p.slots[b.ID]
			name := fmt.Sprintf("non-overlap:%s,%s", a.Name, b.Name)
			o.AssertTracked(name, noOverlap(as, int(a.Size), bs, int(b.Size)))
		}
	}
}

func maxSize(sizes []uint32) uint32 {
	m := uint32(0)
	for _, s := range sizes {
		if s > m {
			m = s
		}
	}
	if m == 0 {
		return 32
	}
	return m
}

func (p *Problem) assertAlignment(o Oracle, bag *constraints.Bag) {
	for _, c := range bag.Alignment {
		s, ok := p.slots[c.Field.ID]
		if !ok {
			continue
		}
		name := fmt.Sprintf("align:%s", c.Field.Name)
		o.AssertTracked(name, EqConst(s.offset, int(c.Bit)))
	}
}

func (p *Problem) assertMutualAlignment(o Oracle, bag *constraints.Bag) {
	for _, c := range bag.MutualAlign {
		a, aok := p.slots[c.A.ID]
		b, bok := p.slots[c.B.ID]
		if !aok || !bok {
			continue
		}
		name := fmt.Sprintf("mutual-align:%s,%s", c.A.Name, c.B.Name)
		o.AssertTracked(name, Eq(a.offset, b.offset))
	}
}

func (p *Problem) assertNoPack(o Oracle, bag *constraints.Bag) {
	for _, c := range bag.NoPack {
		a, aok := p.slots[c.A.ID]
		b, bok := p.slots[c.B.ID]
		if !aok || !bok {
			continue
		}
		name := fmt.Sprintf("no-pack:%s,%s", c.A.Name, c.B.Name)
		o.AssertTracked(name, NotEq(a.container, b.container))
	}
}

func (p *Problem) assertNoOverlap(o Oracle, bag *constraints.Bag) {
	for _, c := range bag.NoOverlap {
		a, aok := p.slots[c.A.ID]
		b, bok := p.slots[c.B.ID]
		if !aok || !bok {
			continue
		}
		name := fmt.Sprintf("no-overlap:%s,%s", c.A.Name, c.B.Name)
		o.AssertTracked(name, noOverlap(a, int(c.A.Size), b, int(c.B.Size)))
	}
}

// assertNoSplit pins a field inside the single container it was placed in
// to a fixed container size, when the pragma or ALU reference that produced
// the constraint named one: offset+size must not run past ContainerSize.
// A field is never split across containers in this model regardless (each
// field owns exactly one (container, offset) pair), so when ContainerSize
// is zero there is nothing further to assert.
func (p *Problem) assertNoSplit(o Oracle, bag *constraints.Bag) {
	for _, c := range bag.NoSplit {
		if c.ContainerSize == 0 {
			continue
		}
		s, ok := p.slots[c.Field.ID]
		if !ok {
			continue
		}
		name := fmt.Sprintf("no-split:%s", c.Field.Name)
		o.AssertTracked(name, LeConst(s.offset, int(c.ContainerSize)-int(c.Field.Size)))
	}
}

// assertDeparsedToTM pins a field to a single byte-aligned slice of its
// container: the traffic manager reads a fixed byte range, so the field may
// not straddle a byte boundary. A field wider than one byte can never
// satisfy that, so no assertion is made for it and this rule leaves its
// placement unconstrained.
func (p *Problem) assertDeparsedToTM(o Oracle, bag *constraints.Bag) {
	for _, c := range bag.DeparsedToTM {
		s, ok := p.slots[c.Field.ID]
		if !ok {
			continue
		}
		size := int(c.Field.Size)
		if size > 8 {
			continue
		}
		maxBits := int(maxSize(p.sizes))
		var byteFits []Expr
		for b := 0; b+8 <= maxBits; b += 8 {
			byteFits = append(byteFits, And(GeConst(s.offset, b), LeConst(s.offset, b+8-size)))
		}
		if len(byteFits) == 0 {
			continue
		}
		name := fmt.Sprintf("deparsed-to-tm:%s", c.Field.Name)
		o.AssertTracked(name, Or(byteFits...))
	}
}

func (p *Problem) assertSolitary(o Oracle, bag *constraints.Bag) {
	for _, c := range bag.Solitary {
		s, ok := p.slots[c.Field.ID]
		if !ok {
			continue
		}
		for _, otherID := range p.order {
			if otherID == c.Field.ID {
				continue
			}
			other := p.slots[otherID]
			name := fmt.Sprintf("solitary:%s,%s", c.Field.Name, p.fields[otherID].Name)
			o.AssertTracked(name, NotEq(s.container, other.container))
		}
	}
}

// assertCopack records copack hints as assertions tracked under a
// "copack:" prefix, remembered in p.copack so that Solve can drop them on
// conflict without touching any hard constraint.
func (p *Problem) assertCopack(o Oracle, bag *constraints.Bag) {
	for _, c := range bag.Copack {
		a, aok := p.slots[c.A.ID]
		b, bok := p.slots[c.B.ID]
		if !aok || !bok {
			continue
		}
		name := fmt.Sprintf("copack:%s,%s", c.A.Name, c.B.Name)
		p.copack = append(p.copack, name)
		o.AssertTracked(name, Eq(a.container, b.container))
	}
}

// fieldsOf returns the problem's flexible fields sorted by name, for
// deterministic diagnostics independent of discovery order.
func (p *Problem) fieldsOf() []*field.Field {
	out := make([]*field.Field, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.fields[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
