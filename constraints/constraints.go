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

// Package constraints defines the seven constraint kinds collection (§4.2)
// produces and the solver (§4.3) consumes, plus the supplemented
// NoOverlapConstraint the original backend distinguishes from no-pack.
package constraints

import (
	"fmt"
	"iter"

	"github.com/barefootnetworks/flexpack/field"
)

// AlignmentConstraint pins a single field's LSB to a fixed bit offset
// within whatever container it is ultimately placed in.
type AlignmentConstraint struct {
	Field  *field.Field
	Bit    uint8
	Reason field.AlignReason
}

// MutualAlignmentConstraint requires two fields to be placed at the same
// bit offset within their respective containers, without pinning that
// offset to a specific value. Used for bridge pairs and gress twins
// (§4.2 rule 2).
type MutualAlignmentConstraint struct {
	A, B   *field.Field
	Reason field.AlignReason
}

// CopackConstraint hints that two fields should be placed in the same
// container when possible, to reduce total container count. Copack is
// advisory: the solver may ignore it under pressure, unlike every other
// constraint kind here (§4.2 rule 5, §4.3 conflict pruning).
type CopackConstraint struct {
	A, B *field.Field
}

// NoPackConstraint forbids two fields from ever sharing a container.
type NoPackConstraint struct {
	A, B   *field.Field
	Reason NoPackReason
}

// NoPackReason records why two fields were forbidden from sharing a
// container.
type NoPackReason uint32

const (
	ReasonLiveRangeOverlap NoPackReason = 1 << iota
	ReasonDifferentGress
	ReasonPragmaNoPack
	ReasonMutexFields
	// ReasonDifferentStruct marks fields belonging to two different
	// struct types: a repacked header's containers are private to that
	// header, so fields from unrelated headers may never land in one.
	ReasonDifferentStruct
)

// NoOverlapConstraint forbids two fields placed in the same container from
// occupying overlapping bit ranges; unlike NoPackConstraint, it lets them
// share that container. The original
// backend tracks these separately because overlap can arise from explicit
// `@overlayable` opt-outs as well as from live-range analysis.
type NoOverlapConstraint struct {
	A, B *field.Field
}

// SolitaryConstraint forbids a field from sharing a container with any
// other field at all.
type SolitaryConstraint struct {
	Field  *field.Field
	Reason field.SolitaryReason
}

// NoSplitConstraint forbids a field from being split across more than one
// container; it must be placed whole.
type NoSplitConstraint struct {
	Field *field.Field
	// ContainerSize, if non-zero (8, 16, or 32 bits), bounds the field's
	// placement so that it ends within the low ContainerSize bits of its
	// container; the container's own size class is still chosen by layout
	// reconstruction from everything placed in it.
	ContainerSize uint32
}

// DeparsedToTMConstraint forbids a field from moving within its byte once
// placed, because the traffic manager reads it at a fixed offset after the
// deparser (§4.2 rule 7).
type DeparsedToTMConstraint struct {
	Field *field.Field
}

// Bag is the discardable accumulation of every constraint synthesized for
// one compile. The solver consumes it directly; nothing downstream of
// solving keeps a reference to it, so callers are free to let it be
// garbage collected once solve returns (§4.3).
type Bag struct {
	Alignment      []AlignmentConstraint
	MutualAlign    []MutualAlignmentConstraint
	Copack         []CopackConstraint
	NoPack         []NoPackConstraint
	NoOverlap      []NoOverlapConstraint
	Solitary       []SolitaryConstraint
	NoSplit        []NoSplitConstraint
	DeparsedToTM   []DeparsedToTMConstraint
}

// AddAlignment records an AlignmentConstraint, also updating the field's
// own Alignment cell so that later rules can see a prior pin.
func (b *Bag) AddAlignment(f *field.Field, bit uint8, reason field.AlignReason) {
	if f.Alignment != nil {
		f.Alignment.Reason |= reason
		return
	}
	f.Alignment = &field.Alignment{Bit: bit, Reason: reason}
	b.Alignment = append(b.Alignment, AlignmentConstraint{Field: f, Bit: bit, Reason: reason})
}

// AddMutualAlignment records a MutualAlignmentConstraint between a and b.
func (b *Bag) AddMutualAlignment(a, z *field.Field, reason field.AlignReason) {
	b.MutualAlign = append(b.MutualAlign, MutualAlignmentConstraint{A: a, B: z, Reason: reason})
}

// AddCopack records a CopackConstraint between a and b.
func (b *Bag) AddCopack(a, z *field.Field) {
	b.Copack = append(b.Copack, CopackConstraint{A: a, B: z})
}

// AddNoPack records a NoPackConstraint between a and b, and mirrors it
// into db's canonical no-pack matrix.
func (b *Bag) AddNoPack(db *field.DB, a, z *field.Field, reason NoPackReason) {
	b.NoPack = append(b.NoPack, NoPackConstraint{A: a, B: z, Reason: reason})
	db.NoPack.Add(a.ID, z.ID)
}

// AddNoOverlap records a NoOverlapConstraint between a and b.
func (b *Bag) AddNoOverlap(a, z *field.Field) {
	b.NoOverlap = append(b.NoOverlap, NoOverlapConstraint{A: a, B: z})
}

// AddSolitary records a SolitaryConstraint, also updating the field's own
// SolitaryReason bitset.
func (b *Bag) AddSolitary(f *field.Field, reason field.SolitaryReason) {
	f.SolitaryReason |= reason
	f.Flags |= field.Solitary
	b.Solitary = append(b.Solitary, SolitaryConstraint{Field: f, Reason: reason})
}

// AddNoSplit records a NoSplitConstraint, also setting the field's NoSplit
// flag.
func (b *Bag) AddNoSplit(f *field.Field, containerSize uint32) {
	f.Flags |= field.NoSplit
	b.NoSplit = append(b.NoSplit, NoSplitConstraint{Field: f, ContainerSize: containerSize})
}

// AddDeparsedToTM records a DeparsedToTMConstraint, also setting the
// field's DeparsedToTM flag.
func (b *Bag) AddDeparsedToTM(f *field.Field) {
	f.Flags |= field.DeparsedToTM
	b.DeparsedToTM = append(b.DeparsedToTM, DeparsedToTMConstraint{Field: f})
}

// Len returns the total number of constraints of every kind in the bag.
func (b *Bag) Len() int {
	return len(b.Alignment) + len(b.MutualAlign) + len(b.Copack) + len(b.NoPack) +
		len(b.NoOverlap) + len(b.Solitary) + len(b.NoSplit) + len(b.DeparsedToTM)
}

// Pair is a field-pair constraint in a uniform shape, used by the solver
// and by pruning logic that does not care which concrete kind it is.
type Pair struct {
	A, B *field.Field
	Kind string
}

// Pairs iterates over every pairwise constraint (mutual-alignment, copack,
// no-pack, no-overlap) regardless of kind, tagging each with its kind name
// for diagnostics.
func (b *Bag) Pairs() iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		for _, c := range b.MutualAlign {
			if !yield(Pair{c.A, c.B, "mutual-alignment"}) {
				return
			}
		}
		for _, c := range b.Copack {
			if !yield(Pair{c.A, c.B, "copack"}) {
				return
			}
		}
		for _, c := range b.NoPack {
			if !yield(Pair{c.A, c.B, "no-pack"}) {
				return
			}
		}
		for _, c := range b.NoOverlap {
			if !yield(Pair{c.A, c.B, "no-overlap"}) {
				return
			}
		}
	}
}

func (p Pair) String() string {
	return fmt.Sprintf("%s(%s, %s)", p.Kind, p.A.Name, p.B.Name)
}
