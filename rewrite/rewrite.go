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

// Package rewrite implements the IR rewrite transform (§4.5): given a
// solved Layout, it substitutes a struct type's `@flexible` members with a
// repacked member list (padding inserted, MSB to LSB), reorders digest
// field lists while preserving their session-id and index selectors in
// place, and pads fixed-size headers out to their declared width.
package rewrite

import (
	"fmt"

	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/internal/debug"
	"github.com/barefootnetworks/flexpack/ir"
	"github.com/barefootnetworks/flexpack/solver"
)

// PaddingCounter generates unique padding field ids and names for one
// rewrite pass, mirroring the original backend's synthesized padding
// field naming.
type PaddingCounter struct {
	next int
	base field.ID
}

// NewPaddingCounter returns a counter that allocates synthetic padding
// field ids starting at base itself, which callers should set above every
// id already present in the field database being rewritten.
func NewPaddingCounter(base field.ID) *PaddingCounter {
	return &PaddingCounter{base: base}
}

func (p *PaddingCounter) alloc() (field.ID, string) {
	id := p.base + field.ID(p.next)
	name := fmt.Sprintf("__pad_%d", p.next)
	p.next++
	return id, name
}

func newPadding(c *PaddingCounter, gress field.Gress, width uint32) *field.Field {
	id, name := c.alloc()
	return &field.Field{
		ID:    id,
		Name:  name,
		Gress: gress,
		Kind:  field.Padding,
		Size:  width,
	}
}

// RepackStruct rebuilds t's member list from layout, replacing every
// `@flexible` member with the solved placement and inserting synthetic
// padding members for any gap the solver left. Members not annotated
// `@flexible` are carried over unchanged, in their original relative
// position around the repacked run: this core only ever repacks whole
// contiguous runs of flexible members, never interleaves fixed members
// between flexible ones (the frontend is expected to group them, per §6).
func RepackStruct(t ir.StructType, layout *solver.Layout, pad *PaddingCounter, gress field.Gress) (ir.StructType, error) {
	out := ir.StructType{Name: t.Name, FixedSizeBits: t.FixedSizeBits}

	flexIDs := make(map[field.ID]bool)
	for _, m := range t.Members {
		if m.Annotation == ir.FlexibleAnnotation {
			flexIDs[m.Field.ID] = true
		}
	}

	repacked := repackedMembers(layout, flexIDs, pad, gress)
	emitted := false
	closedRun := false // true once a flexible run has ended and a fixed member has followed it

	for i := 0; i < len(t.Members); {
		m := t.Members[i]
		if m.Annotation != ir.FlexibleAnnotation {
			if emitted {
				closedRun = true
			}
			out.Members = append(out.Members, m)
			i++
			continue
		}
		if emitted && closedRun {
			return ir.StructType{}, debug.Unsupported()
		}
		if !emitted {
			out.Members = append(out.Members, repacked...)
			emitted = true
		}
		i++
	}

	if len(flexIDs) > 0 && !emitted {
		return ir.StructType{}, fmt.Errorf("flexpack: %s: flexible members present but none repacked", t.Name)
	}
	return out, nil
}

// repackedMembers walks layout's containers from the first to the last,
// MSB to LSB within each, and emits one StructMember per placement and
// per padding gap, but only for fields that belong to this struct type
// (layout may cover other struct types' fields too, since the solve runs
// once per pipe across every flexible field).
func repackedMembers(layout *solver.Layout, owned map[field.ID]bool, pad *PaddingCounter, gress field.Gress) []ir.StructMember {
	var out []ir.StructMember
	for _, c := range layout.Containers {
		var mine []solver.Placement
		for _, p := range c.Fields {
			if owned[p.Field.ID] {
				mine = append(mine, p)
			}
		}
		if len(mine) == 0 {
			continue
		}

		bit := c.Size
		for _, p := range mine {
			hi := p.Bit + p.Field.Size
			if hi < bit {
				out = append(out, ir.StructMember{
					Field:      newPadding(pad, gress, bit-hi),
					Annotation: ir.PaddingAnnotation,
				})
			}
			out = append(out, ir.StructMember{Field: p.Field, Annotation: ir.NoAnnotation})
			bit = p.Bit
		}
		if bit > 0 {
			out = append(out, ir.StructMember{
				Field:      newPadding(pad, gress, bit),
				Annotation: ir.PaddingAnnotation,
			})
		}
	}
	return out
}
