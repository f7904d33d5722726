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

package collect

import (
	"strings"

	"github.com/barefootnetworks/flexpack/constraints"
	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/ir"
)

// synthesizeAlignment implements rule 1: a flexible field extracted
// directly from the packet is pinned to the mod-8 bit offset of its
// extract site.
func synthesizeAlignment(bag *constraints.Bag, thread *ir.Thread) {
	if thread == nil || thread.Parser == nil {
		return
	}
	for _, st := range thread.Parser.States {
		for _, ex := range st.Extracts {
			if ex.Source != ir.FromPacket || !ex.Dest.Whole() {
				continue
			}
			f := ex.Dest.Field
			if !f.Flags.Has(field.Flexible) {
				continue
			}
			bag.AddAlignment(f, uint8(ex.PacketBitOffset%8), field.ReasonParserExtract)
		}
	}
}

// synthesizeALUPropagation implements rule 3: a pure whole-field move
// preserves bit position, so an alignment pinned on one side of the move
// propagates to the other.
func synthesizeALUPropagation(bag *constraints.Bag, g *RelatedGraph, db *field.DB) {
	for f := range db.Flexible() {
		if f.Alignment == nil {
			continue
		}
		for id := range g.All(f.ID) {
			other, ok := db.ByID(id)
			if !ok || !other.Flags.Has(field.Flexible) {
				continue
			}
			bag.AddAlignment(other, f.Alignment.Bit, field.ReasonMauInstruction)
		}
	}
}

// synthesizeMutualAlignment implements rule 2: bridge pairs and gress
// twins must land at the same bit offset within their containers, even
// when neither side has an absolute pin yet.
func synthesizeMutualAlignment(bag *constraints.Bag, pairs []BridgePair) {
	for _, p := range pairs {
		if !p.Ingress.Flags.Has(field.Flexible) && !p.Egress.Flags.Has(field.Flexible) {
			continue
		}
		bag.AddMutualAlignment(p.Ingress, p.Egress, field.ReasonBridgeMatch)
	}
}

// synthesizeALUNoPack implements rule 4: two distinct fields referenced as
// operands of the same instruction cannot share a container, since one
// ALU op reads from at most one container per operand slot.
func synthesizeALUNoPack(bag *constraints.Bag, db *field.DB, actions []*ir.Action) {
	for _, act := range actions {
		for _, instr := range act.Instructions {
			refs := map[field.ID]*field.Field{instr.Dest.Field.ID: instr.Dest.Field}
			for _, src := range instr.Sources {
				if src.Kind == ir.FieldOperand {
					refs[src.Slice.Field.ID] = src.Slice.Field
				}
			}
			if len(refs) < 2 {
				continue
			}
			ids := make([]field.ID, 0, len(refs))
			for id := range refs {
				ids = append(ids, id)
			}
			for i := 0; i < len(ids); i++ {
				for j := i + 1; j < len(ids); j++ {
					a, b := refs[ids[i]], refs[ids[j]]
					if !a.Flags.Has(field.Flexible) && !b.Flags.Has(field.Flexible) {
						continue
					}
					bag.AddNoPack(db, a, b, constraints.ReasonLiveRangeOverlap)
				}
			}
		}
	}
}

// synthesizeSolitary implements the solitary rule for fields written by a
// checksum-class instruction, which the architecture requires to own a
// container exclusively. Fields already marked solitary by pragma are
// promoted separately, by pragmaSolitary.
func synthesizeSolitary(bag *constraints.Bag, actions []*ir.Action) {
	for _, act := range actions {
		for _, instr := range act.Instructions {
			if !strings.Contains(strings.ToLower(instr.Op), "csum") {
				continue
			}
			bag.AddSolitary(instr.Dest.Field, field.ReasonChecksum)
		}
	}
}

// pragmaSolitary promotes fields flagged Solitary with a recorded reason
// (pa_solitary sets both) into SolitaryConstraint records, so they appear
// in the bag alongside the ones discovered structurally. A field carrying a
// solitary reason without the Solitary flag, as pa_no_init leaves it, is
// not promoted.
func pragmaSolitary(bag *constraints.Bag, db *field.DB) {
	for f := range db.All() {
		if f.Flags.Has(field.Solitary) && f.SolitaryReason != 0 {
			bag.AddSolitary(f, f.SolitaryReason)
		}
	}
}

// synthesizeNoSplit implements rule: any field referenced whole by an ALU
// instruction must be placed in a single container, since the ALU
// datapath operates on one container per operand.
func synthesizeNoSplit(bag *constraints.Bag, actions []*ir.Action) {
	seen := make(map[field.ID]bool)
	mark := func(f *field.Field) {
		if seen[f.ID] || !f.Flags.Has(field.Flexible) {
			return
		}
		seen[f.ID] = true
		bag.AddNoSplit(f, f.ContainerSizeHint)
	}
	for _, act := range actions {
		for _, instr := range act.Instructions {
			if instr.Dest.Whole() {
				mark(instr.Dest.Field)
			}
			for _, src := range instr.Sources {
				if src.Kind == ir.FieldOperand && src.Slice.Whole() {
					mark(src.Slice.Field)
				}
			}
		}
	}
}

// synthesizeDeparsedToTM implements rule 7: parameters the traffic manager
// reads after the deparser cannot move within their byte once placed.
func synthesizeDeparsedToTM(bag *constraints.Bag, dep *ir.Deparser) {
	if dep == nil {
		return
	}
	for _, p := range dep.Params {
		bag.AddDeparsedToTM(p.Field)
	}
}

// synthesizeDigest implements rule 6: digest field lists' session-id and
// index selector fields must not be repacked like ordinary fields, since
// the hardware reads them at fixed offsets within the digest payload; the
// rest of the list is free to repack like any other field but is marked
// DigestUsed for diagnostics.
func synthesizeDigest(bag *constraints.Bag, lists []ir.DigestFieldList) {
	for _, list := range lists {
		for _, f := range list.Fields {
			f.Flags |= field.DigestUsed
		}
		if list.SessionIDField != nil {
			bag.AddSolitary(list.SessionIDField, field.ReasonDigest)
		}
		if list.IndexField != nil {
			bag.AddSolitary(list.IndexField, field.ReasonDigest)
		}
	}
}

// synthesizeStructScope forbids flexible fields owned by two different
// struct types from ever sharing a container: a repacked header's
// containers only ever hold that header's own bytes. Quadratic in the
// flexible population of one pipe, which in practice stays in the low
// hundreds of fields, so no index is built for it.
func synthesizeStructScope(bag *constraints.Bag, db *field.DB, types []ir.StructType) {
	owner := make(map[field.ID]int)
	for ti, t := range types {
		for _, m := range t.Members {
			if m.Annotation == ir.FlexibleAnnotation {
				owner[m.Field.ID] = ti
			}
		}
	}

	var flex []*field.Field
	for f := range db.Flexible() {
		if _, ok := owner[f.ID]; ok {
			flex = append(flex, f)
		}
	}
	for i := 0; i < len(flex); i++ {
		for j := i + 1; j < len(flex); j++ {
			a, b := flex[i], flex[j]
			if owner[a.ID] != owner[b.ID] {
				bag.AddNoPack(db, a, b, constraints.ReasonDifferentStruct)
			}
		}
	}
}

// synthesizeCopack implements rule 5: adjacent `@flexible` members of the
// same struct are offered to the solver as a packing hint, since placing
// them in the same container is what the frontend's field order already
// suggests.
func synthesizeCopack(bag *constraints.Bag, types []ir.StructType) {
	for _, t := range types {
		var prev *field.Field
		for _, m := range t.Members {
			if m.Annotation != ir.FlexibleAnnotation {
				prev = nil
				continue
			}
			if prev != nil {
				bag.AddCopack(prev, m.Field)
			}
			prev = m.Field
		}
	}
}
