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

package rewrite

import (
	"sort"

	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/ir"
)

// ReorderDigest rebuilds list's field order to match where each field
// landed in layout, while keeping SessionIDField and IndexField exactly
// where the frontend put them: the hardware reads the digest payload at
// fixed byte offsets for those two selectors regardless of how the rest of
// the list was repacked (§4.2 rule 6's edge case).
func ReorderDigest(list ir.DigestFieldList, byID map[field.ID]int) ir.DigestFieldList {
	out := list
	out.Fields = append([]*field.Field(nil), list.Fields...)

	type indexed struct {
		f   *field.Field
		pos int
		fix bool
	}
	entries := make([]indexed, len(out.Fields))
	for i, f := range out.Fields {
		switch {
		case list.SessionIDField != nil && f.ID == list.SessionIDField.ID:
			entries[i] = indexed{f: f, pos: i, fix: true}
		case list.IndexField != nil && f.ID == list.IndexField.ID:
			entries[i] = indexed{f: f, pos: i, fix: true}
		default:
			entries[i] = indexed{f: f, pos: byID[f.ID]}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].fix || entries[j].fix {
			return false // fixed entries never move relative to their neighbors
		}
		return entries[i].pos < entries[j].pos
	})

	for i, e := range entries {
		out.Fields[i] = e.f
	}
	return out
}

// PadFixedSizeHeader inserts trailing padding into t so that its total
// size matches t.FixedSizeBits, mirroring the original backend's
// PadFixedSizeHeaders pass. It is a no-op for a struct with no fixed size
// or one that already fills it.
func PadFixedSizeHeader(t ir.StructType, pad *PaddingCounter, gress field.Gress) ir.StructType {
	if t.FixedSizeBits == 0 {
		return t
	}
	total := uint32(0)
	for _, m := range t.Members {
		total += m.Field.Size
	}
	if total >= t.FixedSizeBits {
		return t
	}

	out := t
	out.Members = append(append([]ir.StructMember(nil), t.Members...), ir.StructMember{
		Field:      newPadding(pad, gress, t.FixedSizeBits-total),
		Annotation: ir.PaddingAnnotation,
	})
	return out
}
