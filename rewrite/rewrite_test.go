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

package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/ir"
	"github.com/barefootnetworks/flexpack/rewrite"
	"github.com/barefootnetworks/flexpack/solver"
)

func TestRepackStructInsertsPadding(t *testing.T) {
	t.Parallel()

	a := &field.Field{ID: 1, Name: "a", Size: 3, Gress: field.Ingress, Flags: field.Flexible}
	b := &field.Field{ID: 2, Name: "b", Size: 2, Gress: field.Ingress, Flags: field.Flexible}

	layout := &solver.Layout{Containers: []solver.Container{{
		Size: 8,
		Fields: []solver.Placement{
			{Field: a, Bit: 5},
			{Field: b, Bit: 0},
		},
	}}}

	t_ := ir.StructType{
		Name: "bridge_t",
		Members: []ir.StructMember{
			{Field: a, Annotation: ir.FlexibleAnnotation},
			{Field: b, Annotation: ir.FlexibleAnnotation},
		},
	}

	pad := rewrite.NewPaddingCounter(100)
	out, err := rewrite.RepackStruct(t_, layout, pad, field.Ingress)
	require.NoError(t, err)

	require.Len(t, out.Members, 3, "a fills the top 3 bits exactly, leaving one gap between a and b")
	assert.Same(t, a, out.Members[0].Field)
	assert.Equal(t, ir.PaddingAnnotation, out.Members[1].Annotation)
	assert.Equal(t, uint32(3), out.Members[1].Field.Size)
	assert.Same(t, b, out.Members[2].Field)
}

func TestRepackStructPreservesFixedMembers(t *testing.T) {
	t.Parallel()

	fixed := &field.Field{ID: 1, Name: "fixed", Size: 8, Gress: field.Ingress}
	flex := &field.Field{ID: 2, Name: "flex", Size: 8, Gress: field.Ingress, Flags: field.Flexible}

	layout := &solver.Layout{Containers: []solver.Container{{
		Size:   8,
		Fields: []solver.Placement{{Field: flex, Bit: 0}},
	}}}

	t_ := ir.StructType{
		Name: "hdr_t",
		Members: []ir.StructMember{
			{Field: fixed},
			{Field: flex, Annotation: ir.FlexibleAnnotation},
		},
	}

	pad := rewrite.NewPaddingCounter(100)
	out, err := rewrite.RepackStruct(t_, layout, pad, field.Ingress)
	require.NoError(t, err)
	require.Len(t, out.Members, 2)
	assert.Same(t, fixed, out.Members[0].Field)
	assert.Same(t, flex, out.Members[1].Field)
}

func TestReorderDigestKeepsSessionIDInPlace(t *testing.T) {
	t.Parallel()

	session := &field.Field{ID: 1, Name: "session"}
	a := &field.Field{ID: 2, Name: "a"}
	b := &field.Field{ID: 3, Name: "b"}

	list := ir.DigestFieldList{
		Name:           "mirror",
		SessionIDField: session,
		Fields:         []*field.Field{session, a, b},
	}

	// b was placed before a in the solved layout.
	order := map[field.ID]int{a.ID: 1, b.ID: 0}

	out := rewrite.ReorderDigest(list, order)
	require.Len(t, out.Fields, 3)
	assert.Same(t, session, out.Fields[0], "session id field must stay first")
	assert.Same(t, b, out.Fields[1])
	assert.Same(t, a, out.Fields[2])
}

func TestPadFixedSizeHeader(t *testing.T) {
	t.Parallel()

	f := &field.Field{ID: 1, Name: "a", Size: 8, Gress: field.Ingress}
	t_ := ir.StructType{Name: "h", FixedSizeBits: 16, Members: []ir.StructMember{{Field: f}}}

	pad := rewrite.NewPaddingCounter(100)
	out := rewrite.PadFixedSizeHeader(t_, pad, field.Ingress)

	require.Len(t, out.Members, 2)
	assert.Equal(t, ir.PaddingAnnotation, out.Members[1].Annotation)
	assert.Equal(t, uint32(8), out.Members[1].Field.Size)
}
