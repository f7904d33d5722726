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

package driver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barefootnetworks/flexpack/driver"
	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/ir"
	"github.com/barefootnetworks/flexpack/solver"
)

// buildBridgedProgram constructs a minimal ingress/egress pipe where an
// ingress field is bridged to egress under the same name, with both sides
// marked `@flexible`.
func buildBridgedProgram(t *testing.T) (*ir.Program, *field.DB, []ir.StructType) {
	t.Helper()

	db := field.NewDB()
	igr := &field.Field{ID: 1, Name: "meta.x", Gress: field.Ingress, Size: 8, Flags: field.Flexible | field.Bridged, BridgeName: "x"}
	egr := &field.Field{ID: 2, Name: "meta.x", Gress: field.Egress, Size: 8, Flags: field.Flexible | field.Bridged, BridgeName: "x"}
	require.NoError(t, db.Add(igr))
	require.NoError(t, db.Add(egr))

	pipe := &ir.Pipe{
		Name:    "pipe0",
		Ingress: &ir.Thread{Gress: field.Ingress},
		Egress:  &ir.Thread{Gress: field.Egress},
	}
	prog := &ir.Program{Pipes: []*ir.Pipe{pipe}}

	types := []ir.StructType{
		{Name: "bridge_meta_t", Members: []ir.StructMember{{Field: igr, Annotation: ir.FlexibleAnnotation}}},
		{Name: "egress_meta_t", Members: []ir.StructMember{{Field: egr, Annotation: ir.FlexibleAnnotation}}},
	}
	return prog, db, types
}

func TestCompileProducesMutuallyAlignedLayout(t *testing.T) {
	t.Parallel()

	prog, db, types := buildBridgedProgram(t)

	out, err := driver.Compile(driver.Input{
		Program: prog,
		Fields:  db,
		Types:   types,
	}, func() solver.Oracle { return solver.NewFakeOracle() })
	require.NoError(t, err)

	require.Len(t, out.Types, 2)
	require.Len(t, out.Types[0].Members, 1)
	require.Len(t, out.Types[1].Members, 1)
	assert.Equal(t, "meta.x", out.Types[0].Members[0].Field.Name)
	assert.Equal(t, "meta.x", out.Types[1].Members[0].Field.Name)

	bitOf := func(f *field.Field) uint32 {
		for _, c := range out.Layout.Containers {
			for _, p := range c.Fields {
				if p.Field == f {
					return p.Bit
				}
			}
		}
		t.Fatalf("field %s (id %d) not placed", f.Name, f.ID)
		return 0
	}
	assert.Equal(t, bitOf(out.Types[0].Members[0].Field), bitOf(out.Types[1].Members[0].Field),
		"bridged fields must land at the same bit offset")
}
