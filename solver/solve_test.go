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

package solver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barefootnetworks/flexpack/constraints"
	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/solver"
)

func flexField(id field.ID, name string, size uint32) *field.Field {
	return &field.Field{ID: id, Name: name, Size: size, Flags: field.Flexible}
}

func TestSolveTwoNoPackFieldsLandInDifferentContainers(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	a := flexField(1, "a", 8)
	b := flexField(2, "b", 8)
	require.NoError(t, db.Add(a))
	require.NoError(t, db.Add(b))

	bag := &constraints.Bag{}
	bag.AddNoPack(db, a, b, constraints.ReasonLiveRangeOverlap)

	o := solver.NewFakeOracle()
	defer o.Close()
	layout, err := solver.Solve(o, db, bag, []uint32{8, 16, 32})
	require.NoError(t, err)

	containerOf := func(name string) int {
		for i, c := range layout.Containers {
			for _, p := range c.Fields {
				if p.Field.Name == name {
					return i
				}
			}
		}
		t.Fatalf("field %s not placed", name)
		return -1
	}
	assert.NotEqual(t, containerOf("a"), containerOf("b"))
}

func TestSolveCopackIsDroppedUnderConflict(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	a := flexField(1, "a", 8)
	b := flexField(2, "b", 8)
	require.NoError(t, db.Add(a))
	require.NoError(t, db.Add(b))

	bag := &constraints.Bag{}
	bag.AddCopack(a, b)
	bag.AddNoPack(db, a, b, constraints.ReasonLiveRangeOverlap)

	o := solver.NewFakeOracle()
	defer o.Close()
	_, err := solver.Solve(o, db, bag, []uint32{8, 16, 32})
	assert.NoError(t, err, "a conflicting copack hint must not block an otherwise-satisfiable layout")
}

func TestSolveCopackFieldsDoNotOverlap(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	a := flexField(1, "a", 8)
	b := flexField(2, "b", 8)
	require.NoError(t, db.Add(a))
	require.NoError(t, db.Add(b))

	bag := &constraints.Bag{}
	bag.AddCopack(a, b)

	o := solver.NewFakeOracle()
	defer o.Close()
	layout, err := solver.Solve(o, db, bag, []uint32{8, 16, 32})
	require.NoError(t, err)

	require.Len(t, layout.Containers, 1, "a must-pack hint should land both fields in one container")
	fields := layout.Containers[0].Fields
	require.Len(t, fields, 2)

	lo, hi := fields[1], fields[0]
	if lo.Bit > hi.Bit {
		lo, hi = hi, lo
	}
	assert.GreaterOrEqual(t, hi.Bit, lo.Bit+lo.Field.Size, "copacked fields must not occupy overlapping bits")
	assert.Equal(t, uint32(0), lo.Bit, "the objective should settle the pair at the lowest bits available")
}

func TestSolveNoSplitPinsToContainerSize(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	a := flexField(1, "a", 8)
	require.NoError(t, db.Add(a))

	bag := &constraints.Bag{}
	bag.AddNoSplit(a, 8)

	o := solver.NewFakeOracle()
	defer o.Close()
	layout, err := solver.Solve(o, db, bag, []uint32{8, 16, 32})
	require.NoError(t, err)
	require.Len(t, layout.Containers, 1)
	assert.Equal(t, uint32(8), layout.Containers[0].Size)
}

func TestSolveDeparsedToTMStaysWithinByte(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	a := flexField(1, "a", 4)
	require.NoError(t, db.Add(a))

	bag := &constraints.Bag{}
	bag.AddDeparsedToTM(a)

	o := solver.NewFakeOracle()
	defer o.Close()
	layout, err := solver.Solve(o, db, bag, []uint32{16})
	require.NoError(t, err)
	require.Len(t, layout.Containers, 1)

	bit := layout.Containers[0].Fields[0].Bit
	assert.Zero(t, bit%8, "a field read by the traffic manager must stay within one byte")
}

func TestSolveAlignmentIsHonored(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	a := flexField(1, "a", 8)
	require.NoError(t, db.Add(a))

	bag := &constraints.Bag{}
	bag.AddAlignment(a, 0, field.ReasonParserExtract)

	o := solver.NewFakeOracle()
	defer o.Close()
	layout, err := solver.Solve(o, db, bag, []uint32{8})
	require.NoError(t, err)
	require.Len(t, layout.Containers, 1)
	assert.Equal(t, uint32(0), layout.Containers[0].Fields[0].Bit)
}
