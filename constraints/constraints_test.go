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

package constraints_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/barefootnetworks/flexpack/constraints"
	"github.com/barefootnetworks/flexpack/field"
)

func TestAddAlignmentMergesReasons(t *testing.T) {
	t.Parallel()

	bag := &constraints.Bag{}
	f := &field.Field{ID: 1, Name: "f"}

	bag.AddAlignment(f, 3, field.ReasonParserExtract)
	bag.AddAlignment(f, 3, field.ReasonMauInstruction)

	require := assert.New(t)
	require.Len(bag.Alignment, 1, "second call should merge into the existing constraint")
	require.Equal(uint8(3), f.Alignment.Bit)
	require.Equal(field.ReasonParserExtract|field.ReasonMauInstruction, f.Alignment.Reason)
}

func TestAddNoPackUpdatesDB(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	bag := &constraints.Bag{}
	a := &field.Field{ID: 1, Name: "a"}
	b := &field.Field{ID: 2, Name: "b"}

	bag.AddNoPack(db, a, b, constraints.ReasonLiveRangeOverlap)

	assert.True(t, db.NoPack.Has(1, 2))
	assert.Len(t, bag.NoPack, 1)
}

func TestAddSolitarySetsFlag(t *testing.T) {
	t.Parallel()

	bag := &constraints.Bag{}
	f := &field.Field{ID: 1, Name: "f"}

	bag.AddSolitary(f, field.ReasonChecksum)

	assert.True(t, f.Flags.Has(field.Solitary))
	assert.Equal(t, field.ReasonChecksum, f.SolitaryReason)
}

func TestBagPairsCoversEveryKind(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	bag := &constraints.Bag{}
	a := &field.Field{ID: 1, Name: "a"}
	b := &field.Field{ID: 2, Name: "b"}

	bag.AddMutualAlignment(a, b, field.ReasonBridgeMatch)
	bag.AddCopack(a, b)
	bag.AddNoPack(db, a, b, constraints.ReasonPragmaNoPack)
	bag.AddNoOverlap(a, b)

	var kinds []string
	for p := range bag.Pairs() {
		kinds = append(kinds, p.Kind)
	}
	assert.ElementsMatch(t, []string{"mutual-alignment", "copack", "no-pack", "no-overlap"}, kinds)
}
