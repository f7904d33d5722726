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

package pragma_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/pragma"
)

func TestAliasSetChaining(t *testing.T) {
	t.Parallel()

	a := &field.Field{ID: 1, Name: "a", Size: 8}
	b := &field.Field{ID: 2, Name: "b", Size: 8}
	c := &field.Field{ID: 3, Name: "c", Size: 8}

	set := pragma.NewAliasSet()
	set.Add(b, field.Slice{Field: a, Lo: 0, Hi: 8})
	set.Add(c, field.Slice{Field: b, Lo: 0, Hi: 8})

	assert.Equal(t, a.ID, set.Canonical(c))
	assert.True(t, set.SameClass(a, c))
}

func TestAliasSetIgnoresPartialAliases(t *testing.T) {
	t.Parallel()

	a := &field.Field{ID: 1, Name: "a", Size: 16}
	b := &field.Field{ID: 2, Name: "b", Size: 8}

	set := pragma.NewAliasSet()
	set.Add(b, field.Slice{Field: a, Lo: 0, Hi: 8})

	assert.False(t, set.SameClass(a, b), "a partial alias should not merge equivalence classes")
}

func TestApplyContainerSize(t *testing.T) {
	t.Parallel()

	f := &field.Field{ID: 1, Name: "a"}
	r := pragma.Resolved{
		Pragma: pragma.Pragma{Kind: pragma.ContainerSize, Int: []int{16}},
		Fields: []*field.Field{f},
	}
	require := assert.New(t)
	require.NoError(pragma.Apply(nil, r))
	require.Equal(uint32(16), f.ContainerSizeHint)
}

func TestApplySolitary(t *testing.T) {
	t.Parallel()

	f := &field.Field{ID: 1, Name: "a"}
	r := pragma.Resolved{
		Pragma: pragma.Pragma{Kind: pragma.Solitary},
		Fields: []*field.Field{f},
	}
	assert.NoError(t, pragma.Apply(nil, r))
	assert.True(t, f.Flags.Has(field.Solitary))
}
