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

package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barefootnetworks/flexpack/field"
)

func TestDBAddAndLookup(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	f1 := &field.Field{ID: 1, Name: "a", Gress: field.Ingress, Size: 8}
	f2 := &field.Field{ID: 2, Name: "b", Gress: field.Ingress, Size: 16, Flags: field.Flexible}

	require.NoError(t, db.Add(f1))
	require.NoError(t, db.Add(f2))

	got, ok := db.ByID(1)
	require.True(t, ok)
	assert.Same(t, f1, got)

	got, ok = db.ByName(field.Ingress, "b")
	require.True(t, ok)
	assert.Same(t, f2, got)

	_, ok = db.ByName(field.Egress, "b")
	assert.False(t, ok, "same name in a different gress should not resolve")

	var names []string
	for f := range db.Flexible() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"b"}, names)
	assert.Equal(t, 2, db.Len())
}

func TestDBRejectsDuplicates(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	require.NoError(t, db.Add(&field.Field{ID: 1, Name: "a", Gress: field.Ingress}))

	err := db.Add(&field.Field{ID: 1, Name: "other"})
	assert.Error(t, err, "duplicate id")

	err = db.Add(&field.Field{ID: 2, Name: "a", Gress: field.Ingress})
	assert.Error(t, err, "duplicate (gress, name)")
}

func TestNoPackMatrixIsSymmetric(t *testing.T) {
	t.Parallel()

	db := field.NewDB()
	db.NoPack.Add(1, 2)
	assert.True(t, db.NoPack.Has(1, 2))
	assert.True(t, db.NoPack.Has(2, 1))
	assert.False(t, db.NoPack.Has(1, 3))
}
