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

package pragma

import "github.com/barefootnetworks/flexpack/field"

// AliasSet resolves pa_alias chains and compiler-introduced aliases (§6,
// supplement C.6) to one canonical field per equivalence class, so that
// collection only ever has to reason about canonical fields and rewriting
// knows which names must be substituted for which.
//
// A plain union-find over field ids, rather than a graph walk per query,
// since alias chains are short (almost always length one) but queried
// repeatedly during both collection and rewrite.
type AliasSet struct {
	parent map[field.ID]field.ID
	// canon maps a dest field id to the field its whole-field alias points
	// at; partial (sliced) aliases are neither recorded here nor merged
	// into the union-find, since they do not make the two fields
	// interchangeable.
	canon map[field.ID]*field.Field
}

// NewAliasSet returns an empty alias set.
func NewAliasSet() *AliasSet {
	return &AliasSet{
		parent: make(map[field.ID]field.ID),
		canon:  make(map[field.ID]*field.Field),
	}
}

func (a *AliasSet) find(id field.ID) field.ID {
	p, ok := a.parent[id]
	if !ok {
		return id
	}
	root := a.find(p)
	a.parent[id] = root
	return root
}

// Add records that dest aliases source, provided the alias is whole-field
// (source.Whole()); a sliced alias is ignored entirely, neither recorded
// nor merged into an equivalence class, since the solver must still place
// dest's non-aliased bits independently.
func (a *AliasSet) Add(dest *field.Field, source field.Slice) {
	if !source.Whole() {
		return
	}
	a.canon[dest.ID] = source.Field
	da, sa := a.find(dest.ID), a.find(source.Field.ID)
	if da == sa {
		return
	}
	a.parent[da] = sa
}

// Canonical returns the representative field for f's alias class. If f was
// never aliased, f itself is canonical.
func (a *AliasSet) Canonical(f *field.Field) field.ID {
	return a.find(f.ID)
}

// SameClass reports whether two fields are in the same alias class.
func (a *AliasSet) SameClass(x, y *field.Field) bool {
	return a.find(x.ID) == a.find(y.ID)
}
