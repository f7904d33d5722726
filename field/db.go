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

package field

import (
	"fmt"
	"iter"

	"github.com/barefootnetworks/flexpack/internal/xsync"
)

// DB is the field database resource of §5: a single table of fields keyed
// by id, plus the no-pack symmetric matrix that downstream passes consult
// alongside the per-field flags. One DB is built per compile and is not
// safe for concurrent use, matching the driver's single-threaded contract.
type DB struct {
	byID   map[ID]*Field
	byName map[Gress]map[string]*Field
	order  []ID

	// NoPack is the symmetric no-pack relation: (a, b) present means a and
	// b must never share a container. Bag.AddNoPack mirrors every
	// NoPackConstraint into it during constraint synthesis (§4.2), for
	// passes downstream of this core; the solver itself reads the Bag's
	// NoPackConstraint records, not this matrix.
	NoPack *xsync.PairSet[ID]
}

// NewDB returns an empty field database.
func NewDB() *DB {
	return &DB{
		byID:   make(map[ID]*Field),
		byName: make(map[Gress]map[string]*Field),
		NoPack: xsync.NewPairSet(func(a, b ID) bool { return a < b }),
	}
}

// Add registers f in the database. It is an error to add two fields with
// the same id, or two fields with the same (gress, name).
func (db *DB) Add(f *Field) error {
	if _, ok := db.byID[f.ID]; ok {
		return fmt.Errorf("flexpack: duplicate field id %d (%s)", f.ID, f.Name)
	}
	names, ok := db.byName[f.Gress]
	if !ok {
		names = make(map[string]*Field)
		db.byName[f.Gress] = names
	}
	if _, ok := names[f.Name]; ok {
		return fmt.Errorf("flexpack: duplicate field name %q in %v", f.Name, f.Gress)
	}

	db.byID[f.ID] = f
	names[f.Name] = f
	db.order = append(db.order, f.ID)
	return nil
}

// ByID looks up a field by id.
func (db *DB) ByID(id ID) (*Field, bool) {
	f, ok := db.byID[id]
	return f, ok
}

// ByName looks up a field by gress and name.
func (db *DB) ByName(g Gress, name string) (*Field, bool) {
	f, ok := db.byName[g][name]
	return f, ok
}

// All iterates over every field, in the order it was added.
func (db *DB) All() iter.Seq[*Field] {
	return func(yield func(*Field) bool) {
		for _, id := range db.order {
			if !yield(db.byID[id]) {
				return
			}
		}
	}
}

// Flexible iterates over every field carrying the Flexible flag: the
// population that layout invention and the solver operate on.
func (db *DB) Flexible() iter.Seq[*Field] {
	return func(yield func(*Field) bool) {
		for f := range db.All() {
			if f.Flags.Has(Flexible) {
				if !yield(f) {
					return
				}
			}
		}
	}
}

// Len returns the number of fields in the database.
func (db *DB) Len() int { return len(db.order) }
