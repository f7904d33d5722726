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

// Package pragma parses and applies the pa_* annotation grammar of §6: the
// user-facing controls laid directly on top of constraint synthesis,
// rather than inferred from program structure.
package pragma

import (
	"fmt"

	"github.com/barefootnetworks/flexpack/field"
)

// Kind names one of the pa_* pragmas this core recognizes.
type Kind string

const (
	Alias             Kind = "pa_alias"
	NoOverlay         Kind = "pa_no_overlay"
	MutuallyExclusive Kind = "pa_mutually_exclusive"
	ContainerSize     Kind = "pa_container_size"
	ContainerType     Kind = "pa_container_type"
	NoInit            Kind = "pa_no_init"
	Solitary          Kind = "pa_solitary"
	Atomic            Kind = "pa_atomic"
	NoPack            Kind = "pa_no_pack"
	BytePack          Kind = "pa_byte_pack"
	DeparserZero      Kind = "pa_deparser_zero"
	DeparserZeroRange Kind = "pa_deparser_zero_range"
)

// Pragma is one parsed annotation, bound to its gress and argument fields.
// Args holds field names exactly as written; Resolve looks these up as
// *field.Field once the field database is built, since pragmas may be
// parsed before or interleaved with field discovery.
type Pragma struct {
	Kind  Kind
	Gress field.Gress
	Args  []string
	// Int, when the pragma takes a numeric argument (pa_container_size,
	// pa_deparser_zero's range bounds), holds it.
	Int []int
}

// Options bundles every pragma for one compile, plus the options that
// change collection/solving behavior globally rather than per-field (the
// YAML-configurable knobs of the ambient stack).
type Options struct {
	Pragmas []Pragma

	// MaxContainerBits caps the container sizes the solver may choose from
	// (defaults to {8, 16, 32} when empty).
	MaxContainerBits []uint32

	// DisableCopack turns every CopackConstraint into an unenforced hint
	// that is never even offered to the solver, for comparing layouts with
	// and without copacking.
	DisableCopack bool
}

// DefaultContainerSizes is the target's three supported PHV container
// widths.
var DefaultContainerSizes = []uint32{8, 16, 32}

// ContainerSizes returns o.MaxContainerBits, or DefaultContainerSizes if
// unset.
func (o *Options) ContainerSizes() []uint32 {
	if len(o.MaxContainerBits) > 0 {
		return o.MaxContainerBits
	}
	return DefaultContainerSizes
}

// Resolved is a Pragma with its field-name arguments looked up against a
// field.DB, produced by Resolve.
type Resolved struct {
	Pragma
	Fields []*field.Field
}

// Resolve looks up every argument field name of p against db, returning an
// error naming the first unresolvable reference.
func Resolve(db *field.DB, p Pragma) (Resolved, error) {
	r := Resolved{Pragma: p, Fields: make([]*field.Field, 0, len(p.Args))}
	for _, name := range p.Args {
		f, ok := db.ByName(p.Gress, name)
		if !ok {
			return Resolved{}, fmt.Errorf("flexpack: %s: unknown field %q in %v", p.Kind, name, p.Gress)
		}
		r.Fields = append(r.Fields, f)
	}
	return r, nil
}

// Apply applies the per-field effects of a resolved pragma directly to the
// field database: flag bits, alignment hints, and container-size hints
// that constraint synthesis (§4.2) will later read back. The pa_alias,
// pa_mutually_exclusive, pa_container_type, pa_no_pack, pa_deparser_zero,
// and pa_deparser_zero_range kinds are accepted without error but have no
// effect: Apply leaves their fields unchanged, and no other package reads
// these pragmas.
func Apply(db *field.DB, r Resolved) error {
	switch r.Kind {
	case NoOverlay:
		for _, f := range r.Fields {
			f.Flags &^= field.Overlayable
		}
	case ContainerSize:
		if len(r.Int) != 1 {
			return fmt.Errorf("flexpack: %s: expected one size argument", r.Kind)
		}
		for _, f := range r.Fields {
			f.ContainerSizeHint = uint32(r.Int[0])
		}
	case NoInit:
		for _, f := range r.Fields {
			f.SolitaryReason |= field.ReasonClearOnWrite
		}
	case Solitary:
		for _, f := range r.Fields {
			f.Flags |= field.Solitary
			f.SolitaryReason |= field.ReasonPragmaSolitary
		}
	case Atomic:
		for _, f := range r.Fields {
			f.Flags |= field.NoSplit
		}
	case BytePack:
		for _, f := range r.Fields {
			if f.Alignment == nil {
				f.Alignment = &field.Alignment{Reason: field.ReasonPaBytePack}
			} else {
				f.Alignment.Reason |= field.ReasonPaBytePack
			}
		}
	case Alias, MutuallyExclusive, ContainerType, NoPack, DeparserZero, DeparserZeroRange:
		// Accepted; these kinds change nothing.
	default:
		return fmt.Errorf("flexpack: unrecognized pragma %q", r.Kind)
	}
	return nil
}
