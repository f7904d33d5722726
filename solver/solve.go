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

package solver

import (
	"fmt"
	"strings"

	"github.com/barefootnetworks/flexpack/constraints"
	"github.com/barefootnetworks/flexpack/field"
)

// UnsatError reports that no layout satisfies the hard constraints, naming
// the tracked assertions the oracle's unsat core implicated.
type UnsatError struct {
	Core []string
}

func (e *UnsatError) Error() string {
	return fmt.Sprintf("flexpack: no layout satisfies: %s", strings.Join(e.Core, ", "))
}

func isCopack(name string) bool { return strings.HasPrefix(name, "copack:") }

// hasOnlyCopack reports whether every name in core is a copack assertion,
// the only kind Solve is permitted to drop under pressure.
func hasOnlyCopack(core []string) bool {
	if len(core) == 0 {
		return false
	}
	for _, n := range core {
		if !isCopack(n) {
			return false
		}
	}
	return true
}

// Solve builds and solves a Problem against o. If the hard constraints
// together with the copack hints are unsatisfiable, Solve drops every
// copack hint at once (the whole copack frame, not only the hints the unsat
// core names) and retries once with the hard constraints alone (§4.3's
// conflict pruning: copack is the only advisory constraint kind). Hints are
// not checked field by field, so one conflicting hint also discards the
// compatible ones. An unsat result with no copack hints, or on the retry,
// is reported as an UnsatError.
func Solve(o Oracle, db *field.DB, bag *constraints.Bag, sizes []uint32) (*Layout, error) {
	p, err := Build(o, db, bag, sizes)
	if err != nil {
		return nil, err
	}

	status, err := o.Check()
	if err != nil {
		return nil, err
	}
	switch status {
	case Sat:
		return reconstruct(p, o, sizes)
	case Unsat:
		core := o.UnsatCore()
		if !p.copackPushed {
			return nil, &UnsatError{Core: core}
		}

		// Drop the copack frame and retry once with only the hard
		// constraints in force.
		o.Pop()
		status, err := o.Check()
		if err != nil {
			return nil, err
		}
		if status != Sat {
			return nil, &UnsatError{Core: o.UnsatCore()}
		}
		return reconstruct(p, o, sizes)
	default:
		return nil, fmt.Errorf("flexpack: solver returned unknown status")
	}
}
