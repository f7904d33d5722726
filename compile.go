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

package flexpack

import (
	"github.com/google/uuid"

	"github.com/barefootnetworks/flexpack/driver"
	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/ir"
	"github.com/barefootnetworks/flexpack/pragma"
	"github.com/barefootnetworks/flexpack/solver"
	"github.com/barefootnetworks/flexpack/solver/z3oracle"
)

// Program bundles one compile's inputs: the program's typed IR, the field
// database it refers to, the struct types carrying `@flexible` members,
// the digest field lists, and the pa_* pragmas applying to it.
type Program struct {
	IR      *ir.Program
	Fields  *field.DB
	Types   []ir.StructType
	Digests []ir.DigestFieldList
	Pragmas []pragma.Pragma
}

// Result is a successfully compiled program: the run's id, for
// correlating it with debug logs, and the rewritten struct types and
// digest field lists.
type Result struct {
	RunID   uuid.UUID
	Types   []ir.StructType
	Digests []ir.DigestFieldList
}

// Compile runs bridge discovery, constraint synthesis, solving, and
// rewriting over p, using Z3 as the backing SMT oracle. See CompileWith to
// substitute a different oracle, e.g. the pure-Go reference oracle in
// tests.
func Compile(p Program, opts Options) (*Result, error) {
	return CompileWith(p, opts, func() solver.Oracle { return z3oracle.New() })
}

// CompileWith runs one compile exactly like Compile, constructing its
// Oracle with newOracle instead of assuming Z3.
func CompileWith(p Program, opts Options, newOracle driver.NewOracle) (*Result, error) {
	out, err := driver.Compile(driver.Input{
		Program: p.IR,
		Fields:  p.Fields,
		Types:   p.Types,
		Digests: p.Digests,
		Pragmas: p.Pragmas,
		Options: opts.toPragmaOptions(),
	}, newOracle)
	if err != nil {
		return nil, err
	}
	return &Result{
		RunID:   out.RunID,
		Types:   out.Types,
		Digests: out.Digests,
	}, nil
}
