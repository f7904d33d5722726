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

// Package driver orchestrates one compile end to end (§4.6): apply
// pragmas, collect constraints, solve, and rewrite, producing a synthetic
// run id for every invocation so that debug logs and error messages from
// one compile can be correlated across the three phases.
package driver

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/barefootnetworks/flexpack/collect"
	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/internal/debug"
	"github.com/barefootnetworks/flexpack/internal/errs"
	"github.com/barefootnetworks/flexpack/ir"
	"github.com/barefootnetworks/flexpack/pragma"
	"github.com/barefootnetworks/flexpack/rewrite"
	"github.com/barefootnetworks/flexpack/solver"
)

// Input bundles the whole typed program one Compile call processes.
type Input struct {
	Program *ir.Program
	Fields  *field.DB
	Types   []ir.StructType
	Digests []ir.DigestFieldList
	Pragmas []pragma.Pragma
	Options *pragma.Options
}

// Output is the result of one successful compile: the solved layout, for
// callers that want it directly, and the rewritten struct types and
// digest field lists ready to splice back into the program.
type Output struct {
	RunID   uuid.UUID
	Layout  *solver.Layout
	Types   []ir.StructType
	Digests []ir.DigestFieldList
}

// NewOracle constructs a fresh solver.Oracle for one Compile call. Callers
// typically close over solver/z3oracle.New; tests close over
// solver.NewFakeOracle.
type NewOracle func() solver.Oracle

// Compile runs the three phases of bridged/flexible header packing over
// in, in program order: collection reads the program IR without mutating
// it, solving consumes the resulting constraint bag in isolation, and
// rewriting builds fresh StructType and DigestFieldList values rather than
// editing in's in place, so that a failed compile never leaves partially
// rewritten state visible to the caller.
func Compile(in Input, newOracle NewOracle) (*Output, error) {
	runID := uuid.New()
	ctx := []any{"run %s", runID.String()}

	// Every pragma is resolved and applied even after one fails, so a
	// program with several bad pa_* annotations reports all of them in one
	// compile rather than one fix-and-recompile cycle at a time.
	var sink errs.Sink
	for _, p := range in.Pragmas {
		r, err := pragma.Resolve(in.Fields, p)
		if err != nil {
			sink.Add(err)
			continue
		}
		sink.Add(pragma.Apply(in.Fields, r))
	}
	if sink.Len() > 0 {
		return nil, fmt.Errorf("flexpack: run %s: %w", runID, sink.Err())
	}

	opts := in.Options
	if opts == nil {
		opts = &pragma.Options{}
	}

	res := collect.Collect(collect.Input{
		DB:      in.Fields,
		Pipes:   in.Program.Pipes,
		Types:   in.Types,
		Digests: in.Digests,
	})
	debug.Log(ctx, "collect", "%d constraints over %d bridge pairs", res.Bag.Len(), len(res.BridgePairs))

	if _, err := orderPipes(in.Program.Pipes, res.BridgePairs); err != nil {
		return nil, fmt.Errorf("flexpack: run %s: %w", runID, err)
	}

	if opts.DisableCopack {
		res.Bag.Copack = nil
	}

	o := newOracle()
	defer o.Close()
	layout, err := solver.Solve(o, in.Fields, res.Bag, opts.ContainerSizes())
	if err != nil {
		return nil, fmt.Errorf("flexpack: run %s: %w", runID, err)
	}
	debug.Log(ctx, "solve", "%d containers", len(layout.Containers))

	pad := rewrite.NewPaddingCounter(nextFieldID(in.Fields))

	rewrittenTypes := make([]ir.StructType, len(in.Types))
	for i, t := range in.Types {
		nt, err := rewrite.RepackStruct(t, layout, pad, gressOf(t))
		if err != nil {
			return nil, fmt.Errorf("flexpack: run %s: %w", runID, err)
		}
		rewrittenTypes[i] = rewrite.PadFixedSizeHeader(nt, pad, gressOf(t))
	}

	byID := placementOrder(layout)
	rewrittenDigests := make([]ir.DigestFieldList, len(in.Digests))
	for i, d := range in.Digests {
		rewrittenDigests[i] = rewrite.ReorderDigest(d, byID)
	}
	debug.Log(ctx, "rewrite", "%d struct types, %d digest lists", len(rewrittenTypes), len(rewrittenDigests))

	return &Output{
		RunID:   runID,
		Layout:  layout,
		Types:   rewrittenTypes,
		Digests: rewrittenDigests,
	}, nil
}

// nextFieldID returns one past the highest field id in db, the base a
// PaddingCounter should start allocating synthetic ids from.
func nextFieldID(db *field.DB) field.ID {
	max := field.ID(-1)
	for f := range db.All() {
		if f.ID > max {
			max = f.ID
		}
	}
	return max + 1
}

// gressOf returns the gress of t's first member, used to tag any padding
// synthesized for t; a struct with no members has no gress-sensitive
// padding to produce.
func gressOf(t ir.StructType) field.Gress {
	if len(t.Members) == 0 {
		return field.Ingress
	}
	return t.Members[0].Field.Gress
}

// placementOrder returns each field's position in the solved layout,
// scanning every container from first to last and MSB to LSB within each,
// the global order ReorderDigest uses to resolve a digest list's new field
// order.
func placementOrder(layout *solver.Layout) map[field.ID]int {
	order := make(map[field.ID]int)
	i := 0
	for _, c := range layout.Containers {
		for _, p := range c.Fields {
			order[p.Field.ID] = i
			i++
		}
	}
	return order
}
