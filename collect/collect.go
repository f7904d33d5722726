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

package collect

import (
	"github.com/barefootnetworks/flexpack/constraints"
	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/ir"
)

// Input bundles everything one Collect call needs: the field database
// being synthesized against, every pipe in the compile (bridge discovery
// is global, since bridged and gress-twin fields may originate in a
// different physical pipe than the one that consumes them in a folded
// pipeline), and the struct types and digest lists whose members the
// copack, struct-scope, and digest rules read.
type Input struct {
	DB      *field.DB
	Pipes   []*ir.Pipe
	Types   []ir.StructType
	Digests []ir.DigestFieldList
}

// Result is everything downstream of collection needs: the constraint bag
// for the solver, and the bridge pairs that both mutual-alignment synthesis
// and the driver's cross-pipe ordering (§4.6) consume.
type Result struct {
	Bag          *constraints.Bag
	BridgePairs  []BridgePair
	RelatedGraph *RelatedGraph
}

// Collect runs bridge discovery and constraint synthesis across every pipe
// of one compile, producing the bag the solver will consume. It is the
// single entry point the driver calls once per compile (§4.6); the field
// database it synthesizes against is itself the one shared, single-owned
// resource of §5.
func Collect(in Input) Result {
	bag := &constraints.Bag{}

	pairs := IngressBridgeAliases(in.DB)
	var actions []*ir.Action
	var deparsers []*ir.Deparser

	for _, pipe := range in.Pipes {
		if pipe.Ingress != nil && pipe.Egress != nil &&
			pipe.Ingress.Parser != nil && pipe.Egress.Parser != nil {
			pairs = append(pairs, ParserExtractPairs(pipe.Ingress.Parser, pipe.Egress.Parser)...)
		}
		for _, th := range []*ir.Thread{pipe.Ingress, pipe.Egress} {
			if th == nil {
				continue
			}
			actions = append(actions, th.Actions...)
			if th.Deparser != nil {
				deparsers = append(deparsers, th.Deparser)
			}
			synthesizeAlignment(bag, th)
		}
	}

	graph := BuildRelatedGraph(actions, pairs)

	synthesizeMutualAlignment(bag, pairs)
	synthesizeALUPropagation(bag, graph, in.DB)
	synthesizeALUNoPack(bag, in.DB, actions)
	synthesizeSolitary(bag, actions)
	pragmaSolitary(bag, in.DB)
	synthesizeNoSplit(bag, actions)
	for _, dep := range deparsers {
		synthesizeDeparsedToTM(bag, dep)
	}
	synthesizeDigest(bag, in.Digests)
	synthesizeCopack(bag, in.Types)
	synthesizeStructScope(bag, in.DB, in.Types)

	return Result{Bag: bag, BridgePairs: pairs, RelatedGraph: graph}
}
