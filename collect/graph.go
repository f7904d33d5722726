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
	"iter"

	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/ir"
)

// RelatedGraph is the related-fields graph of §4.2: edges record that two
// fields carry the same bits, directly (an ALU move) or by convention
// (a bridge pair, a gress twin). R(f), R_down(f), and R_up(f) are all
// walks over this graph.
type RelatedGraph struct {
	movedFrom map[field.ID][]field.ID // f -> fields f was moved from, directly
	movedTo   map[field.ID][]field.ID // inverse of movedFrom
	sibling   map[field.ID][]field.ID // bridge/twin edges, symmetric
}

// BuildRelatedGraph scans every action for whole-field move instructions
// and combines them with the bridge and gress-twin pairs already
// discovered, producing one graph collection synthesis walks over.
func BuildRelatedGraph(actions []*ir.Action, pairs ...[]BridgePair) *RelatedGraph {
	g := &RelatedGraph{
		movedFrom: make(map[field.ID][]field.ID),
		movedTo:   make(map[field.ID][]field.ID),
		sibling:   make(map[field.ID][]field.ID),
	}

	for _, act := range actions {
		for _, instr := range act.Instructions {
			if !instr.IsMove || !instr.Dest.Whole() || len(instr.Sources) != 1 {
				continue
			}
			src := instr.Sources[0]
			if src.Kind != ir.FieldOperand || !src.Slice.Whole() {
				continue
			}
			d, s := instr.Dest.Field.ID, src.Slice.Field.ID
			g.movedFrom[d] = append(g.movedFrom[d], s)
			g.movedTo[s] = append(g.movedTo[s], d)
		}
	}

	for _, set := range pairs {
		for _, p := range set {
			a, b := p.Ingress.ID, p.Egress.ID
			g.sibling[a] = append(g.sibling[a], b)
			g.sibling[b] = append(g.sibling[b], a)
		}
	}

	return g
}

func bfs(start field.ID, next func(field.ID) []field.ID) iter.Seq[field.ID] {
	return func(yield func(field.ID) bool) {
		seen := map[field.ID]bool{start: true}
		queue := []field.ID{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, n := range next(cur) {
				if seen[n] {
					continue
				}
				seen[n] = true
				if !yield(n) {
					return
				}
				queue = append(queue, n)
			}
		}
	}
}

// Down returns R_down(f): every field transitively moved-from f, i.e. the
// fields whose values f was ultimately computed from by pure moves. Used
// to project a downstream alignment requirement back onto its parser-time
// origin.
func (g *RelatedGraph) Down(f field.ID) iter.Seq[field.ID] {
	return bfs(f, func(id field.ID) []field.ID { return g.movedFrom[id] })
}

// Up returns R_up(f): every field transitively moved-to from f.
func (g *RelatedGraph) Up(f field.ID) iter.Seq[field.ID] {
	return bfs(f, func(id field.ID) []field.ID { return g.movedTo[id] })
}

// All returns R(f): the full related set, following move edges in both
// directions plus bridge/gress-twin sibling edges.
func (g *RelatedGraph) All(f field.ID) iter.Seq[field.ID] {
	return bfs(f, func(id field.ID) []field.ID {
		return append(append(append([]field.ID{}, g.movedFrom[id]...), g.movedTo[id]...), g.sibling[id]...)
	})
}
