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

package driver

import (
	"fmt"
	"iter"

	"github.com/barefootnetworks/flexpack/collect"
	"github.com/barefootnetworks/flexpack/field"
	"github.com/barefootnetworks/flexpack/internal/scc"
	"github.com/barefootnetworks/flexpack/ir"
)

const rootPipe = "\x00root"

// pipeOwners maps a field id to the name of the pipe whose parser
// extracted it, used to turn a bridge pair into an edge between two
// physical pipes.
func pipeOwners(pipes []*ir.Pipe) map[field.ID]string {
	owners := make(map[field.ID]string)
	mark := func(name string, th *ir.Thread) {
		if th == nil || th.Parser == nil {
			return
		}
		for _, st := range th.Parser.States {
			for _, ex := range st.Extracts {
				owners[ex.Dest.Field.ID] = name
			}
		}
	}
	for _, p := range pipes {
		mark(p.Name, p.Ingress)
		mark(p.Name, p.Egress)
	}
	return owners
}

// orderPipes returns every pipe name in a topological order consistent
// with the dependency a bridge pair implies (the pipe receiving bridged
// metadata depends on the pipe that produced it), using [scc.Sort] to
// detect genuine cross-pipe cycles, which this core rejects: a folded
// pipeline's bridging must still form a DAG across its physical pipes, per
// the present spec's treatment of cross-pipe conflicts as errors.
func orderPipes(pipes []*ir.Pipe, pairs []collect.BridgePair) ([]string, error) {
	owners := pipeOwners(pipes)

	edges := make(map[string]map[string]bool)
	addEdge := func(from, to string) {
		if from == "" || to == "" || from == to {
			return
		}
		if edges[from] == nil {
			edges[from] = make(map[string]bool)
		}
		edges[from][to] = true
	}
	for _, p := range pairs {
		addEdge(owners[p.Ingress.ID], owners[p.Egress.ID])
	}

	names := make([]string, 0, len(pipes))
	for _, p := range pipes {
		names = append(names, p.Name)
	}

	graph := func(n string) iter.Seq[string] {
		return func(yield func(string) bool) {
			if n == rootPipe {
				for _, name := range names {
					if !yield(name) {
						return
					}
				}
				return
			}
			for dep := range edges[n] {
				if !yield(dep) {
					return
				}
			}
		}
	}

	dag := scc.Sort(rootPipe, graph)
	var order []string
	for c := range dag.Topological() {
		members := c.Members()
		if len(members) > 1 {
			return nil, fmt.Errorf("flexpack: cross-pipe bridging cycle among %v", members)
		}
		name := members[0]
		if name == rootPipe {
			continue
		}
		order = append(order, name)
	}
	return order, nil
}
