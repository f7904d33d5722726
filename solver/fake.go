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

// FakeOracle is a pure-Go, exhaustive-search reference implementation of
// Oracle, for testing constraint translation and layout reconstruction
// without a real SMT dependency. It does not scale past the small
// problems table tests build, but it agrees with any correct SMT backend
// on every instance it can finish.
type FakeOracle struct {
	names   []string
	domains [][2]int
	values  []int

	tracked map[string]Expr
	frames  []frame

	asserts []Expr
	track   []trackedAssert
	minimize []Var

	core []string
}

type trackedAssert struct {
	name string
	e    Expr
}

type frame struct {
	numVars   int
	numAssert int
	numTrack  int
}

// NewFakeOracle returns an empty FakeOracle.
func NewFakeOracle() *FakeOracle {
	return &FakeOracle{tracked: make(map[string]Expr)}
}

func (o *FakeOracle) IntVar(name string, lo, hi int) Var {
	o.names = append(o.names, name)
	o.domains = append(o.domains, [2]int{lo, hi})
	o.values = append(o.values, lo)
	return Var(len(o.names) - 1)
}

func (o *FakeOracle) Assert(e Expr) { o.asserts = append(o.asserts, e) }

func (o *FakeOracle) AssertTracked(name string, e Expr) {
	o.track = append(o.track, trackedAssert{name, e})
}

func (o *FakeOracle) Minimize(v Var) { o.minimize = append(o.minimize, v) }

func (o *FakeOracle) Push() {
	o.frames = append(o.frames, frame{len(o.names), len(o.asserts), len(o.track)})
}

func (o *FakeOracle) Pop() {
	n := len(o.frames) - 1
	f := o.frames[n]
	o.frames = o.frames[:n]
	o.names = o.names[:f.numVars]
	o.domains = o.domains[:f.numVars]
	o.values = o.values[:f.numVars]
	o.asserts = o.asserts[:f.numAssert]
	o.track = o.track[:f.numTrack]
}

func (o *FakeOracle) eval(e Expr) bool {
	switch e := e.(type) {
	case eqExpr:
		return o.values[e.A] == o.values[e.B]
	case eqConstExpr:
		return o.values[e.A] == e.C
	case notEqExpr:
		return o.values[e.A] != o.values[e.B]
	case orExpr:
		for _, x := range e.Xs {
			if o.eval(x) {
				return true
			}
		}
		return false
	case andExpr:
		for _, x := range e.Xs {
			if !o.eval(x) {
				return false
			}
		}
		return true
	case leConstExpr:
		return o.values[e.A] <= e.C
	case geConstExpr:
		return o.values[e.A] >= e.C
	case geExpr:
		return o.values[e.A]-o.values[e.B] >= e.C
	default:
		return false
	}
}

func (o *FakeOracle) allSatisfied() bool {
	for _, e := range o.asserts {
		if !o.eval(e) {
			return false
		}
	}
	for _, t := range o.track {
		if !o.eval(t.e) {
			return false
		}
	}
	return true
}

// objective returns the current value of every Minimize'd variable, in the
// order Minimize was called. Objectives are compared lexicographically, so
// the container indices, minimized first, dominate the offsets, which act
// as a tie-break toward the lowest bits.
func (o *FakeOracle) objective() []int {
	obj := make([]int, len(o.minimize))
	for i, v := range o.minimize {
		obj[i] = o.values[v]
	}
	return obj
}

func lexLess(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Check performs a depth-first search over every variable's domain,
// keeping the lexicographically lowest-objective satisfying assignment
// found. This is exponential in the number of variables and is only meant
// for the small problems unit tests build.
func (o *FakeOracle) Check() (Status, error) {
	best := (*[]int)(nil)
	var bestObj []int
	cur := make([]int, len(o.values))

	var rec func(i int)
	rec = func(i int) {
		if i == len(cur) {
			if !o.copyEvalOK(cur) {
				return
			}
			copy(o.values, cur)
			obj := o.objective()
			if best == nil || lexLess(obj, bestObj) {
				snap := append([]int(nil), cur...)
				best = &snap
				bestObj = obj
			}
			return
		}
		lo, hi := o.domains[i][0], o.domains[i][1]
		for v := lo; v < hi; v++ {
			cur[i] = v
			rec(i + 1)
		}
	}
	rec(0)

	if best == nil {
		o.core = o.computeCore()
		return Unsat, nil
	}
	copy(o.values, *best)
	o.core = nil
	return Sat, nil
}

func (o *FakeOracle) copyEvalOK(cur []int) bool {
	saved := o.values
	o.values = cur
	ok := o.allSatisfied()
	o.values = saved
	return ok
}

// computeCore returns the name of every tracked assertion. Unlike a real
// SMT backend, FakeOracle does not minimize the core: it reports every
// tracked constraint as a conservative (non-minimal) superset, which is
// enough for conflict-pruning logic that just wants to know "did this name
// participate at all".
func (o *FakeOracle) computeCore() []string {
	names := make([]string, 0, len(o.track))
	for _, t := range o.track {
		names = append(names, t.name)
	}
	return names
}

func (o *FakeOracle) Value(v Var) int { return o.values[v] }

func (o *FakeOracle) UnsatCore() []string { return o.core }

func (o *FakeOracle) Close() {}
