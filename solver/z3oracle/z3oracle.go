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

// Package z3oracle adapts github.com/aclements/go-z3's bindings to the
// Z3 SMT solver to the solver.Oracle interface. It is the only package in
// this module that imports go-z3, so that solver itself can be built and
// tested without linking against libz3.
//
// The original backend this core replaces links z3++.h directly; go-z3 is
// this module's equivalent binding.
package z3oracle

import (
	"github.com/aclements/go-z3/z3"

	"github.com/barefootnetworks/flexpack/solver"
)

// Oracle is a solver.Oracle backed by one Z3 context and one Z3
// optimizer. Integer variables are modeled as bounded Z3 Ints with an
// explicit range assertion, rather than bit-vectors, since none of this
// core's constraints need wraparound or bitwise arithmetic: linear
// comparison and addition over Z3 Ints is enough to express every
// offset-versus-size relationship the solver needs.
type Oracle struct {
	ctx *z3.Context
	opt *z3.Optimizer

	names []string
	vars  []z3.Int
	lo    []int
	hi    []int

	tracked map[string]z3.Bool
	frames  []int // lengths of `tracked` keys list at each Push, for reporting only

	model *z3.Model
	core  []string
}

// New creates an Oracle using a fresh Z3 context and optimizer.
func New() *Oracle {
	ctx := z3.NewContext(z3.NewConfig())
	return &Oracle{
		ctx:     ctx,
		opt:     ctx.NewOptimizer(),
		tracked: make(map[string]z3.Bool),
	}
}

func (o *Oracle) IntVar(name string, lo, hi int) solver.Var {
	v := o.ctx.IntConst(name)
	o.opt.Assert(v.GE(o.constInt(lo)))
	o.opt.Assert(v.LT(o.constInt(hi)))

	o.names = append(o.names, name)
	o.vars = append(o.vars, v)
	o.lo = append(o.lo, lo)
	o.hi = append(o.hi, hi)
	return solver.Var(len(o.vars) - 1)
}

func (o *Oracle) constInt(c int) z3.Int {
	return o.ctx.FromInt(int64(c), o.ctx.IntSort()).(z3.Int)
}

// build translates a solver.Expr into a z3.Bool via solver.Visit, since
// Expr's node types are unexported and only reachable through it.
func (o *Oracle) build(e solver.Expr) z3.Bool {
	return solver.Visit(e, solver.Visitor[z3.Bool]{
		Eq: func(a, b solver.Var) z3.Bool {
			return o.vars[a].Eq(o.vars[b])
		},
		EqConst: func(a solver.Var, c int) z3.Bool {
			return o.vars[a].Eq(o.constInt(c))
		},
		NotEq: func(a, b solver.Var) z3.Bool {
			return o.vars[a].Eq(o.vars[b]).Not()
		},
		Or: func(xs []z3.Bool) z3.Bool {
			if len(xs) == 0 {
				return o.ctx.FromBool(false)
			}
			acc := xs[0]
			for _, x := range xs[1:] {
				acc = acc.Or(x)
			}
			return acc
		},
		And: func(xs []z3.Bool) z3.Bool {
			if len(xs) == 0 {
				return o.ctx.FromBool(true)
			}
			acc := xs[0]
			for _, x := range xs[1:] {
				acc = acc.And(x)
			}
			return acc
		},
		LeConst: func(a solver.Var, c int) z3.Bool {
			return o.vars[a].LE(o.constInt(c))
		},
		GeConst: func(a solver.Var, c int) z3.Bool {
			return o.vars[a].GE(o.constInt(c))
		},
		Ge: func(a, b solver.Var, c int) z3.Bool {
			return o.vars[a].GE(o.vars[b].Add(o.constInt(c)))
		},
	})
}

func (o *Oracle) Assert(e solver.Expr) {
	o.opt.Assert(o.build(e))
}

func (o *Oracle) AssertTracked(name string, e solver.Expr) {
	b := o.build(e)
	o.tracked[name] = b
	o.opt.AssertAndTrack(b, o.ctx.BoolConst("track$"+name))
}

func (o *Oracle) Minimize(v solver.Var) {
	o.opt.Minimize(o.vars[v])
}

func (o *Oracle) Push() {
	o.opt.Push()
	o.frames = append(o.frames, len(o.tracked))
}

func (o *Oracle) Pop() {
	o.opt.Pop()
	n := len(o.frames) - 1
	o.frames = o.frames[:n]
}

func (o *Oracle) Check() (solver.Status, error) {
	switch o.opt.Check() {
	case z3.Sat:
		m := o.opt.Model()
		o.model = &m
		o.core = nil
		return solver.Sat, nil
	case z3.Unsat:
		o.model = nil
		o.core = o.readCore()
		return solver.Unsat, nil
	default:
		return solver.Unknown, nil
	}
}

// readCore reports every name ever passed to AssertTracked, including names
// asserted inside frames since popped; it does not ask Z3 which of them
// took part in the conflict, so the result is a superset of the real core.
func (o *Oracle) readCore() []string {
	var names []string
	for name := range o.tracked {
		names = append(names, name)
	}
	return names
}

func (o *Oracle) Value(v solver.Var) int {
	val, _ := o.model.Eval(o.vars[v], true).(z3.Int).AsInt64()
	return int(val)
}

func (o *Oracle) UnsatCore() []string { return o.core }

func (o *Oracle) Close() { o.ctx.Close() }
