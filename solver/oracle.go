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

// Package solver wraps an external SMT bit-vector and optimization oracle
// behind the narrow [Oracle] interface (§4.3), translates a
// constraints.Bag into variables and assertions against it, and
// reconstructs a concrete layout from the model it returns (§4.4).
//
// The core package never imports an SMT binding directly; concrete oracles
// live in subpackages (solver/z3oracle) so that solver itself stays
// testable against the pure-Go reference oracle in fake.go.
package solver

import "fmt"

// Var is an opaque handle to an integer-domain variable declared against
// an Oracle. Its meaning (which field, which role) is tracked by Problem,
// not by the oracle itself.
type Var int

// Status is the result of one Oracle.Check call.
type Status uint8

const (
	Unknown Status = iota
	Sat
	Unsat
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Expr is a boolean expression over oracle variables, built with the
// constructors below and passed to Oracle.Assert or Oracle.AssertTracked.
type Expr interface{ isExpr() }

type eqExpr struct{ A, B Var }
type eqConstExpr struct {
	A Var
	C int
}
type notEqExpr struct{ A, B Var }
type orExpr struct{ Xs []Expr }
type andExpr struct{ Xs []Expr }
type leConstExpr struct {
	A Var
	C int
}
type geConstExpr struct {
	A Var
	C int
}
type geExpr struct {
	A, B Var
	C    int
}

func (eqExpr) isExpr()      {}
func (eqConstExpr) isExpr() {}
func (notEqExpr) isExpr()   {}
func (orExpr) isExpr()      {}
func (andExpr) isExpr()     {}
func (leConstExpr) isExpr() {}
func (geConstExpr) isExpr() {}
func (geExpr) isExpr()      {}

// Eq asserts that two variables take the same value.
func Eq(a, b Var) Expr { return eqExpr{a, b} }

// EqConst asserts that a variable takes a fixed value.
func EqConst(a Var, c int) Expr { return eqConstExpr{a, c} }

// NotEq asserts that two variables take different values.
func NotEq(a, b Var) Expr { return notEqExpr{a, b} }

// Or asserts that at least one sub-expression holds.
func Or(xs ...Expr) Expr { return orExpr{xs} }

// And asserts that every sub-expression holds.
func And(xs ...Expr) Expr { return andExpr{xs} }

// LeConst asserts that a variable is at most a fixed value.
func LeConst(a Var, c int) Expr { return leConstExpr{a, c} }

// GeConst asserts that a variable is at least a fixed value.
func GeConst(a Var, c int) Expr { return geConstExpr{a, c} }

// Ge asserts that a is at least b+c, i.e. a-b >= c. This is the one
// arithmetic primitive the solver needs to relate a pair of bit offsets to a
// field size: Or(Ge(b, a, sizeA), Ge(a, b, sizeB)) says the two ranges
// [a, a+sizeA) and [b, b+sizeB) do not overlap.
func Ge(a, b Var, c int) Expr { return geExpr{a, b, c} }

func (e eqExpr) String() string      { return fmt.Sprintf("v%d == v%d", e.A, e.B) }
func (e eqConstExpr) String() string { return fmt.Sprintf("v%d == %d", e.A, e.C) }
func (e notEqExpr) String() string   { return fmt.Sprintf("v%d != v%d", e.A, e.B) }
func (e leConstExpr) String() string { return fmt.Sprintf("v%d <= %d", e.A, e.C) }
func (e geConstExpr) String() string { return fmt.Sprintf("v%d >= %d", e.A, e.C) }
func (e geExpr) String() string      { return fmt.Sprintf("v%d - v%d >= %d", e.A, e.B, e.C) }

// Visitor decomposes an Expr tree into a caller-supplied result type T,
// letting a concrete Oracle implementation (which cannot type-switch on
// this package's unexported Expr node types) translate every Expr into its
// own representation through one exported entry point, Visit.
type Visitor[T any] struct {
	Eq      func(a, b Var) T
	EqConst func(a Var, c int) T
	NotEq   func(a, b Var) T
	Or      func(xs []T) T
	And     func(xs []T) T
	LeConst func(a Var, c int) T
	GeConst func(a Var, c int) T
	Ge      func(a, b Var, c int) T
}

// Visit walks e, dispatching each node to the matching Visitor field.
func Visit[T any](e Expr, v Visitor[T]) T {
	switch e := e.(type) {
	case eqExpr:
		return v.Eq(e.A, e.B)
	case eqConstExpr:
		return v.EqConst(e.A, e.C)
	case notEqExpr:
		return v.NotEq(e.A, e.B)
	case orExpr:
		xs := make([]T, len(e.Xs))
		for i, x := range e.Xs {
			xs[i] = Visit(x, v)
		}
		return v.Or(xs)
	case andExpr:
		xs := make([]T, len(e.Xs))
		for i, x := range e.Xs {
			xs[i] = Visit(x, v)
		}
		return v.And(xs)
	case leConstExpr:
		return v.LeConst(e.A, e.C)
	case geConstExpr:
		return v.GeConst(e.A, e.C)
	case geExpr:
		return v.Ge(e.A, e.B, e.C)
	default:
		var zero T
		return zero
	}
}

// Oracle is the narrow interface this package requires of an SMT bit-vector
// and optimization backend. A concrete implementation (solver/z3oracle)
// adapts a real solver to it; FakeOracle in this package implements it
// directly in Go for small problems and tests.
type Oracle interface {
	// IntVar declares an integer variable ranging over [lo, hi).
	IntVar(name string, lo, hi int) Var
	// Assert records an untracked assertion.
	Assert(e Expr)
	// AssertTracked records an assertion associated with name, so that a
	// later UnsatCore call can report it by name if it participates in an
	// unsatisfiable conjunction.
	AssertTracked(name string, e Expr)
	// Minimize adds v to the objective to minimize. Oracles that do not
	// support optimization may treat this as a no-op and return the first
	// satisfying model found.
	Minimize(v Var)
	// Push saves the current assertion stack.
	Push()
	// Pop restores the assertion stack to the last Push.
	Pop()
	// Check solves the current assertion set.
	Check() (Status, error)
	// Value returns v's value in the last satisfying model. Only valid
	// after Check returns Sat.
	Value(v Var) int
	// UnsatCore returns the names passed to AssertTracked that
	// participated in the last unsatisfiable Check.
	UnsatCore() []string
	// Close releases any resources held by the oracle.
	Close()
}
