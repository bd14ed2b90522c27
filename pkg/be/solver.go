// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package be

import (
	"context"
	"io"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
)

// Result captures the outcome of a satisfiability check.
type Result int

const (
	// UNSAT indicates the conjunction of the given expressions has no model.
	UNSAT Result = -1
	// UNKNOWN indicates the solver was stopped before reaching a verdict.
	UNKNOWN Result = 0
	// SAT indicates a model was found.
	SAT Result = 1
)

func (r Result) String() string {
	switch r {
	case SAT:
		return "sat"
	case UNSAT:
		return "unsat"
	default:
		return "unknown"
	}
}

// How often a running solver is polled for a result.
const pollInterval = 10 * time.Millisecond

// Model provides access to a satisfying assignment found by the solver.  A
// model found within a Session is only valid until that session is next
// solved.
type Model struct {
	manager *Manager
	solver  *gini.Gini
	// Values of every node in the graph, computed on demand by Eval.
	values []bool
}

// Value returns the value assigned to a given expression in this model.  Only
// variables (and constants) are meaningful here.  Variables which never made
// it into the solver (because no constraint mentions them) are unconstrained,
// and are reported as false.
func (p *Model) Value(expr Expr) bool {
	switch {
	case p.manager.IsTrue(expr):
		return true
	case p.manager.IsFalse(expr):
		return false
	case expr.Var() > p.solver.MaxVar():
		return !expr.IsPos()
	}
	//
	return p.solver.Value(expr)
}

// Eval evaluates an arbitrary expression under this model.  Unlike Value,
// this is meaningful for gates which never reached the solver, since it
// evaluates the graph from the values of its variables.  Hence, the result is
// always consistent with the values reported for variables.
func (p *Model) Eval(expr Expr) bool {
	if p.manager.IsConstant(expr) {
		return p.manager.IsTrue(expr)
	} else if int(expr.Var()) >= len(p.values) {
		p.evalAll()
	}
	//
	return p.values[expr.Var()] == expr.IsPos()
}

// Evaluate every node of the graph, starting from the variables.
func (p *Model) evalAll() {
	circuit := p.manager.circuit
	p.values = make([]bool, circuit.Len())
	// Variable 1 is shared by both constants
	p.values[circuit.T.Var()] = circuit.T.IsPos()
	//
	for i := 2; i < len(p.values); i++ {
		if ith := z.Var(i).Pos(); p.manager.IsVar(ith) {
			p.values[i] = p.Value(ith)
		}
	}
	//
	circuit.Eval(p.values)
}

// Solve checks whether the conjunction of the given expressions is
// satisfiable, returning a model if it is.  The search runs in its own
// goroutine and is stopped if the given context is cancelled, in which case
// the context's error is returned.
func (p *Manager) Solve(ctx context.Context, exprs ...Expr) (Result, *Model, error) {
	g := p.load(exprs...)
	//
	result := waitForSolution(ctx, g.GoSolve())
	//
	if result == UNKNOWN && ctx.Err() != nil {
		return UNKNOWN, nil, ctx.Err()
	} else if result != SAT {
		return result, nil, nil
	}
	//
	return SAT, &Model{p, g, nil}, nil
}

// Equivalent checks whether two expressions are logically equivalent, by
// checking their exclusive-or is unsatisfiable.  Identical expressions are
// trivially equivalent and do not reach the solver.
func (p *Manager) Equivalent(lhs, rhs Expr) bool {
	if lhs == rhs {
		return true
	}
	//
	result, _, err := p.Solve(context.Background(), p.Xor(lhs, rhs))
	//
	return err == nil && result == UNSAT
}

// WriteDimacs writes the clausal form of the conjunction of the given
// expressions in DIMACS format.  Variables are numbered as in the underlying
// graph, hence the mapping back to expressions is simply the identity on
// variable indices.
func (p *Manager) WriteDimacs(w io.Writer, exprs ...Expr) error {
	return p.load(exprs...).Write(w)
}

// Load the Tseitin encoding of the given expressions (and only the part of the
// graph reachable from them) into a fresh solver, asserting each expression as
// a unit clause.  Observe that the encoding pins the internal variable shared
// by both constants.
func (p *Manager) load(exprs ...Expr) *gini.Gini {
	g := gini.NewV(int(p.Size()))
	//
	p.circuit.ToCnfFrom(g, exprs...)
	//
	for _, e := range exprs {
		g.Add(e)
		g.Add(z.LitNull)
	}
	//
	return g
}

func waitForSolution(ctx context.Context, solve inter.Solve) Result {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	//
	for {
		select {
		case <-ctx.Done():
			return Result(solve.Stop())
		case <-ticker.C:
			if result, ok := solve.Test(); ok {
				return Result(result)
			}
		}
	}
}
