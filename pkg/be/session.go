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

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// Session is an incremental solver over the expressions of a manager.  Facts
// added to a session hold for every later call to Solve, whilst assumptions
// given to Solve hold for that call only.  Only the part of the graph not
// already loaded is translated into clauses on each call, hence a session
// pays off when a problem grows step by step.
type Session struct {
	manager *Manager
	solver  *gini.Gini
	// Marks nodes of the graph already loaded into the solver.
	marks []int8
}

// NewSession constructs an empty session over the expressions of this manager.
func (p *Manager) NewSession() *Session {
	return &Session{p, gini.New(), nil}
}

// Add asserts that the given expressions hold in every later solve.
func (p *Session) Add(exprs ...Expr) {
	p.load(exprs...)
	//
	for _, e := range exprs {
		p.solver.Add(e)
		p.solver.Add(z.LitNull)
	}
}

// Solve checks whether the facts of this session, along with the given
// assumptions, are satisfiable.  A model is returned if they are, which
// remains valid only until this session is next solved.  As for
// Manager.Solve, the search is stopped if the given context is cancelled.
func (p *Session) Solve(ctx context.Context, assumptions ...Expr) (Result, *Model, error) {
	p.load(assumptions...)
	p.solver.Assume(assumptions...)
	//
	result := waitForSolution(ctx, p.solver.GoSolve())
	//
	if result == UNKNOWN && ctx.Err() != nil {
		return UNKNOWN, nil, ctx.Err()
	} else if result != SAT {
		return result, nil, nil
	}
	//
	return SAT, &Model{p.manager, p.solver, nil}, nil
}

// Load the clauses for any part of the graph reachable from the given
// expressions which has not been loaded already.
func (p *Session) load(exprs ...Expr) {
	p.marks, _ = p.manager.circuit.CnfSince(p.solver, p.marks, exprs...)
}
