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
package bmc

import (
	"context"
	"fmt"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/util"
	log "github.com/sirupsen/logrus"
)

// InvarBaseStep constructs the base case of an inductive proof that a given
// (untimed) state property is invariant.  That is, I0 ⇒ P0 where I0 holds of
// the initial states at time 0 (and the state invariant), and P0 is the
// property at time 0.
func (p *Encoder) InvarBaseStep(prop be.Expr) be.Expr {
	initial := p.machine.Path(0)
	return p.manager.Implies(initial, p.encoding.UntimedToTimed(prop, 0))
}

// InvarInductiveStep constructs the inductive step of a proof that a given
// (untimed) state property is invariant.  That is, (P0 ∧ R01) ⇒ P1, where R01
// is the transition from time 0 to time 1 without the initial states.
func (p *Encoder) InvarInductiveStep(prop be.Expr) be.Expr {
	var (
		m      = p.manager
		before = p.encoding.UntimedToTimed(prop, 0)
		after  = p.encoding.UntimedToTimed(prop, 1)
	)
	//
	return m.Implies(m.And(before, p.machine.Unroll(0, 1)), after)
}

// InvarProblem constructs the problem of refuting an inductive proof that a
// given state property is invariant.  That is, the negation of the base case
// and the inductive step, which is unsatisfiable exactly when the property is
// an inductive invariant.
func (p *Encoder) InvarProblem(prop be.Expr) be.Expr {
	return p.manager.Not(p.manager.And(p.InvarBaseStep(prop), p.InvarInductiveStep(prop)))
}

// CheckInduction attempts to prove a state property is invariant by simple
// induction.  A violation of the base case is a counterexample of length 0.
// Otherwise the property is proved when the inductive step holds, and the
// outcome is unknown when it does not (i.e. the property may hold, but is not
// inductive).  The property must mention only state variables.
func (p *Checker) CheckInduction(ctx context.Context, prop be.Expr) (Result, error) {
	m := p.encoder.manager
	//
	if err := p.checkInvariant(prop); err != nil {
		return Result{Unknown, 0, nil}, err
	}
	// Base case
	result, model, err := m.Solve(ctx, m.Not(p.encoder.InvarBaseStep(prop)))
	//
	switch {
	case err != nil || result == be.UNKNOWN:
		return Result{Unknown, 0, nil}, err
	case result == be.SAT:
		return Result{Counterexample, 0, p.extractTrace(model, 0, NoLoopback)}, nil
	}
	// Inductive step
	result, _, err = m.Solve(ctx, m.Not(p.encoder.InvarInductiveStep(prop)))
	//
	switch {
	case err != nil:
		return Result{Unknown, 1, nil}, err
	case result == be.UNSAT:
		return Result{Proved, 1, nil}, nil
	}
	//
	return Result{Unknown, 1, nil}, nil
}

// CheckTemporalInduction attempts to prove or refute that a state property is
// invariant by temporal induction (Eén and Sörensson), using paths of length up
// to a given bound.  For each length k in turn, the base case looks for a path
// of length k from an initial state to a state violating the property, which
// is a counterexample.  The step looks for a path of length k+1 without
// repeated states, on which the property holds at all but the last state.  If
// there is none, then the property is proved.  Should neither succeed up to
// the bound, there is no counterexample up to that bound.  As for
// CheckInduction, the property must mention only state variables.
func (p *Checker) CheckTemporalInduction(ctx context.Context, prop be.Expr, bound int) (Result, error) {
	var (
		m        = p.encoder.manager
		encoding = p.encoder.encoding
		machine  = p.encoder.machine
	)
	//
	if bound < 0 {
		return Result{Unknown, 0, nil}, &ArgumentError{"bound", fmt.Sprintf("bound %d is negative", bound)}
	} else if err := p.checkInvariant(prop); err != nil {
		return Result{Unknown, 0, nil}, err
	}
	//
	for k := 0; k <= bound; k++ {
		stats := util.NewPerfStats()
		// Base case
		violated := m.Not(encoding.UntimedToTimed(prop, uint(k)))
		result, model, err := m.Solve(ctx, machine.Path(uint(k)), violated)
		//
		switch {
		case err != nil || result == be.UNKNOWN:
			return Result{Unknown, k, nil}, err
		case result == be.SAT:
			return Result{Counterexample, k, p.extractTrace(model, k, NoLoopback)}, nil
		}
		// Inductive step
		holds := encoding.UntimedToTimedAndInterval(prop, 0, uint(k))
		violated = m.Not(encoding.UntimedToTimed(prop, uint(k+1)))
		result, _, err = m.Solve(ctx, machine.Unroll(0, uint(k+1)), p.encoder.loopFree(k+1), holds, violated)
		//
		log.WithFields(log.Fields{"bound": k, "result": result}).Debug("solved inductive step")
		stats.Log(fmt.Sprintf("Temporal induction at bound %d", k))
		//
		switch {
		case err != nil || result == be.UNKNOWN:
			return Result{Unknown, k, nil}, err
		case result == be.UNSAT:
			return Result{Proved, k, nil}, nil
		}
	}
	//
	return Result{NoCounterexample, bound, nil}, nil
}

// Check a given property can be checked as an invariant.  Distinct states
// differ on state variables, so an invariant cannot also depend on inputs.
func (p *Checker) checkInvariant(prop be.Expr) error {
	if !p.encoder.encoding.IsStateExpr(prop) {
		return &ArgumentError{"invariant", "invariant mentions variables other than current state variables"}
	}
	//
	return nil
}

// Construct the condition that the states at times 0 to k are pairwise
// distinct.  That is, any two differ on at least one state variable.
func (p *Encoder) loopFree(k int) be.Expr {
	var (
		m      = p.manager
		result = m.Truth()
	)
	//
	for i := 0; i < k; i++ {
		for j := i + 1; j <= k; j++ {
			same, _ := p.LoopCondition(j, i)
			result = m.And(result, m.Not(same))
		}
	}
	//
	return result
}
