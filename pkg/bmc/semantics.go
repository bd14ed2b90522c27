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
	"fmt"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/ltl"
)

// BoundedSemantics encodes a formula on any path of length bound, starting at
// a given offset on the global timeline.  That is, either the path has no loop
// and the formula holds on it, or the path loops back to some l < bound and
// the formula holds on that loop:
//
//	[[f]]_k  ∨  ⋁_{l<k} (L(k,l) ∧ fair(k,l) ∧ l[[f]]_k)
//
// The formula is first put into negation normal form, since the encoding of a
// path without a loop under-approximates the formula and so cannot be negated.
// When fairness is requested and the machine has fairness obligations, only
// fair paths count.  Since a path without a loop is never fair, the first
// disjunct is then dropped.
func (p *Encoder) BoundedSemantics(f *ltl.Formula, bound, offset int, fairness bool) (be.Expr, error) {
	if err := checkSemantics(bound, AllLoopbacks, offset); err != nil {
		return p.manager.Falsity(), err
	}
	//
	return p.allLoops(p.table.NNF(f), bound, offset, fairness)
}

// BoundedSemanticsWithLoop encodes a formula on the paths of length bound
// identified by a given loop specification.  For AllLoopbacks this is the same
// as BoundedSemantics, whilst for NoLoopback only paths without a loop are
// considered.  Otherwise, only paths looping back to the given (possibly
// relative) loop are considered, where the loop must lie strictly before the
// bound.
func (p *Encoder) BoundedSemanticsWithLoop(f *ltl.Formula, bound int, loop Loop, offset int,
	fairness bool) (be.Expr, error) {
	//
	if err := checkSemantics(bound, loop, offset); err != nil {
		return p.manager.Falsity(), err
	}
	//
	return p.semantics(p.table.NNF(f), bound, loop, offset, fairness)
}

// Problem constructs the bounded model checking problem for a given formula.
// That is, an expression which is satisfiable exactly when the machine has a
// path of length bound (of the kind identified by loop) which violates the
// formula.  Any satisfying assignment thus gives a counterexample.  Fairness is
// always taken into account.
func (p *Encoder) Problem(f *ltl.Formula, bound int, loop Loop) (be.Expr, error) {
	violation, err := p.Violation(f, bound, loop)
	//
	if err != nil {
		return violation, err
	}
	//
	return p.manager.And(p.machine.Path(uint(bound)), violation), nil
}

// Violation encodes the negation of a formula on the fair paths of length
// bound identified by a given loop.  This is the problem without the paths of
// the machine.
func (p *Encoder) Violation(f *ltl.Formula, bound int, loop Loop) (be.Expr, error) {
	if err := checkSemantics(bound, loop, 0); err != nil {
		return p.manager.Falsity(), err
	}
	//
	return p.semantics(p.table.Negate(f), bound, loop, 0, true)
}

// Encode a formula in negation normal form for a given loop specification.
func (p *Encoder) semantics(f *ltl.Formula, bound int, loop Loop, offset int, fairness bool) (be.Expr, error) {
	switch {
	case loop.IsAllLoopbacks():
		return p.allLoops(f, bound, offset, fairness)
	case loop.IsNoLoopback():
		return p.straight(f, bound, offset, fairness)
	default:
		return p.loopy(f, bound, loop.Absolute(bound), offset, fairness)
	}
}

// Encode a formula in negation normal form on every path, with or without a
// loop.
func (p *Encoder) allLoops(f *ltl.Formula, bound, offset int, fairness bool) (be.Expr, error) {
	straight, err := p.straight(f, bound, offset, fairness)
	if err != nil {
		return straight, err
	}
	//
	loops := p.manager.Falsity()
	//
	for l := 0; l < bound; l++ {
		ith, err := p.loopy(f, bound, Loop(l), offset, fairness)
		if err != nil {
			return ith, err
		}
		//
		loops = p.manager.Or(loops, ith)
	}
	//
	return p.manager.Or(straight, loops), nil
}

// Encode a formula on paths without a loop.
func (p *Encoder) straight(f *ltl.Formula, bound, offset int, fairness bool) (be.Expr, error) {
	if fairness && len(p.machine.Fairness()) > 0 {
		return p.FairnessConstraint(bound, NoLoopback)
	}
	//
	return p.EncodeNoLoop(f, 0, bound, offset)
}

// Encode a formula on paths with a given (absolute) loop.
func (p *Encoder) loopy(f *ltl.Formula, bound int, loop Loop, offset int, fairness bool) (be.Expr, error) {
	m := p.manager
	//
	cond, err := p.LoopCondition(offset+bound, offset+int(loop))
	if err != nil {
		return cond, err
	}
	//
	fair := m.Truth()
	//
	if fairness {
		if fair, err = p.FairnessConstraint(offset+bound, Loop(offset)+loop); err != nil {
			return fair, err
		}
	}
	//
	sem, err := p.EncodeWithLoop(f, 0, bound, loop, offset)
	if err != nil {
		return sem, err
	}
	//
	return m.And(cond, m.And(fair, sem)), nil
}

// Check the arguments of the bounded semantics make sense together.  Beyond
// their consistency, a single loop must lie strictly before the bound since
// otherwise the state at the bound is never constrained.
func checkSemantics(bound int, loop Loop, offset int) error {
	if err := CheckConsistency(bound, loop); err != nil {
		return err
	} else if offset < 0 {
		return &ArgumentError{"offset", fmt.Sprintf("offset %d is negative", offset)}
	} else if l := loop.Absolute(bound); loop.IsSingle() && int(l) >= bound {
		return &ArgumentError{"loop", fmt.Sprintf("loop %s outside of [0,%d)", loop, bound)}
	}
	//
	return nil
}
