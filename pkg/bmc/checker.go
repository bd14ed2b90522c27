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
	"github.com/consensys/go-bmc/pkg/ltl"
	"github.com/consensys/go-bmc/pkg/util"
	log "github.com/sirupsen/logrus"
)

// Outcome summarises the result of checking a property.
type Outcome uint8

const (
	// NoCounterexample indicates no violation was found up to the bound.
	NoCounterexample Outcome = iota
	// Counterexample indicates a violating path was found.
	Counterexample
	// Unknown indicates checking was abandoned (e.g. on cancellation), or
	// could not reach a conclusion.
	Unknown
	// Proved indicates the property holds on every path, whatever its length.
	Proved
)

func (o Outcome) String() string {
	switch o {
	case NoCounterexample:
		return "no counterexample"
	case Counterexample:
		return "counterexample"
	case Proved:
		return "proved"
	default:
		return "unknown"
	}
}

// Result describes the outcome of checking a property.
type Result struct {
	Outcome Outcome
	// Length of the counterexample, or the largest length checked.
	Bound int
	// Counterexample (if any)
	Trace *Trace
}

// Checker checks properties of a machine by searching for bounded
// counterexamples of increasing length.
type Checker struct {
	encoder *Encoder
}

// NewChecker constructs a checker which uses a given encoder.
func NewChecker(encoder *Encoder) *Checker {
	return &Checker{encoder}
}

// Solves the violation of a property on paths of length k.
type solveFn func(k int, violation be.Expr) (be.Result, *be.Model, error)

// Check searches for a counterexample to a given formula.  Unless oneProblem
// holds, paths of every length from 0 up to the bound are tried in turn,
// stopping at the first counterexample found.  Otherwise, only paths whose
// length is exactly the bound are tried.  The loop restricts the shape of
// paths considered, where relative loops are taken relative to each length in
// turn.  Lengths for which a single loop makes no sense (i.e. it does not lie
// strictly before the length) are skipped.
func (p *Checker) Check(ctx context.Context, f *ltl.Formula, bound int, loop Loop, oneProblem bool) (Result, error) {
	manager := p.encoder.manager
	//
	return p.check(ctx, f, bound, loop, oneProblem, func(k int, violation be.Expr) (be.Result, *be.Model, error) {
		return manager.Solve(ctx, p.encoder.machine.Path(uint(k)), violation)
	})
}

// CheckIncremental is as Check, except that a single solver is used across
// all lengths.  The unrolling of the machine is added to the solver one step at
// a time, whilst the violation for each length is only assumed.  Hence, work
// done by the solver for shorter paths is retained for longer paths.
func (p *Checker) CheckIncremental(ctx context.Context, f *ltl.Formula, bound int, loop Loop,
	oneProblem bool) (Result, error) {
	var (
		machine  = p.encoder.machine
		session  = p.encoder.manager.NewSession()
		unrolled = 0
	)
	//
	session.Add(machine.Path(0))
	//
	return p.check(ctx, f, bound, loop, oneProblem, func(k int, violation be.Expr) (be.Result, *be.Model, error) {
		for ; unrolled < k; unrolled++ {
			session.Add(machine.Unroll(uint(unrolled), uint(unrolled+1)))
		}
		//
		return session.Solve(ctx, violation)
	})
}

func (p *Checker) check(ctx context.Context, f *ltl.Formula, bound int, loop Loop, oneProblem bool,
	solve solveFn) (Result, error) {
	//
	if err := CheckConsistency(bound, loop); err != nil {
		return Result{Unknown, 0, nil}, err
	} else if f.IsPast() {
		return Result{Unknown, 0, nil}, fmt.Errorf("cannot check %s: %w", f, &UnsupportedOperatorError{f})
	}
	//
	first := 0
	if oneProblem {
		first = bound
	}
	//
	for k := first; k <= bound; k++ {
		stats := util.NewPerfStats()
		//
		if l := loop.Absolute(k); loop.IsSingle() && (l < 0 || int(l) >= k) {
			log.WithFields(log.Fields{"bound": k, "loop": loop}).Debug("skipping infeasible loop")
			continue
		}
		//
		violation, err := p.encoder.Violation(f, k, loop)
		if err != nil {
			return Result{Unknown, k, nil}, err
		}
		//
		result, model, err := solve(k, violation)
		//
		log.WithFields(log.Fields{"bound": k, "loop": loop, "result": result}).Debug("solved problem")
		stats.Log(fmt.Sprintf("Checking bound %d", k))
		//
		switch {
		case err != nil:
			return Result{Unknown, k, nil}, err
		case result == be.SAT:
			witness, err := p.witnessedLoop(model, f, k, loop)
			if err != nil {
				return Result{Unknown, k, nil}, err
			}
			//
			return Result{Counterexample, k, p.extractTrace(model, k, witness)}, nil
		case result == be.UNKNOWN:
			return Result{Unknown, k, nil}, nil
		}
	}
	//
	return Result{NoCounterexample, bound, nil}, nil
}

// Determine the loop of the path of length k on which a given model violates
// a formula.  When all loops were considered, this is the first disjunct of the
// violation which holds in the model, where paths without a loop are preferred.
func (p *Checker) witnessedLoop(model *be.Model, f *ltl.Formula, k int, loop Loop) (Loop, error) {
	if !loop.IsAllLoopbacks() {
		return loop.Absolute(k), nil
	}
	//
	violation := p.encoder.table.Negate(f)
	//
	if straight, err := p.encoder.straight(violation, k, 0, true); err != nil {
		return NoLoopback, err
	} else if model.Eval(straight) {
		return NoLoopback, nil
	}
	//
	for l := 0; l < k; l++ {
		ith, err := p.encoder.loopy(violation, k, Loop(l), 0, true)
		//
		if err != nil {
			return NoLoopback, err
		} else if model.Eval(ith) {
			return Loop(l), nil
		}
	}
	// Unreachable for a model of the violation
	return NoLoopback, nil
}

// Extract the path of length k from a given model.
func (p *Checker) extractTrace(model *be.Model, k int, loopback Loop) *Trace {
	encoding := p.encoder.encoding
	vars := encoding.Vars()
	states := make([][]bool, k+1)
	//
	for t := range states {
		states[t] = make([]bool, len(vars))
		//
		for i, v := range vars {
			states[t][i] = model.Eval(encoding.IndexToTimed(v.Index(), uint(t)))
		}
	}
	//
	return newTrace(vars, states, loopback)
}
