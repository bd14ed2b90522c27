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
	"testing"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/util/assert"
)

// Variable a toggles whilst b stays false.
const toggleInvarModel = `
(var a b)
(init (and (! a) (! b)))
(trans (and (== (next a) (! a)) (== (next b) b)))
(invarspec never_b (! b))
(invarspec never_a (! a))
(invarspec (or a (! a)))
`

// Variable a stays false and b copies it, so b is never true.  However, this
// cannot be shown from a single step, since a state where a holds but b does
// not leads to one where b holds.
const delayModel = `
(var a b)
(input i)
(init (and (! a) (! b)))
(trans (and (== (next a) a) (== (next b) a)))
(invarspec never_b (! b))
`

func Test_Invariant_01(t *testing.T) {
	checker, _ := newChecker(t, toggleInvarModel)
	m := checker.encoder.manager
	neverB := invariant(t, checker, "never_b")
	// Inductive invariant
	assert.False(t, isSatisfiable(t, m, checker.encoder.InvarProblem(neverB)))
	// Not inductive
	neverA := invariant(t, checker, "never_a")
	assert.True(t, isSatisfiable(t, m, checker.encoder.InvarProblem(neverA)))
	assert.False(t, isSatisfiable(t, m, m.Not(checker.encoder.InvarBaseStep(neverA))))
	assert.True(t, isSatisfiable(t, m, m.Not(checker.encoder.InvarInductiveStep(neverA))))
}

func Test_Invariant_02(t *testing.T) {
	checker, _ := newChecker(t, toggleInvarModel)
	//
	result, err := checker.CheckInduction(context.Background(), invariant(t, checker, "never_b"))
	assert.NoError(t, err)
	assert.Equal(t, Proved, result.Outcome)
	assert.True(t, result.Trace == nil)
	//
	result, err = checker.CheckInduction(context.Background(), invariant(t, checker, "invar_2"))
	assert.NoError(t, err)
	assert.Equal(t, Proved, result.Outcome)
	// Holds initially, but is not preserved
	result, err = checker.CheckInduction(context.Background(), invariant(t, checker, "never_a"))
	assert.NoError(t, err)
	assert.Equal(t, Unknown, result.Outcome)
}

func Test_Invariant_03(t *testing.T) {
	checker, _ := newChecker(t, toggleInvarModel)
	a := checker.encoder.encoding.Current(0)
	// Violated initially
	result, err := checker.CheckInduction(context.Background(), a)
	assert.NoError(t, err)
	assert.Equal(t, Counterexample, result.Outcome)
	assert.Equal(t, 0, result.Bound)
	checkTrace(t, result.Trace, NoLoopback, false)
	//
	result, err = checker.CheckTemporalInduction(context.Background(), a, 3)
	assert.NoError(t, err)
	assert.Equal(t, Counterexample, result.Outcome)
	assert.Equal(t, 0, result.Bound)
}

func Test_Invariant_04(t *testing.T) {
	checker, _ := newChecker(t, toggleInvarModel)
	result, err := checker.CheckTemporalInduction(context.Background(), invariant(t, checker, "never_a"), 3)
	// Reachable at step 1
	assert.NoError(t, err)
	assert.Equal(t, Counterexample, result.Outcome)
	assert.Equal(t, 1, result.Bound)
	checkTrace(t, result.Trace, NoLoopback, false, true)
}

func Test_Invariant_05(t *testing.T) {
	checker, _ := newChecker(t, delayModel)
	neverB := invariant(t, checker, "never_b")
	//
	result, err := checker.CheckInduction(context.Background(), neverB)
	assert.NoError(t, err)
	assert.Equal(t, Unknown, result.Outcome)
	// Two steps back suffice
	result, err = checker.CheckTemporalInduction(context.Background(), neverB, 3)
	assert.NoError(t, err)
	assert.Equal(t, Proved, result.Outcome)
	assert.Equal(t, 1, result.Bound)
}

func Test_Invariant_06(t *testing.T) {
	checker, _ := newChecker(t, delayModel)
	// Too short to prove anything
	result, err := checker.CheckTemporalInduction(context.Background(), invariant(t, checker, "never_b"), 0)
	assert.NoError(t, err)
	assert.Equal(t, NoCounterexample, result.Outcome)
	assert.Equal(t, 0, result.Bound)
}

func Test_Invariant_07(t *testing.T) {
	var argument *ArgumentError
	//
	checker, _ := newChecker(t, delayModel)
	encoding := checker.encoder.encoding
	input, _ := encoding.Lookup("i")
	a, _ := encoding.Lookup("a")
	//
	_, err := checker.CheckInduction(context.Background(), encoding.Current(input.Index()))
	assert.ErrorAs(t, err, &argument)
	_, err = checker.CheckTemporalInduction(context.Background(), encoding.Next(a.Index()), 2)
	assert.ErrorAs(t, err, &argument)
	_, err = checker.CheckTemporalInduction(context.Background(), invariant(t, checker, "never_b"), -1)
	assert.ErrorAs(t, err, &argument)
}

func invariant(t *testing.T, checker *Checker, name string) be.Expr {
	t.Helper()
	//
	for _, inv := range checker.encoder.machine.Invariants() {
		if inv.Name == name {
			return inv.Expr
		}
	}
	//
	t.Fatalf("unknown invariant %s", name)
	//
	return be.Expr(0)
}

func isSatisfiable(t *testing.T, m *be.Manager, expr be.Expr) bool {
	t.Helper()
	//
	result, _, err := m.Solve(context.Background(), expr)
	assert.NoError(t, err)
	//
	return result == be.SAT
}
