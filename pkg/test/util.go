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
package test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/bmc"
	"github.com/consensys/go-bmc/pkg/fsm"
	"github.com/consensys/go-bmc/pkg/ltl"
	"github.com/consensys/go-bmc/pkg/util/source"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the model files (lisp) are found.
const TestDir = "../../testdata"

// MAX_BOUND determines the maximum length of paths explored when checking
// properties.
const MAX_BOUND = 6

// Check that every property of a given model has the expected outcome.
// Properties whose names start with "holds" must have no counterexample up to
// the maximum bound, whilst those whose names start with "fails" must have
// one.  Restricting the loops considered can only lose counterexamples, hence
// a failing property need only be violated when all loops are considered.
// Invariants are named likewise, and are checked by temporal induction.
// Every counterexample found is replayed against its problem to check it is
// genuine.
func Check(t *testing.T, test string) {
	// Enable testing each model in parallel
	t.Parallel()
	//
	table := ltl.NewTable()
	machine := readModel(t, fmt.Sprintf("%s/%s.lisp", TestDir, test), table)
	// Sanity check at least one property found.
	if len(machine.Specs()) == 0 && len(machine.Invariants()) == 0 {
		panic(fmt.Sprintf("missing any properties for %s", test))
	}
	//
	for _, spec := range machine.Specs() {
		for _, loop := range []bmc.Loop{bmc.AllLoopbacks, bmc.NoLoopback, bmc.Loop(-1)} {
			checkSpec(t, test, machine, table, spec, loop, false)
		}
		//
		checkSpec(t, test, machine, table, spec, bmc.AllLoopbacks, true)
	}
	//
	for _, inv := range machine.Invariants() {
		checkInvariant(t, test, machine, table, inv)
	}
}

// CheckInvalid checks that reading a given model fails.
func CheckInvalid(t *testing.T, test string) {
	filename := fmt.Sprintf("%s/%s.lisp", TestDir, test)
	srcfile, err := source.ReadFile(filename)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	_, _, errs := fsm.ReadModel(srcfile, ltl.NewTable(), be.NewManager())
	//
	if len(errs) == 0 {
		t.Errorf("Model accepted incorrectly (%s)", test)
	}
}

func checkSpec(t *testing.T, test string, machine *fsm.Machine, table *ltl.Table, spec fsm.Spec, loop bmc.Loop,
	incremental bool) {
	var (
		holds   = strings.HasPrefix(spec.Name, "holds")
		encoder = bmc.NewEncoder(machine, table)
		checker = bmc.NewChecker(encoder)
		result  bmc.Result
		err     error
	)
	//
	defer encoder.Close()
	//
	if incremental {
		result, err = checker.CheckIncremental(context.Background(), spec.Formula, MAX_BOUND, loop, false)
	} else {
		result, err = checker.Check(context.Background(), spec.Formula, MAX_BOUND, loop, false)
	}
	//
	switch {
	case err != nil:
		t.Errorf("Checking failed (%s, %s, loop %s): %s", test, spec.Name, loop, err)
	case result.Outcome == bmc.Counterexample && holds:
		t.Errorf("Property violated incorrectly (%s, %s, loop %s, length %d)", test, spec.Name, loop, result.Bound)
	case result.Outcome == bmc.NoCounterexample && !holds && loop.IsAllLoopbacks():
		t.Errorf("Property satisfied incorrectly (%s, %s, loop %s)", test, spec.Name, loop)
	case result.Outcome == bmc.Counterexample:
		problem, err := encoder.Problem(spec.Formula, result.Bound, result.Trace.Loopback())
		if err != nil {
			t.Errorf("Replay failed (%s, %s): %s", test, spec.Name, err)
			return
		}
		//
		replayTrace(t, test, encoder, spec.Name, result, problem)
	}
}

func checkInvariant(t *testing.T, test string, machine *fsm.Machine, table *ltl.Table, inv fsm.Invariant) {
	var (
		holds    = strings.HasPrefix(inv.Name, "holds")
		encoder  = bmc.NewEncoder(machine, table)
		checker  = bmc.NewChecker(encoder)
		encoding = machine.Encoding()
	)
	//
	defer encoder.Close()
	//
	result, err := checker.CheckTemporalInduction(context.Background(), inv.Expr, MAX_BOUND)
	//
	switch {
	case err != nil:
		t.Errorf("Checking failed (%s, %s): %s", test, inv.Name, err)
	case result.Outcome == bmc.Counterexample && holds:
		t.Errorf("Invariant violated incorrectly (%s, %s, length %d)", test, inv.Name, result.Bound)
	case result.Outcome != bmc.Counterexample && !holds:
		t.Errorf("Invariant satisfied incorrectly (%s, %s)", test, inv.Name)
	case result.Outcome == bmc.Counterexample:
		bound := uint(result.Bound)
		violated := encoding.Manager().Not(encoding.UntimedToTimed(inv.Expr, bound))
		problem := encoding.Manager().And(machine.Path(bound), violated)
		//
		replayTrace(t, test, encoder, inv.Name, result, problem)
	}
}

// Check a counterexample is genuine, by fixing every variable of the problem to
// its value in the trace and checking the problem remains satisfiable.
func replayTrace(t *testing.T, test string, encoder *bmc.Encoder, name string, result bmc.Result, problem be.Expr) {
	var (
		encoding   = encoder.Machine().Encoding()
		manager    = encoding.Manager()
		trace      = result.Trace
		assignment []be.Expr
	)
	//
	for step := uint(0); step < trace.Len(); step++ {
		for _, v := range trace.Vars() {
			value := encoding.IndexToTimed(v.Index(), step)
			//
			if !trace.Value(step, v) {
				value = manager.Not(value)
			}
			//
			assignment = append(assignment, value)
		}
	}
	//
	outcome, _, err := manager.Solve(context.Background(), append(assignment, problem)...)
	//
	if err != nil || outcome != be.SAT {
		t.Errorf("Counterexample is not genuine (%s, %s, length %d, loop %s)", test, name, result.Bound,
			trace.Loopback())
	}
}

func readModel(t *testing.T, filename string, table *ltl.Table) *fsm.Machine {
	srcfile, err := source.ReadFile(filename)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	machine, _, errs := fsm.ReadModel(srcfile, table, be.NewManager())
	//
	if len(errs) > 0 {
		t.Fatalf("Reading model failed (%s): %s", filename, errs[0].Error())
	}
	//
	return machine
}
