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
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/bmc"
	"github.com/consensys/go-bmc/pkg/fsm"
	"github.com/consensys/go-bmc/pkg/ltl"
	"github.com/consensys/go-bmc/pkg/util/assert"
	"github.com/consensys/go-bmc/pkg/util/source"
	"github.com/spf13/pflag"
)

const toggleModel = `
(var a)
(init (! a))
(trans (== (next a) (! a)))
(ltlspec never_a (G (! a)))
(ltlspec toggles (G (F a)))
`

const freeModel = `
(var a)
(init (! a))
`

const invarModel = `
(var a)
(init (! a))
(trans (== (next a) (! a)))
(invarspec never_a (! a))
(invarspec trivial (or a (! a)))
`

// ===================================================================
// Configuration
// ===================================================================

func Test_Config_01(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	//
	assert.NoError(t, err)
	assert.Equal(t, DefaultBound, cfg.Bound)
	assert.Equal(t, DefaultLoop, cfg.Loop)
	assert.Equal(t, "auto", cfg.Colour)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.False(t, cfg.OneProblem)
	assert.False(t, cfg.Incremental)
	assert.Equal(t, DefaultMethod, cfg.Method)
}

func Test_Config_02(t *testing.T) {
	filename := writeConfig(t, "bound: 5\nloop: -1\ntimeout: 2s\none_problem: true\n")
	cfg, err := LoadConfig(filename, nil)
	//
	assert.NoError(t, err)
	assert.Equal(t, 5, cfg.Bound)
	assert.Equal(t, "-1", cfg.Loop)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.True(t, cfg.OneProblem)
	//
	loop, err := cfg.LoopSpec()
	assert.NoError(t, err)
	assert.Equal(t, bmc.Loop(-1), loop)
}

func Test_Config_03(t *testing.T) {
	filename := writeConfig(t, "bound: 5\n")
	t.Setenv("BMC_BOUND", "7")
	t.Setenv("BMC_ONE_PROBLEM", "true")
	// Environment overrides file
	cfg, err := LoadConfig(filename, nil)
	assert.NoError(t, err)
	assert.Equal(t, 7, cfg.Bound)
	assert.True(t, cfg.OneProblem)
}

func Test_Config_04(t *testing.T) {
	t.Setenv("BMC_BOUND", "7")
	//
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("bound", DefaultBound, "")
	flags.String("loop", DefaultLoop, "")
	flags.Bool("one-problem", false, "")
	assert.NoError(t, flags.Parse([]string{"--bound=3", "--one-problem"}))
	// Explicit flags override everything, others change nothing
	cfg, err := LoadConfig("", flags)
	assert.NoError(t, err)
	assert.Equal(t, 3, cfg.Bound)
	assert.Equal(t, DefaultLoop, cfg.Loop)
	assert.True(t, cfg.OneProblem)
}

func Test_Config_05(t *testing.T) {
	for _, text := range []string{"bound: 3\nloop: 12\n", "loop: sometimes\n", "colour: purple\n", "bound: -1\n",
		"offset: -2\n", "method: guess\n"} {
		_, err := LoadConfig(writeConfig(t, text), nil)
		assert.True(t, err != nil, "loading %q", text)
	}
	// Missing file
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.True(t, err != nil)
}

// ===================================================================
// Checking
// ===================================================================

func Test_Check_01(t *testing.T) {
	var buf bytes.Buffer
	//
	checker, machine := newChecker(t, toggleModel, ltl.NewTable())
	cfg := &Config{Bound: 3, Loop: "all", Colour: "never"}
	//
	assert.False(t, checkSpec(&buf, checker, machine.Specs()[0], cfg, bmc.AllLoopbacks))
	assert.Equal(t, "never_a: (G (not a)) is violated by a path of length 1\n"+
		"   | 0 | 1 |\n"+
		" a | 0 | 1 |\n", buf.String())
}

func Test_Check_02(t *testing.T) {
	var buf bytes.Buffer
	//
	checker, machine := newChecker(t, toggleModel, ltl.NewTable())
	cfg := &Config{Bound: 3, Loop: "all", Colour: "never"}
	//
	assert.True(t, checkSpec(&buf, checker, machine.Specs()[1], cfg, bmc.AllLoopbacks))
	assert.Equal(t, "toggles: no counterexample to (G (F a)) up to length 3\n", buf.String())
}

func Test_Check_03(t *testing.T) {
	var buf bytes.Buffer
	//
	table := ltl.NewTable()
	checker, machine := newChecker(t, freeModel, table)
	spec := fsm.Spec{Name: "live", Formula: parseFormula(t, machine, table, "(F a)")}
	cfg := &Config{Bound: 3, Loop: "all", Colour: "never"}
	// Staying false forever
	assert.False(t, checkSpec(&buf, checker, spec, cfg, bmc.AllLoopbacks))
	assert.Equal(t, "live: (F a) is violated by a path of length 1\n"+
		"   | *0 | 1 |\n"+
		" a |  0 | 0 |\n"+
		"(loops back to step 0)\n", buf.String())
}

func Test_Check_04(t *testing.T) {
	var buf bytes.Buffer
	//
	table := ltl.NewTable()
	checker, _ := newChecker(t, freeModel, table)
	spec := fsm.Spec{Name: "past", Formula: table.Once(table.Var("a"))}
	cfg := &Config{Bound: 2, Loop: "all", Colour: "never"}
	//
	assert.False(t, checkSpec(&buf, checker, spec, cfg, bmc.AllLoopbacks))
	assert.True(t, strings.HasPrefix(buf.String(), "past: cannot check (O a)"))
}

func Test_Check_05(t *testing.T) {
	var buf bytes.Buffer
	//
	checker, machine := newChecker(t, toggleModel, ltl.NewTable())
	cfg := &Config{Bound: 3, Loop: "all", Colour: "never", Incremental: true}
	//
	assert.False(t, checkSpec(&buf, checker, machine.Specs()[0], cfg, bmc.AllLoopbacks))
	assert.Equal(t, "never_a: (G (not a)) is violated by a path of length 1\n"+
		"   | 0 | 1 |\n"+
		" a | 0 | 1 |\n", buf.String())
	//
	buf.Reset()
	assert.True(t, checkSpec(&buf, checker, machine.Specs()[1], cfg, bmc.AllLoopbacks))
	assert.Equal(t, "toggles: no counterexample to (G (F a)) up to length 3\n", buf.String())
}

// ===================================================================
// Invariants
// ===================================================================

func Test_Invar_01(t *testing.T) {
	var buf bytes.Buffer
	//
	checker, machine := newChecker(t, invarModel, ltl.NewTable())
	cfg := &Config{Bound: 3, Colour: "never", Method: TemporalInductionMethod}
	//
	assert.False(t, checkInvariant(&buf, checker, machine.Invariants()[0], cfg))
	assert.Equal(t, "never_a: invariant is violated by a path of length 1\n"+
		"   | 0 | 1 |\n"+
		" a | 0 | 1 |\n", buf.String())
	//
	buf.Reset()
	assert.True(t, checkInvariant(&buf, checker, machine.Invariants()[1], cfg))
	assert.Equal(t, "trivial: invariant holds (proved at length 0)\n", buf.String())
}

func Test_Invar_02(t *testing.T) {
	var buf bytes.Buffer
	//
	checker, machine := newChecker(t, invarModel, ltl.NewTable())
	cfg := &Config{Bound: 3, Colour: "never", Method: InductionMethod}
	//
	assert.False(t, checkInvariant(&buf, checker, machine.Invariants()[0], cfg))
	assert.Equal(t, "never_a: invariant is not inductive\n", buf.String())
	//
	buf.Reset()
	assert.True(t, checkInvariant(&buf, checker, machine.Invariants()[1], cfg))
	assert.Equal(t, "trivial: invariant holds (proved at length 1)\n", buf.String())
}

func Test_Invar_03(t *testing.T) {
	table := ltl.NewTable()
	machine := readTestModel(t, invarModel, table)
	//
	invariants, err := selectInvariants(machine, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(invariants))
	//
	invariants, err = selectInvariants(machine, []string{"trivial"})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(invariants))
	assert.Equal(t, "trivial", invariants[0].Name)
	//
	_, err = selectInvariants(machine, []string{"bogus"})
	assert.True(t, err != nil)
	// Nothing to check
	_, err = selectInvariants(readTestModel(t, freeModel, table), nil)
	assert.True(t, err != nil)
}

// ===================================================================
// Properties
// ===================================================================

func Test_Specs_01(t *testing.T) {
	table := ltl.NewTable()
	machine := readTestModel(t, toggleModel, table)
	//
	specs, err := parseSpecs(machine, table, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(specs))
	//
	specs, err = parseSpecs(machine, table, []string{"(F a)", "(X a)"})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(specs))
	assert.Equal(t, "arg_1", specs[0].Name)
	assert.Equal(t, table.Eventually(table.Var("a")), specs[0].Formula)
}

func Test_Specs_02(t *testing.T) {
	var buf bytes.Buffer
	//
	table := ltl.NewTable()
	machine := readTestModel(t, toggleModel, table)
	//
	_, err := parseSpecs(machine, table, []string{"(F a b)"})
	//
	var serr *source.SyntaxError
	//
	assert.ErrorAs(t, err, &serr)
	printSyntaxError(&buf, serr)
	assert.Equal(t, "<formula>:1: F requires exactly one argument\n(F a b)\n^^^^^^^\n", buf.String())
	// Nothing to check
	_, err = parseSpecs(readTestModel(t, freeModel, table), table, nil)
	assert.True(t, err != nil)
}

// ===================================================================
// Dimacs
// ===================================================================

func Test_Dimacs_01(t *testing.T) {
	var buf bytes.Buffer
	//
	table := ltl.NewTable()
	machine := readTestModel(t, toggleModel, table)
	encoder := bmc.NewEncoder(machine, table)
	//
	assert.NoError(t, writeDimacs(&buf, encoder, machine.Specs()[0].Formula, 1, bmc.AllLoopbacks))
	//
	output := buf.String()
	assert.True(t, strings.HasPrefix(output, "c "))
	assert.True(t, strings.Contains(output, " a@0\n"))
	assert.True(t, strings.Contains(output, " a@1\n"))
	assert.True(t, strings.Contains(output, "p cnf "))
}

func Test_Dimacs_02(t *testing.T) {
	var buf bytes.Buffer
	//
	table := ltl.NewTable()
	machine := readTestModel(t, toggleModel, table)
	encoder := bmc.NewEncoder(machine, table)
	//
	err := writeDimacs(&buf, encoder, machine.Specs()[0].Formula, 1, 3)
	assert.True(t, err != nil)
	assert.Equal(t, 0, buf.Len())
}

// ===================================================================
// Loops
// ===================================================================

func Test_Loops_01(t *testing.T) {
	checkExplainLoop(t, 3, "1", "loop 1, visiting 0 -> 1 -> 2 -> 1")
	checkExplainLoop(t, 3, "-1", "loop 2, visiting 0 -> 1 -> 2 -> 2")
	checkExplainLoop(t, 3, "none", "no loop, visiting 0 -> 1 -> 2 -> 3")
	checkExplainLoop(t, 3, "*", "any loop back to a step in [0,3)")
	checkExplainLoop(t, 0, "0", "loop 0, visiting 0 -> 0")
}

func Test_Loops_02(t *testing.T) {
	for _, text := range []string{"5", "-4", "bogus"} {
		_, err := explainLoop(3, text)
		assert.True(t, err != nil, "explaining %s", text)
	}
}

// ===================================================================
// Helpers
// ===================================================================

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	//
	filename := filepath.Join(t.TempDir(), DefaultConfigFile)
	assert.NoError(t, os.WriteFile(filename, []byte(contents), 0o600))
	//
	return filename
}

func readTestModel(t *testing.T, text string, table *ltl.Table) *fsm.Machine {
	t.Helper()
	//
	machine, _, errs := fsm.ReadModel(source.NewFile("test", []byte(text)), table, be.NewManager())
	assert.Equal(t, 0, len(errs))
	//
	return machine
}

func newChecker(t *testing.T, text string, table *ltl.Table) (*bmc.Checker, *fsm.Machine) {
	t.Helper()
	//
	machine := readTestModel(t, text, table)
	//
	return bmc.NewChecker(bmc.NewEncoder(machine, table)), machine
}

func parseFormula(t *testing.T, machine *fsm.Machine, table *ltl.Table, text string) *ltl.Formula {
	t.Helper()
	//
	specs, err := parseSpecs(machine, table, []string{text})
	assert.NoError(t, err)
	//
	return specs[0].Formula
}

func checkExplainLoop(t *testing.T, bound int, text string, expected string) {
	t.Helper()
	//
	actual, err := explainLoop(bound, text)
	assert.NoError(t, err)
	assert.Equal(t, expected, actual)
}
