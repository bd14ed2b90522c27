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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/bmc"
	"github.com/consensys/go-bmc/pkg/fsm"
	"github.com/consensys/go-bmc/pkg/ltl"
	"github.com/consensys/go-bmc/pkg/util"
	"github.com/spf13/cobra"
)

var invarCmd = &cobra.Command{
	Use:   "invar [flags] model_file [name...]",
	Short: "Check invariants of a model.",
	Long: `Check the invarspec declarations of a model (or only those named) hold in
	every reachable state.  Invariants are either proved by simple induction,
	or proved or refuted by temporal induction over paths up to the bound.
	The exit code is 1 if any invariant is violated (or could not be checked).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}
		//
		cfg := loadConfig(cmd)
		table := ltl.NewTable()
		machine := readModel(args[0], table, be.NewManager())
		encoder := bmc.NewEncoder(machine, table)
		checker := bmc.NewChecker(encoder)
		failed := false
		//
		invariants, err := selectInvariants(machine, args[1:])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		for _, inv := range invariants {
			if !checkInvariant(os.Stdout, checker, inv, cfg) {
				failed = true
			}
		}
		//
		encoder.Close()
		//
		if failed {
			os.Exit(1)
		}
	},
}

// Determine the invariants to check.  These are those with the given names (if
// any) or, otherwise, all those declared by the model.
func selectInvariants(machine *fsm.Machine, names []string) ([]fsm.Invariant, error) {
	if len(machine.Invariants()) == 0 {
		return nil, errors.New("no invariants to check")
	} else if len(names) == 0 {
		return machine.Invariants(), nil
	}
	//
	invariants := make([]fsm.Invariant, len(names))
	//
	for i, name := range names {
		found := false
		//
		for _, inv := range machine.Invariants() {
			if inv.Name == name {
				invariants[i], found = inv, true
				break
			}
		}
		//
		if !found {
			return nil, fmt.Errorf("unknown invariant \"%s\"", name)
		}
	}
	//
	return invariants, nil
}

// Check a single invariant, reporting the outcome (and any counterexample) to a
// given writer.  This returns true if no counterexample was found.
func checkInvariant(w io.Writer, checker *bmc.Checker, inv fsm.Invariant, cfg *Config) bool {
	var (
		result bmc.Result
		err    error
	)
	//
	ctx, cancel := cfg.context()
	defer cancel()
	//
	stats := util.NewPerfStats()
	//
	if cfg.Method == InductionMethod {
		result, err = checker.CheckInduction(ctx, inv.Expr)
	} else {
		result, err = checker.CheckTemporalInduction(ctx, inv.Expr, cfg.Bound)
	}
	//
	stats.Log(fmt.Sprintf("Checking invariant %s", inv.Name))
	//
	switch {
	case err != nil:
		fmt.Fprintf(w, "%s: %s\n", inv.Name, err)
		return false
	case result.Outcome == bmc.Counterexample:
		fmt.Fprintf(w, "%s: invariant is violated by a path of length %d\n", inv.Name, result.Bound)
		//
		if err := printTrace(w, result.Trace, cfg.escapes()); err != nil {
			fmt.Fprintln(w, err)
		}
		//
		return false
	case result.Outcome == bmc.Proved:
		fmt.Fprintf(w, "%s: invariant holds (proved at length %d)\n", inv.Name, result.Bound)
		return true
	case result.Outcome == bmc.Unknown && cfg.Method == InductionMethod && ctx.Err() == nil:
		fmt.Fprintf(w, "%s: invariant is not inductive\n", inv.Name)
		return false
	case result.Outcome == bmc.Unknown:
		fmt.Fprintf(w, "%s: invariant is unknown (gave up at length %d)\n", inv.Name, result.Bound)
		return false
	}
	//
	fmt.Fprintf(w, "%s: no counterexample to invariant up to length %d\n", inv.Name, result.Bound)
	//
	return true
}

func init() {
	rootCmd.AddCommand(invarCmd)
	invarCmd.Flags().String("method", DefaultMethod, "method used to check invariants: induction or een-sorensson")
}
