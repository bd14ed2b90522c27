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

var checkCmd = &cobra.Command{
	Use:   "check [flags] model_file [formula...]",
	Short: "Check temporal properties of a model up to a given bound.",
	Long: `Check temporal properties of a model, by searching for counterexamples of
	increasing length up to a given bound.  Properties are either given on the
	command line, or taken from the ltlspec declarations of the model.  The
	exit code is 1 if any property is violated (or could not be checked).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}
		//
		cfg := loadConfig(cmd)
		loop, _ := cfg.LoopSpec()
		table := ltl.NewTable()
		machine := readModel(args[0], table, be.NewManager())
		specs := selectSpecs(machine, table, args[1:])
		encoder := bmc.NewEncoder(machine, table)
		checker := bmc.NewChecker(encoder)
		failed := false
		//
		for _, spec := range specs {
			if !checkSpec(os.Stdout, checker, spec, cfg, loop) {
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

// Check a single property, reporting the outcome (and any counterexample) to a
// given writer.  This returns true if no counterexample was found.
func checkSpec(w io.Writer, checker *bmc.Checker, spec fsm.Spec, cfg *Config, loop bmc.Loop) bool {
	ctx, cancel := cfg.context()
	defer cancel()
	//
	stats := util.NewPerfStats()
	check := checker.Check
	if cfg.Incremental {
		check = checker.CheckIncremental
	}
	//
	result, err := check(ctx, spec.Formula, cfg.Bound, loop, cfg.OneProblem)
	//
	stats.Log(fmt.Sprintf("Checking %s", spec.Name))
	//
	switch {
	case err != nil:
		fmt.Fprintf(w, "%s: %s\n", spec.Name, err)
		return false
	case result.Outcome == bmc.Counterexample:
		fmt.Fprintf(w, "%s: %s is violated by a path of length %d\n", spec.Name, spec.Formula, result.Bound)
		//
		if err := printTrace(w, result.Trace, cfg.escapes()); err != nil {
			fmt.Fprintln(w, err)
		}
		//
		return false
	case result.Outcome == bmc.Unknown:
		fmt.Fprintf(w, "%s: %s is unknown (gave up at length %d)\n", spec.Name, spec.Formula, result.Bound)
		return false
	}
	//
	fmt.Fprintf(w, "%s: no counterexample to %s up to length %d\n", spec.Name, spec.Formula, result.Bound)
	//
	return true
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("one-problem", false, "only consider paths whose length is exactly the bound")
	checkCmd.Flags().Bool("incremental", false, "reuse a single solver for paths of increasing length")
}
