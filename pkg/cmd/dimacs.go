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
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/bmc"
	"github.com/consensys/go-bmc/pkg/fsm"
	"github.com/consensys/go-bmc/pkg/ltl"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dimacsCmd = &cobra.Command{
	Use:   "dimacs [flags] model_file [formula]",
	Short: "Write the checking problem for a property in DIMACS format.",
	Long: `Write the problem of finding a counterexample of exactly the configured
	length to a property in DIMACS format, such that it can be passed to an
	external SAT solver.  The property is either given on the command line or
	is the first (or named) ltlspec of the model.  Comments at the start of
	the output name the DIMACS variable of each timed model variable.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 || len(args) > 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}
		//
		cfg := loadConfig(cmd)
		loop, _ := cfg.LoopSpec()
		output := GetString(cmd, "output")
		table := ltl.NewTable()
		machine := readModel(args[0], table, be.NewManager())
		spec := selectSpec(selectSpecs(machine, table, args[1:]), GetString(cmd, "spec"))
		encoder := bmc.NewEncoder(machine, table)
		//
		if err := writeDimacsFile(output, encoder, spec.Formula, cfg.Bound, loop); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		encoder.Close()
	},
}

// Select the property with a given name, or the first if no name is given.
func selectSpec(specs []fsm.Spec, name string) fsm.Spec {
	if name == "" {
		return specs[0]
	}
	//
	for _, spec := range specs {
		if spec.Name == name {
			return spec
		}
	}
	//
	fmt.Printf("unknown property \"%s\"\n", name)
	os.Exit(2)
	// unreachable
	return fsm.Spec{}
}

func writeDimacsFile(filename string, encoder *bmc.Encoder, f *ltl.Formula, bound int, loop bmc.Loop) error {
	if filename == "" || filename == "-" {
		return writeDimacs(os.Stdout, encoder, f, bound, loop)
	}
	//
	out, err := os.Create(filename)
	if err != nil {
		return err
	}
	//
	writer := bufio.NewWriter(out)
	//
	if err = writeDimacs(writer, encoder, f, bound, loop); err == nil {
		err = writer.Flush()
	}
	//
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	//
	log.Debugf("wrote %s", filename)
	//
	return err
}

// Write the problem of finding a counterexample to a given formula, preceded
// by comments naming the variables it depends on.
func writeDimacs(w io.Writer, encoder *bmc.Encoder, f *ltl.Formula, bound int, loop bmc.Loop) error {
	problem, err := encoder.Problem(f, bound, loop)
	if err != nil {
		return err
	}
	//
	encoding := encoder.Machine().Encoding()
	//
	for _, v := range encoding.Manager().Support(problem) {
		if _, err := fmt.Fprintf(w, "c %d %s\n", v.Var(), encoding.NameOf(v)); err != nil {
			return err
		}
	}
	//
	return encoding.Manager().WriteDimacs(w, problem)
}

func init() {
	rootCmd.AddCommand(dimacsCmd)
	dimacsCmd.Flags().StringP("output", "o", "-", "specify output file (or - for stdout)")
	dimacsCmd.Flags().String("spec", "", "name of the ltlspec to encode")
}
