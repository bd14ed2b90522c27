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
	"os"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/bmc"
	"github.com/consensys/go-bmc/pkg/ltl"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [flags] model_file [formula...]",
	Short: "Encode temporal properties of a model as boolean expressions.",
	Long: `Encode temporal properties of a model as boolean expressions, using the
	bounded semantics for the configured bound, loop and offset.  Alternatively,
	the complete checking problem for each property can be encoded.  Statistics
	about each encoding are reported and, optionally, the encoding itself.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}
		//
		cfg := loadConfig(cmd)
		loop, _ := cfg.LoopSpec()
		problem := GetFlag(cmd, "problem")
		show := GetFlag(cmd, "print")
		table := ltl.NewTable()
		manager := be.NewManager()
		machine := readModel(args[0], table, manager)
		specs := selectSpecs(machine, table, args[1:])
		encoder := bmc.NewEncoder(machine, table)
		encoding := machine.Encoding()
		//
		for _, spec := range specs {
			expr, err := encode(encoder, spec.Formula, cfg, loop, problem)
			//
			if err != nil {
				fmt.Printf("%s: %s\n", spec.Name, err)
				os.Exit(1)
			}
			//
			fmt.Printf("%s: %d nodes, %d variables, %d cached encodings\n", spec.Name, manager.Size(),
				len(manager.Support(expr)), encoder.Cache().Len())
			//
			if show {
				fmt.Println(manager.String(expr, encoding.NameOf))
			}
		}
		//
		encoder.Close()
	},
}

// Encode either the bounded semantics of a formula, or the problem of finding
// a counterexample to it.
func encode(encoder *bmc.Encoder, f *ltl.Formula, cfg *Config, loop bmc.Loop, problem bool) (be.Expr, error) {
	if problem {
		return encoder.Problem(f, cfg.Bound, loop)
	}
	//
	return encoder.BoundedSemanticsWithLoop(f, cfg.Bound, loop, cfg.Offset, cfg.Fairness)
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().Int("offset", 0, "offset of the encoding on the global timeline")
	encodeCmd.Flags().Bool("fairness", false, "only consider fair paths")
	encodeCmd.Flags().Bool("problem", false, "encode the problem of finding a counterexample")
	encodeCmd.Flags().Bool("print", false, "print each encoding")
}
