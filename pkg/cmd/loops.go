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
	"strconv"
	"strings"

	"github.com/consensys/go-bmc/pkg/bmc"
	"github.com/spf13/cobra"
)

var loopsCmd = &cobra.Command{
	Use:   "loops [flags] bound loop...",
	Short: "Explain loop specifications for a given bound.",
	Long: `Explain how each given loop specification is interpreted for paths of the
	given length.  For each, the absolute loop is reported along with the
	order in which steps of the path are visited.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}
		//
		bound, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("invalid bound \"%s\"\n", args[0])
			os.Exit(2)
		}
		//
		failed := false
		//
		for _, text := range args[1:] {
			explanation, err := explainLoop(bound, text)
			//
			if err != nil {
				fmt.Printf("%s: %s\n", text, err)
				failed = true
			} else {
				fmt.Printf("%s: %s\n", text, explanation)
			}
		}
		//
		if failed {
			os.Exit(1)
		}
	},
}

// Explain how a given loop specification is interpreted for a given bound.
func explainLoop(bound int, text string) (string, error) {
	loop, err := bmc.ParseLoop(text)
	if err != nil {
		return "", err
	} else if err = bmc.CheckConsistency(bound, loop); err != nil {
		return "", err
	} else if loop.IsAllLoopbacks() {
		return fmt.Sprintf("any loop back to a step in [0,%d)", bound), nil
	}
	//
	path, err := successorChain(bound, loop)
	if err != nil {
		return "", err
	}
	//
	if loop.IsNoLoopback() {
		return fmt.Sprintf("no loop, visiting %s", path), nil
	}
	//
	return fmt.Sprintf("loop %d, visiting %s", loop.Absolute(bound), path), nil
}

// Render the steps visited along a path of length bound with a given loop,
// ending with the first step visited twice (if any).
func successorChain(bound int, loop bmc.Loop) (string, error) {
	var (
		steps   = []string{"0"}
		visited = make([]bool, bound+1)
	)
	//
	for time := 0; !visited[time]; {
		visited[time] = true
		//
		next, ok, err := bmc.SuccessorOf(time, bound, loop)
		if err != nil {
			return "", err
		} else if !ok {
			break
		}
		//
		steps = append(steps, strconv.Itoa(next))
		time = next
	}
	//
	return strings.Join(steps, " -> "), nil
}

func init() {
	rootCmd.AddCommand(loopsCmd)
}
