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

	"github.com/consensys/go-bmc/pkg/bmc"
	"github.com/consensys/go-bmc/pkg/util/termio"
)

// Longest variable name printed in full.
const maxNameWidth = 32

// Print a trace as a table with one row per variable and one column per step.
// The step to which the trace loops back (if any) is marked with an asterisk.
func printTrace(w io.Writer, trace *bmc.Trace, escapes bool) error {
	var (
		vars     = trace.Vars()
		n        = trace.Len()
		loopback = trace.Loopback()
		table    = termio.NewTablePrinter(n+1, uint(len(vars))+1)
	)
	//
	table.AnsiEscapes(escapes)
	table.Set(0, 0, "")
	//
	for step := uint(0); step < n; step++ {
		label := fmt.Sprintf("%d", step)
		//
		if loopback.IsSingle() && uint(loopback) == step {
			label = "*" + label
		}
		//
		table.Set(step+1, 0, label)
		table.SetEscape(step+1, 0, termio.BoldAnsiEscape().Build())
	}
	//
	for i, v := range vars {
		row := uint(i) + 1
		//
		table.Set(0, row, v.Name())
		//
		for step := uint(0); step < n; step++ {
			val := trace.Value(step, v)
			table.Set(step+1, row, valueString(val))
			table.SetEscape(step+1, row, valueEscape(val))
		}
	}
	//
	table.SetMaxWidth(0, maxNameWidth)
	//
	if err := table.Print(w); err != nil {
		return err
	} else if loopback.IsSingle() {
		_, err = fmt.Fprintf(w, "(loops back to step %d)\n", loopback)
		return err
	}
	//
	return nil
}

func valueString(val bool) string {
	if val {
		return "1"
	}
	//
	return "0"
}

func valueEscape(val bool) string {
	if val {
		return termio.NewAnsiEscape().FgColour(termio.TERM_GREEN).Build()
	}
	//
	return termio.NewAnsiEscape().FgColour(termio.TERM_RED).Build()
}
