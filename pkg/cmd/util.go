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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/fsm"
	"github.com/consensys/go-bmc/pkg/ltl"
	"github.com/consensys/go-bmc/pkg/util/source"
	"github.com/consensys/go-bmc/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetInt gets an expected signed integer, or exits if an error arises.
func GetInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Load the configuration for a given command, or exit if it is invalid.
func loadConfig(cmd *cobra.Command) *Config {
	cfg, err := LoadConfig(GetString(cmd, "config"), cmd.Flags())
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	// Verbosity can also come from the environment or configuration file.
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	//
	return cfg
}

// Construct a context for checking a single property, which is cancelled on
// timeout (if configured).
func (c *Config) context() (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.Timeout)
	}
	//
	return context.WithCancel(context.Background())
}

// Determine whether ANSI escapes should be used when writing to stdout.
func (c *Config) escapes() bool {
	switch c.Colour {
	case "always":
		return true
	case "never":
		return false
	default:
		return termio.IsTerminal(os.Stdout)
	}
}

// Read a model file, or exit reporting any syntax errors.
func readModel(filename string, table *ltl.Table, manager *be.Manager) *fsm.Machine {
	srcfile, err := source.ReadFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	machine, _, errs := fsm.ReadModel(srcfile, table, manager)
	//
	if len(errs) > 0 {
		for i := range errs {
			printSyntaxError(os.Stdout, &errs[i])
		}
		//
		os.Exit(2)
	}
	//
	log.Debugf("read model %s with %d variable(s) and %d specification(s)", filename,
		len(machine.Encoding().Vars()), len(machine.Specs()))
	//
	return machine
}

// Select the properties to consider, or exit if a formula given on the command
// line is malformed.
func selectSpecs(machine *fsm.Machine, table *ltl.Table, formulas []string) []fsm.Spec {
	specs, err := parseSpecs(machine, table, formulas)
	//
	var serr *source.SyntaxError
	//
	if errors.As(err, &serr) {
		printSyntaxError(os.Stdout, serr)
		os.Exit(2)
	} else if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return specs
}

// Determine the properties to consider.  These are the formulas given
// explicitly (if any) or, otherwise, those declared by the model.
func parseSpecs(machine *fsm.Machine, table *ltl.Table, formulas []string) ([]fsm.Spec, error) {
	if len(formulas) == 0 {
		if len(machine.Specs()) == 0 {
			return nil, errors.New("no properties to check")
		}
		//
		return machine.Specs(), nil
	}
	//
	specs := make([]fsm.Spec, len(formulas))
	//
	for i, text := range formulas {
		f, err := ltl.ParseString(table, text)
		if err != nil {
			return nil, err
		}
		//
		specs[i] = fsm.Spec{Name: fmt.Sprintf("arg_%d", i+1), Formula: f}
	}
	//
	return specs, nil
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(w io.Writer, err *source.SyntaxError) {
	span := err.Span()
	line := err.FirstEnclosingLine()
	// Print error + line number
	fmt.Fprintf(w, "%s:%d: %s\n", err.SourceFile().Filename(), line.Number(), err.Message())
	// Print line
	fmt.Fprintln(w, line.String())
	// Print indent (todo: account for tabs)
	indent := max(0, span.Start()-line.Start())
	fmt.Fprint(w, strings.Repeat(" ", indent))
	// Print highlight
	fmt.Fprintln(w, strings.Repeat("^", max(1, min(span.Length(), line.Length()-indent))))
}
