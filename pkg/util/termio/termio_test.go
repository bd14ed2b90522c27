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
package termio

import (
	"bytes"
	"testing"

	"github.com/consensys/go-bmc/pkg/util/assert"
)

func Test_Table_01(t *testing.T) {
	var buf bytes.Buffer
	//
	table := NewTablePrinter(2, 2)
	table.SetRow(0, "a", "bb")
	table.SetRow(1, "ccc", "d")
	//
	assert.NoError(t, table.Print(&buf))
	assert.Equal(t, "   a | bb |\n ccc |  d |\n", buf.String())
}

func Test_Table_02(t *testing.T) {
	var buf bytes.Buffer
	//
	table := NewTablePrinter(1, 1)
	table.Set(0, 0, "abcdefgh")
	table.SetMaxWidths(5)
	//
	assert.NoError(t, table.Print(&buf))
	assert.Equal(t, " abc.. |\n", buf.String())
}

func Test_Table_03(t *testing.T) {
	var buf bytes.Buffer
	//
	table := NewTablePrinter(1, 1)
	table.Set(0, 0, "x")
	table.SetEscape(0, 0, NewAnsiEscape().FgColour(TERM_GREEN).Build())
	//
	assert.NoError(t, table.Print(&buf))
	assert.Equal(t, "\033[32m x\033[0m |\n", buf.String())
	// Escapes disabled
	buf.Reset()
	table.AnsiEscapes(false)
	assert.NoError(t, table.Print(&buf))
	assert.Equal(t, " x |\n", buf.String())
}

func Test_Escape_01(t *testing.T) {
	assert.Equal(t, "\033[1;31m", BoldAnsiEscape().FgColour(TERM_RED).Build())
	assert.Equal(t, "\033[0m", ResetAnsiEscape().Build())
	assert.Equal(t, "\033[33;44m", NewAnsiEscape().FgColour(TERM_YELLOW).BgColour(TERM_BLUE).Build())
}

func Test_Terminal_01(t *testing.T) {
	var buf bytes.Buffer
	//
	assert.False(t, IsTerminal(&buf))
	assert.Equal(t, uint(80), TerminalWidth(&buf))
}
