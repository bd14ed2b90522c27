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
package ltl

import (
	"testing"

	"github.com/consensys/go-bmc/pkg/util/assert"
)

func Test_Formula_01(t *testing.T) {
	tbl := NewTable()
	// Structurally equal formulas are the same node
	f1 := tbl.Until(tbl.Var("p"), tbl.Next(tbl.Var("q")))
	f2 := tbl.Until(tbl.Var("p"), tbl.Next(tbl.Var("q")))
	//
	assert.True(t, f1 == f2)
	assert.True(t, tbl.Var("p") == f1.Left())
	assert.Equal(t, uint(4), tbl.Len())
}

func Test_Formula_02(t *testing.T) {
	tbl := NewTable()
	//
	assert.True(t, tbl.Until(tbl.Var("p"), tbl.Var("q")) != tbl.Until(tbl.Var("q"), tbl.Var("p")))
	assert.True(t, tbl.Until(tbl.Var("p"), tbl.Var("q")) != tbl.Releases(tbl.Var("p"), tbl.Var("q")))
}

func Test_Formula_03(t *testing.T) {
	tbl := NewTable()
	p, q := tbl.Var("p"), tbl.Var("q")
	//
	assert.Equal(t, uint(0), tbl.And(p, tbl.Not(q)).Depth())
	assert.Equal(t, uint(1), tbl.Globally(p).Depth())
	assert.Equal(t, uint(2), tbl.Globally(tbl.Implies(p, tbl.Eventually(q))).Depth())
	assert.Equal(t, uint(2), tbl.Until(tbl.Next(p), q).Depth())
}

func Test_Formula_04(t *testing.T) {
	tbl := NewTable()
	p, q := tbl.Var("p"), tbl.Var("q")
	//
	assert.False(t, tbl.Globally(tbl.Until(p, q)).IsPast())
	assert.True(t, tbl.Globally(tbl.And(p, tbl.Once(q))).IsPast())
	assert.True(t, tbl.Since(p, q).IsPast())
	assert.True(t, OpPrevious.IsPast())
	assert.False(t, OpNext.IsPast())
	assert.True(t, OpNext.IsTemporal())
	assert.False(t, OpIff.IsTemporal())
}

func Test_Formula_05(t *testing.T) {
	tbl := NewTable()
	f := tbl.Globally(tbl.Implies(tbl.Var("req"), tbl.Eventually(tbl.Var("ack"))))
	//
	assert.Equal(t, "(G (-> req (F ack)))", f.String())
}

// ===================================================================
// Parsing
// ===================================================================

func Test_Parse_01(t *testing.T) {
	checkParse(t, "p", "p")
}

func Test_Parse_02(t *testing.T) {
	checkParse(t, "(G (-> req (F ack)))", "(G (-> req (F ack)))")
}

func Test_Parse_03(t *testing.T) {
	checkParse(t, "(& a b c)", "(and (and a b) c)")
}

func Test_Parse_04(t *testing.T) {
	checkParse(t, "(U (! p) (== x y))", "(U (not p) (== x y))")
}

func Test_Parse_05(t *testing.T) {
	checkParse(t, "(V p q)", "(R p q)")
}

func Test_Parse_06(t *testing.T) {
	checkParse(t, "(H (S p (Y q)))", "(H (S p (Y q)))")
}

func Test_Parse_07(t *testing.T) {
	tbl := NewTable()
	f1, err1 := ParseString(tbl, "(F (and p q))")
	f2, err2 := ParseString(tbl, "(F (& p q))")
	//
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.True(t, f1 == f2)
}

func Test_Parse_08(t *testing.T) {
	checkParseError(t, "(G p q)")
}

func Test_Parse_09(t *testing.T) {
	checkParseError(t, "(U p)")
}

func Test_Parse_10(t *testing.T) {
	checkParseError(t, "(and p)")
}

func Test_Parse_11(t *testing.T) {
	checkParseError(t, "(G (X p)")
}

func Test_Parse_12(t *testing.T) {
	checkParseError(t, "(G ())")
}

// ===================================================================
// Negation Normal Form
// ===================================================================

func Test_NNF_01(t *testing.T) {
	checkNNF(t, "(not (not p))", "p")
}

func Test_NNF_02(t *testing.T) {
	checkNNF(t, "(not (and p q))", "(or (not p) (not q))")
}

func Test_NNF_03(t *testing.T) {
	checkNNF(t, "(-> p q)", "(or (not p) q)")
}

func Test_NNF_04(t *testing.T) {
	checkNNF(t, "(not (G p))", "(F (not p))")
}

func Test_NNF_05(t *testing.T) {
	checkNNF(t, "(not (U p q))", "(R (not p) (not q))")
}

func Test_NNF_06(t *testing.T) {
	checkNNF(t, "(not (X (R p q)))", "(X (U (not p) (not q)))")
}

func Test_NNF_07(t *testing.T) {
	checkNNF(t, "(<-> p q)", "(or (and p q) (and (not p) (not q)))")
}

func Test_NNF_08(t *testing.T) {
	checkNNF(t, "(not (xor p q))", "(or (and p q) (and (not p) (not q)))")
}

func Test_NNF_09(t *testing.T) {
	checkNNF(t, "(not (O p))", "(H (not p))")
}

func Test_NNF_10(t *testing.T) {
	checkNNF(t, "(not (Y (not p)))", "(not (Y (not p)))")
}

func Test_NNF_11(t *testing.T) {
	tbl := NewTable()
	f, err := ParseString(tbl, "(G (-> req (F ack)))")
	assert.NoError(t, err)
	// Negation of the NNF is the NNF of the negation
	assert.True(t, tbl.Negate(f) == tbl.NNF(tbl.Not(f)))
	assert.Equal(t, "(F (and req (G (not ack))))", tbl.Negate(f).String())
}

func checkParse(t *testing.T, input string, expected string) {
	t.Helper()
	//
	f, err := ParseString(NewTable(), input)
	assert.NoError(t, err)
	assert.Equal(t, expected, f.String())
}

func checkParseError(t *testing.T, input string) {
	t.Helper()
	//
	_, err := ParseString(NewTable(), input)
	assert.True(t, err != nil, "expected error for %q", input)
}

func checkNNF(t *testing.T, input string, expected string) {
	t.Helper()
	//
	tbl := NewTable()
	f, err := ParseString(tbl, input)
	assert.NoError(t, err)
	assert.Equal(t, expected, tbl.NNF(f).String())
}
