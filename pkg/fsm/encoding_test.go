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
package fsm

import (
	"testing"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/ltl"
	"github.com/consensys/go-bmc/pkg/util/assert"
	"github.com/consensys/go-bmc/pkg/util/source"
	"github.com/consensys/go-bmc/pkg/util/source/sexp"
)

func Test_Encoding_01(t *testing.T) {
	enc := NewEncoding(be.NewManager())
	a, err1 := enc.DeclareState("a")
	i, err2 := enc.DeclareInput("i")
	b, err3 := enc.DeclareState("b")
	//
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.NoError(t, err3)
	assert.Equal(t, []uint{a.Index(), b.Index()}, enc.StateVars())
	assert.True(t, i.IsInput())
	//
	v, ok := enc.Lookup("b")
	assert.True(t, ok && v == b)
	//
	_, err := enc.DeclareState("a")
	assert.True(t, err != nil)
	_, err = enc.DeclareInput("true")
	assert.True(t, err != nil)
}

func Test_Encoding_02(t *testing.T) {
	enc := NewEncoding(be.NewManager())
	a, _ := enc.DeclareState("a")
	// Timed variables are allocated once
	a3 := enc.IndexToTimed(a.Index(), 3)
	assert.Equal(t, a3, enc.IndexToTimed(a.Index(), 3))
	assert.NotEqual(t, a3, enc.IndexToTimed(a.Index(), 2))
	//
	v, time, ok := enc.TimedVar(a3.Not())
	assert.True(t, ok && v == a)
	assert.Equal(t, uint(3), time)
	assert.Equal(t, "a@3", enc.NameOf(a3))
	assert.Equal(t, "a", enc.NameOf(enc.Current(a.Index())))
	assert.Equal(t, "next(a)", enc.NameOf(enc.Next(a.Index())))
}

func Test_Encoding_03(t *testing.T) {
	m := be.NewManager()
	enc := NewEncoding(m)
	a, _ := enc.DeclareState("a")
	b, _ := enc.DeclareState("b")
	// a & !next(b) at time 2 is a@2 & !b@3
	untimed := m.And(enc.Current(a.Index()), m.Not(enc.Next(b.Index())))
	timed := enc.UntimedToTimed(untimed, 2)
	expected := m.And(enc.IndexToTimed(a.Index(), 2), m.Not(enc.IndexToTimed(b.Index(), 3)))
	//
	assert.Equal(t, expected, timed)
	assert.Equal(t, m.Truth(), enc.UntimedToTimed(m.Truth(), 5))
	// Timing is memoised
	assert.Equal(t, timed, enc.UntimedToTimed(untimed, 2))
}

func Test_Encoding_04(t *testing.T) {
	m := be.NewManager()
	enc := NewEncoding(m)
	a, _ := enc.DeclareState("a")
	p := enc.Current(a.Index())
	//
	or := enc.UntimedToTimedOrInterval(p, 1, 3)
	and := enc.UntimedToTimedAndInterval(p, 1, 3)
	at := func(t uint) be.Expr { return enc.IndexToTimed(a.Index(), t) }
	//
	assert.True(t, m.Equivalent(or, m.Ors(at(1), at(2), at(3))))
	assert.True(t, m.Equivalent(and, m.Ands(at(1), at(2), at(3))))
	assert.Equal(t, m.Falsity(), enc.UntimedToTimedOrInterval(p, 2, 1))
	assert.Equal(t, m.Truth(), enc.UntimedToTimedAndInterval(p, 2, 1))
	assert.Equal(t, at(4), enc.UntimedToTimedOrInterval(p, 4, 4))
}

// ===================================================================
// Booleanization
// ===================================================================

func Test_Booleanize_01(t *testing.T) {
	m, enc := newEncoding("a", "b")
	a, b := current(enc, "a"), current(enc, "b")
	//
	checkBooleanize(t, enc, "a", a)
	checkBooleanize(t, enc, "TRUE", m.Truth())
	checkBooleanize(t, enc, "(! a)", m.Not(a))
	checkBooleanize(t, enc, "(and a b)", m.And(a, b))
	checkBooleanize(t, enc, "(| a b)", m.Or(a, b))
	checkBooleanize(t, enc, "(| a (not a))", m.Truth())
	checkBooleanize(t, enc, "(-> a b)", m.Implies(a, b))
	checkBooleanize(t, enc, "(== a b)", m.Iff(a, b))
	checkBooleanize(t, enc, "(!= a b)", m.Xor(a, b))
	checkBooleanize(t, enc, "(ite a b false)", m.And(a, b))
}

func Test_Booleanize_02(t *testing.T) {
	m, enc := newEncoding("a", "b")
	a, _ := enc.Lookup("a")
	b, _ := enc.Lookup("b")
	//
	expr, err := enc.Booleanize(parseSExp(t, "(== (next a) (and a (! b)))"), true)
	assert.NoError(t, err)
	//
	expected := m.Iff(enc.Next(a.Index()), m.And(enc.Current(a.Index()), m.Not(enc.Current(b.Index()))))
	assert.Equal(t, expected, expr)
	// Next of a compound expression
	expr, err = enc.Booleanize(parseSExp(t, "(next (or a b))"), true)
	assert.NoError(t, err)
	assert.Equal(t, m.Or(enc.Next(a.Index()), enc.Next(b.Index())), expr)
}

func Test_Booleanize_03(t *testing.T) {
	var unknown *UnknownVariableError
	//
	_, enc := newEncoding("a")
	_, err := enc.Booleanize(parseSExp(t, "(and a c)"), false)
	//
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, "c", unknown.Expr.String())
}

func Test_Booleanize_04(t *testing.T) {
	_, enc := newEncoding("a")
	//
	checkMalformed(t, enc, "(next a)", false)
	checkMalformed(t, enc, "(next (next a))", true)
	checkMalformed(t, enc, "(not a a)", false)
	checkMalformed(t, enc, "(and)", false)
	checkMalformed(t, enc, "(+ a a)", false)
	checkMalformed(t, enc, "((a))", false)
}

func Test_Booleanize_05(t *testing.T) {
	_, enc := newEncoding("a")
	_, err := enc.DeclareInput("i")
	assert.NoError(t, err)
	//
	checkMalformed(t, enc, "(next i)", true)
}

// ===================================================================
// Machines
// ===================================================================

func Test_Machine_01(t *testing.T) {
	m, enc := newEncoding("a")
	a, _ := enc.Lookup("a")
	machine := NewMachine(enc)
	machine.AddInit(m.Not(enc.Current(a.Index())))
	machine.AddTrans(m.Iff(enc.Next(a.Index()), m.Not(enc.Current(a.Index()))))
	// Path of length 2: !a@0 & (a@1 <-> !a@0) & (a@2 <-> !a@1)
	at := func(t uint) be.Expr { return enc.IndexToTimed(a.Index(), t) }
	expected := m.Ands(m.Not(at(0)), m.Iff(at(1), m.Not(at(0))), m.Iff(at(2), m.Not(at(1))))
	//
	assert.True(t, m.Equivalent(expected, machine.Path(2)))
	assert.True(t, m.Equivalent(m.Not(at(0)), machine.Path(0)))
}

func Test_ReadModel_01(t *testing.T) {
	text := `
; a simple toggle
(var a b)
(input go)
(init (and (! a) (! b)))
(trans (== (next a) (ite go (! a) a)))
(trans (== (next b) a))
(fairness a)
(ltlspec toggles (G (F a)))
(ltlspec (-> b (X a)))
`
	machine, srcmap, errs := ReadModel(source.NewFile("test.lisp", []byte(text)), ltl.NewTable(), be.NewManager())
	//
	assert.Equal(t, 0, len(errs))
	assert.True(t, srcmap != nil)
	assert.Equal(t, 2, len(machine.Encoding().StateVars()))
	assert.Equal(t, 3, len(machine.Encoding().Vars()))
	assert.Equal(t, 1, len(machine.Fairness()))
	assert.Equal(t, 2, len(machine.Specs()))
	assert.Equal(t, "toggles", machine.Specs()[0].Name)
	assert.Equal(t, "(G (F a))", machine.Specs()[0].Formula.String())
	assert.Equal(t, "spec_1", machine.Specs()[1].Name)
}

func Test_ReadModel_02(t *testing.T) {
	checkReadModelError(t, "(var a)\n(init (and a c))", 2, "unknown variable \"c\"")
}

func Test_ReadModel_03(t *testing.T) {
	checkReadModelError(t, "(var a)\n(init (next a))", 2, "malformed expression (next a) (next not permitted here)")
}

func Test_ReadModel_04(t *testing.T) {
	checkReadModelError(t, "(var a a)", 1, "variable \"a\" already declared")
}

func Test_ReadModel_05(t *testing.T) {
	checkReadModelError(t, "(var a)\n\n(output b)", 3, "unknown declaration \"output\"")
}

func Test_ReadModel_06(t *testing.T) {
	checkReadModelError(t, "(var a)\n(ltlspec (G a b))", 2, "G requires exactly one argument")
}

func Test_ReadModel_07(t *testing.T) {
	// Declarations may follow their use
	_, _, errs := ReadModel(source.NewFile("test", []byte("(init a) (var a)")), ltl.NewTable(), be.NewManager())
	assert.Equal(t, 0, len(errs))
}

func Test_ReadModel_08(t *testing.T) {
	text := `
(var a b)
(input go)
(init (! a))
(trans (== (next a) (ite go b a)))
(invarspec never_a (! a))
(invarspec (-> a b))
`
	machine, _, errs := ReadModel(source.NewFile("test", []byte(text)), ltl.NewTable(), be.NewManager())
	//
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, 2, len(machine.Invariants()))
	assert.Equal(t, "never_a", machine.Invariants()[0].Name)
	assert.Equal(t, "invar_1", machine.Invariants()[1].Name)
	//
	m, enc := machine.Encoding().Manager(), machine.Encoding()
	assert.Equal(t, m.Not(current(enc, "a")), machine.Invariants()[0].Expr)
	assert.Equal(t, 0, len(machine.Specs()))
}

func Test_ReadModel_09(t *testing.T) {
	checkReadModelError(t, "(var a)\n(input go)\n(invarspec (& a go))", 3, "invariant cannot mention input variables")
}

func Test_ReadModel_10(t *testing.T) {
	checkReadModelError(t, "(var a)\n(invarspec (next a))", 2, "malformed expression (next a) (next not permitted here)")
}

func Test_ReadModel_11(t *testing.T) {
	checkReadModelError(t, "(var a)\n(invarspec x a a)", 2, "expected (invarspec [name] expression)")
}

func Test_IsStateExpr_01(t *testing.T) {
	m, enc := newEncoding("a", "b")
	in, _ := enc.DeclareInput("go")
	a, b := current(enc, "a"), current(enc, "b")
	//
	assert.True(t, enc.IsStateExpr(m.Truth()))
	assert.True(t, enc.IsStateExpr(m.Implies(a, m.Not(b))))
	assert.False(t, enc.IsStateExpr(m.And(a, enc.Current(in.Index()))))
	assert.False(t, enc.IsStateExpr(enc.Next(0)))
	assert.False(t, enc.IsStateExpr(enc.IndexToTimed(0, 3)))
}

func newEncoding(names ...string) (*be.Manager, *Encoding) {
	m := be.NewManager()
	enc := NewEncoding(m)
	//
	for _, name := range names {
		if _, err := enc.DeclareState(name); err != nil {
			panic(err)
		}
	}
	//
	return m, enc
}

func current(enc *Encoding, name string) be.Expr {
	v, _ := enc.Lookup(name)
	return enc.Current(v.Index())
}

func parseSExp(t *testing.T, input string) sexp.SExp {
	t.Helper()
	//
	term, _, err := sexp.Parse(source.NewFile("test", []byte(input)))
	assert.True(t, err == nil)
	//
	return term
}

func checkBooleanize(t *testing.T, enc *Encoding, input string, expected be.Expr) {
	t.Helper()
	//
	actual, err := enc.Booleanize(parseSExp(t, input), false)
	assert.NoError(t, err)
	assert.Equal(t, expected, actual, "booleanizing %s", input)
}

func checkMalformed(t *testing.T, enc *Encoding, input string, allowNext bool) {
	var malformed *MalformedExpressionError
	//
	t.Helper()
	//
	_, err := enc.Booleanize(parseSExp(t, input), allowNext)
	assert.ErrorAs(t, err, &malformed, "booleanizing %s", input)
}

func checkReadModelError(t *testing.T, text string, line int, msg string) {
	t.Helper()
	//
	_, _, errs := ReadModel(source.NewFile("test", []byte(text)), ltl.NewTable(), be.NewManager())
	//
	assert.Equal(t, 1, len(errs))
	//
	enclosing := errs[0].FirstEnclosingLine()
	assert.Equal(t, line, enclosing.Number())
	assert.Equal(t, msg, errs[0].Message())
}
