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
	"fmt"

	"github.com/consensys/go-bmc/pkg/util/source/sexp"
)

// Op identifies the top-level operator of a formula.
type Op uint8

const (
	// OpAtomic is an atomic proposition, whose meaning is given by a raw
	// (boolean) expression over the variables of a model.
	OpAtomic Op = iota
	// OpAnd is logical conjunction.
	OpAnd
	// OpOr is logical disjunction.
	OpOr
	// OpXor is exclusive or.
	OpXor
	// OpNot is logical negation.
	OpNot
	// OpImplies is logical implication.
	OpImplies
	// OpIff is logical equivalence.
	OpIff
	// OpNext holds if its argument holds in the next state.
	OpNext
	// OpGlobally holds if its argument holds in all future states.
	OpGlobally
	// OpEventually holds if its argument holds in some future state.
	OpEventually
	// OpUntil holds if its right argument eventually holds, and its left
	// argument holds up to that point.
	OpUntil
	// OpReleases holds if its right argument holds up to and including the
	// point where its left argument first holds (if ever).
	OpReleases
	// OpPrevious holds if its argument held in the previous state.
	OpPrevious
	// OpOnce holds if its argument held in some past state.
	OpOnce
	// OpHistorically holds if its argument held in all past states.
	OpHistorically
	// OpSince holds if its right argument held at some past state, and its left
	// argument held since then.
	OpSince
)

var opNames = [...]string{
	OpAtomic:       "atom",
	OpAnd:          "and",
	OpOr:           "or",
	OpXor:          "xor",
	OpNot:          "not",
	OpImplies:      "->",
	OpIff:          "<->",
	OpNext:         "X",
	OpGlobally:     "G",
	OpEventually:   "F",
	OpUntil:        "U",
	OpReleases:     "R",
	OpPrevious:     "Y",
	OpOnce:         "O",
	OpHistorically: "H",
	OpSince:        "S",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	//
	return fmt.Sprintf("op#%d", uint8(op))
}

// Arity returns the number of children of a formula with this operator.
func (op Op) Arity() uint {
	switch op {
	case OpAtomic:
		return 0
	case OpNot, OpNext, OpGlobally, OpEventually, OpPrevious, OpOnce, OpHistorically:
		return 1
	default:
		return 2
	}
}

// IsPast checks whether this is a past-time temporal operator.
func (op Op) IsPast() bool {
	return op >= OpPrevious && op <= OpSince
}

// IsTemporal checks whether this is a (past or future) temporal operator.
func (op Op) IsTemporal() bool {
	return op >= OpNext
}

// Formula is an immutable node of a temporal formula.  Formulas are only ever
// constructed through a Table, which ensures structurally equal formulas are
// the same node.  Hence, formulas can be compared for equality using ==, and
// used directly as map keys.
type Formula struct {
	op Op
	// Children (where applicable)
	left, right *Formula
	// Raw payload of an atomic proposition (nil otherwise).
	atom sexp.SExp
	// Depth of temporal operator nesting.
	depth uint
}

// Op returns the top-level operator of this formula.
func (p *Formula) Op() Op {
	return p.op
}

// Left returns the first child of this formula, or nil for an atom.
func (p *Formula) Left() *Formula {
	return p.left
}

// Right returns the second child of this formula, or nil for atoms and unary
// operators.
func (p *Formula) Right() *Formula {
	return p.right
}

// Atom returns the raw payload of an atomic proposition, or nil if this is not
// an atom.
func (p *Formula) Atom() sexp.SExp {
	return p.atom
}

// Depth returns the maximum nesting of temporal operators in this formula.
// Hence, a purely propositional formula has depth 0.
func (p *Formula) Depth() uint {
	return p.depth
}

// IsPast checks whether this formula contains a past-time operator anywhere.
func (p *Formula) IsPast() bool {
	switch {
	case p.op == OpAtomic:
		return false
	case p.op.IsPast():
		return true
	case p.right != nil && p.right.IsPast():
		return true
	}
	//
	return p.left.IsPast()
}

func (p *Formula) String() string {
	switch p.op.Arity() {
	case 0:
		return p.atom.String()
	case 1:
		return fmt.Sprintf("(%s %s)", p.op, p.left)
	default:
		return fmt.Sprintf("(%s %s %s)", p.op, p.left, p.right)
	}
}

// ===================================================================
// Table
// ===================================================================

// Identifies a formula by its structure.  Since children are themselves
// interned, comparing them by pointer is sufficient.
type formulaKey struct {
	op          Op
	left, right *Formula
	atom        string
}

// Table interns formulas, such that constructing a formula which is
// structurally equal to an existing one returns that existing node.  Tables
// are not safe for concurrent use.
type Table struct {
	nodes map[formulaKey]*Formula
}

// NewTable constructs an empty formula table.
func NewTable() *Table {
	return &Table{make(map[formulaKey]*Formula)}
}

// Len returns the number of distinct formulas constructed through this table.
func (p *Table) Len() uint {
	return uint(len(p.nodes))
}

// Atom constructs an atomic proposition from a raw expression.  Atoms whose
// expressions print identically are the same formula.
func (p *Table) Atom(expr sexp.SExp) *Formula {
	key := formulaKey{OpAtomic, nil, nil, expr.String()}
	//
	if f, ok := p.nodes[key]; ok {
		return f
	}
	//
	f := &Formula{op: OpAtomic, atom: expr}
	p.nodes[key] = f
	//
	return f
}

// Var constructs an atomic proposition consisting of a single variable (or
// constant).  This is a convenience for constructing formulas directly.
func (p *Table) Var(name string) *Formula {
	return p.Atom(sexp.NewSymbol(name))
}

// Make constructs a formula with a given operator and children.  The right
// child must be nil for unary operators, and both must be nil for atoms (which
// should be constructed with Atom instead).
func (p *Table) Make(op Op, left, right *Formula) *Formula {
	switch {
	case op == OpAtomic:
		panic("atoms must be constructed from expressions")
	case left == nil:
		panic(fmt.Sprintf("missing operand for %s", op))
	case (op.Arity() == 1) != (right == nil):
		panic(fmt.Sprintf("incorrect number of operands for %s", op))
	}
	//
	key := formulaKey{op, left, right, ""}
	//
	if f, ok := p.nodes[key]; ok {
		return f
	}
	//
	depth := left.depth
	if right != nil {
		depth = max(depth, right.depth)
	}
	//
	if op.IsTemporal() {
		depth++
	}
	//
	f := &Formula{op: op, left: left, right: right, depth: depth}
	p.nodes[key] = f
	//
	return f
}

// And constructs the conjunction of two formulas.
func (p *Table) And(lhs, rhs *Formula) *Formula { return p.Make(OpAnd, lhs, rhs) }

// Or constructs the disjunction of two formulas.
func (p *Table) Or(lhs, rhs *Formula) *Formula { return p.Make(OpOr, lhs, rhs) }

// Xor constructs the exclusive-or of two formulas.
func (p *Table) Xor(lhs, rhs *Formula) *Formula { return p.Make(OpXor, lhs, rhs) }

// Not constructs the negation of a formula.
func (p *Table) Not(arg *Formula) *Formula { return p.Make(OpNot, arg, nil) }

// Implies constructs the implication lhs → rhs.
func (p *Table) Implies(lhs, rhs *Formula) *Formula { return p.Make(OpImplies, lhs, rhs) }

// Iff constructs the equivalence lhs ↔ rhs.
func (p *Table) Iff(lhs, rhs *Formula) *Formula { return p.Make(OpIff, lhs, rhs) }

// Next constructs X arg.
func (p *Table) Next(arg *Formula) *Formula { return p.Make(OpNext, arg, nil) }

// Globally constructs G arg.
func (p *Table) Globally(arg *Formula) *Formula { return p.Make(OpGlobally, arg, nil) }

// Eventually constructs F arg.
func (p *Table) Eventually(arg *Formula) *Formula { return p.Make(OpEventually, arg, nil) }

// Until constructs lhs U rhs.
func (p *Table) Until(lhs, rhs *Formula) *Formula { return p.Make(OpUntil, lhs, rhs) }

// Releases constructs lhs R rhs.
func (p *Table) Releases(lhs, rhs *Formula) *Formula { return p.Make(OpReleases, lhs, rhs) }

// Previous constructs Y arg.
func (p *Table) Previous(arg *Formula) *Formula { return p.Make(OpPrevious, arg, nil) }

// Once constructs O arg.
func (p *Table) Once(arg *Formula) *Formula { return p.Make(OpOnce, arg, nil) }

// Historically constructs H arg.
func (p *Table) Historically(arg *Formula) *Formula { return p.Make(OpHistorically, arg, nil) }

// Since constructs lhs S rhs.
func (p *Table) Since(lhs, rhs *Formula) *Formula { return p.Make(OpSince, lhs, rhs) }
