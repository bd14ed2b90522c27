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
package be

import (
	"fmt"
	"strings"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// Expr is a boolean expression.  This is a literal in the and-inverter graph of
// the manager which constructed it, and is only meaningful with respect to that
// manager.  Since the graph is structurally hashed, constructing the same
// expression twice yields the same literal.  Hence, two expressions can be
// compared for identity using ==.
type Expr = z.Lit

// Manager is responsible for constructing (and owning) boolean expressions.
// All expressions are nodes within a single and-inverter graph, where nodes
// are hashed on their operands.  This ensures equal subexpressions are always
// shared, and that trivial simplifications (e.g. x ∧ ¬x = ⊥) are applied on
// construction.
type Manager struct {
	circuit *logic.C
	// Number of variables allocated through this manager.
	nvars uint
}

// NewManager constructs a new (empty) manager.
func NewManager() *Manager {
	return &Manager{logic.NewC(), 0}
}

// NewManagerCap constructs a new (empty) manager with an initial capacity hint
// for the number of nodes.
func NewManagerCap(capacity uint) *Manager {
	return &Manager{logic.NewCCap(int(capacity)), 0}
}

// Truth returns logical truth.
func (p *Manager) Truth() Expr {
	return p.circuit.T
}

// Falsity returns logical falsehood.
func (p *Manager) Falsity() Expr {
	return p.circuit.F
}

// Bool returns either logical truth or falsehood depending on the given value.
func (p *Manager) Bool(val bool) Expr {
	if val {
		return p.circuit.T
	}
	//
	return p.circuit.F
}

// NewVar allocates a fresh (unconstrained) boolean variable.
func (p *Manager) NewVar() Expr {
	p.nvars++
	return p.circuit.Lit()
}

// And constructs the conjunction of two expressions.
func (p *Manager) And(lhs, rhs Expr) Expr {
	return p.circuit.And(lhs, rhs)
}

// Ands constructs the conjunction of zero or more expressions.  The empty
// conjunction is logical truth.
func (p *Manager) Ands(exprs ...Expr) Expr {
	return p.circuit.Ands(exprs...)
}

// Or constructs the disjunction of two expressions.
func (p *Manager) Or(lhs, rhs Expr) Expr {
	return p.circuit.Or(lhs, rhs)
}

// Ors constructs the disjunction of zero or more expressions.  The empty
// disjunction is logical falsehood.
func (p *Manager) Ors(exprs ...Expr) Expr {
	return p.circuit.Ors(exprs...)
}

// Not constructs the negation of an expression.  This never allocates.
func (p *Manager) Not(expr Expr) Expr {
	return expr.Not()
}

// Xor constructs the exclusive-or of two expressions.
func (p *Manager) Xor(lhs, rhs Expr) Expr {
	return p.circuit.Xor(lhs, rhs)
}

// Implies constructs the implication lhs ⇒ rhs.
func (p *Manager) Implies(lhs, rhs Expr) Expr {
	return p.circuit.Implies(lhs, rhs)
}

// Iff constructs the equivalence lhs ⇔ rhs.
func (p *Manager) Iff(lhs, rhs Expr) Expr {
	return p.circuit.Xor(lhs, rhs).Not()
}

// Ite constructs the if-then-else expression "if cond then lhs else rhs".
func (p *Manager) Ite(cond, lhs, rhs Expr) Expr {
	return p.circuit.Choice(cond, lhs, rhs)
}

// IsTrue checks whether a given expression is (syntactically) logical truth.
func (p *Manager) IsTrue(expr Expr) bool {
	return expr == p.circuit.T
}

// IsFalse checks whether a given expression is (syntactically) logical
// falsehood.
func (p *Manager) IsFalse(expr Expr) bool {
	return expr == p.circuit.F
}

// IsConstant checks whether a given expression is either truth or falsehood.
func (p *Manager) IsConstant(expr Expr) bool {
	return expr.Var() == p.circuit.T.Var()
}

// IsVar checks whether a given expression is a (possibly negated) variable,
// rather than a constant or an internal gate.
func (p *Manager) IsVar(expr Expr) bool {
	if p.IsConstant(expr) {
		return false
	}
	//
	lhs, _ := p.circuit.Ins(expr)
	//
	return lhs == z.LitNull
}

// Operands returns the two operands of a gate, with ok set to false when
// the given expression is a variable or a constant.  Observe that operands are
// returned for the underlying (positive) gate, irrespective of whether the
// given literal is negated.
func (p *Manager) Operands(expr Expr) (lhs Expr, rhs Expr, ok bool) {
	if p.IsConstant(expr) {
		return z.LitNull, z.LitNull, false
	}
	//
	lhs, rhs = p.circuit.Ins(expr)
	//
	return lhs, rhs, lhs != z.LitNull
}

// Size returns the number of nodes allocated in the underlying graph.
func (p *Manager) Size() uint {
	return uint(p.circuit.Len())
}

// Vars returns the number of variables allocated through this manager.
func (p *Manager) Vars() uint {
	return p.nvars
}

// Support returns the variables on which a given expression depends, in
// order of first visit.
func (p *Manager) Support(expr Expr) []Expr {
	var (
		support []Expr
		visited = make(map[z.Var]bool)
		stack   = []Expr{expr}
	)
	//
	for len(stack) > 0 {
		n := len(stack) - 1
		ith := stack[n]
		stack = stack[:n]
		//
		if visited[ith.Var()] || p.IsConstant(ith) {
			continue
		}
		//
		visited[ith.Var()] = true
		//
		if lhs, rhs, ok := p.Operands(ith); ok {
			stack = append(stack, rhs, lhs)
		} else {
			support = append(support, ith.Var().Pos())
		}
	}
	//
	return support
}

// String returns a human-readable representation of a given expression, using
// a given function to name variables.  Gates are printed as conjunctions of
// their operands, hence this is mostly useful for debugging small expressions.
func (p *Manager) String(expr Expr, names func(Expr) string) string {
	var builder strings.Builder
	//
	p.write(&builder, expr, names)
	//
	return builder.String()
}

func (p *Manager) write(builder *strings.Builder, expr Expr, names func(Expr) string) {
	switch {
	case p.IsTrue(expr):
		builder.WriteString("⊤")
	case p.IsFalse(expr):
		builder.WriteString("⊥")
	default:
		lhs, rhs, ok := p.Operands(expr)
		//
		if !expr.IsPos() {
			builder.WriteString("¬")
		}
		//
		if !ok {
			builder.WriteString(nameOf(expr.Var().Pos(), names))
			return
		}
		//
		builder.WriteString("(")
		p.write(builder, lhs, names)
		builder.WriteString(" ∧ ")
		p.write(builder, rhs, names)
		builder.WriteString(")")
	}
}

func nameOf(v Expr, names func(Expr) string) string {
	if names != nil {
		if name := names(v); name != "" {
			return name
		}
	}
	//
	return fmt.Sprintf("v%d", v.Var())
}
