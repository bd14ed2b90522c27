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
	"fmt"

	"github.com/consensys/go-bmc/pkg/be"
)

// Variable describes a boolean variable of a transition system.  Every
// variable has an untimed "current" form and, for state variables, an untimed
// "next" form.  These are the forms used to write down the initial states,
// invariants and transition relation of a system.  Timed forms (i.e. the
// variable at a specific step of a path) are allocated on demand.
type Variable struct {
	name  string
	index uint
	input bool
	// Untimed current and next forms.
	current, next be.Expr
}

// Name returns the declared name of this variable.
func (p *Variable) Name() string {
	return p.name
}

// Index returns the index of this variable, which is its position in the
// order of declaration.
func (p *Variable) Index() uint {
	return p.index
}

// IsInput checks whether this is an input variable, rather than a state
// variable.  Input variables are not part of the state, hence they are not
// constrained to repeat along a loop and have no next form.
func (p *Variable) IsInput() bool {
	return p.input
}

// Identifies a variable at a given time.
type timedKey struct {
	index uint
	time  uint
}

// Locates an untimed literal (either the current or next form of a variable).
type untimedVar struct {
	variable *Variable
	next     bool
}

// Encoding is responsible for the boolean encoding of variables, both untimed
// and timed.  This maintains a single global timeline such that, for example,
// variable x at time 3 is always the same boolean variable.  An encoding is
// not safe for concurrent use.
type Encoding struct {
	manager *be.Manager
	// Variables in order of declaration
	vars []*Variable
	// Indices of state variables in order of declaration
	state []uint
	// Variables by name
	names map[string]*Variable
	// Maps untimed boolean variables back to their variable
	untimed map[be.Expr]untimedVar
	// Timed boolean variables allocated so far
	timed map[timedKey]be.Expr
	// Maps timed boolean variables back to their variable and time
	reverse map[be.Expr]timedKey
	// Memoised results of timing untimed expressions, by time.
	shifts map[uint]map[be.Expr]be.Expr
	// Memoised results of shifting current variables to next variables.
	nexts map[be.Expr]be.Expr
}

// NewEncoding constructs an initially empty encoding whose variables are
// allocated from a given manager.
func NewEncoding(manager *be.Manager) *Encoding {
	return &Encoding{
		manager: manager,
		names:   make(map[string]*Variable),
		untimed: make(map[be.Expr]untimedVar),
		timed:   make(map[timedKey]be.Expr),
		reverse: make(map[be.Expr]timedKey),
		shifts:  make(map[uint]map[be.Expr]be.Expr),
		nexts:   make(map[be.Expr]be.Expr),
	}
}

// Manager returns the manager from which all expressions of this encoding are
// constructed.
func (p *Encoding) Manager() *be.Manager {
	return p.manager
}

// DeclareState declares a new state variable with a given name.
func (p *Encoding) DeclareState(name string) (*Variable, error) {
	return p.declare(name, false)
}

// DeclareInput declares a new input variable with a given name.
func (p *Encoding) DeclareInput(name string) (*Variable, error) {
	return p.declare(name, true)
}

func (p *Encoding) declare(name string, input bool) (*Variable, error) {
	if _, ok := p.names[name]; ok {
		return nil, fmt.Errorf("variable \"%s\" already declared", name)
	} else if isConstant(name) {
		return nil, fmt.Errorf("invalid variable name \"%s\"", name)
	}
	//
	v := &Variable{name: name, index: uint(len(p.vars)), input: input}
	v.current = p.manager.NewVar()
	p.untimed[v.current] = untimedVar{v, false}
	//
	if !input {
		v.next = p.manager.NewVar()
		p.untimed[v.next] = untimedVar{v, true}
		p.state = append(p.state, v.index)
	}
	//
	p.vars = append(p.vars, v)
	p.names[name] = v
	//
	return v, nil
}

// Lookup a variable by name.
func (p *Encoding) Lookup(name string) (*Variable, bool) {
	v, ok := p.names[name]
	return v, ok
}

// Variable returns the variable with a given index.
func (p *Encoding) Variable(index uint) *Variable {
	return p.vars[index]
}

// Vars returns all variables in order of declaration.
func (p *Encoding) Vars() []*Variable {
	return p.vars
}

// StateVars returns the indices of all state variables in order of
// declaration.  This order is fixed, hence expressions constructed by
// iterating these are reproducible.
func (p *Encoding) StateVars() []uint {
	return p.state
}

// Current returns the untimed current form of a given variable.
func (p *Encoding) Current(index uint) be.Expr {
	return p.vars[index].current
}

// Next returns the untimed next form of a given state variable.
func (p *Encoding) Next(index uint) be.Expr {
	if p.vars[index].input {
		panic(fmt.Sprintf("input variable %s has no next form", p.vars[index].name))
	}
	//
	return p.vars[index].next
}

// IndexToTimed returns the boolean variable representing a given variable at a
// given time.  This is allocated on first use, and the same variable is
// returned on all subsequent uses.
func (p *Encoding) IndexToTimed(index uint, time uint) be.Expr {
	key := timedKey{index, time}
	//
	if v, ok := p.timed[key]; ok {
		return v
	}
	//
	v := p.manager.NewVar()
	p.timed[key] = v
	p.reverse[v] = key
	//
	return v
}

// TimedVar identifies the variable and time represented by a given timed
// boolean variable.  Negated literals identify the same variable.
func (p *Encoding) TimedVar(expr be.Expr) (*Variable, uint, bool) {
	key, ok := p.reverse[expr.Var().Pos()]
	//
	if !ok {
		return nil, 0, false
	}
	//
	return p.vars[key.index], key.time, true
}

// UntimedToTimed instantiates an untimed expression at a given time.  That is,
// every current variable is replaced by its timed form at the given time, and
// every next variable by its timed form at the following time.  Literals which
// are not untimed variables (e.g. those already timed) are left as is.
func (p *Encoding) UntimedToTimed(expr be.Expr, time uint) be.Expr {
	memo, ok := p.shifts[time]
	//
	if !ok {
		memo = make(map[be.Expr]be.Expr)
		p.shifts[time] = memo
	}
	//
	return p.rebuild(expr, memo, func(leaf be.Expr) be.Expr {
		if u, ok := p.untimed[leaf]; !ok {
			return leaf
		} else if u.next {
			return p.IndexToTimed(u.variable.index, time+1)
		} else {
			return p.IndexToTimed(u.variable.index, time)
		}
	})
}

// UntimedToTimedOrInterval instantiates an untimed expression at every time in
// the inclusive interval [from, to], returning the disjunction.  That is, an
// expression which holds when the given expression holds at some time in the
// interval.  An empty interval gives falsity.
func (p *Encoding) UntimedToTimedOrInterval(expr be.Expr, from, to uint) be.Expr {
	result := p.manager.Falsity()
	//
	for t := from; t <= to && from <= to; t++ {
		result = p.manager.Or(result, p.UntimedToTimed(expr, t))
	}
	//
	return result
}

// UntimedToTimedAndInterval instantiates an untimed expression at every time
// in the inclusive interval [from, to], returning the conjunction.  An empty
// interval gives truth.
func (p *Encoding) UntimedToTimedAndInterval(expr be.Expr, from, to uint) be.Expr {
	result := p.manager.Truth()
	//
	for t := from; t <= to && from <= to; t++ {
		result = p.manager.And(result, p.UntimedToTimed(expr, t))
	}
	//
	return result
}

// IsStateExpr checks whether an untimed expression mentions only the current
// form of state variables.  That is, neither input variables nor next
// variables.
func (p *Encoding) IsStateExpr(expr be.Expr) bool {
	for _, v := range p.manager.Support(expr) {
		if u, ok := p.untimed[v]; !ok || u.next || u.variable.IsInput() {
			return false
		}
	}
	//
	return true
}

// NameOf returns a human-readable name for a boolean variable of this
// encoding, or the empty string if it is not one.  Current variables are named
// as declared, next variables as "next(x)", and timed variables as "x@t".
func (p *Encoding) NameOf(expr be.Expr) string {
	lit := expr.Var().Pos()
	//
	if u, ok := p.untimed[lit]; ok && u.next {
		return fmt.Sprintf("next(%s)", u.variable.name)
	} else if ok {
		return u.variable.name
	} else if key, ok := p.reverse[lit]; ok {
		return fmt.Sprintf("%s@%d", p.vars[key.index].name, key.time)
	}
	//
	return ""
}

// String returns a human-readable representation of an expression over the
// variables of this encoding.
func (p *Encoding) String(expr be.Expr) string {
	return p.manager.String(expr, p.NameOf)
}

// Shift an untimed expression over current variables into the same expression
// over next variables.  This fails if the expression mentions an input
// variable, or a next variable already.
func (p *Encoding) shiftToNext(expr be.Expr) (be.Expr, error) {
	var err error
	//
	result := p.rebuild(expr, p.nexts, func(leaf be.Expr) be.Expr {
		u, ok := p.untimed[leaf]
		//
		switch {
		case !ok:
			return leaf
		case u.next:
			err = fmt.Errorf("nested next of \"%s\"", u.variable.name)
		case u.variable.input:
			err = fmt.Errorf("input variable \"%s\" has no next state", u.variable.name)
		default:
			return u.variable.next
		}
		//
		return leaf
	})
	//
	if err != nil {
		// Don't keep partial results around
		p.nexts = make(map[be.Expr]be.Expr)
		return be.Expr(0), err
	}
	//
	return result, nil
}

// Rebuild an expression by replacing its variables using a given function,
// with results memoised in a given map.  Hence, the replacement must be
// determined by the leaf alone, for any given map.
func (p *Encoding) rebuild(expr be.Expr, memo map[be.Expr]be.Expr, leaf func(be.Expr) be.Expr) be.Expr {
	if p.manager.IsConstant(expr) {
		return expr
	}
	// Work with the positive literal, and negate at the end.
	pos := expr.Var().Pos()
	//
	result, ok := memo[pos]
	//
	if !ok {
		if lhs, rhs, gate := p.manager.Operands(pos); gate {
			l := p.rebuild(lhs, memo, leaf)
			r := p.rebuild(rhs, memo, leaf)
			result = p.manager.And(l, r)
		} else {
			result = leaf(pos)
		}
		//
		memo[pos] = result
	}
	//
	if expr.IsPos() {
		return result
	}
	//
	return result.Not()
}

func isConstant(name string) bool {
	switch name {
	case "true", "TRUE", "false", "FALSE", "next":
		return true
	}
	//
	return false
}
