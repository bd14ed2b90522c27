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
	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/ltl"
)

// Spec is a named temporal property of a machine.
type Spec struct {
	Name    string
	Formula *ltl.Formula
}

// Invariant is a named property which should hold in every reachable state
// of a machine.  This is an untimed expression over state variables only.
type Invariant struct {
	Name string
	Expr be.Expr
}

// Machine is a finite-state transition system over boolean variables.  This
// is given by a set of initial states, an invariant which holds in every
// state, and a transition relation between each state and its successor.  All
// three are untimed expressions over the variables of the machine's encoding,
// where only the transition relation may mention next variables.  Finally, a
// machine carries a list of fairness obligations, each of which must hold
// infinitely often along any fair path.
type Machine struct {
	encoding   *Encoding
	init       be.Expr
	invar      be.Expr
	trans      be.Expr
	fairness   []be.Expr
	specs      []Spec
	invariants []Invariant
}

// NewMachine constructs an unconstrained machine over a given encoding.  That
// is, any state is initial and any state can transition to any other.
func NewMachine(encoding *Encoding) *Machine {
	truth := encoding.Manager().Truth()
	return &Machine{encoding, truth, truth, truth, nil, nil, nil}
}

// Encoding returns the variable encoding of this machine.
func (p *Machine) Encoding() *Encoding {
	return p.encoding
}

// Init returns the (untimed) initial state constraint.
func (p *Machine) Init() be.Expr {
	return p.init
}

// Invar returns the (untimed) state invariant.
func (p *Machine) Invar() be.Expr {
	return p.invar
}

// Trans returns the (untimed) transition relation.
func (p *Machine) Trans() be.Expr {
	return p.trans
}

// Fairness returns the fairness obligations of this machine, in the order they
// were added.
func (p *Machine) Fairness() []be.Expr {
	return p.fairness
}

// Specs returns the temporal properties attached to this machine.
func (p *Machine) Specs() []Spec {
	return p.specs
}

// Invariants returns the invariant properties attached to this machine.
func (p *Machine) Invariants() []Invariant {
	return p.invariants
}

// AddInit conjoins a given constraint onto the initial states.
func (p *Machine) AddInit(expr be.Expr) {
	p.init = p.encoding.Manager().And(p.init, expr)
}

// AddInvar conjoins a given constraint onto the state invariant.
func (p *Machine) AddInvar(expr be.Expr) {
	p.invar = p.encoding.Manager().And(p.invar, expr)
}

// AddTrans conjoins a given constraint onto the transition relation.
func (p *Machine) AddTrans(expr be.Expr) {
	p.trans = p.encoding.Manager().And(p.trans, expr)
}

// AddFairness appends a given fairness obligation.
func (p *Machine) AddFairness(expr be.Expr) {
	p.fairness = append(p.fairness, expr)
}

// AddSpec attaches a named temporal property.
func (p *Machine) AddSpec(name string, formula *ltl.Formula) {
	p.specs = append(p.specs, Spec{name, formula})
}

// AddInvariant attaches a named invariant property.
func (p *Machine) AddInvariant(name string, expr be.Expr) {
	p.invariants = append(p.invariants, Invariant{name, expr})
}

// Unroll constructs the unrolling of this machine between two times.  That is,
// the transition relation instantiated at every time in [from, to), and the
// invariant at every time in [from, to].
func (p *Machine) Unroll(from, to uint) be.Expr {
	m := p.encoding.Manager()
	result := p.encoding.UntimedToTimed(p.invar, from)
	//
	for t := from; t < to; t++ {
		trans := p.encoding.UntimedToTimed(p.trans, t)
		invar := p.encoding.UntimedToTimed(p.invar, t+1)
		result = m.And(result, m.And(trans, invar))
	}
	//
	return result
}

// Path constructs the paths of this machine of length k.  That is, the initial
// states at time 0 along with the unrolling between 0 and k.
func (p *Machine) Path(k uint) be.Expr {
	init := p.encoding.UntimedToTimed(p.init, 0)
	return p.encoding.Manager().And(init, p.Unroll(0, k))
}
