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
package bmc

import (
	"github.com/consensys/go-bmc/pkg/fsm"
)

// Trace is a finite path through a machine, given as the values of every
// variable at every step.  A trace may loop back from its last step to an
// earlier one, in which case it represents an infinite path.
type Trace struct {
	vars []*fsm.Variable
	// Values of each variable (by index) at each step.
	states [][]bool
	// Step to which the last step loops back (if any)
	loopback Loop
}

func newTrace(vars []*fsm.Variable, states [][]bool, loopback Loop) *Trace {
	return &Trace{vars, states, loopback}
}

// Vars returns the variables of this trace in order of declaration.
func (p *Trace) Vars() []*fsm.Variable {
	return p.vars
}

// Len returns the number of steps in this trace.
func (p *Trace) Len() uint {
	return uint(len(p.states))
}

// Value returns the value of a given variable at a given step.
func (p *Trace) Value(step uint, v *fsm.Variable) bool {
	return p.states[step][v.Index()]
}

// Loopback returns the step to which the last step of this trace loops back,
// or NoLoopback if it does not loop.  This is the loop on which the violation
// was found, rather than simply any earlier step with the same state.
func (p *Trace) Loopback() Loop {
	return p.loopback
}
