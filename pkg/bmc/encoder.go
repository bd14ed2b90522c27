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
	"fmt"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/fsm"
	"github.com/consensys/go-bmc/pkg/ltl"
	log "github.com/sirupsen/logrus"
)

// Encoder translates temporal formulas into boolean expressions which hold
// exactly when the formula holds on a bounded path of a given machine,
// following the bounded semantics of Biere et al.  Paths are either without a
// loop, or with a back-loop from the bound to some earlier time.  Atomic
// propositions are instantiated on the global timeline of the machine's
// encoding, shifted by an offset.  This allows several bounded problems to
// coexist on one timeline.
//
// Every encoding is memoised, such that encoding the same formula with the same
// parameters always returns the identical expression.  An encoder is not safe
// for concurrent use.
type Encoder struct {
	machine  *fsm.Machine
	encoding *fsm.Encoding
	manager  *be.Manager
	table    *ltl.Table
	cache    Cache
}

// NewEncoder constructs an encoder for a given machine.  The table is used to
// construct derived formulas (e.g. negation normal forms) and should be the
// table from which encoded formulas are drawn.
func NewEncoder(machine *fsm.Machine, table *ltl.Table) *Encoder {
	encoding := machine.Encoding()
	return &Encoder{machine, encoding, encoding.Manager(), table, Cache{}}
}

// Machine returns the machine for which this encoder encodes.
func (p *Encoder) Machine() *fsm.Machine {
	return p.machine
}

// Cache returns the memoisation cache of this encoder.
func (p *Encoder) Cache() *Cache {
	return &p.cache
}

// Close releases the memoised encodings of this encoder.  Encoding after
// closing proceeds as though from a fresh encoder.
func (p *Encoder) Close() {
	log.WithFields(log.Fields{
		"entries": p.cache.Len(),
		"hits":    p.cache.Hits(),
		"misses":  p.cache.Misses(),
		"nodes":   p.manager.Size(),
	}).Debug("closing encoder")
	//
	p.cache.Clear()
}

// EncodeNoLoop encodes a formula at a given time on a path of length bound
// without a loop.  Observe that, on such paths, G f never holds.  Hence this
// must not be used to encode a formula on a path which may loop.
func (p *Encoder) EncodeNoLoop(f *ltl.Formula, time, bound, offset int) (be.Expr, error) {
	switch {
	case time < 0:
		return p.manager.Falsity(), &ArgumentError{"time", fmt.Sprintf("time %d is negative", time)}
	case bound < 0:
		return p.manager.Falsity(), &ArgumentError{"bound", fmt.Sprintf("bound %d is negative", bound)}
	case offset < 0:
		return p.manager.Falsity(), &ArgumentError{"offset", fmt.Sprintf("offset %d is negative", offset)}
	}
	//
	return p.noLoop(f, time, bound, offset)
}

// EncodeWithLoop encodes a formula at a given time on a path of length bound
// which loops back from bound to loop.  The loop must be an absolute time
// strictly before the bound, except on paths of length 0 which never loop (and
// on which nothing holds).
func (p *Encoder) EncodeWithLoop(f *ltl.Formula, time, bound int, loop Loop, offset int) (be.Expr, error) {
	switch {
	case time < 0:
		return p.manager.Falsity(), &ArgumentError{"time", fmt.Sprintf("time %d is negative", time)}
	case bound < 0:
		return p.manager.Falsity(), &ArgumentError{"bound", fmt.Sprintf("bound %d is negative", bound)}
	case offset < 0:
		return p.manager.Falsity(), &ArgumentError{"offset", fmt.Sprintf("offset %d is negative", offset)}
	case !loop.IsSingle() || loop < 0 || loop > Loop(bound) || (bound > 0 && loop == Loop(bound)):
		return p.manager.Falsity(), &ArgumentError{"loop", fmt.Sprintf("loop %s outside of [0,%d)", loop, bound)}
	}
	//
	return p.withLoop(f, time, bound, loop, offset)
}

// Memoised entry point for paths without a loop.
func (p *Encoder) noLoop(f *ltl.Formula, time, bound, offset int) (be.Expr, error) {
	key := Key{f, time, bound, NoLoopback, offset}
	//
	if expr, ok := p.cache.Get(key); ok {
		return expr, nil
	}
	//
	expr, err := p.noLoopBody(f, time, bound, offset)
	//
	if err != nil {
		return expr, err
	}
	//
	return expr, p.cache.Put(key, expr)
}

// Memoised entry point for paths with a loop.
func (p *Encoder) withLoop(f *ltl.Formula, time, bound int, loop Loop, offset int) (be.Expr, error) {
	key := Key{f, time, bound, loop, offset}
	//
	if expr, ok := p.cache.Get(key); ok {
		return expr, nil
	}
	//
	expr, err := p.withLoopBody(f, time, bound, loop, offset)
	//
	if err != nil {
		return expr, err
	}
	//
	return expr, p.cache.Put(key, expr)
}

//nolint:gocyclo
func (p *Encoder) noLoopBody(f *ltl.Formula, time, bound, offset int) (be.Expr, error) {
	var (
		m    = p.manager
		next = func(g *ltl.Formula) (be.Expr, error) { return p.noLoop(g, time+1, bound, offset) }
		now  = func(g *ltl.Formula) (be.Expr, error) { return p.noLoop(g, time, bound, offset) }
	)
	//
	if time > bound {
		return m.Falsity(), nil
	}
	//
	switch f.Op() {
	case ltl.OpAnd, ltl.OpOr, ltl.OpXor, ltl.OpImplies, ltl.OpIff:
		return p.binary(f, now)
	case ltl.OpNot:
		arg, err := now(f.Left())
		return m.Not(arg), err
	case ltl.OpNext:
		return next(f.Left())
	case ltl.OpGlobally:
		return m.Falsity(), nil
	case ltl.OpEventually:
		// f(t) | F f(t+1)
		lhs, err1 := now(f.Left())
		rhs, err2 := next(f)
		//
		return m.Or(lhs, rhs), firstError(err1, err2)
	case ltl.OpUntil:
		// q(t) | (p(t) & (p U q)(t+1))
		psi, err1 := now(f.Right())
		phi, err2 := now(f.Left())
		rest, err3 := next(f)
		//
		return m.Or(psi, m.And(phi, rest)), firstError(err1, err2, err3)
	case ltl.OpReleases:
		// q(t) & (p(t) | (p R q)(t+1))
		psi, err1 := now(f.Right())
		phi, err2 := now(f.Left())
		rest, err3 := next(f)
		//
		return m.And(psi, m.Or(phi, rest)), firstError(err1, err2, err3)
	case ltl.OpAtomic:
		return p.propositionAtTime(f, time+offset)
	}
	//
	return m.Falsity(), &UnsupportedOperatorError{f}
}

//nolint:gocyclo
func (p *Encoder) withLoopBody(f *ltl.Formula, time, bound int, loop Loop, offset int) (be.Expr, error) {
	var (
		m  = p.manager
		at = func(g *ltl.Formula, t int) (be.Expr, error) { return p.withLoop(g, t, bound, loop, offset) }
		// First time visited by temporal operators
		start = min(time, int(loop))
	)
	//
	if bound == 0 || time > bound {
		return m.Falsity(), nil
	}
	//
	switch f.Op() {
	case ltl.OpAnd, ltl.OpOr, ltl.OpXor, ltl.OpImplies, ltl.OpIff:
		return p.binary(f, func(g *ltl.Formula) (be.Expr, error) { return at(g, time) })
	case ltl.OpNot:
		arg, err := at(f.Left(), time)
		return m.Not(arg), err
	case ltl.OpNext:
		return at(f.Left(), Successor(bound, loop, time))
	case ltl.OpGlobally:
		result := m.Truth()
		//
		for i := start; i < bound; i++ {
			ith, err := at(f.Left(), i)
			if err != nil {
				return ith, err
			}
			//
			result = m.And(result, ith)
		}
		//
		return result, nil
	case ltl.OpEventually:
		result := m.Falsity()
		//
		for i := start; i < bound; i++ {
			ith, err := at(f.Left(), i)
			if err != nil {
				return ith, err
			}
			//
			result = m.Or(result, ith)
		}
		//
		return result, nil
	case ltl.OpUntil:
		result := m.Falsity()
		// Fold backwards, such that each position sees the one after it.
		for i := bound - 1; i >= start; i-- {
			psi, err1 := at(f.Right(), i)
			phi, err2 := at(f.Left(), i)
			//
			if err := firstError(err1, err2); err != nil {
				return m.Falsity(), err
			}
			//
			result = m.Or(psi, m.And(phi, result))
		}
		//
		return result, nil
	case ltl.OpReleases:
		// The last position of the loop only requires the right-hand side.
		result, err := at(f.Right(), bound-1)
		if err != nil {
			return result, err
		}
		//
		for i := bound - 2; i >= start; i-- {
			psi, err1 := at(f.Right(), i)
			phi, err2 := at(f.Left(), i)
			//
			if err := firstError(err1, err2); err != nil {
				return m.Falsity(), err
			}
			//
			result = m.And(psi, m.Or(phi, result))
		}
		//
		return result, nil
	case ltl.OpAtomic:
		return p.propositionAtTime(f, time+offset)
	}
	//
	return m.Falsity(), &UnsupportedOperatorError{f}
}

// Encode a binary boolean connective, given a function for encoding its
// operands.
func (p *Encoder) binary(f *ltl.Formula, encode func(*ltl.Formula) (be.Expr, error)) (be.Expr, error) {
	m := p.manager
	//
	lhs, err := encode(f.Left())
	if err != nil {
		return lhs, err
	}
	//
	rhs, err := encode(f.Right())
	if err != nil {
		return rhs, err
	}
	//
	switch f.Op() {
	case ltl.OpAnd:
		return m.And(lhs, rhs), nil
	case ltl.OpOr:
		return m.Or(lhs, rhs), nil
	case ltl.OpXor:
		return m.Xor(lhs, rhs), nil
	case ltl.OpImplies:
		return m.Implies(lhs, rhs), nil
	default:
		return m.Iff(lhs, rhs), nil
	}
}

// Convert an atomic proposition into an expression over the variables of the
// machine at a given (global) time.  This is not memoised, since callers
// memoise already.
func (p *Encoder) propositionAtTime(f *ltl.Formula, time int) (be.Expr, error) {
	expr, err := p.encoding.Booleanize(f.Atom(), false)
	//
	if err != nil {
		return p.manager.Falsity(), err
	}
	//
	return p.encoding.UntimedToTimed(expr, uint(time)), nil
}

// LoopCondition constructs the condition that the state at time k equals the
// state at time l.  That is, every state variable has the same value at both
// times.  Input variables are not part of the state, and are unconstrained.
func (p *Encoder) LoopCondition(k int, l int) (be.Expr, error) {
	if k < 0 || l < 0 || l > k {
		return p.manager.Falsity(), &ArgumentError{"loop", fmt.Sprintf("loop %d outside of [0,%d]", l, k)}
	}
	//
	result := p.manager.Truth()
	//
	for _, v := range p.encoding.StateVars() {
		vl := p.encoding.IndexToTimed(v, uint(l))
		vk := p.encoding.IndexToTimed(v, uint(k))
		result = p.manager.And(result, p.manager.Iff(vl, vk))
	}
	//
	return result, nil
}

// FairnessConstraint constructs the condition that every fairness obligation
// of the machine holds somewhere on the loop from k back to l.  There is no
// fair path without a loop, whilst every path of length 0 is (vacuously)
// fair.
func (p *Encoder) FairnessConstraint(k int, l Loop) (be.Expr, error) {
	switch {
	case l.IsNoLoopback():
		return p.manager.Falsity(), nil
	case k == 0:
		return p.manager.Truth(), nil
	case k < 0 || !l.IsSingle() || l < 0 || l > Loop(k):
		return p.manager.Falsity(), &ArgumentError{"loop", fmt.Sprintf("loop %s outside of [0,%d]", l, k)}
	}
	//
	result := p.manager.Truth()
	//
	for _, f := range p.machine.Fairness() {
		holds := p.encoding.UntimedToTimedOrInterval(f, uint(l), uint(k-1))
		result = p.manager.And(result, holds)
	}
	//
	return result, nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	//
	return nil
}
