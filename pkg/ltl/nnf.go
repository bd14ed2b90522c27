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

// NNF converts a formula into negation normal form.  That is, an equivalent
// formula where negations are applied only to atoms, and which uses only
// conjunction and disjunction as boolean connectives.  Temporal operators are
// retained, using the dualities G/F and U/R to push negations inwards.  Past
// operators without a dual in the supported set (Y and S) are left under their
// negation.
func (p *Table) NNF(f *Formula) *Formula {
	return p.nnf(f, false, make(map[nnfKey]*Formula))
}

// Negate constructs the negation normal form of the negation of a formula.
func (p *Table) Negate(f *Formula) *Formula {
	return p.nnf(f, true, make(map[nnfKey]*Formula))
}

type nnfKey struct {
	formula *Formula
	negated bool
}

func (p *Table) nnf(f *Formula, negated bool, cache map[nnfKey]*Formula) *Formula {
	key := nnfKey{f, negated}
	//
	if r, ok := cache[key]; ok {
		return r
	}
	//
	r := p.nnfBody(f, negated, cache)
	cache[key] = r
	//
	return r
}

//nolint:gocyclo
func (p *Table) nnfBody(f *Formula, neg bool, cache map[nnfKey]*Formula) *Formula {
	// positive / negated recursion on the children
	pos := func(g *Formula) *Formula { return p.nnf(g, false, cache) }
	rec := func(g *Formula) *Formula { return p.nnf(g, neg, cache) }
	inv := func(g *Formula) *Formula { return p.nnf(g, !neg, cache) }
	//
	switch f.op {
	case OpAtomic:
		if neg {
			return p.Not(f)
		}
		//
		return f
	case OpNot:
		return inv(f.left)
	case OpAnd:
		if neg {
			return p.Or(rec(f.left), rec(f.right))
		}
		//
		return p.And(rec(f.left), rec(f.right))
	case OpOr:
		if neg {
			return p.And(rec(f.left), rec(f.right))
		}
		//
		return p.Or(rec(f.left), rec(f.right))
	case OpImplies:
		// a -> b == !a | b
		if neg {
			return p.And(pos(f.left), p.nnf(f.right, true, cache))
		}
		//
		return p.Or(p.nnf(f.left, true, cache), pos(f.right))
	case OpIff, OpXor:
		// a <-> b == (a & b) | (!a & !b), whilst xor is its negation
		if neg == (f.op == OpIff) {
			return p.Or(p.And(pos(f.left), p.nnf(f.right, true, cache)),
				p.And(p.nnf(f.left, true, cache), pos(f.right)))
		}
		//
		return p.Or(p.And(pos(f.left), pos(f.right)),
			p.And(p.nnf(f.left, true, cache), p.nnf(f.right, true, cache)))
	case OpNext:
		return p.Next(rec(f.left))
	case OpGlobally:
		if neg {
			return p.Eventually(rec(f.left))
		}
		//
		return p.Globally(rec(f.left))
	case OpEventually:
		if neg {
			return p.Globally(rec(f.left))
		}
		//
		return p.Eventually(rec(f.left))
	case OpUntil:
		if neg {
			return p.Releases(rec(f.left), rec(f.right))
		}
		//
		return p.Until(rec(f.left), rec(f.right))
	case OpReleases:
		if neg {
			return p.Until(rec(f.left), rec(f.right))
		}
		//
		return p.Releases(rec(f.left), rec(f.right))
	case OpOnce:
		if neg {
			return p.Historically(rec(f.left))
		}
		//
		return p.Once(rec(f.left))
	case OpHistorically:
		if neg {
			return p.Once(rec(f.left))
		}
		//
		return p.Historically(rec(f.left))
	}
	// Y and S
	var g *Formula
	//
	if f.right == nil {
		g = p.Make(f.op, pos(f.left), nil)
	} else {
		g = p.Make(f.op, pos(f.left), pos(f.right))
	}
	//
	if neg {
		return p.Not(g)
	}
	//
	return g
}
