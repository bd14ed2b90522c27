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
	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/ltl"
)

// Key identifies a single encoding problem.  Since formulas are interned,
// equal keys identify the same problem.  Encodings of paths without a loop use
// NoLoopback for the loop.
type Key struct {
	Formula *ltl.Formula
	Time    int
	Bound   int
	Loop    Loop
	Offset  int
}

// Cache memoises encodings.  Once a key is bound, it remains bound to the same
// expression until the cache is cleared.  A cache is not safe for concurrent
// use.
type Cache struct {
	// Allocated on first use
	entries map[Key]be.Expr
	hits    uint
	misses  uint
}

// Get looks up the expression bound to a given key.
func (p *Cache) Get(key Key) (be.Expr, bool) {
	expr, ok := p.entries[key]
	//
	if ok {
		p.hits++
	} else {
		p.misses++
	}
	//
	return expr, ok
}

// Put binds a given key to a given expression.  Rebinding a key to the same
// expression has no effect, whilst rebinding it to a different expression
// fails.
func (p *Cache) Put(key Key, expr be.Expr) error {
	if p.entries == nil {
		p.entries = make(map[Key]be.Expr)
	}
	//
	if cached, ok := p.entries[key]; ok && cached != expr {
		return &ConsistencyError{key, cached, expr}
	}
	//
	p.entries[key] = expr
	//
	return nil
}

// Clear discards all entries.  This can be called any number of times,
// including on a cache which was never used.
func (p *Cache) Clear() {
	p.entries = nil
}

// Len returns the number of bound keys.
func (p *Cache) Len() uint {
	return uint(len(p.entries))
}

// Hits returns the number of successful lookups since construction.
func (p *Cache) Hits() uint {
	return p.hits
}

// Misses returns the number of failed lookups since construction.
func (p *Cache) Misses() uint {
	return p.misses
}
