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

	"github.com/consensys/go-bmc/pkg/util/source"
	"github.com/consensys/go-bmc/pkg/util/source/sexp"
)

// Operators recognised at the head of a list, along with their aliases.
var operators = map[string]Op{
	"and":     OpAnd,
	"&":       OpAnd,
	"or":      OpOr,
	"|":       OpOr,
	"xor":     OpXor,
	"not":     OpNot,
	"!":       OpNot,
	"->":      OpImplies,
	"implies": OpImplies,
	"<->":     OpIff,
	"iff":     OpIff,
	"X":       OpNext,
	"G":       OpGlobally,
	"F":       OpEventually,
	"U":       OpUntil,
	"R":       OpReleases,
	"V":       OpReleases,
	"Y":       OpPrevious,
	"O":       OpOnce,
	"H":       OpHistorically,
	"S":       OpSince,
}

// ParseString parses a formula from a given string.  This is a convenience
// for formulas given on the command line.
func ParseString(table *Table, text string) (*Formula, error) {
	formula, _, errs := Parse(table, source.NewFile("<formula>", []byte(text)))
	//
	if len(errs) > 0 {
		return nil, &errs[0]
	}
	//
	return formula, nil
}

// Parse a formula given as a single S-expression.  Lists headed by a temporal
// or boolean operator are translated into the corresponding formula, whilst
// everything else (symbols and other lists) becomes an atomic proposition.
// For example, "(G (-> req (F (== ack 1))))".
func Parse(table *Table, file *source.File) (*Formula, *source.Map[*Formula], []source.SyntaxError) {
	term, srcmap, err := sexp.Parse(file)
	//
	if err != nil {
		return nil, nil, []source.SyntaxError{*err}
	}
	//
	translator := NewTranslator(table, srcmap)
	formula, errs := translator.Translate(term)
	//
	if len(errs) > 0 {
		return nil, nil, errs
	}
	//
	return formula, translator.SourceMap(), nil
}

// NewTranslator constructs a translator from S-expressions into formulas.
// This is exposed so that formulas embedded in larger files can be translated
// against the source map of the enclosing file.
func NewTranslator(table *Table, srcmap *source.Map[sexp.SExp]) *sexp.Translator[*Formula] {
	p := sexp.NewTranslator[*Formula](srcmap)
	//
	for name, op := range operators {
		p.AddRecursiveListRule(name, operatorRule(table, op))
	}
	// Everything else is atomic
	p.AddSymbolRule(func(s *sexp.Symbol) (*Formula, bool, error) {
		return table.Atom(s), true, nil
	})
	p.AddDefaultListRule(func(l *sexp.List) (*Formula, []source.SyntaxError) {
		if l.Len() == 0 {
			return nil, p.SyntaxErrors(l, "empty atomic proposition")
		}
		//
		return table.Atom(l), nil
	})
	//
	return p
}

func operatorRule(table *Table, op Op) sexp.RecursiveRule[*Formula] {
	return func(name string, args []*Formula) (*Formula, error) {
		switch {
		case (op == OpAnd || op == OpOr) && len(args) >= 2:
			// n-ary connectives associate to the left
			r := table.Make(op, args[0], args[1])
			//
			for _, arg := range args[2:] {
				r = table.Make(op, r, arg)
			}
			//
			return r, nil
		case op == OpAnd || op == OpOr:
			return nil, fmt.Errorf("%s requires at least two arguments", name)
		case uint(len(args)) != op.Arity() && op.Arity() == 1:
			return nil, fmt.Errorf("%s requires exactly one argument", name)
		case uint(len(args)) != op.Arity():
			return nil, fmt.Errorf("%s requires exactly two arguments", name)
		case op.Arity() == 1:
			return table.Make(op, args[0], nil), nil
		default:
			return table.Make(op, args[0], args[1]), nil
		}
	}
}
