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
	"errors"
	"fmt"

	"github.com/consensys/go-bmc/pkg/be"
	"github.com/consensys/go-bmc/pkg/ltl"
	"github.com/consensys/go-bmc/pkg/util/source"
	"github.com/consensys/go-bmc/pkg/util/source/sexp"
)

// ReadModel reads a machine from a model file.  A model file is a sequence of
// declarations, given as S-expressions, of the following forms:
//
//	(var x y ...)        ;; state variables
//	(input i j ...)      ;; input variables
//	(init e)             ;; initial state constraint
//	(invar e)            ;; state invariant
//	(trans e)            ;; transition relation, may use (next e)
//	(fairness e)         ;; fairness obligation
//	(ltlspec [name] f)   ;; temporal property
//	(invarspec [name] e) ;; invariant property over state variables
//
// Variables may be used before their declaration, and constraints of the same
// kind are conjoined.  Atomic propositions of temporal properties are not
// checked here, since they are only converted on use.  The returned source map
// covers every S-expression of the file, including those atomic propositions,
// allowing later errors to be reported against the file.
func ReadModel(file *source.File, table *ltl.Table, manager *be.Manager) (*Machine, *source.Map[sexp.SExp],
	[]source.SyntaxError) {
	//
	terms, srcmap, err := sexp.ParseAll(file)
	if err != nil {
		return nil, nil, []source.SyntaxError{*err}
	}
	//
	reader := &modelReader{
		machine:    NewMachine(NewEncoding(manager)),
		srcmap:     srcmap,
		translator: ltl.NewTranslator(table, srcmap),
	}
	// Declarations first
	for _, term := range terms {
		reader.readDeclaration(term)
	}
	// Constraints second
	if len(reader.errors) == 0 {
		for _, term := range terms {
			reader.readConstraint(term)
		}
	}
	//
	if len(reader.errors) != 0 {
		return nil, nil, reader.errors
	}
	//
	return reader.machine, srcmap, nil
}

type modelReader struct {
	machine    *Machine
	srcmap     *source.Map[sexp.SExp]
	translator *sexp.Translator[*ltl.Formula]
	errors     []source.SyntaxError
}

func (p *modelReader) readDeclaration(term sexp.SExp) {
	var (
		encoding = p.machine.Encoding()
		list     = term.AsList()
	)
	//
	if list == nil || list.Len() == 0 || list.Head() == "" {
		p.error(term, "invalid declaration")
		return
	} else if list.Head() != "var" && list.Head() != "input" {
		return
	} else if list.Len() == 1 {
		p.error(term, "expected one or more variables")
		return
	}
	//
	for _, element := range list.Elements[1:] {
		var err error
		//
		if s := element.AsSymbol(); s == nil {
			err = errors.New("invalid variable name")
		} else if list.Head() == "var" {
			_, err = encoding.DeclareState(s.Value)
		} else {
			_, err = encoding.DeclareInput(s.Value)
		}
		//
		if err != nil {
			p.error(element, err.Error())
		}
	}
}

func (p *modelReader) readConstraint(term sexp.SExp) {
	list := term.AsList()
	//
	switch list.Head() {
	case "var", "input":
		return
	case "init":
		p.readExpr(list, false, p.machine.AddInit)
	case "invar":
		p.readExpr(list, false, p.machine.AddInvar)
	case "trans":
		p.readExpr(list, true, p.machine.AddTrans)
	case "fairness", "justice":
		p.readExpr(list, false, p.machine.AddFairness)
	case "ltlspec":
		p.readSpec(list)
	case "invarspec":
		p.readInvariant(list)
	default:
		p.error(term, fmt.Sprintf("unknown declaration \"%s\"", list.Head()))
	}
}

func (p *modelReader) readExpr(list *sexp.List, allowNext bool, add func(be.Expr)) {
	if list.Len() != 2 {
		p.error(list, fmt.Sprintf("%s requires exactly one expression", list.Head()))
		return
	}
	//
	expr, err := p.machine.Encoding().Booleanize(list.Get(1), allowNext)
	//
	if err != nil {
		p.conversionError(list.Get(1), err)
		return
	}
	//
	add(expr)
}

func (p *modelReader) readSpec(list *sexp.List) {
	var name string
	//
	switch {
	case list.Len() == 2:
		name = fmt.Sprintf("spec_%d", len(p.machine.Specs()))
	case list.Len() == 3 && list.Get(1).AsSymbol() != nil:
		name = list.Get(1).AsSymbol().Value
	default:
		p.error(list, "expected (ltlspec [name] formula)")
		return
	}
	//
	formula, errs := p.translator.Translate(list.Get(list.Len() - 1))
	//
	if len(errs) != 0 {
		p.errors = append(p.errors, errs...)
		return
	}
	//
	p.machine.AddSpec(name, formula)
}

func (p *modelReader) readInvariant(list *sexp.List) {
	var (
		encoding = p.machine.Encoding()
		name     string
	)
	//
	switch {
	case list.Len() == 2:
		name = fmt.Sprintf("invar_%d", len(p.machine.Invariants()))
	case list.Len() == 3 && list.Get(1).AsSymbol() != nil:
		name = list.Get(1).AsSymbol().Value
	default:
		p.error(list, "expected (invarspec [name] expression)")
		return
	}
	//
	term := list.Get(list.Len() - 1)
	expr, err := encoding.Booleanize(term, false)
	//
	if err != nil {
		p.conversionError(term, err)
	} else if !encoding.IsStateExpr(expr) {
		p.error(term, "invariant cannot mention input variables")
	} else {
		p.machine.AddInvariant(name, expr)
	}
}

// Report a failure to convert an expression, using the most specific
// S-expression available.
func (p *modelReader) conversionError(term sexp.SExp, err error) {
	var (
		unknown   *UnknownVariableError
		malformed *MalformedExpressionError
	)
	//
	switch {
	case errors.As(err, &unknown):
		term = unknown.Expr
	case errors.As(err, &malformed):
		term = malformed.Expr
	}
	//
	p.error(term, err.Error())
}

func (p *modelReader) error(term sexp.SExp, msg string) {
	p.errors = append(p.errors, *p.srcmap.SyntaxError(term, msg))
}
