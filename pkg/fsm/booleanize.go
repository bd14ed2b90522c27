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
	"github.com/consensys/go-bmc/pkg/util/source/sexp"
)

// UnknownVariableError indicates an expression refers to a variable which has
// not been declared.
type UnknownVariableError struct {
	// Symbol naming the variable
	Expr sexp.SExp
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable \"%s\"", e.Expr)
}

// MalformedExpressionError indicates an expression which cannot be converted
// into a boolean expression, for example because an operator is applied to the
// wrong number of arguments.
type MalformedExpressionError struct {
	Expr   sexp.SExp
	Reason string
}

func (e *MalformedExpressionError) Error() string {
	return fmt.Sprintf("malformed expression %s (%s)", e.Expr, e.Reason)
}

// Booleanize converts a raw expression over the variables of this encoding
// into an untimed boolean expression.  The following forms are supported,
// where n-ary operators accept one or more arguments:
//
//	true, false, x
//	(not e), (! e)
//	(and e...), (& e...), (or e...), (| e...)
//	(xor e e), (-> e e), (<-> e e), (== e e), (!= e e)
//	(ite c e e)
//
// Furthermore, (next e) is supported only when allowNext holds, as is the case
// for transition relations.
func (p *Encoding) Booleanize(raw sexp.SExp, allowNext bool) (be.Expr, error) {
	if s := raw.AsSymbol(); s != nil {
		return p.booleanizeSymbol(s)
	}
	//
	list := raw.AsList()
	args := make([]be.Expr, 0, list.Len())
	//
	if list.Len() == 0 || list.Get(0).AsSymbol() == nil {
		return be.Expr(0), &MalformedExpressionError{raw, "expected operator"}
	}
	//
	for _, arg := range list.Elements[1:] {
		e, err := p.Booleanize(arg, allowNext)
		if err != nil {
			return be.Expr(0), err
		}
		//
		args = append(args, e)
	}
	//
	return p.booleanizeList(list, args, allowNext)
}

func (p *Encoding) booleanizeSymbol(s *sexp.Symbol) (be.Expr, error) {
	switch s.Value {
	case "true", "TRUE", "1":
		return p.manager.Truth(), nil
	case "false", "FALSE", "0":
		return p.manager.Falsity(), nil
	}
	//
	if v, ok := p.names[s.Value]; ok {
		return v.current, nil
	}
	//
	return be.Expr(0), &UnknownVariableError{s}
}

func (p *Encoding) booleanizeList(list *sexp.List, args []be.Expr, allowNext bool) (be.Expr, error) {
	var (
		m     = p.manager
		arity = -1
	)
	//
	switch list.Head() {
	case "not", "!", "next":
		arity = 1
	case "xor", "->", "implies", "<->", "iff", "==", "!=":
		arity = 2
	case "ite":
		arity = 3
	case "and", "&", "or", "|":
		if len(args) == 0 {
			return be.Expr(0), &MalformedExpressionError{list, "expected one or more arguments"}
		}
	default:
		return be.Expr(0), &MalformedExpressionError{list, fmt.Sprintf("unknown operator \"%s\"", list.Head())}
	}
	//
	if arity >= 0 && len(args) != arity {
		return be.Expr(0), &MalformedExpressionError{list, fmt.Sprintf("expected %d arguments", arity)}
	}
	//
	switch list.Head() {
	case "not", "!":
		return m.Not(args[0]), nil
	case "next":
		if !allowNext {
			return be.Expr(0), &MalformedExpressionError{list, "next not permitted here"}
		}
		//
		e, err := p.shiftToNext(args[0])
		if err != nil {
			return be.Expr(0), &MalformedExpressionError{list, err.Error()}
		}
		//
		return e, nil
	case "and", "&":
		return m.Ands(args...), nil
	case "or", "|":
		return m.Ors(args...), nil
	case "xor", "!=":
		return m.Xor(args[0], args[1]), nil
	case "->", "implies":
		return m.Implies(args[0], args[1]), nil
	case "<->", "iff", "==":
		return m.Iff(args[0], args[1]), nil
	default:
		return m.Ite(args[0], args[1], args[2]), nil
	}
}
