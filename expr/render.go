// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package expr

import (
	"fmt"
	"strings"
)

// Syntax describes how a backend spells the operators that differ between
// languages.
type Syntax struct {
	And, Or, Not string // "and"/"&&", ...
	True, False  string // "True"/"true", ...

	// PowerFunc is the call used for "**", e.g. "pow". Empty keeps the infix
	// operator.
	PowerFunc string

	// TightNot makes the negation operator bind like a unary operator (C)
	// rather than below comparisons (Python).
	TightNot bool
}

// Python is the syntax of Python and Cython.
var Python = Syntax{And: "and", Or: "or", Not: "not ", True: "True", False: "False"}

// C is the syntax of C and C++.
var C = Syntax{And: "&&", Or: "||", Not: "!", True: "true", False: "false", PowerFunc: "pow", TightNot: true}

// Operator precedence, loosest first.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCompare
	precSum
	precTerm
	precUnary
	precPower
	precAtom
)

func binaryPrec(op string) int {
	switch op {
	case "or":
		return precOr
	case "and":
		return precAnd
	case "<", ">", "<=", ">=", "==", "!=":
		return precCompare
	case "+", "-":
		return precSum
	case "*", "/", "%":
		return precTerm
	case "**":
		return precPower
	default:
		return precAtom
	}
}

// Render parses src and prints it in this syntax with the minimal set of
// parentheses. The result is trimmed and never contains control flow.
func (s Syntax) Render(src string, known func(name string) bool) (string, error) {
	n, err := Parse(src)
	if err != nil {
		return "", err
	}
	if known != nil {
		if err := checkKnown(n, known); err != nil {
			return "", err
		}
	}
	out, _ := s.render(n)
	return strings.TrimSpace(out), nil
}

func checkKnown(n Node, known func(string) bool) error {
	var err error
	Walk(n, func(n Node) {
		if err != nil {
			return
		}
		var name string
		switch n := n.(type) {
		case Ident:
			name = n.Name
		case Call:
			name = n.Func
		default:
			return
		}
		if !known(name) {
			err = fmt.Errorf("%w: %s", ErrUnknownIdentifier, name)
		}
	})
	return err
}

func wrap(text string, prec, min int) string {
	if prec < min {
		return "(" + text + ")"
	}
	return text
}

// render returns the text of n and its precedence.
func (s Syntax) render(n Node) (string, int) {
	switch n := n.(type) {
	case Ident:
		return n.Name, precAtom
	case Number:
		return n.Text, precAtom
	case BoolLit:
		if n.Value {
			return s.True, precAtom
		}
		return s.False, precAtom
	case Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i], _ = s.render(a)
		}
		return n.Func + "(" + strings.Join(args, ", ") + ")", precAtom
	case Unary:
		x, xp := s.render(n.X)
		if n.Op == "not" {
			if s.TightNot {
				return s.Not + wrap(x, xp, precUnary), precUnary
			}
			return s.Not + wrap(x, xp, precNot), precNot
		}
		text := wrap(x, xp, precUnary)
		if strings.HasPrefix(text, "-") || strings.HasPrefix(text, "+") {
			text = "(" + text + ")" // keep "- -x" from becoming "--x"
		}
		return n.Op + text, precUnary
	case Binary:
		return s.renderBinary(n)
	default:
		panic(fmt.Sprintf("expr: unexpected node %T", n))
	}
}

func (s Syntax) renderBinary(n Binary) (string, int) {
	x, xp := s.render(n.X)
	y, yp := s.render(n.Y)
	p := binaryPrec(n.Op)

	if n.Op == "**" {
		if s.PowerFunc != "" {
			return s.PowerFunc + "(" + x + ", " + y + ")", precAtom
		}
		// Right associative; a unary operand on the right needs no parens.
		return wrap(x, xp, precPower+1) + " ** " + wrap(y, yp, precUnary), precPower
	}

	op := n.Op
	switch op {
	case "and":
		op = s.And
	case "or":
		op = s.Or
	}
	left := wrap(x, xp, p)
	if p == precCompare {
		// Chains are expanded by the parser; a nested comparison is explicit.
		left = wrap(x, xp, p+1)
	}
	return left + " " + op + " " + wrap(y, yp, p+1), p
}

// Walk calls fn for n and every node below it, parents first.
func Walk(n Node, fn func(Node)) {
	fn(n)
	switch n := n.(type) {
	case Unary:
		Walk(n.X, fn)
	case Binary:
		Walk(n.X, fn)
		Walk(n.Y, fn)
	case Call:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	}
}
