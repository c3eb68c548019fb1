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

// Package expr parses the arithmetic expressions found on the right-hand
// side of model statements and renders them in a backend's syntax.
//
// The accepted language is the Python-flavoured subset used by model
// equations: numbers, identifiers, calls, unary +/-, the binary operators
// + - * / % **, comparisons, and the boolean operators and/or/not (the C
// spellings &&, || and ! are accepted too). Expressions never contain
// control flow.
package expr

import (
	"errors"
	"fmt"
	"go/scanner"
	"go/token"
)

var (
	// ErrSyntax is returned for expressions outside the accepted language.
	ErrSyntax = errors.New("expression syntax error")

	// ErrUnknownIdentifier is returned when an expression refers to a name
	// that is not bound in the active namespace.
	ErrUnknownIdentifier = errors.New("unknown identifier")
)

// Node is a parsed expression.
type Node interface {
	node()
}

// Ident is a variable reference.
type Ident struct{ Name string }

// Number is a numeric literal, kept in its source spelling.
type Number struct{ Text string }

// BoolLit is True/False.
type BoolLit struct{ Value bool }

// Unary is "-x", "+x" or "not x".
type Unary struct {
	Op string
	X  Node
}

// Binary is "x op y". Op uses the Python spelling ("and", "or", "**", ...).
type Binary struct {
	Op   string
	X, Y Node
}

// Call is "fn(args...)".
type Call struct {
	Func string
	Args []Node
}

func (Ident) node()   {}
func (Number) node()  {}
func (BoolLit) node() {}
func (Unary) node()   {}
func (Binary) node()  {}
func (Call) node()    {}

// item is one lexical token with its byte offset in the source.
type item struct {
	tok    token.Token
	lit    string
	offset int
}

// lex splits src into tokens. Adjacent "*" "*" pairs are merged into a
// single power token, spelled "**". Floor division and C comments are
// rejected.
func lex(src string) ([]item, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, []byte(src), func(pos token.Position, msg string) {
		errs.Add(pos, msg)
	}, scanner.ScanComments)

	var items []item
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.COMMENT {
			// Floor division and C comments are not part of the language.
			return nil, fmt.Errorf("%w: %q: unsupported operator %q", ErrSyntax, src, lit[:2])
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue // inserted by the scanner
		}
		off := file.Offset(pos)
		if tok == token.MUL && len(items) > 0 {
			prev := &items[len(items)-1]
			if prev.tok == token.MUL && prev.lit == "" && prev.offset+1 == off {
				prev.lit = "**"
				continue
			}
		}
		items = append(items, item{tok: tok, lit: lit, offset: off})
	}
	if err := errs.Err(); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, src, err)
	}
	return items, nil
}

// Parse parses one expression.
func Parse(src string) (Node, error) {
	items, err := lex(src)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	p := &parser{src: src, items: items}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.errorf("unexpected %s", p.peek().text())
	}
	return n, nil
}

type parser struct {
	src   string
	items []item
	pos   int
}

func (it item) text() string {
	if it.lit != "" {
		return fmt.Sprintf("%q", it.lit)
	}
	return fmt.Sprintf("%q", it.tok.String())
}

func (p *parser) done() bool { return p.pos >= len(p.items) }

func (p *parser) peek() item {
	if p.done() {
		return item{tok: token.EOF}
	}
	return p.items[p.pos]
}

func (p *parser) next() item {
	it := p.peek()
	p.pos++
	return it
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %q: %s", ErrSyntax, p.src, fmt.Sprintf(format, args...))
}

// isWord reports whether the next token is the identifier w.
func (p *parser) isWord(w string) bool {
	it := p.peek()
	return it.tok == token.IDENT && it.lit == w
}

func (p *parser) parseOr() (Node, error) {
	x, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isWord("or") || p.peek().tok == token.LOR {
		p.next()
		y, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		x = Binary{Op: "or", X: x, Y: y}
	}
	return x, nil
}

func (p *parser) parseAnd() (Node, error) {
	x, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isWord("and") || p.peek().tok == token.LAND {
		p.next()
		y, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		x = Binary{Op: "and", X: x, Y: y}
	}
	return x, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.isWord("not") || p.peek().tok == token.NOT {
		p.next()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Unary{Op: "not", X: x}, nil
	}
	return p.parseCompare()
}

var compareOps = map[token.Token]string{
	token.LSS: "<",
	token.GTR: ">",
	token.LEQ: "<=",
	token.GEQ: ">=",
	token.EQL: "==",
	token.NEQ: "!=",
}

// parseCompare expands a chain "a < b < c" into "a < b and b < c". The
// shared operand is repeated, so it must not contain a call.
func (p *parser) parseCompare() (Node, error) {
	x, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	var out Node
	for {
		op, ok := compareOps[p.peek().tok]
		if !ok {
			break
		}
		p.next()
		y, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		cmp := Binary{Op: op, X: x, Y: y}
		switch {
		case out == nil:
			out = cmp
		case hasCall(x):
			return nil, p.errorf("chained comparison would repeat a call")
		default:
			out = Binary{Op: "and", X: out, Y: cmp}
		}
		x = y
	}
	if out == nil {
		return x, nil
	}
	return out, nil
}

func hasCall(n Node) bool {
	found := false
	Walk(n, func(n Node) {
		if _, ok := n.(Call); ok {
			found = true
		}
	})
	return found
}

func (p *parser) parseSum() (Node, error) {
	x, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.peek().tok {
		case token.ADD:
			op = "+"
		case token.SUB:
			op = "-"
		default:
			return x, nil
		}
		p.next()
		y, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		x = Binary{Op: op, X: x, Y: y}
	}
}

func (p *parser) parseTerm() (Node, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		it := p.peek()
		switch {
		case it.tok == token.MUL && it.lit == "":
			op = "*"
		case it.tok == token.QUO:
			op = "/"
		case it.tok == token.REM:
			op = "%"
		default:
			return x, nil
		}
		p.next()
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = Binary{Op: op, X: x, Y: y}
	}
}

func (p *parser) parseUnary() (Node, error) {
	switch p.peek().tok {
	case token.SUB, token.ADD:
		op := "-"
		if p.next().tok == token.ADD {
			op = "+"
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: op, X: x}, nil
	}
	return p.parsePower()
}

// parsePower handles "**", which binds tighter than unary minus on its
// left and is right associative: -a**-b == -(a**(-b)).
func (p *parser) parsePower() (Node, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if it := p.peek(); it.tok == token.MUL && it.lit == "**" {
		p.next()
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Binary{Op: "**", X: x, Y: y}, nil
	}
	return x, nil
}

func (p *parser) parsePrimary() (Node, error) {
	it := p.next()
	switch it.tok {
	case token.INT, token.FLOAT:
		return Number{Text: it.lit}, nil
	case token.IDENT:
		switch it.lit {
		case "True", "true":
			return BoolLit{Value: true}, nil
		case "False", "false":
			return BoolLit{Value: false}, nil
		case "and", "or", "not":
			return nil, p.errorf("unexpected %q", it.lit)
		}
		if p.peek().tok != token.LPAREN {
			return Ident{Name: it.lit}, nil
		}
		p.next()
		call := Call{Func: it.lit}
		if p.peek().tok == token.RPAREN {
			p.next()
			return call, nil
		}
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			switch p.next().tok {
			case token.COMMA:
				continue
			case token.RPAREN:
				return call, nil
			default:
				return nil, p.errorf("unterminated call to %s", it.lit)
			}
		}
	case token.LPAREN:
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next().tok != token.RPAREN {
			return nil, p.errorf("missing )")
		}
		return x, nil
	case token.EOF:
		return nil, p.errorf("unexpected end of expression")
	default:
		return nil, p.errorf("unexpected %s", it.text())
	}
}
