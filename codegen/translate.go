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

package codegen

import (
	"fmt"

	"github.com/ajroetker/stategen/expr"
	"github.com/ajroetker/stategen/ir"
)

// TranslateExpression renders one expression for the target, calling every
// function bound in ns by its resolved name.
func (g *Generator) TranslateExpression(src string, ns *ir.Namespace) (string, error) {
	p := newPass(g, ns, nil)
	for _, v := range ns.Variables() {
		if v.Kind != ir.Function {
			continue
		}
		if err := p.classifyFunction(v); err != nil {
			return "", fmt.Errorf("variable %s: %w", v.Name, err)
		}
	}
	return p.translateExpr(src)
}

// TranslateStatements translates one sequence of statements sharing a phase
// into read, computation and write-back lines.
func (g *Generator) TranslateStatements(stmts []ir.Statement, ns *ir.Namespace, indices ir.VariableIndices) ([]string, error) {
	p := newPass(g, ns, indices)
	for _, v := range ns.Variables() {
		if err := p.classify(v); err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
	}
	if err := p.checkGuards(); err != nil {
		return nil, err
	}
	return p.translateSequence(stmts)
}

// translateExpr substitutes resolved call names, then renders. Only
// identifiers bound to function variables are renamed.
func (p *pass) translateExpr(src string) (string, error) {
	renamed, err := expr.Substitute(src, p.renames)
	if err != nil {
		return "", err
	}
	return p.target.Syntax.Render(renamed, p.known)
}

func (p *pass) translateStatement(stmt ir.Statement) (string, error) {
	if !stmt.Op.Valid() {
		return "", fmt.Errorf("statement %q: unknown operator %q", stmt.String(), stmt.Op)
	}
	if !p.ns.Has(stmt.Var) {
		return "", fmt.Errorf("statement %q: %w: %s", stmt.String(), expr.ErrUnknownIdentifier, stmt.Var)
	}
	rhs, err := p.translateExpr(stmt.Expr)
	if err != nil {
		return "", fmt.Errorf("statement %q: %w", stmt.String(), err)
	}
	return p.target.Statement(stmt.Var, stmt.Op, rhs, stmt.Comment), nil
}

// translateSequence emits index reads, value reads, the statements in
// order, then write-backs. A statement whose target has a guard is emitted
// only inside the guard's conditional.
func (p *pass) translateSequence(stmts []ir.Statement) ([]string, error) {
	if len(stmts) == 0 {
		return nil, nil
	}
	acc, err := Analyze(stmts, p.ns, p.indices)
	if err != nil {
		return nil, err
	}

	t := p.target
	var lines []string
	for _, name := range append(acc.Indices, acc.Read...) {
		v, _ := p.ns.Lookup(name)
		lines = append(lines, t.Read(name, v.StoreName(), p.indices.For(v)))
	}
	for _, stmt := range stmts {
		line, err := p.translateStatement(stmt)
		if err != nil {
			return nil, err
		}
		if guard, ok := acc.Guards[stmt.Var]; ok {
			lines = append(lines, t.Guard(guard, line)...)
		} else {
			lines = append(lines, line)
		}
	}
	for _, name := range acc.Write {
		v, _ := p.ns.Lookup(name)
		lines = append(lines, t.Write(v.StoreName(), p.indices.For(v), name))
	}
	return lines, nil
}
