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
	"slices"

	"github.com/samber/lo"

	"github.com/ajroetker/stategen/expr"
	"github.com/ajroetker/stategen/ir"
)

// Access is the array traffic of one statement sequence.
type Access struct {
	Indices []string // index variables, loaded first
	Read    []string // array variables loaded before the computation
	Write   []string // array variables stored after the computation

	// Guards maps each written variable to its conditional-write guard.
	Guards ir.ConditionalWriteVariables
}

// Analyze derives the read, write and index sets of stmts from their use
// pattern. An identifier counts as read when an expression (or an augmented
// assignment) uses it before a define-once statement introduces it. A
// guarded variable and its guard are both read so that elements where the
// guard is false write back their old value. Only array-backed variables
// take part; the sets are sorted.
func Analyze(stmts []ir.Statement, ns *ir.Namespace, indices ir.VariableIndices) (Access, error) {
	var read, write []string
	defined := make(map[string]bool)
	for _, stmt := range stmts {
		ids, err := expr.Identifiers(stmt.Expr)
		if err != nil {
			return Access{}, fmt.Errorf("statement %q: %w", stmt.String(), err)
		}
		read = append(read, lo.Filter(ids, func(id string, _ int) bool { return !defined[id] })...)
		if stmt.Op.Inplace() && !defined[stmt.Var] {
			read = append(read, stmt.Var)
		}
		write = append(write, stmt.Var)
		if stmt.Op == ir.Define {
			defined[stmt.Var] = true
		}
	}

	isArray := func(name string, _ int) bool {
		v, ok := ns.Lookup(name)
		return ok && v.IsArray()
	}
	write = lo.Uniq(lo.Filter(write, isArray))

	all := ns.ConditionalWrites()
	guards := make(ir.ConditionalWriteVariables)
	for _, name := range write {
		if guard, ok := all[name]; ok {
			guards[name] = guard
			read = append(read, name, guard)
		}
	}
	read = lo.Uniq(lo.Filter(read, isArray))

	var index []string
	for _, name := range lo.Union(read, write) {
		v, _ := ns.Lookup(name)
		if idx := indices.For(v); isArray(idx, 0) {
			index = append(index, idx)
		}
	}
	index = lo.Uniq(index)
	read = lo.Without(read, index...)

	slices.Sort(index)
	slices.Sort(read)
	slices.Sort(write)
	return Access{Indices: index, Read: read, Write: write, Guards: guards}, nil
}
