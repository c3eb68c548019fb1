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

package ir

import "fmt"

// Namespace is the set of variables visible to one generation pass.
// Iteration follows insertion order so generated code is deterministic.
type Namespace struct {
	names []string
	vars  map[string]Variable
}

// NewNamespace creates a namespace holding the given variables in order.
// A duplicate name is an error: every name resolves to exactly one variable.
func NewNamespace(vars ...Variable) (*Namespace, error) {
	ns := &Namespace{vars: make(map[string]Variable, len(vars))}
	for _, v := range vars {
		if err := ns.Add(v); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

// Add appends a variable to the namespace.
func (ns *Namespace) Add(v Variable) error {
	if v.Name == "" {
		return fmt.Errorf("variable without a name (kind %s)", v.Kind)
	}
	if ns.vars == nil {
		ns.vars = make(map[string]Variable)
	}
	if _, dup := ns.vars[v.Name]; dup {
		return fmt.Errorf("variable %q declared twice", v.Name)
	}
	ns.names = append(ns.names, v.Name)
	ns.vars[v.Name] = v
	return nil
}

// Lookup returns the variable bound to name.
func (ns *Namespace) Lookup(name string) (Variable, bool) {
	v, ok := ns.vars[name]
	return v, ok
}

// Has reports whether name is bound.
func (ns *Namespace) Has(name string) bool {
	_, ok := ns.vars[name]
	return ok
}

// Names returns the variable names in insertion order.
func (ns *Namespace) Names() []string {
	out := make([]string, len(ns.names))
	copy(out, ns.names)
	return out
}

// Variables returns the variables in insertion order.
func (ns *Namespace) Variables() []Variable {
	out := make([]Variable, 0, len(ns.names))
	for _, name := range ns.names {
		out = append(out, ns.vars[name])
	}
	return out
}

// Len returns the number of variables.
func (ns *Namespace) Len() int { return len(ns.names) }

// ConditionalWrites maps each array variable with a write guard to the name
// of its guard variable.
func (ns *Namespace) ConditionalWrites() ConditionalWriteVariables {
	out := make(ConditionalWriteVariables)
	for _, name := range ns.names {
		v := ns.vars[name]
		if v.IsArray() && v.ConditionalWrite != "" {
			out[name] = v.ConditionalWrite
		}
	}
	return out
}

// ConditionalWriteVariables maps a written variable to its guard variable.
// A write is committed only where the guard is true for the current element.
type ConditionalWriteVariables map[string]string

// VariableIndices maps a variable name to the index expression used to
// address its backing store (e.g., "_idx", "_presynaptic_idx", "0").
type VariableIndices map[string]string

// DefaultIndex is the index of vector variables without an explicit entry.
const DefaultIndex = "_idx"

// For returns the index expression of v. Variables without an entry use
// "0" when scalar and DefaultIndex otherwise.
func (vi VariableIndices) For(v Variable) string {
	if idx, ok := vi[v.Name]; ok && idx != "" {
		return idx
	}
	if v.Scalar {
		return "0"
	}
	return DefaultIndex
}
