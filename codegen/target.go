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
	"math"
	"slices"
	"strings"

	"github.com/ajroetker/stategen/expr"
	"github.com/ajroetker/stategen/internal/hostinfo"
	"github.com/ajroetker/stategen/ir"
)

// Target describes how one backend spells declarations, bindings and
// statements. Line formats use {placeholder} substitution points:
//
//	{name}   local variable name
//	{store}  backing store name
//	{type}   element type in generated code (TypeMap)
//	{buffer} buffer element type (BufferMap)
//	{numpy}  numpy dtype name (NumpyMap)
//	{host}   host type of a snapshot value (HostType)
//	{value}  literal value
//	{index}  index expression
//	{cond}   guard variable
type Target struct {
	Name  string // "cython", "cpp"; also the function registry backend
	Title string // "Cython", "C++"

	Syntax expr.Syntax

	TypeMap   map[ir.DType]string // ir.Float64 -> "double"
	BufferMap map[ir.DType]string // ir.Float64 -> "_numpy.float64_t"
	NumpyMap  map[ir.DType]string // ir.Float64 -> "float64"
	HostMap   map[ir.DType]string // snapshot scalar types, ir.Bool -> "bint"

	HostArrayFmt string   // host type of an array snapshot
	DeclareFmt   string   // scratch local
	BindFmt      string   // namespace back-reference
	ConstFmt     string   // constant baked at generation time
	AttrFmt      string   // attribute snapshot
	AttrCountFmt string   // element count of an array-valued attribute
	ViewFmt      []string // contiguous view, raw pointer, element count
	ReadFmt      string
	WriteFmt     string
	GuardFmt     string

	Indent   string // body indentation of a guard
	LineEnd  string // statement terminator
	Comment  string // comment prefix
	NaN, Inf string // non-finite float literals

	BaseCompileArgs []string
}

// GetTarget returns the target configuration for a backend name.
func GetTarget(name string) (Target, error) {
	switch strings.ToLower(name) {
	case "cython":
		return CythonTarget(), nil
	case "cpp", "c++", "weave":
		return CppTarget(), nil
	default:
		return Target{}, fmt.Errorf("unknown target: %s (valid: %s)", name, strings.Join(AvailableTargets(), ", "))
	}
}

// AvailableTargets returns the names accepted by GetTarget.
func AvailableTargets() []string {
	return []string{"cpp", "cython"}
}

func (t Target) fill(format string, args map[string]string) string {
	pairs := make([]string, 0, 2*len(args))
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", args[k])
	}
	return strings.NewReplacer(pairs...).Replace(format)
}

func lookup(m map[ir.DType]string, d ir.DType) string {
	if s, ok := m[d]; ok {
		return s
	}
	return d.String()
}

// DataType returns the element type of d in generated code.
func (t Target) DataType(d ir.DType) string {
	return lookup(t.TypeMap, d)
}

// HostType returns the type used to bind a snapshot value.
func (t Target) HostType(v ir.Value) string {
	if v.Array {
		return t.fill(t.HostArrayFmt, map[string]string{"buffer": lookup(t.BufferMap, v.DType)})
	}
	return lookup(t.HostMap, v.DType)
}

// Literal spells a scalar value as a literal.
func (t Target) Literal(v ir.Value) string {
	switch {
	case v.DType == ir.Bool:
		if v.Bool {
			return t.Syntax.True
		}
		return t.Syntax.False
	case v.DType.IsFloat() && math.IsNaN(v.Float):
		return t.NaN
	case v.DType.IsFloat() && math.IsInf(v.Float, 1):
		return t.Inf
	case v.DType.IsFloat() && math.IsInf(v.Float, -1):
		return "-" + t.Inf
	default:
		return v.String()
	}
}

// Declare returns the declaration of a scratch local.
func (t Target) Declare(name string, d ir.DType) string {
	return t.fill(t.DeclareFmt, map[string]string{"name": name, "type": t.DataType(d)})
}

// Bind returns the line binding name to the namespace entry of the same name.
func (t Target) Bind(name string) string {
	return t.fill(t.BindFmt, map[string]string{"name": name})
}

// Constant returns the declaration of a local holding a fixed value.
func (t Target) Constant(name string, v ir.Value) string {
	return t.fill(t.ConstFmt, map[string]string{"name": name, "host": t.HostType(v), "value": t.Literal(v)})
}

// Attribute returns the lines binding an attribute snapshot. Array-like
// values get a second line with their element count.
func (t Target) Attribute(name string, v ir.Value) []string {
	args := map[string]string{"name": name, "host": t.HostType(v)}
	lines := []string{t.fill(t.AttrFmt, args)}
	if v.Array {
		lines = append(lines, t.fill(t.AttrCountFmt, args))
	}
	return lines
}

// ArrayView returns the lines establishing the fast binding of an array
// variable's backing store: a contiguous typed view, a raw pointer named
// after the store, and the element count.
func (t Target) ArrayView(v ir.Variable) []string {
	args := map[string]string{
		"store":  v.StoreName(),
		"type":   t.DataType(v.DType),
		"buffer": lookup(t.BufferMap, v.DType),
		"numpy":  lookup(t.NumpyMap, v.DType),
	}
	lines := make([]string, len(t.ViewFmt))
	for i, format := range t.ViewFmt {
		lines[i] = t.fill(format, args)
	}
	return lines
}

// Read returns "local = store[index]".
func (t Target) Read(local, store, index string) string {
	return t.fill(t.ReadFmt, map[string]string{"name": local, "store": store, "index": index})
}

// Write returns "store[index] = local".
func (t Target) Write(store, index, local string) string {
	return t.fill(t.WriteFmt, map[string]string{"name": local, "store": store, "index": index})
}

// Statement returns one computation line. Define-once renders as a plain
// assignment; augmented operators are kept.
func (t Target) Statement(target string, op ir.Op, rhs, comment string) string {
	if op == ir.Define {
		op = ir.Assign
	}
	line := target + " " + string(op) + " " + rhs + t.LineEnd
	if comment != "" {
		line += " " + t.Comment + comment
	}
	return line
}

// Guard wraps line in a conditional on cond.
func (t Target) Guard(cond, line string) []string {
	return []string{t.fill(t.GuardFmt, map[string]string{"cond": cond}), t.Indent + line}
}

// CompileArgs returns the compiler flags for generated code: the target's
// base flags followed by the host's native flags.
func (t Target) CompileArgs() []string {
	args := slices.Clone(t.BaseCompileArgs)
	return append(args, hostinfo.CompileFlags()...)
}
