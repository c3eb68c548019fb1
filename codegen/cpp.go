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
	"github.com/ajroetker/stategen/expr"
	"github.com/ajroetker/stategen/ir"
)

// CppTarget returns the target configuration for weave-style C++: the
// namespace is a py::object dictionary and arrays are bound through the raw
// data pointer of their PyArrayObject.
func CppTarget() Target {
	return Target{
		Name:   "cpp",
		Title:  "C++",
		Syntax: expr.C,
		TypeMap: map[ir.DType]string{
			ir.Int32:   "int32_t",
			ir.Int64:   "int64_t",
			ir.Float32: "float",
			ir.Float64: "double",
			ir.Bool:    "char",
		},
		BufferMap: map[ir.DType]string{
			ir.Int32:   "int32_t",
			ir.Int64:   "int64_t",
			ir.Float32: "float",
			ir.Float64: "double",
			ir.Bool:    "char",
		},
		NumpyMap: map[ir.DType]string{
			ir.Int32:   "int32",
			ir.Int64:   "int64",
			ir.Float32: "float32",
			ir.Float64: "float64",
			ir.Bool:    "bool_",
		},
		HostMap: map[ir.DType]string{
			ir.Int32:   "long",
			ir.Int64:   "long",
			ir.Float32: "double",
			ir.Float64: "double",
			ir.Bool:    "bool",
		},
		HostArrayFmt: "py::object",
		DeclareFmt:   "{type} {name};",
		BindFmt:      `py::object {name} = _namespace["{name}"];`,
		ConstFmt:     "const {host} {name} = {value};",
		AttrFmt:      `const {host} {name} = _namespace["{name}"];`,
		AttrCountFmt: `const int _num{name} = {name}.attr("shape")[0];`,
		ViewFmt: []string{
			`py::object _obj_{store} = _namespace["{store}"];`,
			"{type} * __restrict {store} = ({type} *)(((PyArrayObject*)(PyObject*)_obj_{store})->data);",
			`const int _num{store} = _obj_{store}.attr("shape")[0];`,
		},
		ReadFmt:  "{name} = {store}[{index}];",
		WriteFmt: "{store}[{index}] = {name};",
		GuardFmt: "if({cond})",
		Indent:   "    ",
		LineEnd:  ";",
		Comment:  "// ",
		NaN:      "NAN",
		Inf:      "INFINITY",

		BaseCompileArgs: []string{"-w", "-O3", "-ffast-math", "-fno-finite-math-only"},
	}
}
