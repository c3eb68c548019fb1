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

// CythonTarget returns the target configuration for Cython. Arrays are
// bound through numpy buffers; booleans are stored one byte per element.
func CythonTarget() Target {
	return Target{
		Name:   "cython",
		Title:  "Cython",
		Syntax: expr.Python,
		TypeMap: map[ir.DType]string{
			ir.Int32:   "int32_t",
			ir.Int64:   "int64_t",
			ir.Float32: "float",
			ir.Float64: "double",
			ir.Bool:    "char",
		},
		BufferMap: map[ir.DType]string{
			ir.Int32:   "_numpy.int32_t",
			ir.Int64:   "_numpy.int64_t",
			ir.Float32: "_numpy.float32_t",
			ir.Float64: "_numpy.float64_t",
			ir.Bool:    "_numpy.uint8_t, cast=True",
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
			ir.Bool:    "bint",
		},
		HostArrayFmt: "_numpy.ndarray[{buffer}, ndim=1]",
		DeclareFmt:   "cdef {type} {name}",
		BindFmt:      `{name} = _namespace["{name}"]`,
		ConstFmt:     "cdef {host} {name} = {value}",
		AttrFmt:      `cdef {host} {name} = _namespace["{name}"]`,
		AttrCountFmt: "cdef int _num{name} = len(_namespace['{name}'])",
		ViewFmt: []string{
			"cdef _numpy.ndarray[{buffer}, ndim=1, mode='c'] _buf_{store} = _numpy.ascontiguousarray(_namespace['{store}'], dtype=_numpy.{numpy})",
			"cdef {type} * {store} = <{type} *> _buf_{store}.data",
			"cdef int _num{store} = len(_namespace['{store}'])",
		},
		ReadFmt:  "{name} = {store}[{index}]",
		WriteFmt: "{store}[{index}] = {name}",
		GuardFmt: "if {cond}:",
		Indent:   "    ",
		Comment:  "# ",
		NaN:      "_numpy.nan",
		Inf:      "_numpy.inf",

		BaseCompileArgs: []string{"-w", "-O3", "-ffast-math", "-fno-finite-math-only"},
	}
}
