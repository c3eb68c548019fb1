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

// Package ir provides the backend-agnostic representation consumed by the
// code generators: typed state variables, the namespace they live in, and
// the assignment statements that update them.
package ir

import (
	"fmt"
	"strconv"
)

// DType is the numeric kind of a variable's elements.
type DType int

const (
	// Int32 is the narrow signed integer kind.
	Int32 DType = iota

	// Int64 is the wide signed integer kind.
	Int64

	// Float32 is the single precision floating point kind.
	Float32

	// Float64 is the double precision floating point kind.
	Float64

	// Bool is the boolean kind. Buffers store it as one byte per element.
	Bool
)

// String returns the numpy spelling of the kind ("int32", "float64", ...).
func (d DType) String() string {
	switch d {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("DType(%d)", d)
	}
}

// IsFloat reports whether d is a floating point kind.
func (d DType) IsFloat() bool {
	return d == Float32 || d == Float64
}

// IsInt reports whether d is a signed integer kind.
func (d DType) IsInt() bool {
	return d == Int32 || d == Int64
}

// ParseDType converts a numpy-style type name into a DType.
// E.g., "float64" -> Float64, "int" -> Int64, "bool_" -> Bool
func ParseDType(s string) (DType, error) {
	switch s {
	case "int32":
		return Int32, nil
	case "int64", "int", "long":
		return Int64, nil
	case "float32", "single":
		return Float32, nil
	case "float64", "double", "float":
		return Float64, nil
	case "bool", "bool_", "boolean":
		return Bool, nil
	default:
		return 0, fmt.Errorf("unknown dtype %q (valid: int32, int64, float32, float64, bool)", s)
	}
}

// VarKind is the closed set of variable variants a generator knows how to
// bind. A value outside this set is an unrecognized kind.
type VarKind int

const (
	// Array is a variable backed by a contiguous buffer (the backing store).
	Array VarKind = iota

	// DynamicArray is an array variable whose buffer can be resized between
	// runs. Generated code must re-read it from the namespace.
	DynamicArray

	// Auxiliary is a scratch value with no backing storage.
	Auxiliary

	// Attribute is a live proxy for an attribute of an owning object. Its
	// value is captured when code is generated.
	Attribute

	// Constant is a value fixed at generation time.
	Constant

	// Function is a symbolic function resolved through the function registry.
	Function
)

// String returns a human-readable name for the VarKind.
func (k VarKind) String() string {
	switch k {
	case Array:
		return "Array"
	case DynamicArray:
		return "DynamicArray"
	case Auxiliary:
		return "Auxiliary"
	case Attribute:
		return "Attribute"
	case Constant:
		return "Constant"
	case Function:
		return "Function"
	default:
		return fmt.Sprintf("VarKind(%d)", k)
	}
}

// ParseVarKind converts a lower-case kind name ("array", "dynamic", ...) into
// a VarKind.
func ParseVarKind(s string) (VarKind, error) {
	switch s {
	case "array":
		return Array, nil
	case "dynamic", "dynamic_array":
		return DynamicArray, nil
	case "auxiliary", "aux":
		return Auxiliary, nil
	case "attribute":
		return Attribute, nil
	case "constant":
		return Constant, nil
	case "function":
		return Function, nil
	default:
		return 0, fmt.Errorf("unknown variable kind %q", s)
	}
}

// Owner supplies attribute values for Attribute variables. It is implemented
// by the runtime that owns the live object graph.
type Owner interface {
	Attribute(name string) (Value, error)
}

// Variable is one entry of a namespace. Kind selects which of the optional
// fields are meaningful.
type Variable struct {
	// Name is the identifier statements use to refer to the variable.
	Name string

	// Kind is the variant tag.
	Kind VarKind

	// DType is the numeric kind of the value (or of each element).
	DType DType

	// Scalar is true for one value, false for one value per element.
	Scalar bool

	// ArrayName is the name of the backing store for Array and DynamicArray
	// variables (e.g., "_array_neurongroup_v"). Two variables sharing an
	// ArrayName alias the same storage.
	ArrayName string

	// Dimensions is the array rank. Zero and one both mean a flat buffer.
	Dimensions int

	// ConditionalWrite names the guard variable that gates writes to this
	// variable, or is empty for unconditional writes.
	ConditionalWrite string

	// Owner and Attribute identify the live value of an Attribute variable.
	Owner     Owner
	Attribute string

	// Value is the fixed value of a Constant.
	Value Value

	// Function is the abstract function name of a Function variable.
	// Defaults to Name when empty.
	Function string
}

// IsArray reports whether the variable is backed by a buffer.
func (v Variable) IsArray() bool {
	return v.Kind == Array || v.Kind == DynamicArray
}

// FunctionName returns the abstract function name of a Function variable.
func (v Variable) FunctionName() string {
	if v.Function != "" {
		return v.Function
	}
	return v.Name
}

// StoreName returns the backing store name, falling back to the variable
// name for arrays declared without one.
func (v Variable) StoreName() string {
	if v.ArrayName != "" {
		return v.ArrayName
	}
	return "_array_" + v.Name
}

// Value is a snapshot of a scalar or one-dimensional array value.
type Value struct {
	DType DType

	// Array marks an array-like value; Len holds its element count.
	Array bool
	Len   int

	// Exactly one of these holds the scalar payload, selected by DType.
	Float float64
	Int   int64
	Bool  bool
}

// FloatValue returns a Float64 scalar value.
func FloatValue(f float64) Value { return Value{DType: Float64, Float: f} }

// IntValue returns an Int64 scalar value.
func IntValue(i int64) Value { return Value{DType: Int64, Int: i} }

// BoolValue returns a Bool scalar value.
func BoolValue(b bool) Value { return Value{DType: Bool, Bool: b} }

// ArrayValue returns an array value of n elements of kind d.
func ArrayValue(d DType, n int) Value { return Value{DType: d, Array: true, Len: n} }

// String formats a scalar value as a numeric literal. Float literals always
// carry a decimal point or exponent so backends keep them floating.
// Booleans format as "true"/"false"; targets respell them as needed.
func (v Value) String() string {
	if v.Array {
		return fmt.Sprintf("%s[%d]", v.DType, v.Len)
	}
	switch {
	case v.DType.IsFloat():
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		for _, c := range s {
			if c == '.' || c == 'e' || c == 'n' || c == 'I' {
				return s
			}
		}
		return s + ".0"
	case v.DType.IsInt():
		return strconv.FormatInt(v.Int, 10)
	case v.DType == Bool:
		return strconv.FormatBool(v.Bool)
	default:
		return "?"
	}
}
