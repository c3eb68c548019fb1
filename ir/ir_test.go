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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatement(t *testing.T) {
	tests := []struct {
		text    string
		want    Statement
		wantErr bool
	}{
		{"x := a + b", Statement{Var: "x", Op: Define, Expr: "a + b"}, false},
		{"y = x * 2", Statement{Var: "y", Op: Assign, Expr: "x * 2"}, false},
		{"v += dt * I  # input", Statement{Var: "v", Op: AddAssign, Expr: "dt * I", Comment: "input"}, false},
		{"c = a == b", Statement{Var: "c", Op: Assign, Expr: "a == b"}, false},
		{"w %= 3", Statement{Var: "w", Op: ModAssign, Expr: "3"}, false},
		{"a + b", Statement{}, true},
		{"2x = 1", Statement{}, true},
		{"x =", Statement{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseStatement(tt.text, false)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpInplace(t *testing.T) {
	assert.False(t, Define.Inplace())
	assert.False(t, Assign.Inplace())
	for _, op := range []Op{AddAssign, SubAssign, MulAssign, DivAssign, ModAssign} {
		assert.True(t, op.Inplace(), string(op))
	}
	assert.False(t, Op("**=").Valid())
}

func TestBlockSplit(t *testing.T) {
	b := Block{Name: "stateupdate", Statements: []Statement{
		{Var: "a", Op: Define, Expr: "1", Scalar: true},
		{Var: "v", Op: Assign, Expr: "a"},
		{Var: "b", Op: Define, Expr: "2", Scalar: true},
		{Var: "w", Op: Assign, Expr: "b"},
	}}
	scalar, vector := b.Split()
	require.Len(t, scalar, 2)
	require.Len(t, vector, 2)
	assert.Equal(t, "a", scalar[0].Var)
	assert.Equal(t, "b", scalar[1].Var)
	assert.Equal(t, "v", vector[0].Var)
	assert.Equal(t, "w", vector[1].Var)
}

func TestNamespaceOrderAndDuplicates(t *testing.T) {
	ns, err := NewNamespace(
		Variable{Name: "v", Kind: Array, DType: Float64, ConditionalWrite: "active"},
		Variable{Name: "active", Kind: Array, DType: Bool},
		Variable{Name: "x", Kind: Auxiliary, DType: Float64, ConditionalWrite: "ignored"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"v", "active", "x"}, ns.Names())
	assert.Equal(t, ConditionalWriteVariables{"v": "active"}, ns.ConditionalWrites())

	err = ns.Add(Variable{Name: "v", Kind: Auxiliary})
	assert.Error(t, err)
}

func TestVariableIndicesFor(t *testing.T) {
	vi := VariableIndices{"w": "_synapse_idx"}
	assert.Equal(t, "_synapse_idx", vi.For(Variable{Name: "w"}))
	assert.Equal(t, "_idx", vi.For(Variable{Name: "v"}))
	assert.Equal(t, "0", vi.For(Variable{Name: "t", Scalar: true}))
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{FloatValue(0.01), "0.01"},
		{FloatValue(2), "2.0"},
		{FloatValue(1e-20), "1e-20"},
		{IntValue(-7), "-7"},
		{BoolValue(true), "true"},
		{ArrayValue(Float32, 10), "float32[10]"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestParseDType(t *testing.T) {
	for _, d := range []DType{Int32, Int64, Float32, Float64, Bool} {
		got, err := ParseDType(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDType("complex128")
	assert.Error(t, err)
	assert.Equal(t, "VarKind(42)", VarKind(42).String())
}
