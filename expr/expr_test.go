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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		src    string
		python string
		c      string
	}{
		{"a + b", "a + b", "a + b"},
		{"  x*2 ", "x * 2", "x * 2"},
		{"(a + b) * c", "(a + b) * c", "(a + b) * c"},
		{"a - (b - c)", "a - (b - c)", "a - (b - c)"},
		{"a - b - c", "a - b - c", "a - b - c"},
		{"a ** b ** c", "a ** b ** c", "pow(a, pow(b, c))"},
		{"-a ** 2", "-a ** 2", "-pow(a, 2)"},
		{"(-a) ** 2", "(-a) ** 2", "pow(-a, 2)"},
		{"x ** 0.5", "x ** 0.5", "pow(x, 0.5)"},
		{"v > 0 and not active", "v > 0 and not active", "v > 0 && !active"},
		{"not (a < b)", "not a < b", "!(a < b)"},
		{"a && b || c", "a and b or c", "a && b || c"},
		{"(a or b) and c", "(a or b) and c", "(a || b) && c"},
		{"- -x", "-(-x)", "-(-x)"},
		{"clip(v, 0, 1) + abs(w)", "clip(v, 0, 1) + abs(w)", "clip(v, 0, 1) + abs(w)"},
		{"True", "True", "true"},
		{"1e-3 * dt % 2", "1e-3 * dt % 2", "1e-3 * dt % 2"},
		{"rand()", "rand()", "rand()"},
		{"a < b < 2", "a < b and b < 2", "a < b && b < 2"},
		{"0 <= x < n != m", "0 <= x and x < n and n != m", "0 <= x && x < n && n != m"},
		{"not a < b < c", "not (a < b and b < c)", "!(a < b && b < c)"},
		{"(a < b) < 2", "(a < b) < 2", "(a < b) < 2"},
		{"rand() < p < 1", "rand() < p and p < 1", "rand() < p && p < 1"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Python.Render(tt.src, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.python, got)

			got, err = C.Render(tt.src, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.c, got)
		})
	}
}

func TestRenderSyntaxErrors(t *testing.T) {
	for _, src := range []string{"", "a +", "(a", "a b", "x = 1", "f(a,", "a ** ** b", "a $ b", "'s'", "and",
		"a // b", "a /* b */ + 1", "a /* b", "0 < rand() < 1"} {
		t.Run(src, func(t *testing.T) {
			_, err := Python.Render(src, nil)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestRenderUnknownIdentifier(t *testing.T) {
	known := func(name string) bool { return name == "a" || name == "exp" }

	got, err := C.Render("exp(a)", known)
	require.NoError(t, err)
	assert.Equal(t, "exp(a)", got)

	_, err = C.Render("a + c", known)
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
	assert.Contains(t, err.Error(), "c")

	_, err = C.Render("sin(a)", known)
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
}

func TestIdentifiers(t *testing.T) {
	got, err := Identifiers("v + abs(v) * rand() > 0 and not b or True")
	require.NoError(t, err)
	assert.Equal(t, []string{"v", "abs", "rand", "b"}, got)

	_, err = Identifiers("a $ b")
	assert.ErrorIs(t, err, ErrSyntax)

	// The right operand of a floor division must not vanish from the set.
	_, err = Identifiers("a // b")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestSubstitute(t *testing.T) {
	got, err := Substitute("abs(absorb) + abs", map[string]string{"abs": "fabs"})
	require.NoError(t, err)
	assert.Equal(t, "fabs(absorb) + fabs", got)

	got, err = Substitute("arcsin( x )*2", map[string]string{"arcsin": "asin", "y": "z"})
	require.NoError(t, err)
	assert.Equal(t, "asin( x )*2", got)

	got, err = Substitute("a+b", nil)
	require.NoError(t, err)
	assert.Equal(t, "a+b", got)
}

func TestWalkVisitsEveryNode(t *testing.T) {
	n, err := Parse("f(a, -b) + c")
	require.NoError(t, err)
	var idents []string
	Walk(n, func(n Node) {
		if id, ok := n.(Ident); ok {
			idents = append(idents, id.Name)
		}
	})
	assert.Equal(t, []string{"a", "b", "c"}, idents)
}
