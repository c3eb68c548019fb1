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

package funcs

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNativeFunctions(t *testing.T) {
	r, err := Default(WithSeed(1))
	require.NoError(t, err)

	for _, backend := range []string{Cython, Cpp} {
		for _, name := range nativeFunctions {
			d, err := r.Resolve(name, backend)
			require.NoError(t, err, "%s/%s", name, backend)
			assert.Equal(t, Native, d.Kind)
			assert.Equal(t, name, d.CallName(name))
		}
	}
}

func TestDefaultRenamedFunctions(t *testing.T) {
	r, err := Default(WithSeed(1))
	require.NoError(t, err)

	tests := map[string]string{
		"arcsin": "asin",
		"arccos": "acos",
		"arctan": "atan",
		"abs":    "fabs",
		"mod":    "fmod",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := r.Resolve(name, Cython)
			require.NoError(t, err)
			assert.Equal(t, Renamed, d.Kind)
			assert.Equal(t, want, d.CallName(name))
		})
	}
}

func TestDefaultInlineFunctions(t *testing.T) {
	r, err := Default(WithSeed(1), WithBufferSize(256))
	require.NoError(t, err)

	d, err := r.Resolve("randn", Cython)
	require.NoError(t, err)
	assert.Equal(t, Inline, d.Kind)
	assert.Equal(t, "randn", d.Name)
	assert.Contains(t, d.Code, "cdef int _randn_buffer_size = 256")
	assert.Contains(t, d.Code, "_numpy.random.randn(_randn_buffer_size)")
	assert.Contains(t, d.Code, "_cur_randn_buf = (_cur_randn_buf+1)%_randn_buffer_size")

	d, err = r.Resolve("clip", Cpp)
	require.NoError(t, err)
	assert.Equal(t, "_clip", d.Name)
	assert.Contains(t, d.Code, "static inline T _clip(")

	d, err = r.Resolve("int", Cython)
	require.NoError(t, err)
	assert.Equal(t, "_int", d.Name)
	assert.Contains(t, d.Code, "return <int>x")
	fused := strings.Split(d.Code, "\n")
	for _, member := range []string{"char", "short", "int", "long", "long long", "float", "double"} {
		assert.Contains(t, fused, "    "+member)
	}
}

func TestResolveNotFound(t *testing.T) {
	r, err := Default(WithSeed(1))
	require.NoError(t, err)

	_, err = r.Resolve("erf", Cython)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Resolve("sin", "fortran")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterAppendOnly(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("erf", Cython, Descriptor{Kind: Native}))
	assert.Error(t, r.Register("erf", Cython, Descriptor{Kind: Native}))
	assert.Error(t, r.Register("", Cython, Descriptor{Kind: Native}))
	assert.Error(t, r.Register("erfc", Cython, Descriptor{Kind: Renamed}))

	require.NoError(t, r.Register("erf", Cpp, Descriptor{Kind: Renamed, Name: "std::erf"}))
	assert.Equal(t, []string{Cpp, Cython}, r.Backends())
	assert.Equal(t, []string{"erf"}, r.Functions(Cpp))
	assert.Empty(t, r.Functions("fortran"))
}

func TestTemplateValidation(t *testing.T) {
	good := Template{Name: "f", Text: "double {{.Name}}() { return {{.Value}}; }", Required: []string{"Name", "Value"}}
	require.NoError(t, good.Validate())

	missing := Template{Name: "f", Text: "double {{.Name}}() { return 0; }", Required: []string{"Name", "Value"}}
	err := missing.Validate()
	assert.ErrorIs(t, err, ErrTemplate)
	assert.Contains(t, err.Error(), "Value")

	branch := Template{Name: "g", Text: "{{if .Fast}}{{.Name}}{{else}}slow{{end}}", Required: []string{"Fast", "Name"}}
	require.NoError(t, branch.Validate())

	broken := Template{Name: "h", Text: "{{.Name", Required: []string{"Name"}}
	assert.ErrorIs(t, broken.Validate(), ErrTemplate)

	r := NewRegistry()
	err = r.RegisterTemplate("f", Cython, missing, map[string]any{"Name": "f", "Value": 1})
	assert.ErrorIs(t, err, ErrTemplate)
	_, err = r.Resolve("f", Cython)
	assert.ErrorIs(t, err, ErrNotFound)

	err = r.RegisterTemplate("f", Cython, good, map[string]any{"Name": "f"})
	assert.ErrorIs(t, err, ErrTemplate)

	require.NoError(t, r.RegisterTemplate("f", Cython, good, map[string]any{"Name": "f", "Value": 1.5}))
	d, err := r.Resolve("f", Cython)
	require.NoError(t, err)
	assert.Equal(t, "double f() { return 1.5; }", d.Code)
}

func TestBuiltinTemplatesValid(t *testing.T) {
	for _, tmpl := range []Template{CythonRandom, CythonInt, CythonClip, CppRandom, CppInt, CppClip} {
		assert.NoError(t, tmpl.Validate(), tmpl.Name)
	}
}

func TestRandomBufferOrder(t *testing.T) {
	refills := 0
	buf := NewRandomBuffer(4, func(b []float64) {
		for i := range b {
			b[i] = float64(refills*10 + i)
		}
		refills++
	})

	// Two "call sites" interleaving within one refill window see one sequence.
	var got []float64
	for i := 0; i < 4; i++ {
		got = append(got, buf.Next(i*100))
	}
	assert.Equal(t, []float64{0, 1, 2, 3}, got)
	assert.Equal(t, 1, refills)

	assert.Equal(t, 10.0, buf.Next(0))
	assert.Equal(t, 2, refills)
	assert.Equal(t, 4, buf.Size())
}

func TestRandomBufferSeeded(t *testing.T) {
	a := NewRandomBuffer(8, UniformSource(rand.New(rand.NewPCG(7, 1))))
	b := NewRandomBuffer(8, UniformSource(rand.New(rand.NewPCG(7, 1))))
	for i := 0; i < 20; i++ {
		v := a.Next(i)
		assert.Equal(t, v, b.Next(0))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
	assert.Equal(t, DefaultBufferSize, NewRandomBuffer(0, nil).Size())
}

func TestInt(t *testing.T) {
	assert.Equal(t, int32(2), Int(float64(2.9)))
	assert.Equal(t, int32(-2), Int(float64(-2.9)))
	assert.Equal(t, int32(2), Int(float32(2.9)))
	assert.Equal(t, int32(-2), Int(float32(-2.9)))
	assert.Equal(t, int32(2), Int(int32(2)))
	assert.Equal(t, int32(-2), Int(int64(-2)))
}

func TestClip(t *testing.T) {
	assert.Equal(t, 3.0, Clip[float64](5, 0, 3))
	assert.Equal(t, 0.0, Clip[float64](-5, 0, 3))
	assert.Equal(t, float32(3), Clip(float32(5), 0, 3))
	for _, x := range []float64{0, 1.5, 3} {
		assert.Equal(t, x, Clip(x, 0, 3))
		assert.Equal(t, Clip(x, 0, 3), Clip(Clip(x, 0, 3), 0, 3))
	}
}

func TestHostBackend(t *testing.T) {
	r, err := Default(WithSeed(3), WithBufferSize(16))
	require.NoError(t, err)

	d, err := r.Resolve("rand", Host)
	require.NoError(t, err)
	assert.Equal(t, HostCallback, d.Kind)
	draw, ok := d.Callback.(func(int) float64)
	require.True(t, ok)
	v := draw(0)
	assert.GreaterOrEqual(t, v, 0.0)
	assert.Less(t, v, 1.0)

	d, err = r.Resolve("int", Host)
	require.NoError(t, err)
	toInt, ok := d.Callback.(func(float64) int32)
	require.True(t, ok)
	assert.Equal(t, int32(-2), toInt(-2.9))

	d, err = r.Resolve("abs", Host)
	require.NoError(t, err)
	abs, ok := d.Callback.(func(float64) float64)
	require.True(t, ok)
	assert.Equal(t, 2.5, abs(-2.5))

	assert.Contains(t, r.Backends(), Host)
}
