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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"

	"github.com/ajroetker/stategen/codegen"
	"github.com/ajroetker/stategen/internal/hostinfo"
	"github.com/ajroetker/stategen/ir"
)

// loadArchive writes the archive's model into a temp dir and returns the
// model path and the remaining files by name.
func loadArchive(t *testing.T, name string) (string, map[string]string) {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	files := make(map[string]string)
	for _, f := range ar.Files {
		files[f.Name] = string(f.Data)
	}
	require.Contains(t, files, "model.yaml")
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(files["model.yaml"]), 0644))
	return path, files
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerateGolden(t *testing.T) {
	t.Setenv(hostinfo.NoNativeEnvVar, "1")
	model, files := loadArchive(t, "neuron.txtar")
	out := filepath.Join(t.TempDir(), "build")

	stdout, stderr, err := run(t, "generate", "-m", model, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "Successfully generated code for targets: cython")

	got, err := os.ReadFile(filepath.Join(out, "neuron_cython.pyx"))
	require.NoError(t, err)
	assert.Equal(t, files["neuron_cython.pyx"], string(got))

	data, err := os.ReadFile(filepath.Join(out, "neuron_cython.yaml"))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, "neuron", m.Name)
	assert.Equal(t, "cython", m.Target)
	assert.Equal(t, "neuron_cython.pyx", m.Source)
	assert.Equal(t, "generic", m.Host)
	assert.Equal(t, codegen.CythonTarget().BaseCompileArgs, m.CompileArgs)
	assert.Equal(t, []string{"stateupdate"}, m.Blocks)
	assert.Empty(t, m.Callbacks)
	assert.Equal(t, map[string]string{"dt": "0.0001"}, m.Snapshots)
	assert.Empty(t, m.Warnings)
}

func TestGenerateAllTargets(t *testing.T) {
	t.Setenv(hostinfo.NoNativeEnvVar, "1")
	model, _ := loadArchive(t, "neuron.txtar")
	out := t.TempDir()

	stdout, _, err := run(t, "generate", "-m", model, "-o", out, "-t", "all", "--buffer-size", "64")
	require.NoError(t, err)
	assert.Contains(t, stdout, "targets: cpp, cython")

	cpp, err := os.ReadFile(filepath.Join(out, "neuron_cpp.cpp"))
	require.NoError(t, err)
	assert.Contains(t, string(cpp), "// Model: neuron, target: C++\n")
	assert.Contains(t, string(cpp), "static const int _rand_buffer_size = 64;")
	assert.Contains(t, string(cpp), "if(not_refractory)\n    v += dt * dv + _rand(_idx);\n")
	assert.FileExists(t, filepath.Join(out, "neuron_cpp.yaml"))
	assert.FileExists(t, filepath.Join(out, "neuron_cython.pyx"))
}

func TestGenerateErrors(t *testing.T) {
	model, _ := loadArchive(t, "neuron.txtar")

	_, _, err := run(t, "generate")
	assert.ErrorContains(t, err, "model")

	_, _, err = run(t, "generate", "-m", model, "-o", t.TempDir(), "-t", "fortran")
	assert.ErrorContains(t, err, "unknown target: fortran")

	_, _, err = run(t, "generate", "-m", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGenerateStrict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: tiny
target: cython
variables:
  - {name: v, kind: array, dtype: float64, array: _array_v}
blocks:
  - name: run
    vector: ["v = v * 2"]
`), 0644))

	out := t.TempDir()
	_, _, err := run(t, "generate", "-m", path, "-o", out, "--strict")
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(out, "tiny_cython.pyx"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "# Run Vector\nv = _array_v[_idx]\nv = v * 2\n_array_v[_idx] = v\n")
}

func TestFunctionsAndTargets(t *testing.T) {
	stdout, _, err := run(t, "functions", "-t", "cython")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^arcsin\s+renamed\s+asin$`, stdout)
	assert.Regexp(t, `(?m)^sin\s+native\s+sin$`, stdout)
	assert.Regexp(t, `(?m)^int\s+inline\s+_int$`, stdout)

	stdout, _, err = run(t, "functions", "-t", "host")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^randn\s+callback\s+randn$`, stdout)

	_, _, err = run(t, "functions", "-t", "fortran")
	assert.ErrorContains(t, err, "no functions registered")

	stdout, _, err = run(t, "targets")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^cpp\s+C\+\+$`, stdout)
	assert.Regexp(t, `(?m)^cython\s+Cython$`, stdout)
}

func TestParseModel(t *testing.T) {
	_, err := ParseModel([]byte("name: x\nbogus: 1\n"))
	assert.Error(t, err)

	_, err = ParseModel([]byte("name: x\nvariables:\n  - {name: v, kind: array, size: 4}\n"))
	assert.Error(t, err)

	_, err = ParseModel([]byte("target: cython\n"))
	assert.ErrorContains(t, err, "missing name")

	m, err := ParseModel([]byte(`
name: syn
indices: {v_post: _postsynaptic_idx}
variables:
  - {name: v_post, kind: array, array: _array_post_v}
  - {name: _postsynaptic_idx, kind: array, dtype: int32, array: _array_syn_post}
  - {name: n, kind: constant, dtype: int32, value: 3}
  - {name: w, kind: dynamic, array: _dynamic_array_syn_w}
  - {name: rates, kind: attribute, value: [1.0, 2.0, 3.0]}
blocks:
  - {name: pre, scalar: ["n = n"], vector: ["v_post += w"]}
`))
	require.NoError(t, err)
	ns, blocks, indices, err := m.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"v_post", "_postsynaptic_idx", "n", "w", "rates"}, ns.Names())
	assert.Equal(t, "_postsynaptic_idx", indices["v_post"])

	n, _ := ns.Lookup("n")
	assert.Equal(t, ir.Value{DType: ir.Int32, Int: 3}, n.Value)
	w, _ := ns.Lookup("w")
	assert.Equal(t, ir.DynamicArray, w.Kind)
	assert.Equal(t, ir.Float64, w.DType)

	rates, _ := ns.Lookup("rates")
	val, err := rates.Owner.Attribute("rates")
	require.NoError(t, err)
	assert.Equal(t, ir.ArrayValue(ir.Float64, 3), val)

	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Statements, 2)
	assert.True(t, blocks[0].Statements[0].Scalar)
	assert.False(t, blocks[0].Statements[1].Scalar)

	m.Variables = append(m.Variables, VariableSpec{Name: "bad", Kind: "constant", DType: "bool", Value: 1.5})
	_, _, _, err = m.Build()
	assert.ErrorContains(t, err, "does not fit")
}

func TestToValue(t *testing.T) {
	tests := []struct {
		raw   any
		dtype string
		want  ir.Value
	}{
		{0.5, "", ir.FloatValue(0.5)},
		{2, "", ir.IntValue(2)},
		{2, "float32", ir.Value{DType: ir.Float32, Float: 2}},
		{true, "", ir.BoolValue(true)},
		{[]any{1, 2}, "int64", ir.ArrayValue(ir.Int64, 2)},
	}
	for _, tt := range tests {
		got, err := toValue(tt.raw, tt.dtype)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := toValue(nil, "")
	assert.Error(t, err)
}
