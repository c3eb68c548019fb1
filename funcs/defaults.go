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
	"math"
	"math/rand/v2"
)

// Backend names seeded by Default.
const (
	Cython = "cython"
	Cpp    = "cpp"
	Host   = "host"
)

// nativeFunctions exist under the same name in C's math.h and therefore in
// both Cython (libc.math) and C++.
var nativeFunctions = []string{
	"sin", "cos", "tan",
	"sinh", "cosh", "tanh",
	"exp", "log", "log10",
	"sqrt", "ceil", "floor",
}

// renamedFunctions maps numpy spellings to their math.h names.
var renamedFunctions = map[string]string{
	"arcsin": "asin",
	"arccos": "acos",
	"arctan": "atan",
	"abs":    "fabs",
	"mod":    "fmod",
}

// hostMath realizes the elementary functions in Go for the host backend.
var hostMath = map[string]any{
	"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
	"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
	"exp": math.Exp, "log": math.Log, "log10": math.Log10,
	"sqrt": math.Sqrt, "ceil": math.Ceil, "floor": math.Floor,
	"arcsin": math.Asin, "arccos": math.Acos, "arctan": math.Atan,
	"abs": math.Abs, "mod": math.Mod,
}

type options struct {
	bufferSize int
	seed       uint64
	seeded     bool
}

// Option configures Default.
type Option func(*options)

// WithBufferSize sets the number of draws per refill of the random buffers,
// both in generated code and on the host.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithSeed seeds the host random buffers. Without it they are seeded from
// the runtime's random source.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// Default returns a registry seeded with the built-in functions for the
// cython, cpp and host backends.
func Default(opts ...Option) (*Registry, error) {
	o := options{bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = rand.Uint64()
	}

	r := NewRegistry()
	for _, backend := range []string{Cython, Cpp} {
		for _, name := range nativeFunctions {
			if err := r.Register(name, backend, Descriptor{Kind: Native}); err != nil {
				return nil, err
			}
		}
		for name, target := range renamedFunctions {
			if err := r.Register(name, backend, Descriptor{Kind: Renamed, Name: target}); err != nil {
				return nil, err
			}
		}
	}

	inline := []struct {
		function, backend string
		tmpl              Template
		data              map[string]any
	}{
		{"rand", Cython, CythonRandom, map[string]any{"Source": "rand"}},
		{"randn", Cython, CythonRandom.named("randn"), map[string]any{"Source": "randn"}},
		{"int", Cython, CythonInt, nil},
		{"clip", Cython, CythonClip, nil},
		{"rand", Cpp, CppRandom, map[string]any{"Source": "rand"}},
		{"randn", Cpp, CppRandom.named("_randn"), map[string]any{"Source": "randn"}},
		{"int", Cpp, CppInt, nil},
		{"clip", Cpp, CppClip, nil},
	}
	for _, in := range inline {
		data := map[string]any{"Name": in.tmpl.Name, "BufferSize": o.bufferSize}
		for k, v := range in.data {
			data[k] = v
		}
		if err := r.RegisterTemplate(in.function, in.backend, in.tmpl, data); err != nil {
			return nil, err
		}
	}

	// One stream per buffer: a rand.Rand is not safe for concurrent use.
	uniform := rand.New(rand.NewPCG(o.seed, 1))
	normal := rand.New(rand.NewPCG(o.seed, 2))
	host := map[string]any{
		"rand":  NewRandomBuffer(o.bufferSize, UniformSource(uniform)).Next,
		"randn": NewRandomBuffer(o.bufferSize, NormalSource(normal)).Next,
		"int":   Int[float64],
		"clip":  Clip[float64],
	}
	for name, fn := range hostMath {
		host[name] = fn
	}
	for name, fn := range host {
		if err := r.Register(name, Host, Descriptor{Kind: HostCallback, Callback: fn}); err != nil {
			return nil, err
		}
	}
	return r, nil
}
