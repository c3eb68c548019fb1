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

// Package funcs holds the function implementation registry: for every
// abstract function a model may call (sin, rand, clip, ...) and every
// backend, how that backend realizes it.
//
// A Registry is populated once (Default seeds the built-ins, callers may
// then Register extensions) and is read-only afterwards. It has no locking:
// population must happen before any concurrent Resolve.
package funcs

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

var (
	// ErrNotFound is returned by Resolve when a function has no
	// implementation for the requested backend.
	ErrNotFound = errors.New("no implementation registered")

	// ErrTemplate is returned when a support code template is malformed or
	// does not reference one of its required keys.
	ErrTemplate = errors.New("invalid support code template")
)

// Kind is the shape of an implementation descriptor.
type Kind int

const (
	// Native means the backend already provides the function under its
	// abstract name.
	Native Kind = iota

	// Renamed means the backend provides the function under another name.
	Renamed

	// Inline means the backend needs a block of support code, emitted once
	// per generated unit, that defines the call name.
	Inline

	// HostCallback means the function is realized by calling back into the
	// host runtime rather than by backend source.
	HostCallback
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Native:
		return "native"
	case Renamed:
		return "renamed"
	case Inline:
		return "inline"
	case HostCallback:
		return "callback"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Descriptor is the implementation of one function on one backend.
type Descriptor struct {
	Kind Kind

	// Name is the call name in generated code. Empty means the abstract name.
	Name string

	// Code is the support code of an Inline implementation.
	Code string

	// Callback is the host callable of a HostCallback implementation.
	Callback any
}

// CallName returns the name generated code uses to call function.
func (d Descriptor) CallName(function string) string {
	if d.Name != "" {
		return d.Name
	}
	return function
}

// Registry maps (function, backend) pairs to descriptors.
type Registry struct {
	impls map[string]map[string]Descriptor // backend -> function -> descriptor
}

// NewRegistry returns an empty registry. Most callers want Default.
func NewRegistry() *Registry {
	return &Registry{impls: make(map[string]map[string]Descriptor)}
}

// Register adds the implementation of function for backend. The registry is
// append-only: registering the same pair twice is an error.
func (r *Registry) Register(function, backend string, d Descriptor) error {
	if function == "" || backend == "" {
		return fmt.Errorf("register %q for backend %q: empty name", function, backend)
	}
	if d.Kind == Renamed && d.Name == "" {
		return fmt.Errorf("register %s for %s: renamed implementation without a name", function, backend)
	}
	byName, ok := r.impls[backend]
	if !ok {
		byName = make(map[string]Descriptor)
		r.impls[backend] = byName
	}
	if _, dup := byName[function]; dup {
		return fmt.Errorf("register %s for %s: already registered", function, backend)
	}
	byName[function] = d
	return nil
}

// RegisterTemplate renders t with data and registers the result as the
// Inline implementation of function. The template is validated first, so a
// template missing one of its required keys never reaches generated code.
func (r *Registry) RegisterTemplate(function, backend string, t Template, data map[string]any) error {
	code, err := t.Execute(data)
	if err != nil {
		return fmt.Errorf("register %s for %s: %w", function, backend, err)
	}
	return r.Register(function, backend, Descriptor{Kind: Inline, Name: t.Name, Code: code})
}

// Resolve returns the implementation of function for backend.
func (r *Registry) Resolve(function, backend string) (Descriptor, error) {
	d, ok := r.impls[backend][function]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: function %q for backend %q", ErrNotFound, function, backend)
	}
	return d, nil
}

// Functions returns the sorted function names registered for backend.
func (r *Registry) Functions(backend string) []string {
	names := lo.Keys(r.impls[backend])
	slices.Sort(names)
	return names
}

// Backends returns the sorted names of every backend with at least one
// registered function.
func (r *Registry) Backends() []string {
	names := lo.Keys(r.impls)
	slices.Sort(names)
	return names
}
