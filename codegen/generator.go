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

// Package codegen translates blocks of update statements over a namespace
// of typed variables into source text for one backend.
//
// A Generator is built once per target and function registry. Each call to
// Translate is an independent pass: it classifies every variable in the
// namespace, then translates each block's scalar and vector phases.
//
//	target, _ := codegen.GetTarget("cython")
//	registry, _ := funcs.Default()
//	gen := codegen.New(target, registry)
//	res, err := gen.Translate(blocks, ns, indices)
package codegen

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ajroetker/stategen/expr"
	"github.com/ajroetker/stategen/funcs"
	"github.com/ajroetker/stategen/ir"
)

var (
	// ErrConfiguration is returned when a function's implementation is
	// neither inline code nor a host callback.
	ErrConfiguration = errors.New("implementation neither inline code nor callback")

	// ErrClassification is returned for variables no binding strategy
	// applies to.
	ErrClassification = errors.New("cannot classify variable")
)

// Generator translates statement blocks for one target.
// It is safe for concurrent use once constructed.
type Generator struct {
	target   Target
	registry *funcs.Registry
	logger   *log.Logger
	strict   bool
	implicit []string
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) {
		if l == nil {
			l = log.New(io.Discard, "", 0)
		}
		g.logger = l
	}
}

// WithStrict turns the unrecognized-kind fallback into ErrClassification.
func WithStrict(strict bool) Option {
	return func(g *Generator) {
		g.strict = strict
	}
}

// WithImplicitNames adds identifiers that expressions may use without a
// namespace entry, such as loop indices provided by the enclosing template.
func WithImplicitNames(names ...string) Option {
	return func(g *Generator) {
		g.implicit = append(g.implicit, names...)
	}
}

// New returns a generator for target resolving functions through registry.
func New(target Target, registry *funcs.Registry, opts ...Option) *Generator {
	g := &Generator{
		target:   target,
		registry: registry,
		logger:   log.New(os.Stderr, "stategen: ", 0),
		implicit: []string{ir.DefaultIndex, "_vectorisation_idx"},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Target returns the generator's target.
func (g *Generator) Target() Target { return g.target }

// Result is the output of one pass.
type Result struct {
	// Scalar and Vector hold the lines of each block's two phases, keyed by
	// block name.
	Scalar map[string][]string
	Vector map[string][]string

	// LoadNamespace binds every namespace variable. Shared by all blocks.
	LoadNamespace string

	// SupportCode holds each inline function implementation once.
	SupportCode string

	// Callbacks are host callables the runtime must place in the
	// namespace under the given names.
	Callbacks map[string]any

	// Snapshots are the attribute values captured during the pass.
	Snapshots map[string]ir.Value

	// Warnings collects diagnostics of the pass.
	Warnings []string
}

// Translate runs one generation pass. Every variable a statement refers to
// must be bound in ns. Errors are fatal to the pass; no partial result is
// returned.
func (g *Generator) Translate(blocks []ir.Block, ns *ir.Namespace, indices ir.VariableIndices) (*Result, error) {
	if ns == nil {
		ns = &ir.Namespace{}
	}
	p := newPass(g, ns, indices)

	for _, v := range ns.Variables() {
		if err := p.classify(v); err != nil {
			return nil, fmt.Errorf("%s: variable %s: %w", g.target.Name, v.Name, err)
		}
	}
	if err := p.checkGuards(); err != nil {
		return nil, fmt.Errorf("%s: %w", g.target.Name, err)
	}
	p.result.LoadNamespace = strings.Join(p.load, "\n")
	p.result.SupportCode = strings.Join(p.support, "\n")

	for _, b := range blocks {
		if _, dup := p.result.Scalar[b.Name]; dup {
			return nil, fmt.Errorf("%s: block %q given twice", g.target.Name, b.Name)
		}
		scalar, vector := b.Split()
		scalarLines, err := p.translateSequence(scalar)
		if err != nil {
			return nil, fmt.Errorf("%s: block %s (scalar): %w", g.target.Name, b.Name, err)
		}
		vectorLines, err := p.translateSequence(vector)
		if err != nil {
			return nil, fmt.Errorf("%s: block %s (vector): %w", g.target.Name, b.Name, err)
		}
		p.result.Scalar[b.Name] = scalarLines
		p.result.Vector[b.Name] = vectorLines
	}
	return p.result, nil
}

// pass is the mutable state of one Translate call.
type pass struct {
	*Generator

	ns      *ir.Namespace
	indices ir.VariableIndices

	handled   map[string]bool   // backing stores already bound
	supported map[string]bool   // inline implementations already emitted
	renames   map[string]string // function variable -> call name
	callNames map[string]bool
	implicit  map[string]bool

	load    []string
	support []string
	result  *Result
}

func newPass(g *Generator, ns *ir.Namespace, indices ir.VariableIndices) *pass {
	p := &pass{
		Generator: g,
		ns:        ns,
		indices:   indices,
		handled:   make(map[string]bool),
		supported: make(map[string]bool),
		renames:   make(map[string]string),
		callNames: make(map[string]bool),
		implicit:  make(map[string]bool),
		result: &Result{
			Scalar:    make(map[string][]string),
			Vector:    make(map[string][]string),
			Callbacks: make(map[string]any),
			Snapshots: make(map[string]ir.Value),
		},
	}
	for _, name := range g.implicit {
		p.implicit[name] = true
	}
	return p
}

// known reports whether an identifier may appear in translated code.
func (p *pass) known(name string) bool {
	return p.ns.Has(name) || p.callNames[name] || p.implicit[name]
}

// checkGuards requires every conditional-write guard to be bound.
func (p *pass) checkGuards() error {
	guards := p.ns.ConditionalWrites()
	for _, name := range p.ns.Names() {
		guard, ok := guards[name]
		if ok && !p.known(guard) {
			return fmt.Errorf("variable %s: guard: %w: %s", name, expr.ErrUnknownIdentifier, guard)
		}
	}
	return nil
}

func (p *pass) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.logger.Printf("Warning: %s", msg)
	p.result.Warnings = append(p.result.Warnings, msg)
}
