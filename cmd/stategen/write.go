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
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gofrs/flock"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/ajroetker/stategen/codegen"
	"github.com/ajroetker/stategen/internal/hostinfo"
	"github.com/ajroetker/stategen/ir"
)

// Manifest describes a generated unit for the runtime that compiles it.
type Manifest struct {
	Name        string            `yaml:"name"`
	Target      string            `yaml:"target"`
	Source      string            `yaml:"source"`
	Host        string            `yaml:"host"`
	CompileArgs []string          `yaml:"compile_args"`
	Blocks      []string          `yaml:"blocks"`
	Callbacks   []string          `yaml:"callbacks,omitempty"`
	Snapshots   map[string]string `yaml:"snapshots,omitempty"`
	Warnings    []string          `yaml:"warnings,omitempty"`
}

var extensions = map[string]string{
	"cython": ".pyx",
	"cpp":    ".cpp",
}

// unitFile returns the base name of the generated source for a target.
func unitFile(model string, t codegen.Target) string {
	ext, ok := extensions[t.Name]
	if !ok {
		ext = ".txt"
	}
	return model + "_" + t.Name + ext
}

// renderUnit lays out a translation result as one source file, one
// commented section per part.
func renderUnit(model string, t codegen.Target, blocks []ir.Block, res *codegen.Result) []byte {
	title := cases.Title(language.English)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%sGenerated by stategen. DO NOT EDIT.\n", t.Comment)
	fmt.Fprintf(&buf, "%sModel: %s, target: %s\n", t.Comment, model, t.Title)

	section := func(name, body string) {
		fmt.Fprintf(&buf, "\n%s%s\n", t.Comment, title.String(name))
		if body = strings.TrimRight(body, "\n"); body != "" {
			buf.WriteString(body)
			buf.WriteByte('\n')
		}
	}
	section("support code", res.SupportCode)
	section("load namespace", res.LoadNamespace)
	for _, b := range blocks {
		section(b.Name+" scalar", strings.Join(res.Scalar[b.Name], "\n"))
		section(b.Name+" vector", strings.Join(res.Vector[b.Name], "\n"))
	}
	return buf.Bytes()
}

func newManifest(model string, t codegen.Target, blocks []ir.Block, res *codegen.Result) Manifest {
	m := Manifest{
		Name:        model,
		Target:      t.Name,
		Source:      unitFile(model, t),
		Host:        hostinfo.Detect().Name,
		CompileArgs: t.CompileArgs(),
		Blocks:      lo.Map(blocks, func(b ir.Block, _ int) string { return b.Name }),
		Callbacks:   lo.Keys(res.Callbacks),
		Warnings:    res.Warnings,
	}
	slices.Sort(m.Callbacks)
	if len(res.Snapshots) > 0 {
		m.Snapshots = lo.MapValues(res.Snapshots, func(v ir.Value, _ string) string { return v.String() })
	}
	return m
}

// writeUnit writes the generated source and its manifest into dir. The
// directory is locked for the duration so concurrent runs never interleave
// partial files.
func writeUnit(dir, model string, t codegen.Target, blocks []ir.Block, res *codegen.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, ".stategen.lock"))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	defer lock.Unlock()

	src := filepath.Join(dir, unitFile(model, t))
	if err := os.WriteFile(src, renderUnit(model, t, blocks, res), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", src, err)
	}

	manifest, err := yaml.Marshal(newManifest(model, t, blocks, res))
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	man := strings.TrimSuffix(src, filepath.Ext(src)) + ".yaml"
	if err := os.WriteFile(man, manifest, 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", man, err)
	}
	return []string{src, man}, nil
}
