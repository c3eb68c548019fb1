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

	"gopkg.in/yaml.v3"

	"github.com/ajroetker/stategen/ir"
)

// Model is the YAML description of one generation unit: an already
// elaborated namespace and its statement blocks.
type Model struct {
	Name      string            `yaml:"name"`
	Target    string            `yaml:"target"`
	Variables []VariableSpec    `yaml:"variables"`
	Indices   map[string]string `yaml:"indices"`
	Blocks    []BlockSpec       `yaml:"blocks"`
}

// VariableSpec is one namespace entry.
type VariableSpec struct {
	Name             string `yaml:"name"`
	Kind             string `yaml:"kind"`
	DType            string `yaml:"dtype"`
	Scalar           bool   `yaml:"scalar"`
	Array            string `yaml:"array"`
	Dimensions       int    `yaml:"dimensions"`
	ConditionalWrite string `yaml:"conditional_write"`
	Attribute        string `yaml:"attribute"`
	Function         string `yaml:"function"`

	// Value is the value of a constant, or the current value of an
	// attribute. A list stands for an array-like value.
	Value any `yaml:"value"`
}

// BlockSpec is a named block. Scalar statements run once per unit, vector
// statements once per element.
type BlockSpec struct {
	Name   string   `yaml:"name"`
	Scalar []string `yaml:"scalar"`
	Vector []string `yaml:"vector"`
}

// LoadModel reads a model file. Unknown fields are errors.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseModel(data)
}

// ParseModel decodes a YAML model.
func ParseModel(data []byte) (*Model, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Model
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("parse model: missing name")
	}
	return &m, nil
}

// modelOwner serves attribute values declared in the model.
type modelOwner map[string]ir.Value

func (o modelOwner) Attribute(name string) (ir.Value, error) {
	v, ok := o[name]
	if !ok {
		return ir.Value{}, fmt.Errorf("model has no value for attribute %s", name)
	}
	return v, nil
}

// Build converts the model into the generator's input.
func (m *Model) Build() (*ir.Namespace, []ir.Block, ir.VariableIndices, error) {
	owner := make(modelOwner)
	ns, err := ir.NewNamespace()
	if err != nil {
		return nil, nil, nil, err
	}
	for _, spec := range m.Variables {
		v, err := spec.variable(owner)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("variable %s: %w", spec.Name, err)
		}
		if err := ns.Add(v); err != nil {
			return nil, nil, nil, err
		}
	}

	blocks := make([]ir.Block, 0, len(m.Blocks))
	for _, spec := range m.Blocks {
		b := ir.Block{Name: spec.Name}
		for _, phase := range []struct {
			code   []string
			scalar bool
		}{{spec.Scalar, true}, {spec.Vector, false}} {
			for _, text := range phase.code {
				stmt, err := ir.ParseStatement(text, phase.scalar)
				if err != nil {
					return nil, nil, nil, fmt.Errorf("block %s: %w", spec.Name, err)
				}
				b.Statements = append(b.Statements, stmt)
			}
		}
		blocks = append(blocks, b)
	}
	return ns, blocks, ir.VariableIndices(m.Indices), nil
}

func (s VariableSpec) variable(owner modelOwner) (ir.Variable, error) {
	kind, err := ir.ParseVarKind(s.Kind)
	if err != nil {
		return ir.Variable{}, err
	}
	v := ir.Variable{
		Name:             s.Name,
		Kind:             kind,
		DType:            ir.Float64,
		Scalar:           s.Scalar,
		ArrayName:        s.Array,
		Dimensions:       s.Dimensions,
		ConditionalWrite: s.ConditionalWrite,
		Attribute:        s.Attribute,
		Function:         s.Function,
	}
	if s.DType != "" {
		if v.DType, err = ir.ParseDType(s.DType); err != nil {
			return ir.Variable{}, err
		}
	}

	switch kind {
	case ir.Constant:
		if v.Value, err = toValue(s.Value, s.DType); err != nil {
			return ir.Variable{}, err
		}
	case ir.Attribute:
		val, err := toValue(s.Value, s.DType)
		if err != nil {
			return ir.Variable{}, err
		}
		attr := s.Attribute
		if attr == "" {
			attr = s.Name
		}
		owner[attr] = val
		v.Owner = owner
	}
	return v, nil
}

// toValue converts a decoded YAML value. dtype, when set, overrides the
// kind inferred from the YAML scalar.
func toValue(raw any, dtype string) (ir.Value, error) {
	var d ir.DType
	if dtype != "" {
		var err error
		if d, err = ir.ParseDType(dtype); err != nil {
			return ir.Value{}, err
		}
	}

	switch x := raw.(type) {
	case nil:
		return ir.Value{}, fmt.Errorf("missing value")
	case []any:
		if dtype == "" {
			d = ir.Float64
		}
		return ir.ArrayValue(d, len(x)), nil
	case bool:
		return ir.BoolValue(x), nil
	case int:
		switch {
		case dtype == "" || d == ir.Int64:
			return ir.IntValue(int64(x)), nil
		case d.IsFloat():
			return ir.Value{DType: d, Float: float64(x)}, nil
		case d == ir.Int32:
			return ir.Value{DType: ir.Int32, Int: int64(x)}, nil
		}
	case float64:
		if dtype == "" {
			return ir.FloatValue(x), nil
		}
		if d.IsFloat() {
			return ir.Value{DType: d, Float: x}, nil
		}
	}
	return ir.Value{}, fmt.Errorf("value %v (%T) does not fit dtype %q", raw, raw, dtype)
}
