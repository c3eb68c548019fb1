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

package codegen

import (
	"fmt"

	"github.com/ajroetker/stategen/funcs"
	"github.com/ajroetker/stategen/ir"
)

// classify emits the declaration and binding lines of one variable.
func (p *pass) classify(v ir.Variable) error {
	t := p.target
	switch v.Kind {
	case ir.Auxiliary:
		p.load = append(p.load, t.Declare(v.Name, v.DType))

	case ir.Attribute:
		if v.Owner == nil {
			return fmt.Errorf("%w: attribute variable without an owner", ErrClassification)
		}
		attr := v.Attribute
		if attr == "" {
			attr = v.Name
		}
		val, err := v.Owner.Attribute(attr)
		if err != nil {
			return fmt.Errorf("snapshot attribute %s: %w", attr, err)
		}
		p.result.Snapshots[v.Name] = val
		p.load = append(p.load, t.Attribute(v.Name, val)...)

	case ir.Constant:
		p.load = append(p.load, t.Constant(v.Name, v.Value))

	case ir.Array, ir.DynamicArray:
		p.classifyArray(v)

	case ir.Function:
		return p.classifyFunction(v)

	default:
		if p.strict {
			return fmt.Errorf("%w: unrecognized kind %s", ErrClassification, v.Kind)
		}
		p.warnf("variable %s has unrecognized kind %s, binding it by name", v.Name, v.Kind)
		p.load = append(p.load, t.Bind(v.Name))
	}
	return nil
}

// classifyArray binds the backing store once per pass and declares the
// variable's scratch local. Scalar, resizable and multi-dimensional arrays
// keep a namespace back-reference to the store instead of a raw pointer.
func (p *pass) classifyArray(v ir.Variable) {
	t := p.target
	store := v.StoreName()
	if !p.handled[store] {
		p.handled[store] = true
		if v.Kind == ir.DynamicArray || v.Scalar || v.Dimensions > 1 {
			p.load = append(p.load, t.Bind(store))
		} else {
			p.load = append(p.load, t.ArrayView(v)...)
		}
	}
	p.load = append(p.load, t.Declare(v.Name, v.DType))
}

// classifyFunction resolves a function variable and records how calls to it
// are spelled.
func (p *pass) classifyFunction(v ir.Variable) error {
	fn := v.FunctionName()
	d, err := p.registry.Resolve(fn, p.target.Name)
	if err != nil {
		return err
	}

	switch d.Kind {
	case funcs.Native, funcs.Renamed:
		p.callAs(v.Name, d.CallName(fn))
	case funcs.Inline:
		if d.Code == "" {
			return fmt.Errorf("%w: %s has an inline implementation without code", ErrConfiguration, fn)
		}
		name := d.CallName(fn)
		if !p.supported[name] {
			p.supported[name] = true
			p.support = append(p.support, d.Code)
		}
		p.callAs(v.Name, name)
	case funcs.HostCallback:
		if d.Callback == nil {
			return fmt.Errorf("%w: %s has a callback implementation without a callable", ErrConfiguration, fn)
		}
		p.load = append(p.load, p.target.Bind(v.Name))
		p.result.Callbacks[v.Name] = d.Callback
	default:
		return fmt.Errorf("%w: %s resolves to %s", ErrConfiguration, fn, d.Kind)
	}
	return nil
}

func (p *pass) callAs(name, callName string) {
	p.callNames[callName] = true
	if callName != name {
		p.renames[name] = callName
	}
}
