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
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/samber/lo"
)

// Template is backend support code with named substitution points, written
// as a text/template ("{{.BufferSize}}").
type Template struct {
	// Name is the call name the support code defines.
	Name string

	// Text is the template source.
	Text string

	// Required lists the keys the template must reference.
	Required []string
}

// Validate parses the template and checks that every required key is
// referenced as a field.
func (t Template) Validate() error {
	_, err := t.parse()
	return err
}

func (t Template) parse() (*template.Template, error) {
	tmpl, err := template.New(t.Name).Option("missingkey=error").Parse(t.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplate, t.Name, err)
	}
	if tmpl.Tree == nil || tmpl.Tree.Root == nil {
		return nil, fmt.Errorf("%w: %s: empty template", ErrTemplate, t.Name)
	}
	fields := make(map[string]bool)
	collectFields(tmpl.Tree.Root, fields)
	if missing := lo.Filter(t.Required, func(key string, _ int) bool { return !fields[key] }); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s does not reference %s", ErrTemplate, t.Name, strings.Join(missing, ", "))
	}
	return tmpl, nil
}

// Execute validates the template and renders it with data. Every required
// key must be present in data.
func (t Template) Execute(data map[string]any) (string, error) {
	tmpl, err := t.parse()
	if err != nil {
		return "", err
	}
	for _, key := range t.Required {
		if _, ok := data[key]; !ok {
			return "", fmt.Errorf("%w: %s: no value for %s", ErrTemplate, t.Name, key)
		}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplate, t.Name, err)
	}
	return buf.String(), nil
}

// collectFields records the first identifier of every field reference below n.
func collectFields(n parse.Node, fields map[string]bool) {
	switch n := n.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			collectFields(c, fields)
		}
	case *parse.ActionNode:
		collectFields(n.Pipe, fields)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, c := range n.Cmds {
			collectFields(c, fields)
		}
	case *parse.CommandNode:
		for _, a := range n.Args {
			collectFields(a, fields)
		}
	case *parse.FieldNode:
		if len(n.Ident) > 0 {
			fields[n.Ident[0]] = true
		}
	case *parse.IfNode:
		collectBranch(&n.BranchNode, fields)
	case *parse.RangeNode:
		collectBranch(&n.BranchNode, fields)
	case *parse.WithNode:
		collectBranch(&n.BranchNode, fields)
	case *parse.TemplateNode:
		collectFields(n.Pipe, fields)
	}
}

func collectBranch(b *parse.BranchNode, fields map[string]bool) {
	collectFields(b.Pipe, fields)
	collectFields(b.List, fields)
	collectFields(b.ElseList, fields)
}

// Buffered random draws. The cursor wraps modulo the buffer size and the
// whole buffer is refilled from the source distribution when it reaches
// zero; the per-call index argument is ignored. The buffer is module level
// state of the generated unit and is not safe for concurrent callers.

// CythonRandom is the Cython buffered random draw. Source is the numpy
// generator ("rand" or "randn").
var CythonRandom = Template{
	Name: "rand",
	Text: `cdef int _{{.Name}}_buffer_size = {{.BufferSize}}
cdef double[:] _{{.Name}}_buf = _numpy.zeros(_{{.Name}}_buffer_size, dtype=_numpy.float64)
cdef int _cur_{{.Name}}_buf = 0
cdef double {{.Name}}(int _idx):
    global _cur_{{.Name}}_buf
    global _{{.Name}}_buf
    if _cur_{{.Name}}_buf==0:
        _{{.Name}}_buf = _numpy.random.{{.Source}}(_{{.Name}}_buffer_size)
    cdef double val = _{{.Name}}_buf[_cur_{{.Name}}_buf]
    _cur_{{.Name}}_buf = (_cur_{{.Name}}_buf+1)%_{{.Name}}_buffer_size
    return val
`,
	Required: []string{"Name", "Source", "BufferSize"},
}

// CythonInt truncates any numeric input toward zero. The fused type covers
// both widths int64_t may be declared with.
var CythonInt = Template{
	Name: "_int",
	Text: `ctypedef fused _to_int:
    char
    short
    int
    long
    long long
    float
    double

cdef int {{.Name}}(_to_int x):
    return <int>x
`,
	Required: []string{"Name"},
}

// CythonClip clamps x into [low, high].
var CythonClip = Template{
	Name: "clip",
	Text: `ctypedef fused _float_or_double:
    float
    double

cdef _float_or_double {{.Name}}(_float_or_double x, _float_or_double low,
                           _float_or_double high):
    if x<low:
        return low
    if x>high:
        return high
    return x
`,
	Required: []string{"Name"},
}

// CppRandom is the C++ buffered random draw. Source is the numpy generator;
// the buffer is filled through the embedded interpreter.
var CppRandom = Template{
	Name: "_rand",
	Text: `static const int {{.Name}}_buffer_size = {{.BufferSize}};
static double *{{.Name}}_buf = NULL;
static int _cur{{.Name}}_buf = 0;
double {{.Name}}(const int _vectorisation_idx)
{
    if (_cur{{.Name}}_buf == 0)
    {
        static py::object {{.Name}}_arr;
        {{.Name}}_arr = py::module("numpy.random").attr("{{.Source}}")({{.Name}}_buffer_size);
        {{.Name}}_buf = (double *)(((PyArrayObject*)(PyObject*){{.Name}}_arr)->data);
    }
    const double val = {{.Name}}_buf[_cur{{.Name}}_buf];
    _cur{{.Name}}_buf = (_cur{{.Name}}_buf + 1) % {{.Name}}_buffer_size;
    return val;
}
`,
	Required: []string{"Name", "Source", "BufferSize"},
}

// CppInt truncates any numeric input toward zero.
var CppInt = Template{
	Name: "_int",
	Text: `template <typename T>
static inline int {{.Name}}(const T x)
{
    return (int)x;
}
`,
	Required: []string{"Name"},
}

// CppClip clamps x into [low, high].
var CppClip = Template{
	Name: "_clip",
	Text: `template <typename T>
static inline T {{.Name}}(const T x, const double low, const double high)
{
    if (x < low)
        return low;
    if (x > high)
        return high;
    return x;
}
`,
	Required: []string{"Name"},
}

// named returns a copy of t whose call name is name.
func (t Template) named(name string) Template {
	t.Name = name
	return t
}
