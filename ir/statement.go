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

package ir

import (
	"fmt"
	"strings"
	"unicode"
)

// Op is the assignment operator of a statement.
type Op string

const (
	Define Op = ":=" // introduce a new local, assigned once
	Assign Op = "="  // overwrite an existing variable

	AddAssign Op = "+="
	SubAssign Op = "-="
	MulAssign Op = "*="
	DivAssign Op = "/="
	ModAssign Op = "%="
)

// ops lists every operator, longest spellings first so that "+=" is not
// mistaken for "=".
var ops = []Op{Define, AddAssign, SubAssign, MulAssign, DivAssign, ModAssign, Assign}

// Inplace reports whether the operator reads the previous value of its
// target (augmented assignment).
func (op Op) Inplace() bool {
	switch op {
	case AddAssign, SubAssign, MulAssign, DivAssign, ModAssign:
		return true
	default:
		return false
	}
}

// Valid reports whether op is one of the known operators.
func (op Op) Valid() bool {
	for _, known := range ops {
		if op == known {
			return true
		}
	}
	return false
}

// Statement is one assignment: Var Op Expr, with an optional comment.
type Statement struct {
	Var     string
	Op      Op
	Expr    string
	Comment string

	// Scalar marks statements of the scalar phase (executed once per unit
	// rather than once per element).
	Scalar bool
}

// String renders the statement in its source form.
func (s Statement) String() string {
	out := s.Var + " " + string(s.Op) + " " + s.Expr
	if s.Comment != "" {
		out += "  # " + s.Comment
	}
	return out
}

// ParseStatement parses "target op expression  # comment".
//
//	ParseStatement("v += dt * I  # input current", false)
func ParseStatement(text string, scalar bool) (Statement, error) {
	code, comment, _ := strings.Cut(text, "#")
	code = strings.TrimSpace(code)

	pos, op := findOp(code)
	if pos < 0 {
		return Statement{}, fmt.Errorf("statement %q: no assignment operator", text)
	}
	target := strings.TrimSpace(code[:pos])
	expr := strings.TrimSpace(code[pos+len(op):])
	if !isIdentifier(target) {
		return Statement{}, fmt.Errorf("statement %q: invalid target %q", text, target)
	}
	if expr == "" {
		return Statement{}, fmt.Errorf("statement %q: empty expression", text)
	}
	return Statement{
		Var:     target,
		Op:      op,
		Expr:    expr,
		Comment: strings.TrimSpace(comment),
		Scalar:  scalar,
	}, nil
}

// findOp returns the position of the first assignment operator in code.
// Comparison operators (==, <=, >=, !=) are skipped.
func findOp(code string) (int, Op) {
	for i := 0; i < len(code); i++ {
		for _, op := range ops {
			if !strings.HasPrefix(code[i:], string(op)) {
				continue
			}
			if op == Assign {
				if i+1 < len(code) && code[i+1] == '=' {
					i++ // "=="
					break
				}
				if i > 0 && strings.ContainsRune("<>!=", rune(code[i-1])) {
					break
				}
			}
			return i, op
		}
	}
	return -1, ""
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// Block is a named, ordered list of statements. Scalar and vector statements
// may be interleaved; generators split them into two phases.
type Block struct {
	Name       string
	Statements []Statement
}

// Split partitions the statements into the scalar and vector phases,
// preserving their relative order.
func (b Block) Split() (scalar, vector []Statement) {
	for _, stmt := range b.Statements {
		if stmt.Scalar {
			scalar = append(scalar, stmt)
		} else {
			vector = append(vector, stmt)
		}
	}
	return scalar, vector
}
