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

package expr

import (
	"go/token"
	"strings"
)

func isKeyword(name string) bool {
	switch name {
	case "and", "or", "not", "True", "False", "true", "false":
		return true
	}
	return false
}

// Identifiers returns the distinct identifiers of src in order of first
// appearance, including called function names and excluding the boolean
// keywords.
func Identifiers(src string) ([]string, error) {
	items, err := lex(src)
	if err != nil {
		return nil, err
	}
	var out []string
	seen := make(map[string]bool)
	for _, it := range items {
		if it.tok != token.IDENT || isKeyword(it.lit) || seen[it.lit] {
			continue
		}
		seen[it.lit] = true
		out = append(out, it.lit)
	}
	return out, nil
}

// Substitute replaces whole identifier tokens of src according to names.
// Substrings of longer identifiers are left alone, so renaming "abs" never
// touches "absorb".
func Substitute(src string, names map[string]string) (string, error) {
	if len(names) == 0 {
		return src, nil
	}
	items, err := lex(src)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	last := 0
	for _, it := range items {
		if it.tok != token.IDENT {
			continue
		}
		repl, ok := names[it.lit]
		if !ok {
			continue
		}
		sb.WriteString(src[last:it.offset])
		sb.WriteString(repl)
		last = it.offset + len(it.lit)
	}
	sb.WriteString(src[last:])
	return sb.String(), nil
}
