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

// Package hostinfo probes the host CPU to derive native compile flags for
// generated backend code.
package hostinfo

import (
	"os"
	"strconv"
)

// NoNativeEnvVar disables host-specific compile flags when set to a true
// value.
const NoNativeEnvVar = "STATEGEN_NO_NATIVE"

// Info describes the host as seen by the compiler of generated code.
type Info struct {
	// Name is a short name for the best instruction set found
	// ("avx512", "avx2", "neon", "generic", ...).
	Name string

	// Flags are the compiler flags that enable it.
	Flags []string
}

// NoNativeEnv reports whether the STATEGEN_NO_NATIVE environment variable
// asks for portable code. Any non-empty value that does not parse as a
// boolean counts as true.
func NoNativeEnv() bool {
	val := os.Getenv(NoNativeEnvVar)
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// Detect probes the host. With STATEGEN_NO_NATIVE set it reports a generic
// host without flags.
func Detect() Info {
	if NoNativeEnv() {
		return Info{Name: "generic"}
	}
	name, flags := detect()
	return Info{Name: name, Flags: flags}
}

// CompileFlags returns the native flags of the host.
func CompileFlags() []string {
	return Detect().Flags
}
