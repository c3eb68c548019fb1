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
	"math/rand/v2"
	"sync"
)

// DefaultBufferSize is the number of draws per refill of a RandomBuffer.
const DefaultBufferSize = 1024

// RandomBuffer amortizes draws from a random source: values are handed out
// in order from a buffer that is refilled in bulk whenever the cursor wraps
// to zero. Any fixed refill sequence therefore yields the same values no
// matter how many call sites consume them.
//
// A RandomBuffer is safe for concurrent use. The generated backends carry
// the same state without a lock.
type RandomBuffer struct {
	mu     sync.Mutex
	buf    []float64
	cur    int
	refill func([]float64)
}

// NewRandomBuffer returns a buffer of size values refilled by refill.
// A non-positive size uses DefaultBufferSize.
func NewRandomBuffer(size int, refill func(buf []float64)) *RandomBuffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &RandomBuffer{buf: make([]float64, size), refill: refill}
}

// Next returns the value at the cursor and advances it. The index argument
// mirrors the per-element signature of the generated code and is ignored.
func (b *RandomBuffer) Next(_ int) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cur == 0 {
		b.refill(b.buf)
	}
	v := b.buf[b.cur]
	b.cur = (b.cur + 1) % len(b.buf)
	return v
}

// Size returns the buffer length.
func (b *RandomBuffer) Size() int { return len(b.buf) }

// UniformSource fills buffers with uniform draws in [0, 1).
func UniformSource(r *rand.Rand) func([]float64) {
	return func(buf []float64) {
		for i := range buf {
			buf[i] = r.Float64()
		}
	}
}

// NormalSource fills buffers with standard normal draws.
func NormalSource(r *rand.Rand) func([]float64) {
	return func(buf []float64) {
		for i := range buf {
			buf[i] = r.NormFloat64()
		}
	}
}

// Int truncates x toward zero.
func Int[T int32 | int64 | float32 | float64](x T) int32 {
	return int32(x)
}

// Clip returns low if x < low, high if x > high, and x otherwise.
func Clip[T float32 | float64](x, low, high T) T {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}
