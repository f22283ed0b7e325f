// Copyright 2025 Zintix Labs
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

// Package exec implements the fixed-size work-stealing worker pool of
// spec.md §4.7: a per-worker deque, LIFO-own/FIFO-steal scheduling, and
// graceful shutdown/drain.
package exec

import "sync/atomic"

const mask63 = uint64(1<<63) - 1

// seedMaker derives a stream of well-mixed, non-repeating int64 seeds
// from one base seed, used to give each worker a decorrelated PRNG
// stream per spec.md §5's
// "base seed combined with worker id" requirement.
//
// Grounded verbatim in algorithm on sim.go's seedMaker/mix63: the LCG
// walks its full period without repeating, and mix63 (a splitmix-style
// bit-mixer built from reversible multiply/xor-shift steps) decorrelates
// consecutive LCG outputs so nearby seeds don't produce visibly related
// PRNG streams.
type seedMaker struct {
	state atomic.Uint64
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next returns the next seed in the stream. Safe for concurrent callers:
// the state advance is a CAS loop, per sim.go's note that this may be
// called by multiple worker-starting goroutines at once.
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next))
		}
	}
}

// mix63 is a reversible 63-bit bit-mixer (splitmix-style): xor-shift and
// odd-constant multiply steps, each individually invertible, chained so
// the overall transform has no collisions over the 63-bit domain.
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}

// SeedMaker exposes seedMaker to callers outside this package (the
// orchestrator derives one seed per worker from the run's base seed).
type SeedMaker struct{ inner *seedMaker }

// NewSeedMaker builds a SeedMaker from a base seed.
func NewSeedMaker(seed int64) *SeedMaker {
	return &SeedMaker{inner: newSeedMaker(seed)}
}

// Next returns the next decorrelated seed in the stream.
func (m *SeedMaker) Next() int64 {
	return m.inner.next()
}
