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

// Package pool implements the per-worker instance pool described in
// spec.md §4.6: a bounded LIFO of Player and Machine instances keyed by
// fingerprint, strictly thread-local — no locks on the hot path.
//
// Grounded in concept on machinepool.go's per-game pool/broken channel
// pair, but deliberately dropped down to a lock-free, single-goroutine
// LIFO: the teacher's pool is a cross-goroutine resource shared via
// buffered channels (many callers borrow/return concurrently), while
// spec.md §4.6/§5 requires the opposite — one pool per worker goroutine,
// touched by that goroutine alone, so channels/mutexes would add
// synchronization overhead the spec explicitly rules out.
package pool

import "github.com/zintix-labs/slotmc/spec"

// DefaultSize is the default bounded LIFO depth per fingerprint, per
// spec.md §4.6 ("at most K (default 3)").
const DefaultSize = 3

// Instance is one (Player, Machine) pair bound to a fingerprint.
type Instance[P any, M any] struct {
	Player  P
	Machine M
}

// Pool is a per-worker, fingerprint-keyed bounded LIFO of instances of
// type T. It carries no synchronization: the worker goroutine that owns a
// Pool is its only caller.
type Pool[T any] struct {
	size    int
	stacks  map[spec.Fingerprint][]T
	factory func(spec.Fingerprint) (T, error)
}

// New builds a Pool with the given per-fingerprint depth and factory,
// used when Borrow misses.
func New[T any](size int, factory func(spec.Fingerprint) (T, error)) *Pool[T] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Pool[T]{
		size:    size,
		stacks:  make(map[spec.Fingerprint][]T),
		factory: factory,
	}
}

// Borrow pops the top instance for fp, or constructs a fresh one via the
// factory if the stack is empty.
func (p *Pool[T]) Borrow(fp spec.Fingerprint) (T, error) {
	stack := p.stacks[fp]
	if n := len(stack); n > 0 {
		inst := stack[n-1]
		p.stacks[fp] = stack[:n-1]
		return inst, nil
	}
	return p.factory(fp)
}

// Return pushes inst back onto fp's stack if there is room, else drops
// it, per spec.md §4.6 ("pushes back if room, else drops"). Callers must
// reset inst's per-session state before calling Return.
func (p *Pool[T]) Return(fp spec.Fingerprint, inst T) {
	stack := p.stacks[fp]
	if len(stack) >= p.size {
		return
	}
	p.stacks[fp] = append(stack, inst)
}

// Depth reports how many idle instances are currently pooled for fp (for
// diagnostics/tests only).
func (p *Pool[T]) Depth(fp spec.Fingerprint) int {
	return len(p.stacks[fp])
}
