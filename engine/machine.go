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

package engine

import (
	"github.com/zintix-labs/slotmc/sdk/core"
	"github.com/zintix-labs/slotmc/spec"
)

// SpinOutcome is everything one resolved spin produces.
type SpinOutcome struct {
	Grid               Grid
	Win                int
	TriggeredFreeSpins bool
	InFreeSpins        bool
	FreeSpinsRemaining int
	Lines              []LineResult
}

// Machine composes a reel set, paytable, and free-spin state machine
// into a single spin-resolution unit bound to one worker's PRNG.
//
// Grounded on machine.go's Spin/SpinInternal split (validated entry point
// vs. hot path), simplified: the teacher's per-instance mutex is dropped
// because the instance pool's borrow contract already guarantees a
// Machine is only ever touched by the worker goroutine that holds it.
type Machine struct {
	Config   *spec.MachineConfig
	RNG      *core.Core
	FreeSpin FreeSpinState
}

// NewMachine binds a machine configuration to a worker-local PRNG.
func NewMachine(cfg *spec.MachineConfig, rng *core.Core) *Machine {
	return &Machine{Config: cfg, RNG: rng}
}

// Spin resolves one spin: draws a grid from the reel set appropriate to
// the current mode, scores paylines, applies the free-spin multiplier,
// and advances the free-spin state machine.
func (m *Machine) Spin(bet int) SpinOutcome {
	inFreeSpins := m.FreeSpin.Active
	reelSet := m.Config.ActiveReelSet(inFreeSpins)
	grid := GenScreen(m.RNG, reelSet, m.Config.WindowSize)

	total, lines := EvaluateSpin(grid, m.Config.Paylines, m.Config.ActiveLines, &m.Config.Symbols, &m.Config.Paytable, bet)
	if inFreeSpins {
		total *= m.Config.FreeSpinsMul
	}

	// Free-spin mode never re-triggers, per spec.md §4.3/§9 — a
	// deliberate simplification preserved from the source.
	triggered := !inFreeSpins && DetectScatterTrigger(grid, &m.Config.Symbols)
	if triggered {
		m.FreeSpin.Trigger(m.Config.FreeSpins)
	}
	if inFreeSpins {
		m.FreeSpin.Advance()
	}

	return SpinOutcome{
		Grid:               grid,
		Win:                total,
		TriggeredFreeSpins: triggered,
		InFreeSpins:        inFreeSpins,
		FreeSpinsRemaining: m.FreeSpin.Remaining,
		Lines:              lines,
	}
}

// Reset clears free-spin state, as required when an instance is returned
// to the per-worker pool (spec.md §4.6: "machine state cleared").
func (m *Machine) Reset() {
	m.FreeSpin = FreeSpinState{}
}
