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

// Package player implements the behavioral models that drive a session:
// a pure-random profile and a model-driven (v1) profile backed by an
// opaque bet/termination oracle.
package player

import (
	"math"

	"github.com/zintix-labs/slotmc/sdk/core"
	"github.com/zintix-labs/slotmc/spec"
)

// Observation is the session snapshot handed to a profile's Decide call,
// per spec.md §4.4 step 1.
type Observation struct {
	Balance       float64
	Currency      string
	AvailableBets []int
	LastSpins     []SpinSummary
	TotalBet      int
	TotalWin      int
	CurrentStreak int // positive = winning streak, negative = losing streak
	InFreeSpins   bool
	FreeSpinsLeft int
	SpinIndex     int
}

// SpinSummary is the condensed per-spin history an Observation carries
// (spec.md §4.4: "last up-to-10 spin records").
type SpinSummary struct {
	Bet    int
	Win    int
	Profit int
}

// Decision is a profile's response to an Observation: the bet to place,
// the logical think-time delay before the spin resolves, and whether the
// session should continue at all.
type Decision struct {
	Bet      int
	Delay    float64
	Continue bool
}

// Profile is the behavioral contract a session controller drives. It is a
// closed sum type (Random | V1) per spec.md §9's note that the source's
// inheritance hierarchy collapses into one interface with two
// implementations — there is no intent to support third-party profiles.
//
// Grounded on the shape of sdk/slot.GameLogic (a single-method interface
// bound to a per-instance builder), retargeted from spin resolution to
// player decision-making.
type Profile interface {
	// Decide returns the next action given the current session state. rng
	// is the calling worker's PRNG — profiles hold no PRNG of their own,
	// since a worker's single Core is the sole randomness source on its
	// hot path (spec.md §5's thread-local PRNG policy).
	Decide(rng *core.Core, obs Observation) Decision
	// Reset clears any per-session state (e.g. V1's bet/profit history) so
	// the instance can be reused from the per-worker pool, per spec.md
	// §4.6. The initial balance is not part of it: SampleInitialBalance
	// draws that separately.
	Reset(rng *core.Core)
}

// SampleInitialBalance draws a truncated-normal initial balance from pp's
// (μ, σ, min, max) parameters, per spec.md §3's Player profile invariant
// that the sampled value lies in [min, max].
//
// Grounded on spec/game_setting.go's distribution-sampling helpers,
// generalized from a weight table to a bounded Gaussian: rejection
// sampling is the simplest correct approach and the bounds are expected to
// be wide relative to sigma in practice.
func SampleInitialBalance(rng *core.Core, pp *spec.PlayerProfile) float64 {
	if pp.BalanceSigma == 0 {
		return clamp(pp.BalanceMu, pp.BalanceMin, pp.BalanceMax)
	}
	for i := 0; i < 64; i++ {
		v := pp.BalanceMu + pp.BalanceSigma*stdNormal(rng)
		if v >= pp.BalanceMin && v <= pp.BalanceMax {
			return v
		}
	}
	return clamp(pp.BalanceMu, pp.BalanceMin, pp.BalanceMax)
}

// stdNormal draws a standard-normal sample via the Box-Muller transform,
// built on Core's uniform Float64 since sdk/core carries no Gaussian
// sampler of its own.
func stdNormal(rng *core.Core) float64 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
