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

package player

import (
	"github.com/zintix-labs/slotmc/sdk/core"
	"github.com/zintix-labs/slotmc/spec"
)

// RandomConfig carries the Random profile's tunables, decoded from a
// PlayerProfile's Fixed bag via spec.DecodeFixed.
type RandomConfig struct {
	MinDelay        float64 `yaml:"min_delay"         json:"min_delay"`
	MaxDelay        float64 `yaml:"max_delay"         json:"max_delay"`
	StopProbability float64 `yaml:"stop_probability"  json:"stop_probability"`
	LossStreakLimit int     `yaml:"loss_streak_limit" json:"loss_streak_limit"`

	// SessionBudget, when positive, stops the session once cumulative bet
	// reaches it, per spec.md §4.5's fourth termination condition
	// (distinct from balance depletion — §8 names session_budget=∞ as a
	// separate testable case). Zero/unset means no budget cap.
	SessionBudget int `yaml:"session_budget" json:"session_budget"`
}

// Random is the profile that chooses uniformly among affordable bets and
// terminates on a configured stop probability, loss streak, session
// budget, or balance depletion, per spec.md §4.5.
//
// Grounded on mnemoo-tools/backend/internal/crowdsim's Player state
// bookkeeping (streak and balance tracking), rewritten around spec.md's
// explicit Decide/Reset profile contract rather than the source's
// ProcessSpin mutator.
type Random struct {
	profile *spec.PlayerProfile
	cfg     RandomConfig
}

// NewRandom builds a Random profile bound to pp, decoding its Fixed bag
// for the min/max think-time delay, stop probability, and loss-streak
// termination threshold.
func NewRandom(pp *spec.PlayerProfile) (*Random, error) {
	var cfg RandomConfig
	if len(pp.Fixed) > 0 {
		if err := spec.DecodeFixed(pp, &cfg); err != nil {
			return nil, err
		}
	}
	return &Random{profile: pp, cfg: cfg}, nil
}

// Reset is a no-op for Random: it holds no per-session state of its own —
// balance lives in the session controller's observation, not the profile.
func (r *Random) Reset(rng *core.Core) {}

// Decide chooses uniformly among the bets the current balance affords,
// with a uniform think-time delay in [min_delay, max_delay], and
// terminates per the configured stop probability, loss-streak threshold,
// or session budget, per spec.md §4.5.
//
// Grounded on sdk/core.Core.Pick (uniform choice over an int slice) for
// the affordable-bet selection.
func (r *Random) Decide(rng *core.Core, obs Observation) Decision {
	if r.cfg.StopProbability > 0 && rng.Float64() < r.cfg.StopProbability {
		return Decision{Continue: false}
	}
	if r.cfg.LossStreakLimit > 0 && -obs.CurrentStreak >= r.cfg.LossStreakLimit {
		return Decision{Continue: false}
	}
	if r.cfg.SessionBudget > 0 && obs.TotalBet >= r.cfg.SessionBudget {
		return Decision{Continue: false}
	}
	if obs.Balance <= 0 {
		return Decision{Continue: false}
	}

	affordable := make([]int, 0, len(obs.AvailableBets))
	for _, b := range obs.AvailableBets {
		if float64(b) <= obs.Balance {
			affordable = append(affordable, b)
		}
	}
	if len(affordable) == 0 {
		return Decision{Continue: false}
	}

	bet := rng.Pick(affordable)
	delay := r.cfg.MinDelay
	if r.cfg.MaxDelay > r.cfg.MinDelay {
		delay = r.cfg.MinDelay + rng.Float64()*(r.cfg.MaxDelay-r.cfg.MinDelay)
	}
	return Decision{Bet: bet, Delay: delay, Continue: true}
}
