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
	"strconv"

	"github.com/zintix-labs/slotmc/errs"
	"github.com/zintix-labs/slotmc/sdk/core"
	"github.com/zintix-labs/slotmc/sdk/sampler"
	"github.com/zintix-labs/slotmc/spec"
)

// V1Config carries the model-driven profile's tunables, decoded from a
// PlayerProfile's Fixed bag: the first-bet categorical distribution and
// the fallback Random tunables used whenever the oracle is absent or its
// prediction is unusable.
type V1Config struct {
	FirstBetWeights map[string]int `yaml:"first_bet_weights" json:"first_bet_weights"`
	Fallback        RandomConfig   `yaml:"fallback"          json:"fallback"`
	AnomalyCutoff   float32        `yaml:"anomaly_cutoff"    json:"anomaly_cutoff"`
}

// V1 is the model-driven profile: the first bet is sampled from a
// first_bet_weights categorical distribution (via sdk/sampler's
// AliasTable), and every subsequent decision is produced by an Oracle,
// falling back to the random-affordable choice when the oracle is absent,
// errors, or returns an unusable value, per spec.md §4.5.
//
// Grounded on sdk/sampler.AliasTable for the categorical first-bet draw —
// exactly the O(1) weighted-pick shape AliasTable was built for, per
// SPEC_FULL.md's Open Question resolution on the reel-sampling model —
// and on the Random profile for the fallback path (spec.md §7: oracle
// prediction failure falls back to random, logged, not fatal).
type V1 struct {
	profile *spec.PlayerProfile
	cfg     V1Config
	oracle  Oracle

	firstBetValues []int
	firstBetTable  *sampler.AliasTable
	haveFirstBet   bool

	prevBet    int
	prevBase   int
	prevProfit float64
}

// NewV1 builds a V1 profile bound to pp, decoding its Fixed bag for the
// first-bet weight map and fallback tunables, and building the alias
// table used to sample the session's opening bet.
func NewV1(pp *spec.PlayerProfile, oracle Oracle) (*V1, error) {
	var cfg V1Config
	if len(pp.Fixed) > 0 {
		if err := spec.DecodeFixed(pp, &cfg); err != nil {
			return nil, err
		}
	}
	if len(cfg.FirstBetWeights) == 0 {
		return nil, errs.NewFatal("player.NewV1: first_bet_weights is required and must be non-empty")
	}

	values := make([]int, 0, len(cfg.FirstBetWeights))
	weights := make([]int, 0, len(cfg.FirstBetWeights))
	for betStr, w := range cfg.FirstBetWeights {
		bet, err := parseBetKey(betStr)
		if err != nil {
			return nil, err
		}
		values = append(values, bet)
		weights = append(weights, w)
	}

	v := &V1{
		profile:        pp,
		cfg:            cfg,
		oracle:         oracle,
		firstBetValues: values,
		firstBetTable:  sampler.BuildAliasTable(weights),
	}
	return v, nil
}

// Reset clears the per-session prediction history so the next session
// again samples its first bet categorically, per spec.md §4.6.
func (v *V1) Reset(rng *core.Core) {
	v.haveFirstBet = false
	v.prevBet = 0
	v.prevBase = 0
	v.prevProfit = 0
}

// Decide samples the first bet categorically; every subsequent decision
// consults the oracle, falling back to a uniform affordable choice on any
// oracle failure or out-of-range prediction.
func (v *V1) Decide(rng *core.Core, obs Observation) Decision {
	if !v.haveFirstBet {
		v.haveFirstBet = true
		idx := v.firstBetTable.Pick(rng)
		bet := v.firstBetValues[idx]
		if !containsBet(obs.AvailableBets, bet) || float64(bet) > obs.Balance {
			return v.fallbackDecide(rng, obs)
		}
		v.recordBet(bet, obs)
		return Decision{Bet: bet, Delay: v.cfg.Fallback.MinDelay, Continue: true}
	}

	if v.oracle == nil {
		return v.fallbackDecide(rng, obs)
	}

	tf := v.terminateFeatures(obs)
	termScore, anomaly, err := v.oracle.PredictTerminate(tf)
	if err != nil {
		return v.fallbackDecide(rng, obs)
	}
	if termScore >= 0.5 {
		return Decision{Continue: false}
	}
	if v.cfg.AnomalyCutoff > 0 && anomaly >= v.cfg.AnomalyCutoff {
		return Decision{Continue: false}
	}

	bf := v.betFeatures(obs)
	predicted, err := v.oracle.PredictBet(bf)
	if err != nil {
		return v.fallbackDecide(rng, obs)
	}
	bet := int(predicted)
	if bet <= 0 || !containsBet(obs.AvailableBets, bet) || float64(bet) > obs.Balance {
		return v.fallbackDecide(rng, obs)
	}

	v.recordBet(bet, obs)
	return Decision{Bet: bet, Delay: v.cfg.Fallback.MinDelay, Continue: true}
}

// fallbackDecide builds a transient Random profile over the same
// PlayerProfile and delegates to it, per spec.md §7's "fall back to
// random profile for that decision" policy — the fallback is stateless
// per call, so no persistent Random instance needs to be carried.
func (v *V1) fallbackDecide(rng *core.Core, obs Observation) Decision {
	fb := &Random{profile: v.profile, cfg: v.cfg.Fallback}
	d := fb.Decide(rng, obs)
	if d.Continue {
		v.recordBet(d.Bet, obs)
	}
	return d
}

func (v *V1) recordBet(bet int, obs Observation) {
	v.prevBet = bet
	v.prevBase = bet
	v.prevProfit = float64(obs.TotalWin - obs.TotalBet)
}

// betFeatures assembles the fixed 12-vector the bet predictor consumes,
// per spec.md §4.5.
func (v *V1) betFeatures(obs Observation) BetFeatures {
	profit := float64(obs.TotalWin - obs.TotalBet)
	var lastWin, lastBet float64
	if n := len(obs.LastSpins); n > 0 {
		lastWin = float64(obs.LastSpins[n-1].Win)
		lastBet = float64(obs.LastSpins[n-1].Bet)
	}
	currencyFlag := float32(0)
	if obs.Currency != "" {
		currencyFlag = 1
	}
	return BetFeatures{
		float32(obs.Balance),
		float32(profit),
		float32(obs.CurrentStreak),
		0, // slot-type constant: always 0
		float32(v.prevBase),
		float32(0), // Δt: always 0; Observation carries no logical-clock value
		float32(profit - v.prevProfit),
		float32(lastWin - lastBet),
		float32(v.prevBet),
		float32(v.prevBase),
		float32(v.prevProfit),
		currencyFlag,
	}
}

// terminateFeatures assembles the fixed 8-vector the termination
// predictor consumes, per spec.md §4.5.
func (v *V1) terminateFeatures(obs Observation) TerminateFeatures {
	profit := float64(obs.TotalWin - obs.TotalBet)
	return TerminateFeatures{
		float32(obs.Balance),
		float32(profit),
		float32(v.prevBet),
		float32(obs.CurrentStreak),
		float32(maxInt(obs.CurrentStreak, 0)),
		float32(v.prevBet),
		float32(obs.Balance),
		float32(v.prevProfit),
	}
}

func containsBet(bets []int, b int) bool {
	for _, v := range bets {
		if v == b {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// parseBetKey converts a first_bet_weights map key (the bet amount,
// serialized as a YAML/JSON map key and therefore always a string) to an
// int bet value.
func parseBetKey(key string) (int, error) {
	v, err := strconv.Atoi(key)
	if err != nil {
		return 0, errs.Wrap(err, "player.parseBetKey: bet key must be an integer")
	}
	return v, nil
}
