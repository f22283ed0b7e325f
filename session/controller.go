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

package session

import (
	"time"

	"github.com/zintix-labs/slotmc/corefmt"
	"github.com/zintix-labs/slotmc/engine"
	"github.com/zintix-labs/slotmc/errs"
	"github.com/zintix-labs/slotmc/player"
	"github.com/zintix-labs/slotmc/sdk/core"
	"github.com/zintix-labs/slotmc/spec"
)

const historyWindow = 10

// Controller runs the player<->machine interaction loop for exactly one
// session, per spec.md §4.4. It is the sole writer of the Record it
// produces; the bound Player and Machine are non-reentrant for the
// controller's lifetime.
//
// Grounded in shape on problab.go's Simulator.SimOne single-session drive
// loop, generalized from a fixed bet-amount/round-count loop to the
// player-driven observe/decide/spin cycle spec.md §4.4 specifies.
type Controller struct {
	SessionID string
	Machine   *engine.Machine
	Player    player.Profile
	RNG       *core.Core
	Bets      spec.BetTable
	Currency  string
	Limits    spec.RunLimits
	RecordRaw bool

	// ThinkTimeEnabled, when true, actually sleeps the decided delay
	// between spins (spec.md §5: "for large-scale runs should be
	// disabled"). Default false: the logical clock still advances by
	// delay so max_logical_duration behaves identically either way.
	ThinkTimeEnabled bool

	// CaptureSnapshot, when true, records the PRNG state immediately
	// before the first spin onto the returned Record, enabling exact
	// session replay for audit (SPEC_FULL.md supplemental feature #4).
	// Off by default; does not alter spin resolution.
	CaptureSnapshot bool
}

// result is the accumulator the Run loop mutates; it is converted into
// the published Record only once the loop terminates.
type result struct {
	totalSpins         int
	totalBet           int
	totalWin           int
	freeSpinsTriggered int
	freeSpinsPlayed    int
	maxSingleWin       int
	curLossStreak      int
	maxLossStreak      int
	curStreakSign      int // positive run length, negative run length
	history            []player.SpinSummary
}

// Run drives the session to completion and returns its published Record
// and, if RecordRaw is set, the per-spin records.
func (c *Controller) Run(initialBalance float64) (Record, []SpinRecord) {
	balance := initialBalance
	var res result
	var logicalSeconds float64
	var spins []SpinRecord
	wallStart := time.Now()

	var snapshot string
	if c.CaptureSnapshot {
		if raw, err := c.RNG.Snapshot(); err == nil {
			snapshot = corefmt.EncodeBase64URL(raw)
		}
	}

	available := c.Bets[c.Currency]

	for {
		if c.Limits.MaxSpins > 0 && res.totalSpins >= c.Limits.MaxSpins {
			break
		}
		if c.Limits.MaxLogicalSeconds > 0 && logicalSeconds >= c.Limits.MaxLogicalSeconds {
			break
		}
		if c.Limits.MaxWallDuration > 0 && time.Since(wallStart).Seconds() >= c.Limits.MaxWallDuration {
			break
		}

		obs := c.observe(balance, available, res)
		decision := c.Player.Decide(c.RNG, obs)

		if !decision.Continue || decision.Bet <= 0 || !betAllowed(available, decision.Bet) || float64(decision.Bet) > balance {
			break
		}

		balance -= float64(decision.Bet)
		outcome := c.Machine.Spin(decision.Bet)
		balance += float64(outcome.Win)

		profit := outcome.Win - decision.Bet
		res.totalSpins++
		res.totalBet += decision.Bet
		res.totalWin += outcome.Win
		if outcome.Win > res.maxSingleWin {
			res.maxSingleWin = outcome.Win
		}
		if outcome.TriggeredFreeSpins {
			res.freeSpinsTriggered++
		}
		if outcome.InFreeSpins {
			res.freeSpinsPlayed++
		}
		updateStreak(&res, profit)

		res.history = append(res.history, player.SpinSummary{Bet: decision.Bet, Win: outcome.Win, Profit: profit})
		if len(res.history) > historyWindow {
			res.history = res.history[len(res.history)-historyWindow:]
		}

		if c.RecordRaw {
			spins = append(spins, SpinRecord{
				SessionID:          c.SessionID,
				SpinNumber:         res.totalSpins,
				BetAmount:          decision.Bet,
				WinAmount:          outcome.Win,
				Profit:             profit,
				TriggerFreeSpins:   outcome.TriggeredFreeSpins,
				FreeSpinsRemaining: outcome.FreeSpinsRemaining,
				InFreeSpins:        outcome.InFreeSpins,
				TimestampUnixNano:  time.Now().UnixNano(),
				Grid:               gridSymbols(outcome.Grid),
			})
		}

		logicalSeconds += decision.Delay
		if c.ThinkTimeEnabled && decision.Delay > 0 {
			time.Sleep(time.Duration(decision.Delay * float64(time.Second)))
		}
	}

	rec := Record{
		SessionID:          c.SessionID,
		TotalSpins:         res.totalSpins,
		TotalBet:           res.totalBet,
		TotalWin:           res.totalWin,
		TotalProfit:        res.totalWin - res.totalBet,
		InitialBalance:     initialBalance,
		FinalBalance:       balance,
		DurationSec:        time.Since(wallStart).Seconds(),
		FreeSpinsTriggered: res.freeSpinsTriggered,
		FreeSpinsPlayed:    res.freeSpinsPlayed,
		MaxSingleWin:       res.maxSingleWin,
		MaxLossStreak:      res.maxLossStreak,
		Snapshot:           snapshot,
	}
	return rec, spins
}

func (c *Controller) observe(balance float64, available []int, res result) player.Observation {
	return player.Observation{
		Balance:       balance,
		Currency:      c.Currency,
		AvailableBets: available,
		LastSpins:     res.history,
		TotalBet:      res.totalBet,
		TotalWin:      res.totalWin,
		CurrentStreak: res.curStreakSign,
		InFreeSpins:   c.Machine.FreeSpin.Active,
		FreeSpinsLeft: c.Machine.FreeSpin.Remaining,
		SpinIndex:     res.totalSpins,
	}
}

func updateStreak(res *result, profit int) {
	if profit > 0 {
		if res.curStreakSign > 0 {
			res.curStreakSign++
		} else {
			res.curStreakSign = 1
		}
		res.curLossStreak = 0
	} else {
		if res.curStreakSign < 0 {
			res.curStreakSign--
		} else {
			res.curStreakSign = -1
		}
		res.curLossStreak++
		if res.curLossStreak > res.maxLossStreak {
			res.maxLossStreak = res.curLossStreak
		}
	}
}

func betAllowed(available []int, bet int) bool {
	for _, b := range available {
		if b == bet {
			return true
		}
	}
	return false
}

// ValidateLimits rejects a non-sensical run-limit configuration before a
// Controller is built, per spec.md §7's "config load failure is fatal
// before execution begins".
func ValidateLimits(l spec.RunLimits) error {
	if l.MaxSpins < 0 || l.MaxWallDuration < 0 || l.MaxLogicalSeconds < 0 {
		return errs.NewFatal("session: run limits must be non-negative")
	}
	return nil
}
