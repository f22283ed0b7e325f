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

// Package session drives the player/machine interaction loop: building
// observations, consulting the player profile, debiting/crediting
// balance, and recording the outcome, per spec.md §4.4.
package session

import (
	"strconv"

	"github.com/zintix-labs/slotmc/engine"
	"github.com/zintix-labs/slotmc/spec"
)

// Record is the immutable, published-at-session-end summary spec.md §3
// names: "ids, spin count, totals (bet, win, profit), start/end balances,
// duration, free-spin counts, max single win, worst running loss streak,
// RTP".
//
// Grounded on mnemoo-tools/backend/internal/crowdsim.PlayerSummary's
// condensed-report shape, extended with the session-identity and
// free-spin fields spec.md's data model requires.
type Record struct {
	SessionID   string
	PlayerID    string
	MachineID   string
	TotalSpins  int
	TotalBet    int
	TotalWin    int
	TotalProfit int

	InitialBalance float64
	FinalBalance   float64
	DurationSec    float64

	FreeSpinsTriggered int
	FreeSpinsPlayed    int
	MaxSingleWin       int
	MaxLossStreak      int

	// Snapshot is an optional base64url-encoded PRNG state captured
	// immediately before the first spin, present only when audit replay
	// is enabled (SPEC_FULL.md supplemental feature #4).
	Snapshot string

	Failed bool
}

// RTP returns total_win / total_bet, or 0 when nothing was wagered, per
// spec.md §3.
func (r Record) RTP() float64 {
	if r.TotalBet == 0 {
		return 0
	}
	return float64(r.TotalWin) / float64(r.TotalBet)
}

// SpinRecord is the optional per-spin tuple spec.md §3 names, only
// materialized when raw recording is enabled.
type SpinRecord struct {
	SessionID          string
	SpinNumber         int
	BetAmount          int
	WinAmount          int
	Profit             int
	TriggerFreeSpins   bool
	FreeSpinsRemaining int
	InFreeSpins        bool
	TimestampUnixNano  int64
	Grid               []string // symbol names, row-major, for CSV rendering
}

// gridSymbols renders a resolved spin grid's cells as strings for the
// optional raw-spin CSV column, per spec.md §6 ("grid is a quoted
// comma-joined symbol list").
func gridSymbols(g engine.Grid) []string {
	out := make([]string, len(g.Cells))
	for i, s := range g.Cells {
		out[i] = symbolString(s)
	}
	return out
}

// symbolString renders a spec.Symbol (an integer id) as its decimal
// string form; the catalog layer is free to carry a richer name table,
// but the raw-spin CSV only needs a stable, parseable token per spec.md
// §6.
func symbolString(s spec.Symbol) string {
	return strconv.Itoa(int(s))
}
