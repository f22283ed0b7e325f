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

// BetFeatures is the fixed 12-vector the bet predictor consumes, per
// spec.md §4.5/§6: balance, current profit, win/loss streak, slot-type
// constant, base-point, Δt, Δprofit, Δpayout, prev_bet, prev_basepoint,
// prev_profit, currency flag.
type BetFeatures [12]float32

// TerminateFeatures is the fixed 8-vector the termination predictor
// consumes, per spec.md §4.5/§6: balance, cumulative profit, current bet,
// streak, win-streak, prev_bet, prev_balance, prev_profit.
type TerminateFeatures [8]float32

// Oracle is the external ML backend contract for the v1 profile, per
// spec.md §6: two opaque, thread-safe-for-read inference calls per player
// cluster. The backend is loaded once per worker (or shared behind a
// mutex if non-reentrant) — Oracle implementations are responsible for
// their own concurrency safety, since a worker calls PredictBet/
// PredictTerminate from its own goroutine without external locking.
//
// Grounded in shape on sdk/slot.GameLogic's single-responsibility
// interface-per-concern pattern, split into two methods because the two
// predictors have independent feature vectors and independent failure
// modes (spec.md §7: an oracle prediction failure falls back to the
// random profile for that one decision, it does not abort the session).
type Oracle interface {
	// PredictBet returns the scalar next-bet prediction for f.
	PredictBet(f BetFeatures) (float32, error)
	// PredictTerminate returns the termination scalar (thresholded at 0.5
	// by the caller) and an auxiliary anomaly score for f.
	PredictTerminate(f TerminateFeatures) (terminateScore float32, anomalyScore float32, err error)
}

// NoOracle is an Oracle that always reports failure. It is the default
// bound to a v1 profile when a run config names no real backend: every
// decision falls back to the random profile, per spec.md §7's "oracle
// prediction failure -> fall back to random profile for that decision".
// The real backend (a remote model-serving process) is outside this
// engine's scope per spec.md §6 ("external ML backend") — wiring one in
// means implementing Oracle against that system's client library.
type NoOracle struct{}

func (NoOracle) PredictBet(BetFeatures) (float32, error) {
	return 0, errUnconfiguredOracle
}

func (NoOracle) PredictTerminate(TerminateFeatures) (float32, float32, error) {
	return 0, 0, errUnconfiguredOracle
}

var errUnconfiguredOracle = oracleError("player: no oracle backend configured")

type oracleError string

func (e oracleError) Error() string { return string(e) }
