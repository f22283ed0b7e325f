package player

import (
	"testing"

	"github.com/zintix-labs/slotmc/sdk/core"
	"github.com/zintix-labs/slotmc/spec"
)

func newCore(seed int64) *core.Core {
	return core.New(core.Default().New(seed))
}

func validProfile() *spec.PlayerProfile {
	return &spec.PlayerProfile{
		ID:           "p1",
		Currency:     "USD",
		ModelVersion: "random",
		BalanceMu:    100,
		BalanceSigma: 0,
		BalanceMin:   50,
		BalanceMax:   150,
	}
}

func TestSampleInitialBalanceWithinBounds(t *testing.T) {
	pp := validProfile()
	pp.BalanceSigma = 30
	rng := newCore(1)
	for i := 0; i < 200; i++ {
		v := SampleInitialBalance(rng, pp)
		if v < pp.BalanceMin || v > pp.BalanceMax {
			t.Fatalf("sampled balance %v outside [%v,%v]", v, pp.BalanceMin, pp.BalanceMax)
		}
	}
}

func TestRandomDecideChoosesAffordableBet(t *testing.T) {
	r, err := NewRandom(validProfile())
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	rng := newCore(2)
	obs := Observation{Balance: 10, Currency: "USD", AvailableBets: []int{1, 5, 20}}
	d := r.Decide(rng, obs)
	if !d.Continue {
		t.Fatalf("expected continue")
	}
	if d.Bet != 1 && d.Bet != 5 {
		t.Fatalf("expected an affordable bet (1 or 5), got %d", d.Bet)
	}
}

func TestRandomDecideStopsOnZeroBalance(t *testing.T) {
	r, err := NewRandom(validProfile())
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	d := r.Decide(newCore(3), Observation{Balance: 0, AvailableBets: []int{1}})
	if d.Continue {
		t.Fatalf("expected termination on depleted balance")
	}
}

func TestRandomDecideStopsOnLossStreak(t *testing.T) {
	pp := validProfile()
	pp.Fixed = map[string]any{"loss_streak_limit": 3}
	r, err := NewRandom(pp)
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	d := r.Decide(newCore(4), Observation{Balance: 100, AvailableBets: []int{1}, CurrentStreak: -3})
	if d.Continue {
		t.Fatalf("expected termination once loss streak reaches limit")
	}
}

func TestRandomDecideStopsOnSessionBudget(t *testing.T) {
	pp := validProfile()
	pp.Fixed = map[string]any{"session_budget": 500}
	r, err := NewRandom(pp)
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	d := r.Decide(newCore(5), Observation{Balance: 1000, AvailableBets: []int{1}, TotalBet: 500})
	if d.Continue {
		t.Fatalf("expected termination once cumulative bet reaches the session budget")
	}
}

func TestRandomDecideContinuesBelowSessionBudget(t *testing.T) {
	pp := validProfile()
	pp.Fixed = map[string]any{"session_budget": 500}
	r, err := NewRandom(pp)
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	d := r.Decide(newCore(6), Observation{Balance: 1000, AvailableBets: []int{1}, TotalBet: 499})
	if !d.Continue {
		t.Fatalf("expected continuation below the session budget")
	}
}

func TestV1FirstBetSampledFromWeights(t *testing.T) {
	pp := validProfile()
	pp.Fixed = map[string]any{
		"first_bet_weights": map[string]any{"1": 1, "5": 0},
	}
	v, err := NewV1(pp, nil)
	if err != nil {
		t.Fatalf("NewV1: %v", err)
	}
	rng := newCore(5)
	obs := Observation{Balance: 100, AvailableBets: []int{1, 5}}
	d := v.Decide(rng, obs)
	if !d.Continue || d.Bet != 1 {
		t.Fatalf("expected the only-nonzero-weight bet (1) to be chosen deterministically, got %+v", d)
	}
}

func TestV1FallsBackWithoutOracle(t *testing.T) {
	pp := validProfile()
	pp.Fixed = map[string]any{
		"first_bet_weights": map[string]any{"1": 1},
	}
	v, err := NewV1(pp, nil)
	if err != nil {
		t.Fatalf("NewV1: %v", err)
	}
	rng := newCore(6)
	obs := Observation{Balance: 100, AvailableBets: []int{1, 5}}
	_ = v.Decide(rng, obs) // consumes the categorical first bet
	d := v.Decide(rng, obs)
	if !d.Continue {
		t.Fatalf("expected fallback decision to continue with no oracle configured")
	}
}

type stubOracle struct {
	terminate float32
	anomaly   float32
	bet       float32
}

func (s stubOracle) PredictBet(f BetFeatures) (float32, error) { return s.bet, nil }
func (s stubOracle) PredictTerminate(f TerminateFeatures) (float32, float32, error) {
	return s.terminate, s.anomaly, nil
}

func TestV1OracleTerminationThreshold(t *testing.T) {
	pp := validProfile()
	pp.Fixed = map[string]any{
		"first_bet_weights": map[string]any{"1": 1},
	}
	v, err := NewV1(pp, stubOracle{terminate: 0.9, bet: 5})
	if err != nil {
		t.Fatalf("NewV1: %v", err)
	}
	rng := newCore(7)
	obs := Observation{Balance: 100, AvailableBets: []int{1, 5}}
	_ = v.Decide(rng, obs) // first bet, categorical
	d := v.Decide(rng, obs)
	if d.Continue {
		t.Fatalf("expected oracle termination score >= 0.5 to end the session")
	}
}

func TestV1OracleBetPrediction(t *testing.T) {
	pp := validProfile()
	pp.Fixed = map[string]any{
		"first_bet_weights": map[string]any{"1": 1},
	}
	v, err := NewV1(pp, stubOracle{terminate: 0.0, bet: 5})
	if err != nil {
		t.Fatalf("NewV1: %v", err)
	}
	rng := newCore(8)
	obs := Observation{Balance: 100, AvailableBets: []int{1, 5}}
	_ = v.Decide(rng, obs) // first bet, categorical
	d := v.Decide(rng, obs)
	if !d.Continue || d.Bet != 5 {
		t.Fatalf("expected oracle-predicted bet 5, got %+v", d)
	}
}

func TestNewV1RejectsEmptyWeights(t *testing.T) {
	pp := validProfile()
	if _, err := NewV1(pp, nil); err == nil {
		t.Fatalf("expected error for missing first_bet_weights")
	}
}
