package engine

import (
	"testing"

	"github.com/zintix-labs/slotmc/sdk/core"
	"github.com/zintix-labs/slotmc/spec"
)

func strip(syms ...spec.Symbol) spec.ReelStrip { return spec.ReelStrip{Symbols: syms} }

const (
	symA spec.Symbol = iota
	symB
	symW
	symC
)

func newCore(seed int64) *core.Core {
	return core.New(core.Default().New(seed))
}

// Scenario 1: trivial win. Single reel-set of 5 reels each [A] (length 1),
// one payline [0,1,2,3,4], paytable {A:[1,2,5]}, bet=1, active_lines=1.
func TestScenarioTrivialWin(t *testing.T) {
	cfg := &spec.MachineConfig{
		ReelSets: map[string]*spec.ReelSet{
			spec.ReelSetNormal: {Reels: []spec.ReelStrip{strip(symA), strip(symA), strip(symA), strip(symA), strip(symA)}},
		},
		Paylines:    []spec.Payline{{0, 1, 2, 3, 4}},
		Paytable:    spec.Paytable{Rows: map[spec.Symbol][]int{symA: {1, 2, 5}}},
		Symbols:     spec.SymbolSetting{Normal: []spec.Symbol{symA}, Wild: nil, Scatter: symC},
		BetTable:    spec.BetTable{"USD": {1}},
		WindowSize:  1,
		ActiveLines: 1,
		ID:          "trivial-win",
	}
	if err := cfg.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	m := NewMachine(cfg, newCore(1))

	totalBet, totalWin := 0, 0
	for i := 0; i < 10; i++ {
		out := m.Spin(1)
		totalBet += 1
		totalWin += out.Win
	}
	if totalBet != 10 || totalWin != 50 {
		t.Fatalf("expected total_bet=10 total_win=50, got bet=%d win=%d", totalBet, totalWin)
	}
	rtp := float64(totalWin) / float64(totalBet)
	if rtp != 5.0 {
		t.Fatalf("expected rtp=5.0, got %v", rtp)
	}
}

// Scenario 2: no-pay spin. Reels [A],[B],[A],[B],[A], same payline,
// paytable for both A and B, no wilds -> grid is always [A,B,A,B,A],
// left-anchored run=1, win=0.
func TestScenarioNoPaySpin(t *testing.T) {
	cfg := &spec.MachineConfig{
		ReelSets: map[string]*spec.ReelSet{
			spec.ReelSetNormal: {Reels: []spec.ReelStrip{strip(symA), strip(symB), strip(symA), strip(symB), strip(symA)}},
		},
		Paylines:    []spec.Payline{{0, 1, 2, 3, 4}},
		Paytable:    spec.Paytable{Rows: map[spec.Symbol][]int{symA: {1, 2, 5}, symB: {1, 2, 5}}},
		Symbols:     spec.SymbolSetting{Normal: []spec.Symbol{symA, symB}, Scatter: symC},
		BetTable:    spec.BetTable{"USD": {1}},
		WindowSize:  1,
		ActiveLines: 1,
		ID:          "no-pay",
	}
	if err := cfg.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	m := NewMachine(cfg, newCore(2))
	out := m.Spin(1)
	if out.Win != 0 {
		t.Fatalf("expected rtp=0 (win=0), got win=%d", out.Win)
	}
}

// Scenario 3: wild substitution. Reels [W],[A],[A],[A],[X] with wild set
// {W}, paytable {A:[1,2,5]}. Run: W,A,A,A,X -> anchor=A, run=4,
// payout=2*bet.
func TestScenarioWildSubstitution(t *testing.T) {
	const symX spec.Symbol = 9
	cfg := &spec.MachineConfig{
		ReelSets: map[string]*spec.ReelSet{
			spec.ReelSetNormal: {Reels: []spec.ReelStrip{strip(symW), strip(symA), strip(symA), strip(symA), strip(symX)}},
		},
		Paylines:    []spec.Payline{{0, 1, 2, 3, 4}},
		Paytable:    spec.Paytable{Rows: map[spec.Symbol][]int{symA: {1, 2, 5}}},
		Symbols:     spec.SymbolSetting{Normal: []spec.Symbol{symA, symX}, Wild: []spec.Symbol{symW}, Scatter: symC},
		BetTable:    spec.BetTable{"USD": {7}},
		WindowSize:  1,
		ActiveLines: 1,
		ID:          "wild-substitution",
	}
	if err := cfg.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	m := NewMachine(cfg, newCore(3))
	bet := 7
	out := m.Spin(bet)
	if out.Lines[0].Anchor != symA || out.Lines[0].RunLen != 4 {
		t.Fatalf("expected anchor=A run=4, got anchor=%d run=%d", out.Lines[0].Anchor, out.Lines[0].RunLen)
	}
	if out.Win != 2*bet {
		t.Fatalf("expected payout=2*bet=%d, got %d", 2*bet, out.Win)
	}
}

// Scenario 4/5: scatter trigger on >=3 distinct columns vs. exactly 2.
func TestScenarioScatterTrigger(t *testing.T) {
	grid3 := Grid{NumReels: 5, Window: 1, Cells: []spec.Symbol{symC, symA, symC, symA, symC}}
	ss := &spec.SymbolSetting{Normal: []spec.Symbol{symA}, Scatter: symC}
	if err := ss.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !DetectScatterTrigger(grid3, ss) {
		t.Fatalf("expected scatter on 3 distinct columns to trigger")
	}

	grid2 := Grid{NumReels: 5, Window: 1, Cells: []spec.Symbol{symC, symA, symC, symA, symA}}
	if DetectScatterTrigger(grid2, ss) {
		t.Fatalf("expected scatter on only 2 distinct columns to not trigger")
	}
}

func TestFreeSpinStateDoesNotRetrigger(t *testing.T) {
	cfg := &spec.MachineConfig{
		ReelSets: map[string]*spec.ReelSet{
			spec.ReelSetNormal: {Reels: []spec.ReelStrip{strip(symC), strip(symC), strip(symC), strip(symA), strip(symA)}},
		},
		Paylines:     []spec.Payline{{0, 1, 2, 3, 4}},
		Paytable:     spec.Paytable{Rows: map[spec.Symbol][]int{symA: {1, 2, 5}}},
		Symbols:      spec.SymbolSetting{Normal: []spec.Symbol{symA}, Scatter: symC},
		BetTable:     spec.BetTable{"USD": {1}},
		WindowSize:   1,
		ActiveLines:  1,
		FreeSpins:    5,
		FreeSpinsMul: 3,
		ID:           "free-spins",
	}
	if err := cfg.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	m := NewMachine(cfg, newCore(4))
	out := m.Spin(1)
	if !out.TriggeredFreeSpins || !m.FreeSpin.Active || m.FreeSpin.Remaining != 5 {
		t.Fatalf("expected trigger to grant 5 free spins, got %+v", m.FreeSpin)
	}

	out2 := m.Spin(0)
	if out2.TriggeredFreeSpins {
		t.Fatalf("expected no re-trigger while already in free-spin mode")
	}
	if m.FreeSpin.Remaining != 4 {
		t.Fatalf("expected remaining to decrement to 4, got %d", m.FreeSpin.Remaining)
	}
}

func TestMachineResetClearsFreeSpinState(t *testing.T) {
	m := &Machine{Config: &spec.MachineConfig{}, FreeSpin: FreeSpinState{Active: true, Remaining: 7}}
	m.Reset()
	if m.FreeSpin.Active || m.FreeSpin.Remaining != 0 {
		t.Fatalf("expected reset to clear free-spin state")
	}
}

func TestGenScreenGridLength(t *testing.T) {
	rs := &spec.ReelSet{Reels: []spec.ReelStrip{strip(symA, symB), strip(symA, symB, symC)}}
	c := newCore(5)
	g := GenScreen(c, rs, 3)
	if len(g.Cells) != rs.NumReels()*3 {
		t.Fatalf("expected grid length num_reels*window_size=%d, got %d", rs.NumReels()*3, len(g.Cells))
	}
}
