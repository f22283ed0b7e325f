package orchestrator

import (
	"path/filepath"
	"testing"

	"github.com/zintix-labs/slotmc/spec"
)

const (
	symA spec.Symbol = iota
	symC
)

func trivialMachineConfig(id string) spec.MachineConfig {
	return spec.MachineConfig{
		ID: id,
		ReelSets: map[string]*spec.ReelSet{
			spec.ReelSetNormal: {Reels: []spec.ReelStrip{
				{Symbols: []spec.Symbol{symA}},
				{Symbols: []spec.Symbol{symA}},
				{Symbols: []spec.Symbol{symA}},
			}},
		},
		Paylines:    []spec.Payline{{0, 1, 2}},
		Paytable:    spec.Paytable{Rows: map[spec.Symbol][]int{symA: {1, 2, 5}}},
		Symbols:     spec.SymbolSetting{Normal: []spec.Symbol{symA}, Scatter: symC},
		BetTable:    spec.BetTable{"USD": {1, 5}},
		WindowSize:  1,
		ActiveLines: 1,
	}
}

func trivialPlayerProfile(id string) spec.PlayerProfile {
	return spec.PlayerProfile{
		ID:           id,
		Cluster:      "default",
		Currency:     "USD",
		ModelVersion: "random",
		BalanceMu:    100,
		BalanceMin:   100,
		BalanceMax:   100,
	}
}

func testCatalogs(t *testing.T, nMachines, nPlayers int) (spec.MachineCatalog, spec.PlayerCatalog) {
	t.Helper()
	var machines spec.MachineCatalog
	for i := 0; i < nMachines; i++ {
		mc := trivialMachineConfig(itoa(i))
		if err := mc.Init(); err != nil {
			t.Fatalf("machine config init: %v", err)
		}
		machines = append(machines, mc)
	}
	var players spec.PlayerCatalog
	for i := 0; i < nPlayers; i++ {
		pp := trivialPlayerProfile(itoa(i))
		if err := pp.Init(); err != nil {
			t.Fatalf("player profile init: %v", err)
		}
		players = append(players, pp)
	}
	return machines, players
}

func itoa(i int) string {
	digits := "0123456789"
	if i < 10 {
		return string(digits[i])
	}
	return string(digits[i/10]) + string(digits[i%10])
}

func TestBuildTasksEnumeratesEveryCombination(t *testing.T) {
	machines, players := testCatalogs(t, 2, 3)
	rc := &spec.RunConfig{SessionsPerPair: 4}
	tasks := buildTasks(rc, machines, players)
	if len(tasks) != 2*3*4 {
		t.Fatalf("expected %d tasks, got %d", 2*3*4, len(tasks))
	}
}

func TestRunProducesExpectedCompletedCount(t *testing.T) {
	machines, players := testCatalogs(t, 2, 2)
	rc := &spec.RunConfig{
		Threads:         2,
		OutputDir:       t.TempDir(),
		SessionsPerPair: 3,
		BatchWriteSize:  10,
		MaxSpinBuffer:   100,
		PoolSize:        2,
		MaxSpins:        50,
		Seed:            42,
	}

	result, err := Run(rc, machines, players, nil, "20260731_000000", false, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantTasks := int64(2 * 2 * 3)
	if result.Completed+result.Failed != wantTasks {
		t.Fatalf("expected %d total outcomes, got completed=%d failed=%d", wantTasks, result.Completed, result.Failed)
	}
	if result.Failed != 0 {
		t.Fatalf("expected zero failures for a trivial catalog, got %d", result.Failed)
	}
	if result.RunDir != filepath.Join(rc.OutputDir, "simulation_20260731_000000") {
		t.Fatalf("unexpected run dir: %s", result.RunDir)
	}
}

func TestRunIsDeterministicForFixedSeed(t *testing.T) {
	machines, players := testCatalogs(t, 1, 1)
	base := spec.RunConfig{
		Threads:         1,
		SessionsPerPair: 2,
		BatchWriteSize:  10,
		MaxSpinBuffer:   100,
		PoolSize:        2,
		MaxSpins:        30,
		Seed:            7,
	}

	rc1 := base
	rc1.OutputDir = t.TempDir()
	r1, err := Run(&rc1, machines, players, nil, "s1", false, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	rc2 := base
	rc2.OutputDir = t.TempDir()
	r2, err := Run(&rc2, machines, players, nil, "s2", false, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if r1.Report.Summary.TotalSpins != r2.Report.Summary.TotalSpins {
		t.Fatalf("same-seed runs diverged: %d vs %d total spins",
			r1.Report.Summary.TotalSpins, r2.Report.Summary.TotalSpins)
	}
	if r1.Report.Summary.TotalBet != r2.Report.Summary.TotalBet {
		t.Fatalf("same-seed runs diverged: %d vs %d total bet",
			r1.Report.Summary.TotalBet, r2.Report.Summary.TotalBet)
	}
}
