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

package spec

import (
	"fmt"

	"github.com/zintix-labs/slotmc/errs"
)

const (
	// ReelSetNormal is the reel-set key used during base play.
	ReelSetNormal = "normal"
	// ReelSetBonus is the reel-set key used during free spins, falling
	// back to ReelSetNormal when absent.
	ReelSetBonus = "bonus"
)

// MachineConfig carries everything needed to resolve one spin: id, reel
// sets, paylines, paytable, bet table, symbol categorization, window
// size, active line count, and free-spin grant parameters.
//
// Grounded on spec/game_setting.go's GameSetting + spec/game_mode_setting.go's
// GameModeSetting, cascaded into a single flat record since spec.md's
// machine has exactly two reel-set modes (base/free) rather than the
// teacher's arbitrary list of game modes.
type MachineConfig struct {
	ID       string              `yaml:"id"        json:"id"`
	ReelSets map[string]*ReelSet `yaml:"reel_sets" json:"reel_sets"`
	Paylines []Payline           `yaml:"paylines"  json:"paylines"`
	Paytable Paytable            `yaml:"paytable"  json:"paytable"`
	BetTable BetTable            `yaml:"bet_table" json:"bet_table"`
	Symbols  SymbolSetting       `yaml:"symbols"   json:"symbols"`

	WindowSize   int `yaml:"window_size"   json:"window_size"`
	ActiveLines  int `yaml:"active_lines"  json:"active_lines"`
	FreeSpins    int `yaml:"free_spins_count"      json:"free_spins_count"`
	FreeSpinsMul int `yaml:"free_spins_multiplier" json:"free_spins_multiplier"`

	initted bool
}

// Init validates the configuration and prepares derived lookup tables.
// Cascades into each sub-setting's own Init, mirroring
// spec/game_mode_setting.go's init() chain.
func (mc *MachineConfig) Init() error {
	if mc.initted {
		return nil
	}

	if mc.ID == "" {
		return errs.NewFatal("machine_config: id is required")
	}
	if err := mc.Symbols.Init(); err != nil {
		return err
	}

	normal, ok := mc.ReelSets[ReelSetNormal]
	if !ok {
		return errs.NewFatal(fmt.Sprintf("machine_config %s: missing %q reel set", mc.ID, ReelSetNormal))
	}
	for _, key := range SortedReelSetKeys(mc.ReelSets) {
		if err := mc.ReelSets[key].Init(); err != nil {
			return errs.Wrap(err, fmt.Sprintf("machine_config %s: reel set %q", mc.ID, key))
		}
	}
	if normal.NumReels() == 0 {
		return errs.NewFatal(fmt.Sprintf("machine_config %s: normal reel set has no reels", mc.ID))
	}

	if mc.WindowSize < 1 {
		return errs.NewFatal(fmt.Sprintf("machine_config %s: window_size must be >= 1", mc.ID))
	}
	if len(mc.Paylines) == 0 {
		return errs.NewFatal(fmt.Sprintf("machine_config %s: empty paylines", mc.ID))
	}
	if mc.ActiveLines < 0 || mc.ActiveLines > len(mc.Paylines) {
		return errs.NewFatal(fmt.Sprintf("machine_config %s: active_lines out of range", mc.ID))
	}
	for i, pl := range mc.Paylines {
		if len(pl) != normal.NumReels() {
			return errs.NewFatal(fmt.Sprintf("machine_config %s: payline %d has wrong length", mc.ID, i))
		}
	}

	if err := mc.Paytable.Init(); err != nil {
		return errs.Wrap(err, fmt.Sprintf("machine_config %s: paytable", mc.ID))
	}
	for sym, row := range mc.Paytable.Rows {
		if len(row) < 1 {
			return errs.NewFatal(fmt.Sprintf("machine_config %s: paytable row for symbol %d too short", mc.ID, sym))
		}
	}

	if err := mc.BetTable.Init(); err != nil {
		return errs.Wrap(err, fmt.Sprintf("machine_config %s: bet_table", mc.ID))
	}

	if mc.FreeSpins < 0 {
		return errs.NewFatal(fmt.Sprintf("machine_config %s: free_spins_count must be >= 0", mc.ID))
	}

	mc.initted = true
	return nil
}

// ActiveReelSet returns the reel set used for the current spin: the
// bonus set during free spins (falling back to normal when absent), the
// normal set otherwise.
func (mc *MachineConfig) ActiveReelSet(inFreeSpins bool) *ReelSet {
	if inFreeSpins {
		if bonus, ok := mc.ReelSets[ReelSetBonus]; ok {
			return bonus
		}
	}
	return mc.ReelSets[ReelSetNormal]
}

// NumReels returns the column count of the normal reel set, the grid
// shape invariant across both base and bonus play.
func (mc *MachineConfig) NumReels() int {
	return mc.ReelSets[ReelSetNormal].NumReels()
}
