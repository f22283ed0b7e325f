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

package engine

import "github.com/zintix-labs/slotmc/spec"

// DetectScatterTrigger reports whether the scatter symbol appears on at
// least 3 distinct reel columns anywhere within grid's visible window,
// per spec.md §4.3.
func DetectScatterTrigger(grid Grid, symbols *spec.SymbolSetting) bool {
	seen := make(map[int]struct{}, grid.NumReels)
	for idx, s := range grid.Cells {
		if symbols.IsScatter(s) {
			seen[grid.ColumnOf(idx)] = struct{}{}
			if len(seen) >= 3 {
				return true
			}
		}
	}
	return false
}

// FreeSpinState is the machine's free-spin sub-mode: whether play is
// currently inside a free-spin bonus and how many spins remain.
//
// Grounded on sdk/slot/game_mode.go's GameMode result-yield lifecycle,
// generalized from the teacher's arbitrary-length list of game modes
// down to spec.md's two-mode (base/free) machine.
type FreeSpinState struct {
	Active    bool
	Remaining int
}

// Trigger grants count free spins and enters free-spin mode, overwriting
// any remaining count. Per spec.md §4.3 and §9, there is no re-trigger
// while already in free-spin mode; Trigger itself does not check this,
// so Machine.Spin calls it only when not already in free spins.
func (fs *FreeSpinState) Trigger(count int) {
	fs.Active = true
	fs.Remaining = count
}

// Advance decrements the remaining count after a free spin is played,
// exiting free-spin mode once it reaches zero.
func (fs *FreeSpinState) Advance() {
	if !fs.Active {
		return
	}
	fs.Remaining--
	if fs.Remaining <= 0 {
		fs.Active = false
		fs.Remaining = 0
	}
}
