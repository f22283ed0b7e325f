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

// Package engine resolves a single spin: reel sampling, payline scoring
// with wild substitution, and free-spin trigger detection.
package engine

import (
	"github.com/zintix-labs/slotmc/sdk/core"
	"github.com/zintix-labs/slotmc/spec"
)

// Grid is a flat, row-major spin grid: Cells[row*NumReels+col] is the
// symbol visible at that row/column. Length is always
// NumReels*WindowSize, per spec.md §3's Spin grid invariant.
type Grid struct {
	Cells    []spec.Symbol
	NumReels int
	Window   int
}

// At returns the symbol at (row, col).
func (g Grid) At(row, col int) spec.Symbol {
	return g.Cells[row*g.NumReels+col]
}

// ColumnOf returns the reel column a flat cell index belongs to.
func (g Grid) ColumnOf(cellIdx int) int {
	return cellIdx % g.NumReels
}

// GenScreen draws a fresh spin grid from reelSet: for each reel column, a
// uniform start position is drawn from the worker PRNG and window
// consecutive symbols are read off the cyclic strip.
//
// Grounded in shape on sdk/gen/gen_screen.go's genScreenByReelIdx (a
// uniform, LUT-free pick of the start index followed by a modulo read)
// and sdk/ops/fill_screen.go's cyclic wraparound arithmetic; the
// teacher's per-symbol-weighted alternative (genScreenBySymbolWeight) is
// not ported, see SPEC_FULL.md's Open Question resolution on the reel
// sampling model.
func GenScreen(c *core.Core, reelSet *spec.ReelSet, window int) Grid {
	numReels := reelSet.NumReels()
	cells := make([]spec.Symbol, numReels*window)
	for col := 0; col < numReels; col++ {
		strip := reelSet.Reels[col]
		start := c.IntN(strip.Len())
		for row := 0; row < window; row++ {
			cells[row*numReels+col] = strip.At(start + row)
		}
	}
	return Grid{Cells: cells, NumReels: numReels, Window: window}
}
