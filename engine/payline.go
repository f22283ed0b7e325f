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

// LineResult is the outcome of scoring one payline.
type LineResult struct {
	Anchor  spec.Symbol
	RunLen  int
	Win     int
	Symbols []spec.Symbol
}

// EvaluateLine extracts the symbol sequence addressed by line from grid
// and scores its left-anchored, wild-substituted run against paytable.
//
// This is the exact contract of spec.md §4.2, which fixes an ambiguity in
// the source: anchor is the first symbol that is not wild, scanning
// left-to-right; if every symbol is wild, the run is all-wild and, if the
// paytable defines a row for that wild symbol, it is paid as the anchor;
// otherwise the line pays nothing. The run always starts at s0 and
// extends while a cell equals anchor or is itself wild.
//
// Grounded directly on sdk/calc/calc_by_line.go's wildRun/normRun
// state-machine shape (pure-wild-prefix extension, first-non-wild start,
// wild-substituted continuation), rewritten to spec.md's simpler,
// single-pass formulation since the teacher's bitmask/CSR optimizations
// exist to serve a richer symbol-bitmask model this spec doesn't carry.
func EvaluateLine(grid Grid, line spec.Payline, symbols *spec.SymbolSetting, paytable *spec.Paytable, bet int) LineResult {
	n := len(line)
	seq := make([]spec.Symbol, n)
	for i, cellIdx := range line {
		seq[i] = grid.Cells[cellIdx]
	}

	anchor := seq[0]
	allWild := true
	for _, s := range seq {
		if !symbols.IsWild(s) {
			anchor = s
			allWild = false
			break
		}
	}
	if allWild {
		anchor = seq[0]
	}

	run := 0
	for _, s := range seq {
		if s == anchor || symbols.IsWild(s) {
			run++
			continue
		}
		break
	}

	if run < 3 {
		return LineResult{Anchor: anchor, RunLen: run, Symbols: seq[:run]}
	}

	mult, ok := paytable.Lookup(anchor, run)
	if !ok {
		return LineResult{Anchor: anchor, RunLen: run, Symbols: seq[:run]}
	}
	return LineResult{Anchor: anchor, RunLen: run, Win: mult * bet, Symbols: seq[:run]}
}

// EvaluateSpin sums the win across the first activeLines paylines.
func EvaluateSpin(grid Grid, paylines []spec.Payline, activeLines int, symbols *spec.SymbolSetting, paytable *spec.Paytable, bet int) (total int, lines []LineResult) {
	if activeLines > len(paylines) {
		activeLines = len(paylines)
	}
	lines = make([]LineResult, activeLines)
	for i := 0; i < activeLines; i++ {
		lr := EvaluateLine(grid, paylines[i], symbols, paytable, bet)
		lines[i] = lr
		total += lr.Win
	}
	return total, lines
}
