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
	"sort"

	"github.com/zintix-labs/slotmc/errs"
)

// ReelStrip is an ordered cyclic sequence of symbols. Read positions are
// always taken modulo Len(); a strip must carry at least one symbol.
//
// Grounded on spec/gen_screen_setting.go's Reel, trimmed of the per-symbol
// ReelWeights/ReelLUT fields: spec.md §4.1 samples a uniform start position
// over the strip with no per-symbol weighting (see SPEC_FULL.md's Open
// Question resolution on the reel sampling model).
type ReelStrip struct {
	Symbols []Symbol `yaml:"symbols" json:"symbols"`
}

// Len returns the strip length.
func (r ReelStrip) Len() int { return len(r.Symbols) }

// At returns the symbol at logical position p, wrapped modulo Len().
func (r ReelStrip) At(p int) Symbol {
	n := len(r.Symbols)
	return r.Symbols[((p%n)+n)%n]
}

// ReelSet is an ordered list of reel strips, one per reel column, ordered
// deterministically by the source key so a given seed always reproduces
// the same grid.
//
// Grounded on spec/gen_screen_setting.go's ReelSet, with the Weight field
// dropped: a MachineConfig carries exactly a "normal" and optional "bonus"
// ReelSet, not a weighted group of ReelSets to choose among.
type ReelSet struct {
	Reels []ReelStrip `yaml:"reels" json:"reels"`
}

// NumReels returns the number of reel columns in the set.
func (rs *ReelSet) NumReels() int { return len(rs.Reels) }

// Init validates that every reel strip is non-empty.
func (rs *ReelSet) Init() error {
	if len(rs.Reels) == 0 {
		return errs.NewFatal("reel_set: empty reel list")
	}
	for _, r := range rs.Reels {
		if r.Len() == 0 {
			return errs.NewFatal("reel_set: empty reel strip at index")
		}
	}
	return nil
}

// SortedReelSetKeys returns the names of the reel sets in sets (e.g.
// "normal", "bonus") sorted lexicographically. Named reel sets come from
// a map in the raw catalog; the sorted key order lets callers iterate
// deterministically.
func SortedReelSetKeys(sets map[string]*ReelSet) []string {
	keys := make([]string, 0, len(sets))
	for k := range sets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
