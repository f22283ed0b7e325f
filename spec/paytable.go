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

import "github.com/zintix-labs/slotmc/errs"

// Paytable maps a normal symbol to its payout vector: index k gives the
// payout multiplier for a (k+3)-long consecutive run. Internally flattened
// into one contiguous slice plus a per-symbol offset index for O(1)
// lookup, the way spec/symbol_setting.go flattens PayTable into
// PayTableFlat/PayTableIndex.
type Paytable struct {
	Rows map[Symbol][]int `yaml:"rows" json:"rows"`

	flat    []int
	offset  map[Symbol]int
	rowLen  int
	initted bool
}

// Init validates row lengths and builds the flattened lookup tables.
func (pt *Paytable) Init() error {
	if pt.initted {
		return nil
	}
	if len(pt.Rows) == 0 {
		return errs.NewFatal("paytable: empty")
	}
	// Determine the common row length from the first row, in map
	// iteration order is non-deterministic so we must read it from
	// any row and then check all rows agree.
	rowLen := -1
	for _, row := range pt.Rows {
		if rowLen == -1 {
			rowLen = len(row)
		}
		if len(row) != rowLen {
			return errs.NewFatal("paytable: inconsistent payout vector lengths")
		}
	}
	if rowLen < 1 {
		return errs.NewFatal("paytable: payout vector must have length >= 1")
	}
	pt.rowLen = rowLen
	pt.offset = make(map[Symbol]int, len(pt.Rows))
	pt.flat = make([]int, 0, len(pt.Rows)*rowLen)
	write := 0
	for sym, row := range pt.Rows {
		pt.offset[sym] = write
		pt.flat = append(pt.flat, row...)
		write += rowLen
	}
	pt.initted = true
	return nil
}

// MaxPayoutRow returns the maximum payout multiplier present anywhere in
// the table, used by the §8 testable property win <= max_payout_row*bet.
func (pt *Paytable) MaxPayoutRow() int {
	max := 0
	for _, v := range pt.flat {
		if v > max {
			max = v
		}
	}
	return max
}

// Lookup returns the payout multiplier for a run of length runLen (>=3)
// starting from symbol anchor, clamping to the last table entry for runs
// longer than the table. ok is false if anchor has no paytable row.
func (pt *Paytable) Lookup(anchor Symbol, runLen int) (multiplier int, ok bool) {
	off, has := pt.offset[anchor]
	if !has {
		return 0, false
	}
	idx := runLen - 3
	if idx < 0 {
		return 0, true
	}
	if idx >= pt.rowLen {
		idx = pt.rowLen - 1
	}
	return pt.flat[off+idx], true
}
