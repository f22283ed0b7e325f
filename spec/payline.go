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

// Payline is a fixed sequence of grid indices, one per reel column,
// specifying which cell of each column contributes to this line.
//
// Grounded on spec/hit_setting.go's LineTable rows, simplified to a single
// line-betting shape: spec.md's data model has no Ways/Count/Cluster bet
// type (see SPEC_FULL.md's Open Question resolution on the payline model).
type Payline []int

// BetTable lists, per currency code, the ordered admissible bet amounts.
// A bet is valid iff it is a member of this list and <= current balance.
type BetTable map[string][]int

// Contains reports whether amount is an admissible bet for currency.
func (bt BetTable) Contains(currency string, amount int) bool {
	for _, v := range bt[currency] {
		if v == amount {
			return true
		}
	}
	return false
}

// Init validates that every configured currency has a non-empty bet list.
func (bt BetTable) Init() error {
	if len(bt) == 0 {
		return errs.NewFatal("bet_table: empty")
	}
	for currency, bets := range bt {
		if len(bets) == 0 {
			return errs.NewFatal("bet_table: currency " + currency + " has no admissible bets")
		}
	}
	return nil
}
