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

// Symbol is a small non-negative integer identifying one reel icon.
// Unlike a fixed global namespace, the meaning of a Symbol value (normal,
// wild, or scatter) is assigned per machine by SymbolSetting below, since
// catalogs are data-driven rather than compiled in.
type Symbol int

// SymbolSetting categorizes the symbol space used by one machine: a set
// of wild symbols that substitute for any normal symbol during payline
// evaluation, a single scatter value that triggers free spins, and the
// remaining normal symbols a paytable can score.
//
// Grounded on spec/symbol_setting.go's SymbolSetting, but categorization
// here is an explicit per-machine set rather than a compiled Z/S/C/W/H/L
// iota range, since spec.md's data model assigns wild/scatter/normal
// membership as part of machine configuration, not a universal namespace.
type SymbolSetting struct {
	Normal  []Symbol `yaml:"normal"  json:"normal"`
	Wild    []Symbol `yaml:"wild"    json:"wild"`
	Scatter Symbol   `yaml:"scatter" json:"scatter"`

	wildSet map[Symbol]struct{}
	initted bool
}

// Init builds the fast-lookup wild set. Idempotent.
func (ss *SymbolSetting) Init() error {
	if ss.initted {
		return nil
	}
	if len(ss.Normal) == 0 {
		return errs.NewFatal("symbol_setting: normal symbol set is empty")
	}
	ss.wildSet = make(map[Symbol]struct{}, len(ss.Wild))
	for _, w := range ss.Wild {
		ss.wildSet[w] = struct{}{}
	}
	ss.initted = true
	return nil
}

// IsWild reports whether s is a member of the machine's wild set.
func (ss *SymbolSetting) IsWild(s Symbol) bool {
	_, ok := ss.wildSet[s]
	return ok
}

// IsScatter reports whether s is the machine's distinguished scatter value.
func (ss *SymbolSetting) IsScatter(s Symbol) bool {
	return s == ss.Scatter
}
