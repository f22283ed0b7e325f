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
	"bytes"

	"github.com/zintix-labs/slotmc/errs"
	"gopkg.in/yaml.v3"
)

// PlayerProfile carries a player's identity, currency, the behavioral
// model version it should be driven by, its initial-balance distribution,
// and a free-form model-specific config bag.
//
// Grounded on spec/game_setting.go's Fixed map[string]any field pattern,
// generalized from a per-game settings bag to a per-player-model one.
type PlayerProfile struct {
	ID           string         `yaml:"id"            json:"id"`
	Cluster      string         `yaml:"cluster"       json:"cluster"`
	Currency     string         `yaml:"currency"      json:"currency"`
	ModelVersion string         `yaml:"model_version" json:"model_version"`
	BalanceMu    float64        `yaml:"balance_mu"     json:"balance_mu"`
	BalanceSigma float64        `yaml:"balance_sigma"  json:"balance_sigma"`
	BalanceMin   float64        `yaml:"balance_min"    json:"balance_min"`
	BalanceMax   float64        `yaml:"balance_max"    json:"balance_max"`
	Fixed        map[string]any `yaml:"fixed"          json:"fixed"`

	initted bool
}

// Init validates the balance distribution bounds.
func (pp *PlayerProfile) Init() error {
	if pp.initted {
		return nil
	}
	if pp.ID == "" {
		return errs.NewFatal("player_profile: id is required")
	}
	if pp.ModelVersion == "" {
		return errs.NewFatal("player_profile: model_version is required")
	}
	if pp.BalanceMin > pp.BalanceMax {
		return errs.NewFatal("player_profile: balance_min > balance_max")
	}
	if pp.BalanceSigma < 0 {
		return errs.NewFatal("player_profile: balance_sigma must be >= 0")
	}
	pp.initted = true
	return nil
}

// Fingerprint is the instance-pool key: (player-version, player-cluster,
// machine-id), per spec.md's GLOSSARY entry and §4.6.
type Fingerprint struct {
	PlayerVersion string
	PlayerCluster string
	MachineID     string
}

// DecodeFixed decodes a player's free-form Fixed config bag into a typed
// struct T, round-tripping through YAML so that strict field checking
// (KnownFields) catches typos/unexpected keys.
//
// Grounded verbatim in shape on spec/fixed_decoder.go's DecodeFixed,
// retargeted from *GameSetting to *PlayerProfile.
func DecodeFixed[T any](pp *PlayerProfile, out *T) error {
	bs, err := yaml.Marshal(pp.Fixed)
	if err != nil {
		return errs.Wrap(err, "spec.DecodeFixed: marshal failed")
	}
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return errs.Wrap(err, "spec.DecodeFixed: decode failed")
	}
	return nil
}
