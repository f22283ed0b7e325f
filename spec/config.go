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

// Package spec holds the simulation's data model: the record types
// loaded from a machine/player catalog, plus the strict-field YAML/JSON
// decode entrypoints that populate and validate them.
package spec

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/slotmc/errs"
	"gopkg.in/yaml.v3"
)

// MachineCatalog is the full set of machine configurations a run enumerates.
type MachineCatalog []MachineConfig

// PlayerCatalog is the full set of player profiles a run enumerates.
type PlayerCatalog []PlayerProfile

// RunConfig is the simulation-run record: the third of the three record
// types the orchestrator consumes (machine, player, run), per spec.md §6.
type RunConfig struct {
	Threads          int     `yaml:"threads"             json:"threads"`
	OutputDir        string  `yaml:"output_dir"          json:"output_dir"`
	SessionsPerPair  int     `yaml:"sessions_per_pair"   json:"sessions_per_pair"`
	BatchWriteSize   int     `yaml:"batch_write_size"    json:"batch_write_size"`
	MaxSpinBuffer    int     `yaml:"max_spin_buffer"     json:"max_spin_buffer"`
	PoolSize         int     `yaml:"pool_size"           json:"pool_size"`
	RecordRawSpins   bool    `yaml:"record_raw_spins"    json:"record_raw_spins"`
	MaxSpins         int     `yaml:"max_spins"           json:"max_spins"`
	MaxWallSeconds   float64 `yaml:"max_wall_seconds"    json:"max_wall_seconds"`
	MaxLogicSeconds  float64 `yaml:"max_logical_seconds" json:"max_logical_seconds"`
	ThinkTimeEnabled bool    `yaml:"think_time_enabled"  json:"think_time_enabled"`
	Seed             int64   `yaml:"seed"                json:"seed"`
	MachineCatalog   string  `yaml:"machine_catalog"     json:"machine_catalog"`
	PlayerCatalog    string  `yaml:"player_catalog"      json:"player_catalog"`

	// AuditSnapshots, when true, has every session carry a PRNG snapshot
	// taken before its first spin (spec supplemental feature: audit
	// replay). Off by default; purely additive to Record output.
	AuditSnapshots bool `yaml:"audit_snapshots"     json:"audit_snapshots"`
}

// Init applies defaults and validates the run config, mirroring the
// cascaded init()/valid() pattern used throughout this package.
func (rc *RunConfig) Init() error {
	if rc.Threads <= 0 {
		rc.Threads = 1
	}
	if rc.SessionsPerPair <= 0 {
		rc.SessionsPerPair = 1
	}
	if rc.BatchWriteSize <= 0 {
		rc.BatchWriteSize = 300
	}
	if rc.MaxSpinBuffer <= 0 {
		rc.MaxSpinBuffer = 10_000
	}
	if rc.PoolSize <= 0 {
		rc.PoolSize = 3
	}
	if rc.OutputDir == "" {
		return errs.NewFatal("run_config: output_dir is required")
	}
	if rc.MachineCatalog == "" || rc.PlayerCatalog == "" {
		return errs.NewFatal("run_config: machine_catalog and player_catalog are required")
	}
	return nil
}

// Limits returns the per-session caps this run config implies.
func (rc *RunConfig) Limits() RunLimits {
	return RunLimits{
		MaxSpins:          rc.MaxSpins,
		MaxWallDuration:   rc.MaxWallSeconds,
		MaxLogicalSeconds: rc.MaxLogicSeconds,
	}
}

// decodeByExt strict-decodes data into out, choosing YAML or JSON by the
// file extension convention (".json" is JSON, everything else is YAML).
func decodeByExt(path string, data []byte, out any) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(out); err != nil {
			return errs.Wrap(err, "spec: json decode failed for "+path)
		}
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return errs.Wrap(err, "spec: yaml decode failed for "+path)
	}
	return nil
}

// LoadMachineCatalog reads and validates a machine catalog file.
func LoadMachineCatalog(path string) (MachineCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "spec: read machine catalog "+path)
	}
	var cat MachineCatalog
	if err := decodeByExt(path, data, &cat); err != nil {
		return nil, err
	}
	for i := range cat {
		if err := cat[i].Init(); err != nil {
			return nil, errs.Wrap(err, "spec: machine catalog validation")
		}
	}
	return cat, nil
}

// LoadPlayerCatalog reads and validates a player catalog file.
func LoadPlayerCatalog(path string) (PlayerCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "spec: read player catalog "+path)
	}
	var cat PlayerCatalog
	if err := decodeByExt(path, data, &cat); err != nil {
		return nil, err
	}
	for i := range cat {
		if err := cat[i].Init(); err != nil {
			return nil, errs.Wrap(err, "spec: player catalog validation")
		}
	}
	return cat, nil
}

// LoadRunConfig reads and validates the simulation-run record.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "spec: read run config "+path)
	}
	rc := &RunConfig{}
	if err := decodeByExt(path, data, rc); err != nil {
		return nil, err
	}
	if err := rc.Init(); err != nil {
		return nil, err
	}
	return rc, nil
}
