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

// RunLimits bounds one session's lifetime: spin count, wall-clock
// duration, and logical (simulated) duration.
type RunLimits struct {
	MaxSpins          int
	MaxWallDuration   float64 // seconds; <= 0 means unbounded
	MaxLogicalSeconds float64 // <= 0 means unbounded
}

// SessionTask is an immutable descriptor of one session to run: which
// machine, which player (by version/cluster so an instance can be pulled
// from the per-worker pool), the ordinal within that (machine, player)
// pair's requested session count, and the per-run limits that apply.
//
// One task maps to exactly one SessionRecord.
type SessionTask struct {
	MachineID       string
	PlayerID        string
	PlayerVersion   string
	PlayerCluster   string
	SessionSequence int
	Limits          RunLimits
	RecordRawSpins  bool
}

// Fingerprint returns the instance-pool key this task should borrow from.
func (t SessionTask) Fingerprint() Fingerprint {
	return Fingerprint{
		PlayerVersion: t.PlayerVersion,
		PlayerCluster: t.PlayerCluster,
		MachineID:     t.MachineID,
	}
}
