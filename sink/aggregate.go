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

package sink

import (
	"math"
	"sort"

	"github.com/zintix-labs/slotmc/session"
)

// Report bundles the three post-run views spec.md §4.8 names: a grand
// summary, a per-player breakdown, and a per-machine breakdown.
type Report struct {
	Summary  SummaryStats
	Players  []PlayerStats
	Machines []MachineStats
	Failed   int64
}

// SummaryStats is spec.md §4.8's "Summary report": totals, grand RTP,
// average session duration.
type SummaryStats struct {
	SessionCount      int
	TotalSpins        int
	TotalBet          int
	TotalWin          int
	GrandRTP          float64
	RTPStdDev         float64 // sample std dev of per-session RTP
	AvgSessionSeconds float64
}

// PlayerStats is spec.md §4.8's "Per-player report": session count,
// aggregated totals, average RTP, max single win, worst profit.
type PlayerStats struct {
	PlayerID      string
	SessionCount  int
	TotalBet      int
	TotalWin      int
	AvgRTP        float64
	MaxSingleWin  int
	WorstProfit   int
}

// MachineStats is spec.md §4.8's "Per-machine report": session count,
// aggregated totals, average RTP, free-spin trigger rate, average
// session duration.
type MachineStats struct {
	MachineID           string
	SessionCount        int
	TotalBet            int
	TotalWin            int
	AvgRTP              float64
	FreeSpinsTriggered  int
	TotalSpins          int
	FreeSpinTriggerRate float64
	AvgSessionSeconds   float64
}

// aggregate accumulates running sums incrementally as records are
// Published, so Report() never needs to re-read the full session list
// back from disk, per spec.md §4.8's "or keeps in memory" alternative.
//
// Grounded on recorder/spin_recorder.go's BasicRecord accumulator shape
// (running sums updated one record at a time) and MergeSpinRecorder's
// per-key merge pattern, adapted here to key by player id and machine id
// instead of the teacher's single-machine-run assumption.
type aggregate struct {
	sessionCount int
	totalSpins   int
	totalBet     int
	totalWin     int
	totalDurSec  float64
	rtpSum       float64
	rtpSqSum     float64

	players  map[string]*playerAcc
	machines map[string]*machineAcc
}

type playerAcc struct {
	sessionCount int
	totalBet     int
	totalWin     int
	rtpSum       float64
	maxSingleWin int
	worstProfit  int
	haveAny      bool
}

type machineAcc struct {
	sessionCount      int
	totalBet          int
	totalWin          int
	rtpSum            float64
	totalSpins        int
	freeSpinsTriggers int
	durSum            float64
}

func newAggregate() aggregate {
	return aggregate{
		players:  make(map[string]*playerAcc),
		machines: make(map[string]*machineAcc),
	}
}

func (a *aggregate) add(r session.Record) {
	a.sessionCount++
	a.totalSpins += r.TotalSpins
	a.totalBet += r.TotalBet
	a.totalWin += r.TotalWin
	a.totalDurSec += r.DurationSec
	rtp := r.RTP()
	a.rtpSum += rtp
	a.rtpSqSum += rtp * rtp

	p, ok := a.players[r.PlayerID]
	if !ok {
		p = &playerAcc{worstProfit: r.TotalProfit}
		a.players[r.PlayerID] = p
	}
	p.sessionCount++
	p.totalBet += r.TotalBet
	p.totalWin += r.TotalWin
	p.rtpSum += r.RTP()
	if r.MaxSingleWin > p.maxSingleWin {
		p.maxSingleWin = r.MaxSingleWin
	}
	if !p.haveAny || r.TotalProfit < p.worstProfit {
		p.worstProfit = r.TotalProfit
	}
	p.haveAny = true

	m, ok := a.machines[r.MachineID]
	if !ok {
		m = &machineAcc{}
		a.machines[r.MachineID] = m
	}
	m.sessionCount++
	m.totalBet += r.TotalBet
	m.totalWin += r.TotalWin
	m.rtpSum += r.RTP()
	m.totalSpins += r.TotalSpins
	m.freeSpinsTriggers += r.FreeSpinsTriggered
	m.durSum += r.DurationSec
}

func (a *aggregate) report(failed int64) Report {
	var rep Report
	rep.Failed = failed

	rep.Summary = SummaryStats{
		SessionCount: a.sessionCount,
		TotalSpins:   a.totalSpins,
		TotalBet:     a.totalBet,
		TotalWin:     a.totalWin,
	}
	if a.totalBet > 0 {
		rep.Summary.GrandRTP = float64(a.totalWin) / float64(a.totalBet)
	}
	if a.sessionCount > 0 {
		rep.Summary.AvgSessionSeconds = a.totalDurSec / float64(a.sessionCount)
	}
	if a.sessionCount > 1 {
		n := float64(a.sessionCount)
		mean := a.rtpSum / n
		variance := (a.rtpSqSum - n*mean*mean) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		rep.Summary.RTPStdDev = math.Sqrt(variance)
	}

	for id, p := range a.players {
		ps := PlayerStats{
			PlayerID:     id,
			SessionCount: p.sessionCount,
			TotalBet:     p.totalBet,
			TotalWin:     p.totalWin,
			MaxSingleWin: p.maxSingleWin,
			WorstProfit:  p.worstProfit,
		}
		if p.sessionCount > 0 {
			ps.AvgRTP = p.rtpSum / float64(p.sessionCount)
		}
		rep.Players = append(rep.Players, ps)
	}

	for id, m := range a.machines {
		ms := MachineStats{
			MachineID:          id,
			SessionCount:       m.sessionCount,
			TotalBet:           m.totalBet,
			TotalWin:           m.totalWin,
			FreeSpinsTriggered: m.freeSpinsTriggers,
			TotalSpins:         m.totalSpins,
		}
		if m.sessionCount > 0 {
			ms.AvgRTP = m.rtpSum / float64(m.sessionCount)
			ms.AvgSessionSeconds = m.durSum / float64(m.sessionCount)
		}
		if m.totalSpins > 0 {
			ms.FreeSpinTriggerRate = float64(m.freeSpinsTriggers) / float64(m.totalSpins)
		}
		rep.Machines = append(rep.Machines, ms)
	}

	// a.players/a.machines are maps; sort by id so report output is
	// reproducible run-to-run for a fixed seed, per spec.md §8.
	sort.Slice(rep.Players, func(i, j int) bool { return rep.Players[i].PlayerID < rep.Players[j].PlayerID })
	sort.Slice(rep.Machines, func(i, j int) bool { return rep.Machines[i].MachineID < rep.Machines[j].MachineID })

	return rep
}
