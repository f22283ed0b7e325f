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

// Package sink implements the streaming CSV result sink of spec.md §4.8:
// a mutex-guarded session-record batch that flushes at batch_write_size,
// a backpressured raw-spin buffer, and the post-run aggregation reports
// (summary, per-player, per-machine).
//
// Grounded on recorder/spin_recorder.go's SpinRecorder/MergeSpinRecorder
// pattern for in-memory aggregation, generalized from the teacher's
// single-process-lifetime in-memory accumulator to spec.md §4.8's
// publish-then-flush-to-disk contract.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/zintix-labs/slotmc/errs"
	"github.com/zintix-labs/slotmc/session"
)

// DefaultBatchSize is the session-record batch size that triggers a CSV
// flush, per spec.md §4.8 ("e.g., 300").
const DefaultBatchSize = 300

// DefaultMaxBuffer bounds the raw-spin buffer; a publish that would push
// it over this cap first drains the buffer to disk itself and then goes
// on pushing, per spec.md §4.8's "oversize pushes block until drain"
// backpressure policy.
const DefaultMaxBuffer = 5000

// sessionHeader is spec.md §6's fixed 15-column session_stats.csv schema.
var sessionHeader = []string{
	"session_id", "player_id", "machine_id", "total_spins", "total_bet",
	"total_win", "total_profit", "initial_balance", "final_balance",
	"session_duration", "free_spins_triggered", "free_spins_played",
	"max_win", "max_loss_streak", "rtp",
}

// snapshotColumn extends sessionHeader with the audit-trail supplemental
// feature's column, appended only when AuditSnapshots is enabled so a
// default run's schema matches spec.md §6 exactly.
const snapshotColumn = "snapshot"

var spinHeader = []string{
	"session_id", "spin_number", "bet_amount", "win_amount", "profit",
	"trigger_free_spins", "free_spins_remaining", "in_free_spins",
	"timestamp", "grid",
}

// Sink is the streaming CSV result sink. Publish is safe to call from any
// worker goroutine concurrently; Close flushes any partial batch and
// closes the underlying files.
//
// Per spec.md §5's shared-mutable-state inventory, the sink holds one
// mutex for the session-record batch and its CSV writer, and one for the
// raw-spin buffer and its CSV writer; each writer is used only while its
// lock is held. A third mutex, aggMu, guards the aggregation totals and
// the failure counter. The file handles are closed by Close without a
// lock.
type Sink struct {
	baseDir   string
	batchSize int
	maxBuffer int

	sessMu    sync.Mutex
	sessBatch []session.Record
	sessFile  *os.File
	sessCSV   *csv.Writer

	spinMu     sync.Mutex
	spinCond   *sync.Cond
	spinBuffer []spinEntry
	spinFile   *os.File
	spinCSV    *csv.Writer
	recordRaw  bool

	auditSnapshots bool

	aggMu sync.Mutex
	agg   aggregate

	failedCount int64
	closed      bool
}

type spinEntry struct {
	sessionID string
	rec       session.SpinRecord
}

// New creates a Sink rooted at baseDir/<sessions|raw_spins>, creating
// both directories and opening both CSV files (writing their headers)
// immediately. recordRaw controls whether raw_spins.csv receives rows at
// all; when false, Publish's spin-record parameter is ignored and no
// raw_spins file is created. auditSnapshots appends the supplemental
// "snapshot" column to session_stats.csv; off by default, session_stats.csv
// keeps spec.md §6's exact 15-column schema.
func New(baseDir string, recordRaw, auditSnapshots bool) (*Sink, error) {
	s := &Sink{
		baseDir:        baseDir,
		batchSize:      DefaultBatchSize,
		maxBuffer:      DefaultMaxBuffer,
		recordRaw:      recordRaw,
		auditSnapshots: auditSnapshots,
		agg:            newAggregate(),
	}
	s.spinCond = sync.NewCond(&s.spinMu)

	sessDir := filepath.Join(baseDir, "sessions")
	if err := os.MkdirAll(sessDir, 0o755); err != nil {
		return nil, errs.Wrap(err, "sink: create sessions dir")
	}
	sf, err := os.Create(filepath.Join(sessDir, "session_stats.csv"))
	if err != nil {
		return nil, errs.Wrap(err, "sink: create session_stats.csv")
	}
	s.sessFile = sf
	s.sessCSV = csv.NewWriter(sf)
	header := sessionHeader
	if auditSnapshots {
		header = append(append([]string{}, sessionHeader...), snapshotColumn)
	}
	if err := s.sessCSV.Write(header); err != nil {
		return nil, errs.Wrap(err, "sink: write session header")
	}
	s.sessCSV.Flush()

	if recordRaw {
		spinDir := filepath.Join(baseDir, "raw_spins")
		if err := os.MkdirAll(spinDir, 0o755); err != nil {
			return nil, errs.Wrap(err, "sink: create raw_spins dir")
		}
		pf, err := os.Create(filepath.Join(spinDir, "raw_spins.csv"))
		if err != nil {
			return nil, errs.Wrap(err, "sink: create raw_spins.csv")
		}
		s.spinFile = pf
		s.spinCSV = csv.NewWriter(pf)
		if err := s.spinCSV.Write(spinHeader); err != nil {
			return nil, errs.Wrap(err, "sink: write spin header")
		}
		s.spinCSV.Flush()
	}

	return s, nil
}

// SetBatchSize overrides DefaultBatchSize; call before any Publish.
func (s *Sink) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// SetMaxBuffer overrides DefaultMaxBuffer; call before any Publish.
func (s *Sink) SetMaxBuffer(n int) {
	if n > 0 {
		s.maxBuffer = n
	}
}

// PublishFailure increments the failure counter for a session abandoned
// per spec.md §4.9: no record is written, the pair is not returned to
// the pool, only the counter advances.
func (s *Sink) PublishFailure() {
	s.aggMu.Lock()
	s.failedCount++
	s.aggMu.Unlock()
}

// Publish appends rec to the in-memory batch and, if spins is non-nil and
// raw recording is enabled, pushes each spin onto the backpressured spin
// buffer. Safe for concurrent callers across workers.
func (s *Sink) Publish(rec session.Record, spins []session.SpinRecord) error {
	s.aggMu.Lock()
	s.agg.add(rec)
	s.aggMu.Unlock()

	var flushErr error
	s.sessMu.Lock()
	s.sessBatch = append(s.sessBatch, rec)
	if len(s.sessBatch) >= s.batchSize {
		batch := s.sessBatch
		s.sessBatch = nil
		flushErr = s.flushSessions(batch)
	}
	s.sessMu.Unlock()
	if flushErr != nil {
		return flushErr
	}

	if s.recordRaw && len(spins) > 0 {
		s.spinMu.Lock()
		for _, sp := range spins {
			for len(s.spinBuffer) >= s.maxBuffer {
				s.spinMu.Unlock()
				if err := s.DrainSpins(); err != nil {
					return err
				}
				s.spinMu.Lock()
			}
			s.spinBuffer = append(s.spinBuffer, spinEntry{sessionID: rec.SessionID, rec: sp})
		}
		s.spinMu.Unlock()
		if err := s.DrainSpins(); err != nil {
			return err
		}
	}
	return nil
}

// DrainSpins flushes any buffered raw-spin rows to disk while holding the
// raw-spin lock. Publish calls it whenever the buffer reaches its cap and
// again after each push; callers may also invoke it periodically from a
// background goroutine.
func (s *Sink) DrainSpins() error {
	if !s.recordRaw {
		return nil
	}
	s.spinMu.Lock()
	defer s.spinMu.Unlock()
	buf := s.spinBuffer
	s.spinBuffer = nil
	s.spinCond.Broadcast()
	if len(buf) == 0 {
		return nil
	}
	for _, e := range buf {
		row := spinRow(e.sessionID, e.rec)
		if err := s.spinCSV.Write(row); err != nil {
			return errs.Wrap(err, "sink: write raw spin row")
		}
	}
	s.spinCSV.Flush()
	if err := s.spinCSV.Error(); err != nil {
		return errs.Wrap(err, "sink: flush raw_spins.csv")
	}
	return nil
}

func (s *Sink) flushSessions(batch []session.Record) error {
	for _, rec := range batch {
		row := sessionRow(rec)
		if s.auditSnapshots {
			row = append(row, rec.Snapshot)
		}
		if err := s.sessCSV.Write(row); err != nil {
			return errs.Wrap(err, "sink: write session row")
		}
	}
	s.sessCSV.Flush()
	if err := s.sessCSV.Error(); err != nil {
		return errs.Wrap(err, "sink: flush session_stats.csv")
	}
	return nil
}

// Close flushes any partial batches and closes both files. Per spec.md
// §4.9, I/O failures here are fatal — the caller should treat a non-nil
// error as a reason to exit non-zero.
func (s *Sink) Close() error {
	s.sessMu.Lock()
	batch := s.sessBatch
	s.sessBatch = nil
	var flushErr error
	if len(batch) > 0 {
		flushErr = s.flushSessions(batch)
	}
	s.sessMu.Unlock()
	if flushErr != nil {
		return flushErr
	}
	if err := s.DrainSpins(); err != nil {
		return err
	}
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.sessFile.Close(); err != nil {
		return errs.Wrap(err, "sink: close session_stats.csv")
	}
	if s.spinFile != nil {
		if err := s.spinFile.Close(); err != nil {
			return errs.Wrap(err, "sink: close raw_spins.csv")
		}
	}
	return nil
}

// FailedCount reports how many sessions were abandoned per spec.md §4.9.
func (s *Sink) FailedCount() int64 {
	s.aggMu.Lock()
	defer s.aggMu.Unlock()
	return s.failedCount
}

// Report returns a snapshot of the post-run aggregation built from every
// record Published so far: the summary, per-player, and per-machine
// reports spec.md §4.8 names.
func (s *Sink) Report() Report {
	s.aggMu.Lock()
	defer s.aggMu.Unlock()
	return s.agg.report(s.failedCount)
}

func f6(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func b2i(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func sessionRow(r session.Record) []string {
	return []string{
		r.SessionID,
		r.PlayerID,
		r.MachineID,
		strconv.Itoa(r.TotalSpins),
		strconv.Itoa(r.TotalBet),
		strconv.Itoa(r.TotalWin),
		strconv.Itoa(r.TotalProfit),
		f6(r.InitialBalance),
		f6(r.FinalBalance),
		f6(r.DurationSec),
		strconv.Itoa(r.FreeSpinsTriggered),
		strconv.Itoa(r.FreeSpinsPlayed),
		strconv.Itoa(r.MaxSingleWin),
		strconv.Itoa(r.MaxLossStreak),
		f6(r.RTP()),
	}
}

func spinRow(sessionID string, sp session.SpinRecord) []string {
	grid := ""
	for i, sym := range sp.Grid {
		if i > 0 {
			grid += ","
		}
		grid += sym
	}
	return []string{
		sessionID,
		strconv.Itoa(sp.SpinNumber),
		strconv.Itoa(sp.BetAmount),
		strconv.Itoa(sp.WinAmount),
		strconv.Itoa(sp.Profit),
		b2i(sp.TriggerFreeSpins),
		strconv.Itoa(sp.FreeSpinsRemaining),
		b2i(sp.InFreeSpins),
		strconv.FormatInt(sp.TimestampUnixNano, 10),
		fmt.Sprintf("%q", grid),
	}
}
