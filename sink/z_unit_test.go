package sink

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zintix-labs/slotmc/session"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func TestNewWritesHeadersImmediately(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, true, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	sessLines := readLines(t, filepath.Join(dir, "sessions", "session_stats.csv"))
	if len(sessLines) != 1 || !strings.HasPrefix(sessLines[0], "session_id,") {
		t.Fatalf("expected 1 header line in session_stats.csv, got %v", sessLines)
	}
	spinLines := readLines(t, filepath.Join(dir, "raw_spins", "raw_spins.csv"))
	if len(spinLines) != 1 || !strings.HasPrefix(spinLines[0], "session_id,") {
		t.Fatalf("expected 1 header line in raw_spins.csv, got %v", spinLines)
	}
}

func TestNewOmitsSnapshotColumnByDefault(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, false, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	lines := readLines(t, filepath.Join(dir, "sessions", "session_stats.csv"))
	header := strings.Split(lines[0], ",")
	if len(header) != 15 {
		t.Fatalf("expected spec's fixed 15-column session schema, got %d: %v", len(header), header)
	}
	if strings.Contains(lines[0], "snapshot") {
		t.Fatalf("expected no snapshot column when auditSnapshots is false, got %q", lines[0])
	}
}

func TestNewAppendsSnapshotColumnWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, false, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if err := s.Publish(session.Record{SessionID: "s1", TotalBet: 10, Snapshot: "abc123"}, nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	lines := readLines(t, filepath.Join(dir, "sessions", "session_stats.csv"))
	header := strings.Split(lines[0], ",")
	if len(header) != 16 || header[15] != "snapshot" {
		t.Fatalf("expected a trailing snapshot column, got %v", header)
	}
	row := strings.Split(lines[1], ",")
	if row[len(row)-1] != "abc123" {
		t.Fatalf("expected snapshot value in last column, got %v", row)
	}
}

func TestNewSkipsRawSpinsFileWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, false, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	if _, err := os.Stat(filepath.Join(dir, "raw_spins")); !os.IsNotExist(err) {
		t.Fatalf("expected no raw_spins directory when recordRaw=false")
	}
}

func TestPublishFlushesAtBatchSize(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, false, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.SetBatchSize(3)
	defer s.Close()

	for i := 0; i < 3; i++ {
		if err := s.Publish(session.Record{SessionID: "s", TotalBet: 10, TotalWin: 5}, nil); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	lines := readLines(t, filepath.Join(dir, "sessions", "session_stats.csv"))
	if len(lines) != 4 { // header + 3 rows
		t.Fatalf("expected batch to flush after 3 publishes, got %d lines", len(lines))
	}
}

func TestCloseFlushesPartialBatch(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, false, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.SetBatchSize(300)
	if err := s.Publish(session.Record{SessionID: "s1", TotalBet: 10, TotalWin: 5}, nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	lines := readLines(t, filepath.Join(dir, "sessions", "session_stats.csv"))
	if len(lines) != 2 {
		t.Fatalf("expected partial batch flushed on Close, got %d lines", len(lines))
	}
}

func TestPublishWritesRawSpinRows(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, true, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	spins := []session.SpinRecord{
		{SessionID: "s1", SpinNumber: 1, BetAmount: 10, WinAmount: 0, Profit: -10, Grid: []string{"1", "2", "3"}},
	}
	if err := s.Publish(session.Record{SessionID: "s1", TotalBet: 10}, spins); err != nil {
		t.Fatalf("publish: %v", err)
	}
	lines := readLines(t, filepath.Join(dir, "raw_spins", "raw_spins.csv"))
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 spin row, got %v", lines)
	}
	if !strings.Contains(lines[1], `"1,2,3"`) {
		t.Fatalf("expected quoted comma-joined grid column, got %s", lines[1])
	}
}

func TestReportAggregatesPerPlayerAndMachine(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, false, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	recs := []session.Record{
		{SessionID: "a", PlayerID: "p1", MachineID: "m1", TotalBet: 100, TotalWin: 50, TotalSpins: 10, FreeSpinsTriggered: 1, MaxSingleWin: 20, TotalProfit: -50, DurationSec: 2},
		{SessionID: "b", PlayerID: "p1", MachineID: "m1", TotalBet: 200, TotalWin: 300, TotalSpins: 20, MaxSingleWin: 80, TotalProfit: 100, DurationSec: 4},
		{SessionID: "c", PlayerID: "p2", MachineID: "m2", TotalBet: 50, TotalWin: 10, TotalSpins: 5, TotalProfit: -40, DurationSec: 1},
	}
	for _, r := range recs {
		if err := s.Publish(r, nil); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	s.PublishFailure()

	rep := s.Report()
	if rep.Summary.SessionCount != 3 {
		t.Fatalf("expected 3 sessions, got %d", rep.Summary.SessionCount)
	}
	if rep.Summary.TotalBet != 350 || rep.Summary.TotalWin != 360 {
		t.Fatalf("unexpected summary totals: %+v", rep.Summary)
	}
	if rep.Failed != 1 {
		t.Fatalf("expected 1 failure recorded, got %d", rep.Failed)
	}

	var p1 *PlayerStats
	for i := range rep.Players {
		if rep.Players[i].PlayerID == "p1" {
			p1 = &rep.Players[i]
		}
	}
	if p1 == nil {
		t.Fatalf("expected p1 in per-player report")
	}
	if p1.SessionCount != 2 || p1.TotalBet != 300 || p1.MaxSingleWin != 80 || p1.WorstProfit != -50 {
		t.Fatalf("unexpected p1 stats: %+v", p1)
	}

	var m1 *MachineStats
	for i := range rep.Machines {
		if rep.Machines[i].MachineID == "m1" {
			m1 = &rep.Machines[i]
		}
	}
	if m1 == nil {
		t.Fatalf("expected m1 in per-machine report")
	}
	if m1.SessionCount != 2 {
		t.Fatalf("expected 2 sessions for m1, got %d", m1.SessionCount)
	}
	if m1.FreeSpinTriggerRate <= 0 {
		t.Fatalf("expected positive free-spin trigger rate for m1, got %v", m1.FreeSpinTriggerRate)
	}
}
