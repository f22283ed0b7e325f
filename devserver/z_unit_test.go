package devserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zintix-labs/slotmc/orchestrator"
)

func TestHealthzReturnsOK(t *testing.T) {
	progress := &orchestrator.Progress{Total: 10}
	srv := New(":0", progress, time.Now(), nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", rec.Body.String())
	}
}

func TestMetricsReportsLiveCounters(t *testing.T) {
	progress := &orchestrator.Progress{Total: 10}
	progress.Completed.Store(4)
	progress.Failed.Store(1)
	srv := New(":0", progress, time.Now().Add(-2*time.Second), nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload metricsPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != 10 || payload.Completed != 4 || payload.Failed != 1 || payload.Remaining != 5 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.ElapsedSeconds < 1.5 {
		t.Fatalf("expected elapsed >= ~2s, got %v", payload.ElapsedSeconds)
	}
}

func TestMetricsRemainingFloorsAtZero(t *testing.T) {
	progress := &orchestrator.Progress{Total: 3}
	progress.Completed.Store(3)
	srv := New(":0", progress, time.Now(), nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)

	var payload metricsPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", payload.Remaining)
	}
}
