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

// Package devserver is the optional operator-facing HTTP surface
// SPEC_FULL.md's supplemental feature #5 adds: a health check and a live
// progress snapshot for a simulation run that is still in flight.
//
// Grounded on server/netsvr's chi-based adapter and its
// netsvr/middleware package (request id, panic recovery, structured
// access log via log/slog, response compression), trimmed from the
// teacher's full request-serving REST surface (spin/sim/simbycfg
// endpoints, auth, DTOs — all out of this spec's scope, see DESIGN.md)
// down to the two read-only diagnostic routes a long batch run needs.
package devserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/zintix-labs/slotmc/orchestrator"
)

// Server exposes /healthz and /metrics over HTTP while a Run is in
// progress. It is entirely optional: cmd/simrun only starts one when
// invoked with a listen address.
type Server struct {
	http *http.Server
	log  *slog.Logger
}

// New builds a Server bound to addr (e.g. ":9090"), reporting progress's
// live counters from /metrics. log may be nil (no access logging).
func New(addr string, progress *orchestrator.Progress, startedAt time.Time, log *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog(log))
	r.Use(Compress)

	r.Get("/healthz", handleHealthz)
	r.Get("/metrics", handleMetrics(progress, startedAt))

	return &Server{
		http: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		log: log,
	}
}

// Run blocks serving HTTP until the listener fails or Shutdown is
// called, mirroring net/http.Server.ListenAndServe's contract
// (http.ErrServerClosed on a clean Shutdown is not an error to the
// caller).
func (s *Server) Run() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type metricsPayload struct {
	Total          int     `json:"total"`
	Completed      int64   `json:"completed"`
	Failed         int64   `json:"failed"`
	Remaining      int64   `json:"remaining"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

func handleMetrics(progress *orchestrator.Progress, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		completed := progress.Completed.Load()
		failed := progress.Failed.Load()
		done := completed + failed
		remaining := int64(progress.Total) - done
		if remaining < 0 {
			remaining = 0
		}
		payload := metricsPayload{
			Total:          progress.Total,
			Completed:      completed,
			Failed:         failed,
			Remaining:      remaining,
			ElapsedSeconds: time.Since(startedAt).Seconds(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}
}
