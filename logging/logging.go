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

// Package logging builds the *slog.Logger a simrun invocation runs with,
// from its --verbose/--log-file/--no-console flags.
//
// Grounded on server/logger/log_handler.go's LogMode/buildHandler split
// (text-to-stderr for a human console, JSON for a machine-readable
// sink), generalized from "pick one mode" to "fan out to console and
// file simultaneously when both are requested" since a batch CLI run,
// unlike that teacher's request-serving mode switch, wants both at
// once. The teacher's AsyncHandler is not adopted here: it exists to
// keep a hot request path non-blocking, and simrun's logging sits
// outside the hot per-spin loop entirely, so the synchronous handler is
// the right-sized tool.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/zintix-labs/slotmc/errs"
)

// Config selects simrun's logging destinations and verbosity.
type Config struct {
	Verbose   bool
	LogFile   string
	NoConsole bool
}

// New builds a logger per cfg. The returned closer must be called before
// the process exits to flush/close any opened log file; it is a no-op if
// no file was opened.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}

	if !cfg.NoConsole {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errs.Wrap(err, "logging: open log file")
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closer = f
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.NewTextHandler(io.Discard, nil)), closer, nil
	case 1:
		return slog.New(handlers[0]), closer, nil
	default:
		return slog.New(&fanOutHandler{handlers: handlers}), closer, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanOutHandler dispatches every record to each of its handlers in turn,
// per server/logger/log_handler.go's handler-composition pattern.
type fanOutHandler struct {
	handlers []slog.Handler
}

func (h *fanOutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, d := range h.handlers {
		if d.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanOutHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, d := range h.handlers {
		if d.Enabled(ctx, r.Level) {
			if err := d.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *fanOutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, d := range h.handlers {
		next[i] = d.WithAttrs(attrs)
	}
	return &fanOutHandler{handlers: next}
}

func (h *fanOutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, d := range h.handlers {
		next[i] = d.WithGroup(name)
	}
	return &fanOutHandler{handlers: next}
}
