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

// Command simrun is the batch CLI entry point for spec.md §6: it loads a
// run config plus its machine/player catalogs, drives orchestrator.Run,
// and exits 0 on a clean run or 1 on any fatal condition.
//
// Grounded on cmd/run/support.go's flag-binding-and-validate shape and
// cmd/run/main.go's single-purpose main(), generalized from that
// teacher's fixed single-game/single-bet-mode flags to the catalog-file
// flags spec.md §6 names, and from log.Fatal to log/slog + explicit exit
// codes so a failed run is distinguishable from a malformed invocation
// by calling code (both exit 1, per spec.md §6, but the log line differs).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zintix-labs/slotmc/devserver"
	"github.com/zintix-labs/slotmc/logging"
	"github.com/zintix-labs/slotmc/orchestrator"
	"github.com/zintix-labs/slotmc/spec"
)

type cliFlags struct {
	config         string
	threads        int
	verbose        bool
	logFile        string
	noConsole      bool
	devAddr        string
	auditSnapshots bool
}

func main() {
	os.Exit(run())
}

// run contains everything main would otherwise do inline, so tests can
// drive it without the process actually exiting.
func run() int {
	cf := parseFlags()
	if cf.config == "" {
		fmt.Fprintln(os.Stderr, "simrun: --config is required")
		return 1
	}

	logger, closer, err := logging.New(logging.Config{
		Verbose:   cf.verbose,
		LogFile:   cf.logFile,
		NoConsole: cf.noConsole,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "simrun:", err)
		return 1
	}
	defer closer.Close()

	rc, err := spec.LoadRunConfig(cf.config)
	if err != nil {
		logger.Error("load run config", "error", err)
		return 1
	}
	if cf.threads > 0 {
		rc.Threads = cf.threads
	}
	if cf.auditSnapshots {
		rc.AuditSnapshots = true
	}

	machines, err := spec.LoadMachineCatalog(rc.MachineCatalog)
	if err != nil {
		logger.Error("load machine catalog", "error", err)
		return 1
	}
	players, err := spec.LoadPlayerCatalog(rc.PlayerCatalog)
	if err != nil {
		logger.Error("load player catalog", "error", err)
		return 1
	}

	progress := &orchestrator.Progress{}
	stamp := time.Now().Format("20060102_150405")

	var dev *devserver.Server
	if cf.devAddr != "" {
		dev = devserver.New(cf.devAddr, progress, time.Now(), logger)
		go func() {
			if err := dev.Run(); err != nil {
				logger.Warn("dev server stopped", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = dev.Shutdown(ctx)
		}()
	}

	logger.Info("starting run", "machines", len(machines), "players", len(players), "threads", rc.Threads)

	result, err := orchestrator.Run(rc, machines, players, nil, stamp, !cf.noConsole, progress)
	if err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}

	p := message.NewPrinter(language.English)
	p.Printf("completed=%d failed=%d elapsed=%s output=%s\n",
		result.Completed, result.Failed, result.Elapsed.Round(time.Millisecond), result.RunDir)
	logger.Info("run finished",
		slog.Int64("completed", result.Completed),
		slog.Int64("failed", result.Failed),
		slog.Duration("elapsed", result.Elapsed),
		slog.String("output_dir", result.RunDir),
	)

	if result.Failed > 0 {
		return 1
	}
	return 0
}

func parseFlags() cliFlags {
	var cf cliFlags
	flag.StringVar(&cf.config, "config", "", "path to the run config (required)")
	flag.IntVar(&cf.threads, "threads", 0, "worker count override (0 = use config's value)")
	flag.BoolVar(&cf.verbose, "verbose", false, "enable debug-level logging")
	flag.StringVar(&cf.logFile, "log-file", "", "path to a JSON log file (in addition to console unless --no-console)")
	flag.BoolVar(&cf.noConsole, "no-console", false, "suppress console progress bar and console logging")
	flag.StringVar(&cf.devAddr, "dev-addr", "", "optional listen address for the /healthz and /metrics dev server (e.g. :9090); empty disables it")
	flag.BoolVar(&cf.auditSnapshots, "audit-snapshots", false, "capture a PRNG snapshot per session for audit replay")
	flag.Parse()
	return cf
}
