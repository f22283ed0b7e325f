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

// Package orchestrator wires together the catalog, the per-worker
// instance pool, the work-stealing executor, and the result sink into
// one run: it enumerates (machine, player, session-index) tasks per
// spec.md §2 and drains them across W workers.
//
// Grounded on sim.go's Simulator.SimPlayers: same shape (fixed worker
// goroutines draining a shared work source, a progress bar, a merged
// post-run report), generalized from "N machines x rounds-per-machine"
// to spec.md §2's richer "every (machine, player, session-index) tuple"
// task space, and from a channel-of-jobs fan-out to the exec.Executor
// work-stealing queue spec.md §4.7 requires.
package orchestrator

import (
	"crypto/rand"
	"fmt"
	"io"
	"math"
	"math/big"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/zintix-labs/slotmc/engine"
	"github.com/zintix-labs/slotmc/errs"
	"github.com/zintix-labs/slotmc/exec"
	"github.com/zintix-labs/slotmc/player"
	"github.com/zintix-labs/slotmc/pool"
	"github.com/zintix-labs/slotmc/report"
	"github.com/zintix-labs/slotmc/sdk/core"
	"github.com/zintix-labs/slotmc/session"
	"github.com/zintix-labs/slotmc/sink"
	"github.com/zintix-labs/slotmc/spec"
)

// instance is one worker's pooled (Player, Machine) pair, plus the
// PlayerProfile record it was built from (needed to sample each new
// session's initial balance and to select its bet currency — neither is
// mutable per-session state, so it is safe to keep on the pooled value).
type instance struct {
	Player  player.Profile
	Machine *engine.Machine
	Profile *spec.PlayerProfile
}

// OracleFactory builds the Oracle a v1 profile should consult, given the
// player cluster it belongs to. The default (nil) always yields
// player.NoOracle{}, per spec.md §7's fall-back-to-random policy.
type OracleFactory func(cluster string) player.Oracle

// Result is everything a Run produces: the aggregated report, the
// completed/failed task counts, and the directory results were written
// under.
type Result struct {
	Report    sink.Report
	Completed int64
	Failed    int64
	RunDir    string
	Elapsed   time.Duration
}

// Progress is a live, poll-safe view of an in-flight Run: Total is fixed
// once task enumeration finishes, Completed/Failed advance one at a time
// from worker goroutines. devserver's /metrics handler polls this without
// synchronizing with the run itself.
type Progress struct {
	Total     int
	Completed atomic.Int64
	Failed    atomic.Int64
}

// Run executes every (machine, player, session) task the catalogs imply,
// writes session_stats.csv / raw_spins.csv / the three post-run reports
// under <rc.OutputDir>/simulation_<stamp>/, and returns the aggregated
// Result. stamp is the caller-supplied YYYYMMDD_HHMMSS run identifier
// (the orchestrator reads the clock only to measure Result.Elapsed, so
// the output location depends on the inputs alone). progress may be nil; if given, it is
// updated live as tasks complete so a caller (e.g. devserver) can poll it
// from another goroutine while Run blocks.
func Run(rc *spec.RunConfig, machines spec.MachineCatalog, players spec.PlayerCatalog, oracleOf OracleFactory, stamp string, showProgress bool, progress *Progress) (Result, error) {
	if err := session.ValidateLimits(rc.Limits()); err != nil {
		return Result{}, err
	}
	if oracleOf == nil {
		oracleOf = func(string) player.Oracle { return player.NoOracle{} }
	}

	machineByID := make(map[string]*spec.MachineConfig, len(machines))
	for i := range machines {
		machineByID[machines[i].ID] = &machines[i]
	}
	playerByKey := make(map[string]*spec.PlayerProfile, len(players))
	for i := range players {
		playerByKey[fingerprintKey(players[i].ModelVersion, players[i].Cluster)] = &players[i]
	}

	tasks := buildTasks(rc, machines, players)
	if len(tasks) == 0 {
		return Result{}, errs.NewFatal("orchestrator: catalogs produced zero session tasks")
	}
	if progress == nil {
		progress = &Progress{}
	}
	progress.Total = len(tasks)

	runDir := filepath.Join(rc.OutputDir, "simulation_"+stamp)
	sk, err := sink.New(runDir, rc.RecordRawSpins, rc.AuditSnapshots)
	if err != nil {
		return Result{}, err
	}
	sk.SetBatchSize(rc.BatchWriteSize)
	sk.SetMaxBuffer(rc.MaxSpinBuffer)

	baseSeed := rc.Seed
	if baseSeed == 0 {
		s, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			return Result{}, errs.Wrap(err, "orchestrator: generate run seed")
		}
		baseSeed = s.Int64()
	}
	seedMaker := exec.NewSeedMaker(baseSeed)

	startedAt := time.Now()
	ex := exec.New(rc.Threads)
	workers := ex.NumWorkers()
	workerRNG := make([]*core.Core, workers)
	workerPool := make([]*pool.Pool[*instance], workers)
	for i := 0; i < workers; i++ {
		rng := core.New(core.Default().New(seedMaker.Next()))
		workerRNG[i] = rng
		workerPool[i] = pool.New(rc.PoolSize, instanceFactory(machineByID, playerByKey, oracleOf, rng))
	}

	bar := pb.StartNew(len(tasks))
	if !showProgress {
		bar.SetWriter(io.Discard)
	}

	for _, t := range tasks {
		task := t
		ex.Submit(func(workerID int) {
			defer bar.Increment()
			runOneTask(task, rc.ThinkTimeEnabled, rc.AuditSnapshots, workerPool[workerID], workerRNG[workerID], sk, progress)
		})
	}
	ex.WaitForCompletion()
	ex.Shutdown()
	ex.Wait()
	bar.Finish()

	if err := sk.Close(); err != nil {
		return Result{}, err
	}

	rep := sk.Report()
	if err := report.WriteAll(filepath.Join(runDir, "reports"), rep); err != nil {
		return Result{}, err
	}

	return Result{
		Report:    rep,
		Completed: progress.Completed.Load(),
		Failed:    progress.Failed.Load(),
		RunDir:    runDir,
		Elapsed:   time.Since(startedAt),
	}, nil
}

func fingerprintKey(version, cluster string) string {
	return version + "\x00" + cluster
}

func buildTasks(rc *spec.RunConfig, machines spec.MachineCatalog, players spec.PlayerCatalog) []spec.SessionTask {
	limits := rc.Limits()
	var tasks []spec.SessionTask
	for _, mc := range machines {
		for _, pp := range players {
			for seq := 0; seq < rc.SessionsPerPair; seq++ {
				tasks = append(tasks, spec.SessionTask{
					MachineID:       mc.ID,
					PlayerID:        pp.ID,
					PlayerVersion:   pp.ModelVersion,
					PlayerCluster:   pp.Cluster,
					SessionSequence: seq,
					Limits:          limits,
					RecordRawSpins:  rc.RecordRawSpins,
				})
			}
		}
	}
	return tasks
}

// instanceFactory returns the pool's Borrow-miss constructor for one
// worker: it resolves the task fingerprint to a concrete machine config
// and representative player profile, then builds a fresh Machine bound
// to rng (this worker's sole PRNG, which the Profile also receives on
// each Decide call, per spec.md §5) and a fresh Profile with its Oracle
// (for v1 profiles).
func instanceFactory(
	machineByID map[string]*spec.MachineConfig,
	playerByKey map[string]*spec.PlayerProfile,
	oracleOf OracleFactory,
	rng *core.Core,
) func(spec.Fingerprint) (*instance, error) {
	return func(fp spec.Fingerprint) (*instance, error) {
		mc, ok := machineByID[fp.MachineID]
		if !ok {
			return nil, errs.NewFatal(fmt.Sprintf("orchestrator: unknown machine id %q", fp.MachineID))
		}
		pp, ok := playerByKey[fingerprintKey(fp.PlayerVersion, fp.PlayerCluster)]
		if !ok {
			return nil, errs.NewFatal(fmt.Sprintf("orchestrator: no player profile for version=%q cluster=%q", fp.PlayerVersion, fp.PlayerCluster))
		}
		prof, err := buildProfile(pp, oracleOf)
		if err != nil {
			return nil, err
		}
		return &instance{
			Player:  prof,
			Machine: engine.NewMachine(mc, rng),
			Profile: pp,
		}, nil
	}
}

func buildProfile(pp *spec.PlayerProfile, oracleOf OracleFactory) (player.Profile, error) {
	switch pp.ModelVersion {
	case "v1":
		return player.NewV1(pp, oracleOf(pp.Cluster))
	default:
		return player.NewRandom(pp)
	}
}

// runOneTask executes one SessionTask end to end: borrow-or-build the
// (Player, Machine) pair, run the session controller, publish the
// record, and return the pair to the pool — or, on failure, drop it (per
// spec.md §4.9: the pair is not returned) and count the failure.
func runOneTask(t spec.SessionTask, thinkTimeEnabled, captureSnapshot bool, p *pool.Pool[*instance], rng *core.Core, sk *sink.Sink, progress *Progress) {
	defer func() {
		if r := recover(); r != nil {
			sk.PublishFailure()
			progress.Failed.Add(1)
		}
	}()

	fp := t.Fingerprint()
	inst, err := p.Borrow(fp)
	if err != nil {
		sk.PublishFailure()
		progress.Failed.Add(1)
		return
	}

	inst.Player.Reset(rng)
	inst.Machine.Reset()

	initBalance := player.SampleInitialBalance(rng, inst.Profile)

	ctrl := &session.Controller{
		SessionID: fmt.Sprintf("%s-%s-%d", t.MachineID, t.PlayerID, t.SessionSequence),
		Machine:   inst.Machine,
		Player:    inst.Player,
		RNG:       rng,
		Bets:      inst.Machine.Config.BetTable,
		Currency:  inst.Profile.Currency,
		Limits:    t.Limits,
		RecordRaw: t.RecordRawSpins,

		ThinkTimeEnabled: thinkTimeEnabled,
		CaptureSnapshot:  captureSnapshot,
	}

	rec, spins := ctrl.Run(initBalance)
	rec.PlayerID = t.PlayerID
	rec.MachineID = t.MachineID

	if err := sk.Publish(rec, spins); err != nil {
		progress.Failed.Add(1)
		return
	}
	progress.Completed.Add(1)
	p.Return(fp, inst)
}
