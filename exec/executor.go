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

package exec

import (
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a unit of work: a closure the executor runs on a worker
// goroutine. It receives its own WorkerID so tasks that want a
// per-worker derived seed (via SeedMaker) can ask for one.
type Task func(workerID int)

// pollInterval is the condition-variable wait bound before a worker
// rescans for work, per spec.md §4.7 ("≈5 ms").
const pollInterval = 5 * time.Millisecond

// deque is a worker's own double-ended task queue: the owner pushes and
// pops from the back (LIFO, cache-friendly for nested submissions), and
// thieves pop from the front (FIFO, so a steal takes the oldest, most
// "finished cooking" task first). Guarded by its own mutex, per spec.md
// §5's shared-mutable-state inventory ("each guarded by its own mutex;
// stealing acquires the victim's mutex briefly").
type deque struct {
	mu    sync.Mutex
	tasks []Task
}

func (d *deque) pushBack(t Task) {
	d.mu.Lock()
	d.tasks = append(d.tasks, t)
	d.mu.Unlock()
}

func (d *deque) popBack() (Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.tasks)
	if n == 0 {
		return nil, false
	}
	t := d.tasks[n-1]
	d.tasks = d.tasks[:n-1]
	return t, true
}

func (d *deque) popFront() (Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.tasks) == 0 {
		return nil, false
	}
	t := d.tasks[0]
	d.tasks = d.tasks[1:]
	return t, true
}

func (d *deque) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// Executor is a fixed-size work-stealing worker pool, per spec.md §4.7.
//
// Grounded in concurrency shape on sim.go's SimMP/SimPlayers (a fixed
// goroutine count draining a shared work source), generalized from
// "N goroutines over one jobs channel" to "N goroutines, each with its
// own deque, stealing from peers" to satisfy spec.md §4.7's explicit
// scheduling contract (own-LIFO then steal-FIFO then idle-wait).
type Executor struct {
	deques []*deque

	shutdown atomic.Bool
	cond     *sync.Cond
	condMu   sync.Mutex

	active   atomic.Int32
	wg       sync.WaitGroup
	rngSrc   *rand.Rand
	rngMu    sync.Mutex
	nextIdx  atomic.Int64
}

// New builds an Executor with workers goroutines (runtime.GOMAXPROCS(0)
// if workers <= 0, per spec.md §4.7's "default = hardware concurrency")
// and starts them immediately.
func New(workers int) *Executor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	e := &Executor{
		deques: make([]*deque, workers),
		rngSrc: rand.New(rand.NewPCG(1, 2)),
	}
	e.cond = sync.NewCond(&e.condMu)
	for i := range e.deques {
		e.deques[i] = &deque{}
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.workerLoop(i)
	}
	return e
}

// NumWorkers returns the worker count this Executor was built with.
func (e *Executor) NumWorkers() int {
	return len(e.deques)
}

// Submit enqueues t onto a round-robin worker queue, per spec.md §4.7's
// "external submitter targets a round-robin or random queue" policy.
func (e *Executor) Submit(t Task) {
	idx := int(e.nextIdx.Add(1)-1) % len(e.deques)
	e.deques[idx].pushBack(t)
	e.cond.Broadcast()
}

// SubmitTo enqueues t onto the submitting worker's own queue — used when
// a task is submitted from within another running task (spec.md §4.7's
// "nested submission" case).
func (e *Executor) SubmitTo(workerID int, t Task) {
	e.deques[workerID%len(e.deques)].pushBack(t)
	e.cond.Broadcast()
}

func (e *Executor) workerLoop(id int) {
	defer e.wg.Done()
	own := e.deques[id]
	for {
		if t, ok := own.popBack(); ok {
			e.runTask(id, t)
			continue
		}
		if t, ok := e.steal(id); ok {
			e.runTask(id, t)
			continue
		}
		if e.shutdown.Load() {
			return
		}
		e.waitForWork()
		if e.shutdown.Load() && e.allEmpty() {
			return
		}
	}
}

func (e *Executor) runTask(id int, t Task) {
	e.active.Add(1)
	defer e.active.Add(-1)
	t(id)
}

// steal scans peer deques in a randomized order and pops from the front
// of the first non-empty one found, per spec.md §4.7 step 2.
func (e *Executor) steal(self int) (Task, bool) {
	n := len(e.deques)
	if n <= 1 {
		return nil, false
	}
	order := e.randomOrder(n)
	for _, i := range order {
		if i == self {
			continue
		}
		if t, ok := e.deques[i].popFront(); ok {
			return t, true
		}
	}
	return nil, false
}

func (e *Executor) randomOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	e.rngMu.Lock()
	e.rngSrc.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	e.rngMu.Unlock()
	return order
}

func (e *Executor) waitForWork() {
	e.condMu.Lock()
	timer := time.AfterFunc(pollInterval, func() {
		e.condMu.Lock()
		e.cond.Broadcast()
		e.condMu.Unlock()
	})
	e.cond.Wait()
	timer.Stop()
	e.condMu.Unlock()
}

func (e *Executor) allEmpty() bool {
	for _, d := range e.deques {
		if d.len() > 0 {
			return false
		}
	}
	return true
}

// Shutdown sets the shutdown flag and wakes every worker; in-flight
// tasks complete and each worker drains its own deque before exiting, per
// spec.md §4.7's termination contract. Shutdown does not block — call
// WaitForCompletion afterward to block until workers have exited.
func (e *Executor) Shutdown() {
	e.shutdown.Store(true)
	e.condMu.Lock()
	e.cond.Broadcast()
	e.condMu.Unlock()
}

// WaitForCompletion blocks until every deque is empty and no worker is
// active, per spec.md §4.7's wait_for_completion primitive. It does not
// itself trigger shutdown — callers that want workers to also exit
// afterward should call Shutdown first (or concurrently) and then Wait.
func (e *Executor) WaitForCompletion() {
	for {
		if e.allEmpty() && e.active.Load() == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// Wait blocks until every worker goroutine has exited. Call Shutdown
// first, or this blocks forever on a never-ending executor.
func (e *Executor) Wait() {
	e.wg.Wait()
}
