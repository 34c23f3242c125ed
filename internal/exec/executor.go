package exec

import "sync"

// Executor is the single-process scheduler spec.md §5 describes: no
// preemption, no OS threads required for correctness, optional parallelism
// (RunParallel) across each batch of ready tasks.
type Executor struct {
	ctx   *ExecutionCtx
	tasks map[TaskID]Executable

	ready    []TaskID
	inFlight map[TaskID]bool     // submitted or scheduled, not yet Done/Failed.
	waiting  map[TaskID][]TaskID // dependency -> tasks blocked on it.
	errs     map[TaskID]error
}

// NewExecutor creates an Executor with a fresh ExecutionCtx.
func NewExecutor() *Executor {
	return &Executor{
		ctx:      NewExecutionCtx(),
		tasks:    make(map[TaskID]Executable),
		inFlight: make(map[TaskID]bool),
		waiting:  make(map[TaskID][]TaskID),
		errs:     make(map[TaskID]error),
	}
}

// Ctx returns the Executor's ExecutionCtx, shared by every submitted task.
func (e *Executor) Ctx() *ExecutionCtx { return e.ctx }

// Submit registers t and marks it runnable.
func (e *Executor) Submit(t Executable) {
	id := t.ID()
	if _, already := e.tasks[id]; already {
		return
	}
	e.tasks[id] = t
	e.ready = append(e.ready, id)
	e.inFlight[id] = true
}

// scheduleDependency enqueues dep if nothing has already put it in flight
// (in the ready queue or blocked on some other dependency).
func (e *Executor) scheduleDependency(dep TaskID) {
	if e.inFlight[dep] {
		return
	}
	e.ready = append(e.ready, dep)
	e.inFlight[dep] = true
}

// resolve applies one task's Continuation to the scheduler state.
func (e *Executor) resolve(id TaskID, cont Continuation) {
	switch cont.Status {
	case Done:
		e.ctx.store(id, cont.Value)
		e.wake(id)

	case Suspend:
		dep := cont.Request
		if _, ok := e.tasks[dep]; !ok {
			e.errs[id] = ErrUnknownTask{ID: dep}
			return
		}
		if cause, failed := e.errs[dep]; failed {
			// Dependency already failed; no wake will ever arrive for it.
			e.errs[id] = cause
			e.failWaiters(id, cause)
			return
		}
		if _, done := e.ctx.Output(dep); done {
			// Dependency already finished between submission and this
			// suspension; re-enqueue id immediately rather than waiting
			// for a wake that will never come.
			e.ready = append(e.ready, id)
			return
		}
		e.waiting[dep] = append(e.waiting[dep], id)
		e.scheduleDependency(dep)

	case Failed:
		e.errs[id] = cont.Err
		e.failWaiters(id, cont.Err)
	}
}

// Run drains the ready queue to completion, re-entering a task's Execute
// from the top every time it is resumed, and returns every completed
// task's output plus any terminal errors keyed by task.
func (e *Executor) Run() (map[TaskID]any, map[TaskID]error) {
	for len(e.ready) > 0 {
		id := e.ready[0]
		e.ready = e.ready[1:]

		if _, done := e.ctx.Output(id); done {
			continue
		}
		if _, failed := e.errs[id]; failed {
			continue
		}

		t := e.tasks[id]
		e.resolve(id, t.Execute(e.ctx))
	}

	e.markCycles()
	return e.snapshotOutputs(), e.errs
}

// wake moves every task blocked on id back onto the ready queue.
func (e *Executor) wake(id TaskID) {
	waiters := e.waiting[id]
	delete(e.waiting, id)
	e.ready = append(e.ready, waiters...)
}

// failWaiters propagates a dependency failure to everything blocked on it.
func (e *Executor) failWaiters(id TaskID, cause error) {
	waiters := e.waiting[id]
	delete(e.waiting, id)
	for _, w := range waiters {
		e.errs[w] = cause
		e.failWaiters(w, cause)
	}
}

// markCycles records ErrCycle on every task still blocked once the ready
// queue has gone dry: no remaining runnable task means every outstanding
// dependency is itself blocked on another outstanding dependency.
func (e *Executor) markCycles() {
	if len(e.waiting) == 0 {
		return
	}
	var stuck []TaskID
	for _, waiters := range e.waiting {
		stuck = append(stuck, waiters...)
	}
	for _, id := range stuck {
		e.errs[id] = ErrCycle{Stuck: stuck}
	}
}

func (e *Executor) snapshotOutputs() map[TaskID]any {
	outputs := make(map[TaskID]any, len(e.ctx.outputs))
	for k, v := range e.ctx.outputs {
		outputs[k] = v
	}
	return outputs
}

// RunParallel behaves like Run but executes every currently-ready batch of
// tasks concurrently across up to workers goroutines before resuming
// blocked tasks, using a goroutine-pool-plus-error-channel pattern. The
// batch's Continuations are applied one at a time once the whole batch has
// run. A task and a dependency it suspends on can share a batch (every
// submitted task starts in the first one); resolve then re-enqueues the
// task at once if the dependency finished first, or parks it until the
// dependency's wake. A dependency not yet in flight enters the ready queue
// only for the next batch.
func (e *Executor) RunParallel(workers int) (map[TaskID]any, map[TaskID]error) {
	if workers < 2 {
		return e.Run()
	}

	for len(e.ready) > 0 {
		batch := e.ready
		e.ready = nil

		jobs := make(chan TaskID, len(batch))
		for _, id := range batch {
			if _, done := e.ctx.Output(id); done {
				continue
			}
			if _, failed := e.errs[id]; failed {
				continue
			}
			jobs <- id
		}
		close(jobs)

		type result struct {
			id   TaskID
			cont Continuation
		}
		results := make(chan result, len(batch))

		n := workers
		if n > len(batch) {
			n = len(batch)
		}
		var wg sync.WaitGroup
		wg.Add(n)
		for w := 0; w < n; w++ {
			go func() {
				defer wg.Done()
				for id := range jobs {
					t := e.tasks[id]
					results <- result{id: id, cont: t.Execute(e.ctx)}
				}
			}()
		}
		wg.Wait()
		close(results)

		for r := range results {
			e.resolve(r.id, r.cont)
		}
	}

	e.markCycles()
	return e.snapshotOutputs(), e.errs
}
