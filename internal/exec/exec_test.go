package exec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// constTask completes immediately with a fixed value.
type constTask struct {
	id  TaskID
	val int
}

func (c *constTask) ID() TaskID { return c.id }
func (c *constTask) Execute(*ExecutionCtx) Continuation { return DoneWith(c.val) }

// sumTask suspends once on each dependency in order, then sums their
// outputs. The Anchor records how many dependencies have already been
// folded in so a resumption never re-adds one.
type sumTask struct {
	id      TaskID
	deps    []TaskID
	applied Anchor[int]
	sum     Anchor[int]
	runs    int
}

func (s *sumTask) ID() TaskID { return s.id }

func (s *sumTask) Execute(ctx *ExecutionCtx) Continuation {
	s.runs++
	applied, _ := s.applied.Get()
	total, _ := s.sum.Get()
	for applied < len(s.deps) {
		v, ok := ctx.Output(s.deps[applied])
		if !ok {
			return SuspendOn(s.deps[applied])
		}
		total += v.(int)
		applied++
		s.applied = Anchor[int]{done: true, val: applied}
		s.sum = Anchor[int]{done: true, val: total}
	}
	return DoneWith(total)
}

func TestExecutorResolvesSuspendChainToCompletion(t *testing.T) {
	e := NewExecutor()
	// sum must be submitted before its dependencies so the ready queue
	// reaches it while "a" and "b" are still outstanding, forcing a real
	// suspend/resume round trip instead of finding them already done.
	sum := &sumTask{id: "sum", deps: []TaskID{"a", "b"}}
	e.Submit(sum)
	e.Submit(&constTask{id: "a", val: 2})
	e.Submit(&constTask{id: "b", val: 3})

	outputs, errs := e.Run()
	require.Empty(t, errs)
	require.Equal(t, 5, outputs["sum"])
	require.Greater(t, sum.runs, 1, "sumTask must have been suspended and resumed at least once")
}

func TestExecutorDoesNotRedoAnchoredWorkOnResume(t *testing.T) {
	e := NewExecutor()
	sum := &sumTask{id: "sum", deps: []TaskID{"a"}}
	e.Submit(sum)
	e.Submit(&constTask{id: "a", val: 10})

	outputs, errs := e.Run()
	require.Empty(t, errs)
	require.Equal(t, 10, outputs["sum"])
	applied, ok := sum.applied.Get()
	require.True(t, ok)
	require.Equal(t, 1, applied)
}

// failingTask always fails.
type failingTask struct{ id TaskID }

func (f *failingTask) ID() TaskID { return f.id }
func (f *failingTask) Execute(*ExecutionCtx) Continuation {
	return FailWith(errors.New("boom"))
}

func TestExecutorPropagatesFailureToWaiters(t *testing.T) {
	e := NewExecutor()
	e.Submit(&failingTask{id: "dep"})
	sum := &sumTask{id: "sum", deps: []TaskID{"dep"}}
	e.Submit(sum)

	_, errs := e.Run()
	require.Error(t, errs["dep"])
	require.Error(t, errs["sum"])
}

func TestExecutorReportsUnknownDependency(t *testing.T) {
	e := NewExecutor()
	sum := &sumTask{id: "sum", deps: []TaskID{"missing"}}
	e.Submit(sum)

	_, errs := e.Run()
	require.Error(t, errs["sum"])
	var unknown ErrUnknownTask
	require.ErrorAs(t, errs["sum"], &unknown)
}

func TestRunParallelMatchesSequentialResult(t *testing.T) {
	e := NewExecutor()
	for i := 0; i < 20; i++ {
		e.Submit(&constTask{id: TaskID(rune('a' + i)), val: i})
	}
	outputs, errs := e.RunParallel(4)
	require.Empty(t, errs)
	require.Len(t, outputs, 20)
}

func TestAnchorGetOrInsertWithComputesOnce(t *testing.T) {
	var a Anchor[int]
	calls := 0
	compute := func() int { calls++; return 42 }

	require.Equal(t, 42, a.GetOrInsertWith(compute))
	require.Equal(t, 42, a.GetOrInsertWith(compute))
	require.Equal(t, 1, calls)
}
