package diag

import (
	"sync"

	"golang.org/x/exp/slices"
)

// ParallelSink is a goroutine-safe diagnostic sink for use when the
// executor (internal/exec) runs independent tasks on multiple goroutines
// (spec.md §5 "Implementations may execute independent tasks on multiple
// threads but must not mutate another task's state"). It is a buffered,
// mutex-guarded slice fed by concurrent Report calls, rather than
// hand-rolled ad-hoc locking per call site.
type ParallelSink struct {
	mu       sync.Mutex
	errors   []*Diagnostic
	warnings []*Diagnostic
}

// NewParallelSink returns a ParallelSink with room for n pre-allocated
// error slots, falling back to a modest default when n < 1.
func NewParallelSink(n int) *ParallelSink {
	if n < 1 {
		n = 16
	}
	return &ParallelSink{errors: make([]*Diagnostic, 0, n)}
}

// Report is safe to call concurrently from multiple task goroutines.
func (p *ParallelSink) Report(d *Diagnostic) {
	if d == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if d.Warning {
		p.warnings = append(p.warnings, d)
	} else {
		p.errors = append(p.errors, d)
	}
}

// Drain returns and clears the accumulated errors and warnings, sorted by
// source position. Task goroutines report in whatever order their
// scheduler happens to run them, and spec.md §5 requires that optional
// parallelism "preserve task-level determinism" — sorting here is what
// turns Report's racy arrival order back into a reproducible one before
// any caller observes it.
func (p *ParallelSink) Drain() (errors, warnings []*Diagnostic) {
	p.mu.Lock()
	defer p.mu.Unlock()
	errors = p.errors
	warnings = p.warnings
	p.errors = nil
	p.warnings = nil
	slices.SortFunc(errors, compareBySource)
	slices.SortFunc(warnings, compareBySource)
	return errors, warnings
}

func compareBySource(a, b *Diagnostic) int {
	if a.Source.Key != b.Source.Key {
		return int(a.Source.Key) - int(b.Source.Key)
	}
	if a.Source.Location.Line != b.Source.Location.Line {
		return a.Source.Location.Line - b.Source.Location.Line
	}
	return a.Source.Location.Column - b.Source.Location.Column
}

// Len returns the number of buffered error-severity diagnostics.
func (p *ParallelSink) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.errors)
}
