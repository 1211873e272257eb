package harness

import (
	"strings"

	"github.com/dkoval/gridbench/bench"
	"github.com/dkoval/gridbench/cache"
)

// Failure captures a row whose child process never produced a result:
// the row's parameters plus the raw captured output as an error trace.
// Failures are transient, surfaced to the caller, never persisted.
type Failure struct {
	Params bench.Params
	Trace  []string
	Err    error
}

// TraceText returns the captured output as one string.
func (f *Failure) TraceText() string {
	return strings.Join(f.Trace, "\n")
}

// Outcome is the per-row result of the coordinator: exactly one of
// Record (success, fresh or cached), Failure, or Skipped (read-only
// cache miss) is set.
type Outcome struct {
	Benchmark string
	Params    bench.Params

	Record  *cache.Record
	Failure *Failure

	// Skipped marks a read-only run that found nothing cached: not run,
	// not failed.
	Skipped bool

	// CacheHit marks a Record served from storage without spawning a
	// process.
	CacheHit bool
}

// Errored reports whether the row failed.
func (o Outcome) Errored() bool {
	return o.Failure != nil
}

// ResultSet holds one Outcome per grid row, in grid order, regardless of
// which rows were cache hits.
type ResultSet []Outcome

// Failures returns the failed outcomes in grid order.
func (rs ResultSet) Failures() []Outcome {
	var failed []Outcome

	for _, o := range rs {
		if o.Errored() {
			failed = append(failed, o)
		}
	}

	return failed
}
