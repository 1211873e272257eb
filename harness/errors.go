// Package harness runs parameter grids: it serializes rows into child
// scripts, executes them in isolated processes, frames the sentinel
// protocol out of captured output, classifies outcomes, and memoizes
// results through the cache store.
package harness

import (
	"errors"
	"fmt"
)

// ErrTimeout reports a child process that exceeded the configured
// execution timeout. It classifies the row as failed; the grid continues.
var ErrTimeout = errors.New("benchmark process timed out")

// ErrExecutionFailed reports a child that ran but never emitted the
// BEGIN sentinel: the benchmark body crashed or errored before producing
// structured output.
var ErrExecutionFailed = errors.New("benchmark process failed before emitting a result")

// MalformedPayloadError reports a payload between valid sentinels that
// is not valid JSON. The framing contract itself was violated, so this
// is a hard error rather than a row failure.
type MalformedPayloadError struct {
	Key string
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed result payload for %s: %v", e.Key, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}
