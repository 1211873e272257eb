package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dkoval/gridbench/bench"
	"github.com/dkoval/gridbench/cache"
)

// Options configures per-row coordination.
type Options struct {
	// Iterations per case; zero uses bench.DefaultIterations.
	Iterations int

	// ReadOnly serves cache hits and skips misses without ever
	// spawning a process or writing.
	ReadOnly bool
}

// Coordinator runs one parameter row end to end: cache check, script
// build, process execution, output framing, classification, persistence.
type Coordinator struct {
	Store       *cache.Store
	Runner      ProcessRunner
	Provisioner Provisioner
	Options     Options
	Logger      *slog.Logger
}

// KeyFor derives the row's cache key, folding in the spec's case version
// tag when one is declared so semantic changes bust stale entries.
func (c *Coordinator) KeyFor(spec *bench.Spec, row bench.Params) string {
	keyRow := row

	if spec.CaseVersion != nil {
		if tag := spec.CaseVersion(row); tag != "" {
			keyRow = row.Clone()
			keyRow["case_version"] = tag
		}
	}

	return cache.Key(spec.Name, keyRow)
}

// Script builds the directive script for a row without touching the
// cache or spawning anything. This is the dry-run path.
func (c *Coordinator) Script(ctx context.Context, spec *bench.Spec, row bench.Params) (string, error) {
	env, opts, err := c.rowEnvironment(ctx, row)
	if err != nil {
		return "", err
	}

	return BuildScript(spec.Name, row, opts, env)
}

// RunRow coordinates a single row. Row-level failures come back inside
// the Outcome; a returned error means the harness itself broke (cache
// I/O, violated framing contract) and aborts the grid.
func (c *Coordinator) RunRow(ctx context.Context, spec *bench.Spec, row bench.Params) (Outcome, error) {
	outcome := Outcome{Benchmark: spec.Name, Params: row}

	key := c.KeyFor(spec, row)

	if c.Store.Exists(key) {
		rec, err := c.Store.Read(key)
		if err != nil {
			return outcome, err
		}

		outcome.Record = rec
		outcome.CacheHit = true

		return outcome, nil
	}

	if c.Options.ReadOnly {
		outcome.Skipped = true

		return outcome, nil
	}

	env, opts, err := c.rowEnvironment(ctx, row)
	if err != nil {
		outcome.Failure = &Failure{Params: row, Err: err}

		return outcome, nil
	}

	script, err := BuildScript(spec.Name, row, opts, env)
	if err != nil {
		return outcome, err
	}

	lines, execErr := c.Runner.Execute(ctx, script, env)
	if execErr != nil {
		outcome.Failure = &Failure{Params: row, Trace: lines, Err: execErr}

		return outcome, nil
	}

	framed, ok := Frame(lines)
	if !ok {
		outcome.Failure = &Failure{
			Params: row,
			Trace:  lines,
			Err:    ErrExecutionFailed,
		}

		return outcome, nil
	}

	var result bench.Result
	if err := json.Unmarshal([]byte(framed.PayloadText()), &result); err != nil {
		return outcome, &MalformedPayloadError{Key: key, Err: err}
	}

	rec := &cache.Record{
		Result:  result,
		Console: framed.Console(),
		Script:  script,
	}

	if err := c.Store.Write(key, rec); err != nil {
		return outcome, err
	}

	outcome.Record = rec

	return outcome, nil
}

// rowEnvironment resolves a row's global parameters into the execution
// environment and case options handed to the child.
func (c *Coordinator) rowEnvironment(ctx context.Context, row bench.Params) (ExecutionEnvironment, bench.Options, error) {
	libPath, err := resolveLibrary(ctx, c.Provisioner, row)
	if err != nil {
		return ExecutionEnvironment{}, bench.Options{}, err
	}

	cpus, ok := row.GetInt(bench.ParamCPUCount)
	if !ok || cpus <= 0 {
		return ExecutionEnvironment{}, bench.Options{}, fmt.Errorf(
			"row %s: missing or invalid %s", row, bench.ParamCPUCount,
		)
	}

	alloc, ok := row.GetString(bench.ParamMemAlloc)
	if !ok || alloc == "" {
		alloc = bench.DefaultAllocator
	}

	env := ExecutionEnvironment{
		LibraryPath: libPath,
		CPUCount:    cpus,
		Allocator:   alloc,
	}

	opts := bench.Options{
		Iterations: c.Options.Iterations,
		CPUCount:   cpus,
		Allocator:  alloc,
	}
	if opts.Iterations <= 0 {
		opts.Iterations = bench.DefaultIterations
	}

	return env, opts, nil
}

// IsNotFound reports whether err marks a read-only cache miss.
func IsNotFound(err error) bool {
	return errors.Is(err, cache.ErrNotFound)
}
