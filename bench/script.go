package bench

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Output sentinels. The child prints the result payload between these
// two literal lines; the parent matches them against whole output lines
// to separate the payload from incidental console noise.
const (
	SentinelBegin = "----- GRIDBENCH RESULT BEGIN -----"
	SentinelEnd   = "----- GRIDBENCH RESULT END -----"
)

// Script directive operations.
const (
	OpSetEnv          = "setenv"
	OpSetThreads      = "set_threads"
	OpAssertAllocator = "assert_allocator"
	OpRunCase         = "run_case"
	OpEmitResult      = "emit_result"
)

// Directive is one line of the script fed to a child process: an
// environment mutation, a runtime adjustment, a fail-fast assertion, or
// the case invocation itself. Scripts are newline-delimited JSON.
type Directive struct {
	Op        string   `json:"op"`
	Name      string   `json:"name,omitempty"`
	Value     string   `json:"value,omitempty"`
	Count     int      `json:"count,omitempty"`
	Backend   string   `json:"backend,omitempty"`
	Benchmark string   `json:"benchmark,omitempty"`
	Params    Params   `json:"params,omitempty"`
	Options   *Options `json:"options,omitempty"`
}

// EncodeScript renders directives as the script text fed to a child on
// standard input.
func EncodeScript(directives []Directive) (string, error) {
	var b strings.Builder

	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)

	for _, d := range directives {
		if err := enc.Encode(d); err != nil {
			return "", fmt.Errorf("encode %s directive: %w", d.Op, err)
		}
	}

	return b.String(), nil
}

// ExecScript interprets a directive script from r, writing the framed
// result payload to stdout. It is the body of the child process: the
// parent serializes a row into a script, the child replays it. Tests
// call it in-process; behavior is identical on both paths.
//
// run_case computes the full result before emit_result prints anything,
// so a crashing benchmark body never emits the BEGIN sentinel and the
// parent classifies the run as a failure.
func ExecScript(ctx context.Context, r io.Reader, stdout io.Writer, reg *Registry) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var pending *Result

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var d Directive
		if err := json.Unmarshal([]byte(line), &d); err != nil {
			return fmt.Errorf("parse directive %q: %w", line, err)
		}

		if err := execDirective(ctx, &d, &pending, stdout, reg); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	return nil
}

func execDirective(
	ctx context.Context,
	d *Directive,
	pending **Result,
	stdout io.Writer,
	reg *Registry,
) error {
	switch d.Op {
	case OpSetEnv:
		if err := os.Setenv(d.Name, d.Value); err != nil {
			return fmt.Errorf("setenv %s: %w", d.Name, err)
		}

	case OpSetThreads:
		if d.Count > 0 {
			runtime.GOMAXPROCS(d.Count)
		}

	case OpAssertAllocator:
		if d.Backend != ActiveAllocator() {
			return fmt.Errorf(
				"allocator mismatch: requested %q, active %q",
				d.Backend, ActiveAllocator(),
			)
		}

	case OpRunCase:
		spec, err := reg.Lookup(d.Benchmark)
		if err != nil {
			return err
		}

		var opts Options
		if d.Options != nil {
			opts = *d.Options
		}

		result, err := RunCase(ctx, spec, d.Params, opts)
		if err != nil {
			return err
		}

		*pending = result

	case OpEmitResult:
		if *pending == nil {
			return fmt.Errorf("emit_result before run_case")
		}

		payload, err := json.MarshalIndent(*pending, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}

		fmt.Fprintln(stdout, SentinelBegin)
		fmt.Fprintln(stdout, string(payload))
		fmt.Fprintln(stdout, SentinelEnd)

		*pending = nil

	default:
		return fmt.Errorf("unknown directive op %q", d.Op)
	}

	return nil
}
