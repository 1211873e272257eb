package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ProcessRunner executes a directive script in a freshly spawned process
// and captures its combined output as ordered lines. A non-zero exit is
// not an error at this layer: classification happens on the captured
// output via the sentinel protocol.
type ProcessRunner interface {
	Execute(ctx context.Context, script string, env ExecutionEnvironment) ([]string, error)
}

// ExecRunner spawns the configured child command, feeds the script on
// standard input, and captures interleaved stdout/stderr. Each spawn is
// a pristine process: fresh allocator, fresh thread pools, no state
// leaked from earlier rows. The child is a re-entrant invocation of the
// harness's own case-execution entry point.
type ExecRunner struct {
	// Command is the child command line; defaults to the current
	// executable with the exec-case subcommand.
	Command []string

	// Timeout bounds a single execution. Zero means no limit: a hung
	// child then blocks the grid, so configure one for unattended runs.
	Timeout time.Duration

	Logger *slog.Logger
}

// NewExecRunner returns an ExecRunner for command, falling back to
// re-invoking the current executable when command is empty.
func NewExecRunner(command []string, timeout time.Duration, logger *slog.Logger) (*ExecRunner, error) {
	if len(command) == 0 {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve own executable: %w", err)
		}

		command = []string{self, "exec-case"}
	}

	return &ExecRunner{
		Command: command,
		Timeout: timeout,
		Logger:  logger,
	}, nil
}

// Execute implements ProcessRunner.
func (r *ExecRunner) Execute(
	ctx context.Context,
	script string,
	env ExecutionEnvironment,
) ([]string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)
	cmd.Stdin = strings.NewReader(script)

	extra := env.Environ()
	if len(extra) > 0 {
		cmd.Env = append(os.Environ(), extra...)
	}

	// One buffer for both streams keeps console output in emission
	// order around the payload.
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if r.Logger != nil {
		r.Logger.Debug("spawning benchmark process",
			slog.String("command", r.Command[0]),
			slog.Int("cpu_count", env.CPUCount),
			slog.String("allocator", env.Allocator),
		)
	}

	runErr := cmd.Run()
	lines := splitLines(output.String())

	if runErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return lines, fmt.Errorf("%w after %s", ErrTimeout, r.Timeout)
		}

		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// The child ran and exited non-zero; the sentinel scan
			// decides what that means.
			return lines, nil
		}

		return lines, fmt.Errorf("spawn %s: %w", r.Command[0], runErr)
	}

	return lines, nil
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}

	return strings.Split(s, "\n")
}
