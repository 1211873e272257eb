package harness

import (
	"fmt"
	"strconv"

	"github.com/dkoval/gridbench/bench"
)

// BuildScript serializes one parameter row into the self-contained
// directive script a child process replays: environment mirrors first
// (so re-entrant children inherit the same setup), then the explicit
// thread-count call, the fail-fast allocator assertion, the case
// invocation, and finally the sentinel-delimited result emission.
func BuildScript(
	benchmark string,
	row bench.Params,
	opts bench.Options,
	env ExecutionEnvironment,
) (string, error) {
	var directives []bench.Directive

	if env.LibraryPath != "" {
		directives = append(directives, bench.Directive{
			Op: bench.OpSetEnv, Name: EnvLibPath, Value: env.LibraryPath,
		})
	}

	if env.CPUCount > 0 {
		n := strconv.Itoa(env.CPUCount)
		for _, name := range []string{envGomaxprocs, envOMPThreads, envBLASThreads} {
			directives = append(directives, bench.Directive{
				Op: bench.OpSetEnv, Name: name, Value: n,
			})
		}

		directives = append(directives, bench.Directive{
			Op: bench.OpSetThreads, Count: env.CPUCount,
		})
	}

	if env.Allocator != "" {
		directives = append(directives,
			bench.Directive{
				Op: bench.OpSetEnv, Name: EnvAllocator, Value: env.Allocator,
			},
			bench.Directive{
				Op: bench.OpAssertAllocator, Backend: env.Allocator,
			},
		)
	}

	directives = append(directives,
		bench.Directive{
			Op:        bench.OpRunCase,
			Benchmark: benchmark,
			Params:    row,
			Options:   &opts,
		},
		bench.Directive{Op: bench.OpEmitResult},
	)

	text, err := bench.EncodeScript(directives)
	if err != nil {
		return "", fmt.Errorf("build script for %s: %w", benchmark, err)
	}

	return text, nil
}
