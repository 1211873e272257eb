package harness

import (
	"context"
	"log/slog"
	"time"

	"github.com/dkoval/gridbench/bench"
)

// GridRunner walks a full parameter grid through the coordinator, one
// row at a time on a single control thread. Sequential execution is
// deliberate: each row spawns a process whose thread-pool and allocator
// behavior is itself under test and must not share a machine with
// sibling rows.
type GridRunner struct {
	Coordinator *Coordinator
	Logger      *slog.Logger
}

// Run iterates rows in order and returns one Outcome per row, in the
// same order. Row failures never abort the grid; they are counted,
// logged in the end-of-grid summary, and surfaced in the ResultSet.
// Cancellation is cooperative between rows: a canceled context stops
// before the next row and returns the partial set with ctx.Err().
func (g *GridRunner) Run(ctx context.Context, spec *bench.Spec, rows []bench.Params) (ResultSet, error) {
	logger := g.Logger.With(slog.String("benchmark", spec.Name))

	start := time.Now()
	results := make(ResultSet, 0, len(rows))
	failures := 0

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			logger.Warn("grid canceled",
				slog.Int("completed", i),
				slog.Int("total", len(rows)),
			)

			return results, err
		}

		outcome, err := g.Coordinator.RunRow(ctx, spec, row)
		if err != nil {
			return results, err
		}

		results = append(results, outcome)

		if outcome.Errored() {
			failures++
		}

		elapsed := time.Since(start)
		remaining := time.Duration(0)

		if i+1 < len(rows) {
			perRow := elapsed / time.Duration(i+1)
			remaining = perRow * time.Duration(len(rows)-i-1)
		}

		logger.Info("row complete",
			slog.Int("row", i+1),
			slog.Int("total", len(rows)),
			slog.String("params", row.String()),
			slog.Bool("cache_hit", outcome.CacheHit),
			slog.Bool("skipped", outcome.Skipped),
			slog.Bool("errored", outcome.Errored()),
			slog.Duration("elapsed", elapsed.Round(time.Millisecond)),
			slog.Duration("eta", remaining.Round(time.Second)),
			slog.Int("failures", failures),
		)
	}

	logger.Info("grid complete",
		slog.Int("rows", len(rows)),
		slog.Int("errored", failures),
		slog.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)

	if failures > 0 {
		logger.Warn("some benchmarks errored", slog.Int("count", failures))

		for _, o := range results.Failures() {
			logger.Warn("failed row", slog.String("params", o.Params.String()))
		}
	}

	return results, nil
}
