package bench

import (
	"context"
	"fmt"
)

// Result is the structured payload a case execution produces: the
// per-iteration measurement table plus the resolved row and provenance.
// This is exactly the JSON document emitted between the output sentinels.
type Result struct {
	Benchmark  string      `json:"benchmark"`
	Params     Params      `json:"params"`
	Iterations []Iteration `json:"iterations"`
	Meta       Metadata    `json:"meta"`
}

// RunCase executes one parameter row through the spec's full lifecycle:
// setup once, then iterations of before-each / measured run / after-each,
// then teardown. It is a pure function of (spec, params, opts) apart from
// whatever the benchmark body itself does, and is invoked both in-process
// (tests) and from the child entry point (isolation).
func RunCase(ctx context.Context, spec *Spec, params Params, opts Options) (*Result, error) {
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultIterations
	}

	caseCtx, err := spec.Setup(params)
	if err != nil {
		return nil, fmt.Errorf("setup %s: %w", spec.Name, err)
	}

	if spec.Teardown != nil {
		defer func() {
			// Teardown failures do not invalidate collected
			// measurements.
			_ = spec.Teardown(caseCtx)
		}()
	}

	iterations := make([]Iteration, 0, opts.Iterations)

	for i := 0; i < opts.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if spec.BeforeEach != nil {
			if err := spec.BeforeEach(caseCtx); err != nil {
				return nil, fmt.Errorf(
					"before_each %s iteration %d: %w", spec.Name, i, err,
				)
			}
		}

		row, runErr := measure(i, func() error {
			return spec.Run(caseCtx)
		})
		if runErr != nil {
			return nil, fmt.Errorf(
				"run %s iteration %d: %w", spec.Name, i, runErr,
			)
		}

		if spec.AfterEach != nil {
			if err := spec.AfterEach(caseCtx); err != nil {
				return nil, fmt.Errorf(
					"after_each %s iteration %d: %w", spec.Name, i, err,
				)
			}
		}

		iterations = append(iterations, row)
	}

	return &Result{
		Benchmark:  spec.Name,
		Params:     params,
		Iterations: iterations,
		Meta:       CollectMetadata(spec, params, opts),
	}, nil
}
