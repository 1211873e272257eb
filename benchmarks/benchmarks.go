// Package benchmarks is the built-in benchmark catalog. Each benchmark
// declares its parameter domain statically and generates its own input
// data deterministically from a seed parameter, so identical rows
// measure identical work.
package benchmarks

import (
	"fmt"

	"github.com/dkoval/gridbench/bench"
)

func intParam(p bench.Params, name string) (int, error) {
	v, ok := p.GetInt(name)
	if !ok {
		return 0, fmt.Errorf("missing or non-integer parameter %q", name)
	}

	return v, nil
}

func stringParam(p bench.Params, name string) (string, error) {
	v, ok := p.GetString(name)
	if !ok {
		return "", fmt.Errorf("missing or non-string parameter %q", name)
	}

	return v, nil
}
