// Package grid expands declared parameter domains into ordered sequences
// of concrete parameter rows.
package grid

import (
	"fmt"

	"github.com/dkoval/gridbench/bench"
)

// InvalidParameterError reports an override naming a parameter the
// benchmark never declared.
type InvalidParameterError struct {
	Name string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter override %q: not declared", e.Name)
}

// Expand produces the cartesian product of the declared domains, with
// overrides replacing the candidate set of the parameters they name, and
// drops rows rejected by valid (nil accepts all).
//
// Order is deterministic: parameters vary in declaration order with the
// last declared parameter varying fastest, so cache keys and progress
// output are reproducible across runs.
func Expand(
	domain bench.Domain,
	overrides map[string][]bench.Value,
	valid func(bench.Params) bool,
) ([]bench.Params, error) {
	declared := make(map[string]bool, len(domain))
	for _, d := range domain {
		declared[d.Name] = true
	}

	for name := range overrides {
		if !declared[name] {
			return nil, &InvalidParameterError{Name: name}
		}
	}

	resolved := make(bench.Domain, len(domain))

	for i, d := range domain {
		values := d.Values

		if ov, ok := overrides[d.Name]; ok {
			values = make([]bench.Value, len(ov))
			for j, v := range ov {
				values[j] = bench.Normalize(v)
			}
		}

		if len(values) == 0 {
			return nil, &InvalidParameterError{Name: d.Name}
		}

		resolved[i] = bench.ParamDomain{Name: d.Name, Values: values}
	}

	total := 1
	for _, d := range resolved {
		total *= len(d.Values)
	}

	rows := make([]bench.Params, 0, total)

	indices := make([]int, len(resolved))

	for {
		row := make(bench.Params, len(resolved))
		for i, d := range resolved {
			row[d.Name] = d.Values[indices[i]]
		}

		if valid == nil || valid(row) {
			rows = append(rows, row)
		}

		// Advance the odometer, last parameter fastest.
		pos := len(indices) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(resolved[pos].Values) {
				break
			}

			indices[pos] = 0
			pos--
		}

		if pos < 0 {
			break
		}
	}

	return rows, nil
}
