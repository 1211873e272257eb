// Package cache derives deterministic cache keys and persists benchmark
// results as immutable JSON files under a configurable base directory.
package cache

import (
	"strings"

	"github.com/dkoval/gridbench/bench"
)

// Key derives the cache key for a (benchmark, row) pair:
// "<name>/<v1>-<v2>-..." with values joined in parameter-name order.
// Path separators inside values are replaced so the remainder is always
// a single path segment and can never escape the result directory.
// Pure: two rows equal as mappings key identically regardless of how
// they were constructed.
func Key(name string, row bench.Params) string {
	parts := make([]string, 0, len(row))

	for _, param := range row.Names() {
		v := bench.ValueString(row[param])
		v = strings.ReplaceAll(v, "/", "_")
		parts = append(parts, v)
	}

	return name + "/" + strings.Join(parts, "-")
}
