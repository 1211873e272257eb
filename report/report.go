// Package report formats grid results into summary tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dkoval/gridbench/bench"
	"github.com/dkoval/gridbench/harness"
)

// Row is one line of the derived tabular summary: one input row with its
// timing aggregates and a boolean error column.
type Row struct {
	Params     string  `json:"params"`
	Iterations int     `json:"iterations"`
	MeanWallMs float64 `json:"mean_wall_ms"`
	AllocBytes uint64  `json:"alloc_bytes"`
	CacheHit   bool    `json:"cache_hit"`
	Skipped    bool    `json:"skipped"`
	Errored    bool    `json:"errored"`
}

// Summarize derives the per-row table from a result set, in grid order.
func Summarize(results harness.ResultSet) []Row {
	rows := make([]Row, 0, len(results))

	for _, o := range results {
		row := Row{
			Params:   o.Params.String(),
			CacheHit: o.CacheHit,
			Skipped:  o.Skipped,
			Errored:  o.Errored(),
		}

		if o.Record != nil {
			row.Iterations = len(o.Record.Iterations)
			row.MeanWallMs = meanWallMs(o.Record.Iterations)
			row.AllocBytes = meanAllocBytes(o.Record.Iterations)
		}

		rows = append(rows, row)
	}

	return rows
}

// Generate writes a markdown summary table for the given results.
func Generate(w io.Writer, benchmark string, results harness.ResultSet) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	rows := Summarize(results)
	failed := len(results.Failures())

	fmt.Fprintf(w, "## %s\n", benchmark)
	fmt.Fprintln(w)

	if failed > 0 {
		fmt.Fprintf(w, "**%d of %d rows errored**\n", failed, len(results))
	} else {
		fmt.Fprintf(w, "%d rows, no errors\n", len(results))
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Params | Iterations | Mean Wall | Mean Alloc "+
		"| Cache | Error |")
	fmt.Fprintln(w, "|--------|------------|-----------|------------"+
		"|-------|-------|")

	for _, row := range rows {
		fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s |\n",
			row.Params,
			row.Iterations,
			formatMs(row.MeanWallMs),
			formatBytes(row.AllocBytes),
			mark(row.CacheHit),
			mark(row.Errored),
		)
	}

	if failed > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failed rows:")

		for _, o := range results.Failures() {
			fmt.Fprintf(w, "  - %s: %v\n", o.Params, o.Failure.Err)
		}
	}

	return nil
}

// GenerateJSON writes the derived summary rows as JSON.
func GenerateJSON(w io.Writer, results harness.ResultSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(Summarize(results))
}

func meanWallMs(iterations []bench.Iteration) float64 {
	if len(iterations) == 0 {
		return 0
	}

	var total int64
	for _, it := range iterations {
		total += it.WallNanos
	}

	return float64(total) / float64(len(iterations)) / 1e6
}

func meanAllocBytes(iterations []bench.Iteration) uint64 {
	if len(iterations) == 0 {
		return 0
	}

	var total uint64
	for _, it := range iterations {
		total += it.AllocBytes
	}

	return total / uint64(len(iterations))
}

func mark(b bool) string {
	if b {
		return "yes"
	}

	return "-"
}

func formatMs(ms float64) string {
	if ms == 0 {
		return "-"
	}

	if ms < 1000 {
		return fmt.Sprintf("%.2fms", ms)
	}

	return fmt.Sprintf("%.2fs", ms/1000)
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
