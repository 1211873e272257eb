package benchmarks

import (
	"context"
	"testing"

	"github.com/dkoval/gridbench/bench"
	"github.com/dkoval/gridbench/grid"
)

func TestCatalogRegistered(t *testing.T) {
	for _, name := range []string{"sort", "hash", "jsondecode"} {
		if _, err := bench.DefaultRegistry.Lookup(name); err != nil {
			t.Errorf("catalog missing %s: %v", name, err)
		}
	}
}

func TestSortValidParams(t *testing.T) {
	spec, err := bench.DefaultRegistry.Lookup("sort")
	if err != nil {
		t.Fatalf("lookup sort: %v", err)
	}

	rows, err := grid.Expand(spec.FullDomain(), nil, spec.ValidParams)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	for _, row := range rows {
		algo, _ := row.GetString("algo")
		order, _ := row.GetString("order")

		if algo == "stable" && order == "reversed" {
			t.Errorf("filtered combination survived: %s", row)
		}
	}
}

func TestHashValidParams(t *testing.T) {
	spec, err := bench.DefaultRegistry.Lookup("hash")
	if err != nil {
		t.Fatalf("lookup hash: %v", err)
	}

	rows, err := grid.Expand(spec.FullDomain(), nil, spec.ValidParams)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	for _, row := range rows {
		size, _ := row.GetInt("size_kb")
		chunk, _ := row.GetInt("chunk_kb")

		if chunk > size {
			t.Errorf("chunk %d > size %d survived filter", chunk, size)
		}
	}
}

func TestSortRunCase(t *testing.T) {
	spec, err := bench.DefaultRegistry.Lookup("sort")
	if err != nil {
		t.Fatalf("lookup sort: %v", err)
	}

	params := bench.Params{
		"size":  float64(1000),
		"algo":  "std",
		"order": "random",
		"seed":  float64(42),
	}

	result, err := bench.RunCase(context.Background(), spec, params, bench.Options{
		Iterations: 2,
		CPUCount:   1,
		Allocator:  bench.DefaultAllocator,
	})
	if err != nil {
		t.Fatalf("RunCase failed: %v", err)
	}

	if len(result.Iterations) != 2 {
		t.Errorf("got %d iterations, want 2", len(result.Iterations))
	}
}

func TestJSONDecodeRunCase(t *testing.T) {
	spec, err := bench.DefaultRegistry.Lookup("jsondecode")
	if err != nil {
		t.Fatalf("lookup jsondecode: %v", err)
	}

	params := bench.Params{
		"depth": float64(2),
		"width": float64(4),
		"seed":  float64(7),
	}

	if _, err := bench.RunCase(context.Background(), spec, params, bench.Options{
		Iterations: 1,
	}); err != nil {
		t.Fatalf("RunCase failed: %v", err)
	}
}

func TestHashRunCase(t *testing.T) {
	spec, err := bench.DefaultRegistry.Lookup("hash")
	if err != nil {
		t.Fatalf("lookup hash: %v", err)
	}

	params := bench.Params{
		"size_kb":  float64(64),
		"chunk_kb": float64(4),
		"algo":     "sha256",
		"seed":     float64(1),
	}

	if _, err := bench.RunCase(context.Background(), spec, params, bench.Options{
		Iterations: 1,
	}); err != nil {
		t.Fatalf("RunCase failed: %v", err)
	}
}
