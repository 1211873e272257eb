package plan

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dkoval/gridbench/bench"
)

const samplePlan = `
options {
  iterations = 10
  cpu_count  = 4
  mem_alloc  = "default"
  timeout    = "5m"
  read_only  = false
}

benchmark "sort" {
  params {
    size = [1000, 10000]
    algo = "std"
  }
}

benchmark "hash" {
  params {
    size_kb = 64
    flag    = true
  }
}
`

func TestParsePlan(t *testing.T) {
	p, err := Parse([]byte(samplePlan), "sample.hcl")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	wantOpts := Options{
		Iterations: 10,
		CPUCount:   4,
		Allocator:  "default",
		Timeout:    5 * time.Minute,
	}

	if p.Options != wantOpts {
		t.Errorf("options = %+v, want %+v", p.Options, wantOpts)
	}

	if len(p.Runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(p.Runs))
	}

	if p.Runs[0].Benchmark != "sort" || p.Runs[1].Benchmark != "hash" {
		t.Errorf("run order = %s, %s", p.Runs[0].Benchmark, p.Runs[1].Benchmark)
	}

	wantSort := map[string][]bench.Value{
		"size": {float64(1000), float64(10000)},
		"algo": {"std"},
	}

	if diff := cmp.Diff(wantSort, p.Runs[0].Overrides); diff != "" {
		t.Errorf("sort overrides mismatch (-want +got):\n%s", diff)
	}

	wantHash := map[string][]bench.Value{
		"size_kb": {float64(64)},
		"flag":    {true},
	}

	if diff := cmp.Diff(wantHash, p.Runs[1].Overrides); diff != "" {
		t.Errorf("hash overrides mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePlanNoOptions(t *testing.T) {
	src := `
benchmark "sort" {
}
`

	p, err := Parse([]byte(src), "minimal.hcl")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if p.Options != (Options{}) {
		t.Errorf("options = %+v, want zero", p.Options)
	}

	if len(p.Runs) != 1 || p.Runs[0].Overrides != nil {
		t.Errorf("runs = %+v, want one bare run", p.Runs)
	}
}

func TestParsePlanBadTimeout(t *testing.T) {
	src := `
options {
  timeout = "soon"
}
`

	_, err := Parse([]byte(src), "bad.hcl")
	if err == nil {
		t.Fatal("expected error for unparseable timeout")
	}
}

func TestParsePlanBadSyntax(t *testing.T) {
	_, err := Parse([]byte(`benchmark "x" {`), "broken.hcl")
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParsePlanUnsupportedParamType(t *testing.T) {
	src := `
benchmark "sort" {
  params {
    size = { a = 1 }
  }
}
`

	_, err := Parse([]byte(src), "objparam.hcl")
	if err == nil {
		t.Fatal("expected error for object-typed parameter")
	}
}
