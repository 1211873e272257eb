package grid

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dkoval/gridbench/bench"
)

func TestExpandSingleParameter(t *testing.T) {
	domain := bench.Domain{bench.Choice("x", 1, 2)}

	rows, err := Expand(domain, nil, nil)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	want := []bench.Params{
		{"x": float64(1)},
		{"x": float64(2)},
	}

	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandCartesianOrder(t *testing.T) {
	domain := bench.Domain{
		bench.Choice("a", "x", "y"),
		bench.Choice("b", 1, 2),
	}

	rows, err := Expand(domain, nil, nil)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	// Last declared parameter varies fastest.
	want := []bench.Params{
		{"a": "x", "b": float64(1)},
		{"a": "x", "b": float64(2)},
		{"a": "y", "b": float64(1)},
		{"a": "y", "b": float64(2)},
	}

	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandOverrideNarrowsDomain(t *testing.T) {
	domain := bench.Domain{
		bench.Choice("size", 10, 20, 30),
		bench.Default("algo", "std"),
	}

	overrides := map[string][]bench.Value{
		"size": {20},
		"algo": {"std", "stable"},
	}

	rows, err := Expand(domain, overrides, nil)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	want := []bench.Params{
		{"size": float64(20), "algo": "std"},
		{"size": float64(20), "algo": "stable"},
	}

	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandUnknownOverride(t *testing.T) {
	domain := bench.Domain{bench.Choice("x", 1)}

	_, err := Expand(domain, map[string][]bench.Value{"y": {1}}, nil)
	if err == nil {
		t.Fatal("expected error for unknown override")
	}

	var invalid *InvalidParameterError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidParameterError", err)
	}

	if invalid.Name != "y" {
		t.Errorf("invalid name = %q, want y", invalid.Name)
	}
}

func TestExpandValidityFilter(t *testing.T) {
	domain := bench.Domain{
		bench.Choice("size", 1, 2),
		bench.Choice("chunk", 1, 2),
	}

	valid := func(p bench.Params) bool {
		size, _ := p.GetInt("size")
		chunk, _ := p.GetInt("chunk")

		return chunk <= size
	}

	rows, err := Expand(domain, nil, valid)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	for _, row := range rows {
		if !valid(row) {
			t.Errorf("invalid row survived filter: %s", row)
		}
	}
}

func TestExpandDeterministic(t *testing.T) {
	domain := bench.Domain{
		bench.Choice("a", 1, 2, 3),
		bench.Choice("b", "p", "q"),
	}

	first, err := Expand(domain, nil, nil)
	if err != nil {
		t.Fatalf("first Expand failed: %v", err)
	}

	second, err := Expand(domain, nil, nil)
	if err != nil {
		t.Fatalf("second Expand failed: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("expansion not deterministic (-first +second):\n%s", diff)
	}
}

func TestExpandEmptyOverrideDomain(t *testing.T) {
	domain := bench.Domain{bench.Choice("x", 1)}

	_, err := Expand(domain, map[string][]bench.Value{"x": {}}, nil)
	if err == nil {
		t.Fatal("expected error for empty override domain")
	}
}
