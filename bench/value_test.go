package bench

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeIntegers(t *testing.T) {
	tests := []struct {
		in   Value
		want Value
	}{
		{in: 4, want: float64(4)},
		{in: int64(9), want: float64(9)},
		{in: uint64(2), want: float64(2)},
		{in: float32(1.5), want: float64(1.5)},
		{in: "s", want: "s"},
		{in: true, want: true},
		{in: float64(3.25), want: float64(3.25)},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%v) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{in: float64(1000), want: "1000"},
		{in: float64(1000000), want: "1000000"},
		{in: float64(1.5), want: "1.5"},
		{in: true, want: "true"},
		{in: "fast", want: "fast"},
	}

	for _, tt := range tests {
		if got := ValueString(tt.in); got != tt.want {
			t.Errorf("ValueString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParamsJSONRoundTrip(t *testing.T) {
	row := Params{
		"size": Normalize(1000),
		"algo": "std",
		"fast": true,
	}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Params
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if diff := cmp.Diff(row, decoded); diff != "" {
		t.Errorf("row did not round-trip (-want +got):\n%s", diff)
	}
}

func TestParamsString(t *testing.T) {
	row := Params{
		"b": float64(2),
		"a": "x",
	}

	if got := row.String(); got != "a=x b=2" {
		t.Errorf("String() = %q, want %q", got, "a=x b=2")
	}
}

func TestParamsAccessors(t *testing.T) {
	row := Params{
		"n": float64(7),
		"s": "str",
		"f": false,
		"x": float64(1.5),
	}

	if n, ok := row.GetInt("n"); !ok || n != 7 {
		t.Errorf("GetInt(n) = %d, %v", n, ok)
	}

	if _, ok := row.GetInt("x"); ok {
		t.Error("GetInt accepted a fractional value")
	}

	if s, ok := row.GetString("s"); !ok || s != "str" {
		t.Errorf("GetString(s) = %q, %v", s, ok)
	}

	if b, ok := row.GetBool("f"); !ok || b {
		t.Errorf("GetBool(f) = %v, %v", b, ok)
	}

	if _, ok := row.GetInt("missing"); ok {
		t.Error("GetInt found a missing parameter")
	}
}

func TestFullDomainInjectsGlobals(t *testing.T) {
	spec := &Spec{
		Name:   "demo",
		Domain: Domain{Choice("x", 1, 2)},
	}

	full := spec.FullDomain()

	names := make(map[string]bool, len(full))
	for _, d := range full {
		names[d.Name] = true
	}

	for _, want := range []string{"x", ParamLibPath, ParamCPUCount, ParamMemAlloc} {
		if !names[want] {
			t.Errorf("full domain missing %s", want)
		}
	}

	// Declared parameters keep their position; globals go last.
	if full[0].Name != "x" {
		t.Errorf("first domain entry = %s, want x", full[0].Name)
	}
}

func TestFullDomainRespectsDeclaredGlobals(t *testing.T) {
	spec := &Spec{
		Name: "demo",
		Domain: Domain{
			Choice(ParamCPUCount, 1, 2, 4),
		},
	}

	full := spec.FullDomain()

	count := 0
	for _, d := range full {
		if d.Name == ParamCPUCount {
			count++

			if len(d.Values) != 3 {
				t.Errorf("cpu_count domain = %v, want declared 3 values", d.Values)
			}
		}
	}

	if count != 1 {
		t.Errorf("cpu_count declared %d times in full domain", count)
	}
}
