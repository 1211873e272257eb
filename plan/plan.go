// Package plan loads HCL run plans: which benchmarks to run, with which
// parameter overrides, under which options.
package plan

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/dkoval/gridbench/bench"
)

// Plan is a parsed run plan.
type Plan struct {
	Options Options
	Runs    []Run
}

// Run selects one benchmark with its parameter overrides. An override
// value may be a scalar (pin the parameter) or a list (narrow the
// domain to those candidates).
type Run struct {
	Benchmark string
	Overrides map[string][]bench.Value
}

// Options are plan-wide run options. Zero values defer to settings and
// built-in defaults.
type Options struct {
	Iterations int
	CPUCount   int
	Allocator  string
	Timeout    time.Duration
	ReadOnly   bool
}

// planFile mirrors the top-level HCL structure.
type planFile struct {
	Options    *optionsBlock     `hcl:"options,block"`
	Benchmarks []*benchmarkBlock `hcl:"benchmark,block"`
}

type optionsBlock struct {
	Iterations *int    `hcl:"iterations,optional"`
	CPUCount   *int    `hcl:"cpu_count,optional"`
	Allocator  *string `hcl:"mem_alloc,optional"`
	Timeout    *string `hcl:"timeout,optional"`
	ReadOnly   *bool   `hcl:"read_only,optional"`
}

type benchmarkBlock struct {
	Name   string       `hcl:"name,label"`
	Params *paramsBlock `hcl:"params,block"`
}

type paramsBlock struct {
	Remain hcl.Body `hcl:",remain"`
}

// Load parses the plan file at path.
func Load(path string) (*Plan, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse plan %s: %w", path, diags)
	}

	return decode(file, path)
}

// Parse parses plan source held in memory; filename is used in
// diagnostics only.
func Parse(src []byte, filename string) (*Plan, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse plan %s: %w", filename, diags)
	}

	return decode(file, filename)
}

func decode(file *hcl.File, filename string) (*Plan, error) {
	var root planFile

	diags := gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode plan %s: %w", filename, diags)
	}

	p := &Plan{}

	if root.Options != nil {
		opts, err := decodeOptions(root.Options)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", filename, err)
		}

		p.Options = opts
	}

	for _, block := range root.Benchmarks {
		run := Run{Benchmark: block.Name}

		if block.Params != nil {
			overrides, err := decodeParams(block.Params.Remain)
			if err != nil {
				return nil, fmt.Errorf(
					"plan %s, benchmark %q: %w", filename, block.Name, err,
				)
			}

			run.Overrides = overrides
		}

		p.Runs = append(p.Runs, run)
	}

	return p, nil
}

func decodeOptions(block *optionsBlock) (Options, error) {
	var opts Options

	if block.Iterations != nil {
		opts.Iterations = *block.Iterations
	}

	if block.CPUCount != nil {
		opts.CPUCount = *block.CPUCount
	}

	if block.Allocator != nil {
		opts.Allocator = *block.Allocator
	}

	if block.ReadOnly != nil {
		opts.ReadOnly = *block.ReadOnly
	}

	if block.Timeout != nil {
		d, err := time.ParseDuration(*block.Timeout)
		if err != nil {
			return opts, fmt.Errorf("options timeout: %w", err)
		}

		opts.Timeout = d
	}

	return opts, nil
}

func decodeParams(body hcl.Body) (map[string][]bench.Value, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("params: %w", diags)
	}

	overrides := make(map[string][]bench.Value, len(attrs))

	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("params %s: %w", name, diags)
		}

		values, err := ctyToValues(val)
		if err != nil {
			return nil, fmt.Errorf("params %s: %w", name, err)
		}

		overrides[name] = values
	}

	return overrides, nil
}

// ctyToValues converts an HCL attribute value into an override domain:
// scalars pin the parameter, tuples and lists enumerate candidates.
func ctyToValues(val cty.Value) ([]bench.Value, error) {
	if val.Type().IsTupleType() || val.Type().IsListType() {
		var values []bench.Value

		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()

			v, err := ctyScalar(elem)
			if err != nil {
				return nil, err
			}

			values = append(values, v)
		}

		return values, nil
	}

	v, err := ctyScalar(val)
	if err != nil {
		return nil, err
	}

	return []bench.Value{v}, nil
}

func ctyScalar(val cty.Value) (bench.Value, error) {
	switch val.Type() {
	case cty.String:
		return val.AsString(), nil
	case cty.Bool:
		return val.True(), nil
	case cty.Number:
		f, _ := val.AsBigFloat().Float64()

		return f, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %s", val.Type().FriendlyName())
	}
}
