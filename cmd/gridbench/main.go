// Package main provides the CLI entry point for gridbench, a grid
// benchmark execution harness with a content-addressed result cache.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkoval/gridbench/bench"
	_ "github.com/dkoval/gridbench/benchmarks"
	"github.com/dkoval/gridbench/cache"
	"github.com/dkoval/gridbench/config"
	"github.com/dkoval/gridbench/grid"
	"github.com/dkoval/gridbench/harness"
	"github.com/dkoval/gridbench/plan"
	"github.com/dkoval/gridbench/report"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "gridbench",
		Short: "Grid benchmark execution harness",
		Long: `Gridbench expands declared parameter domains into grids of concrete
benchmark cases, runs each case in an isolated child process, and memoizes
results in a content-addressed file cache so repeated runs are cheap.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newScriptCmd(logger))
	root.AddCommand(newLsCmd())
	root.AddCommand(newExecCaseCmd())

	return root
}

type runFlags struct {
	benchmark  string
	planPath   string
	sets       []string
	iterations int
	cpuCount   int
	allocator  string
	libPath    string
	readOnly   bool
	dryRun     bool
	resultDir  string
	configPath string
	outputJSON bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.benchmark, "benchmark", "",
		"Benchmark to run (alternative to --plan)")
	flags.StringVar(&f.planPath, "plan", "",
		"Path to an HCL run plan")
	flags.StringArrayVar(&f.sets, "set", nil,
		"Parameter override, e.g. --set size=1000,10000")
	flags.IntVar(&f.iterations, "iterations", 0,
		"Iterations per case (0 = default)")
	flags.IntVar(&f.cpuCount, "cpu", 0,
		"CPU thread count for child processes (0 = all)")
	flags.StringVar(&f.allocator, "alloc", "",
		"Memory allocator backend to request")
	flags.StringVar(&f.libPath, "lib-path", "",
		"Library revision/path to benchmark against")
	flags.BoolVar(&f.readOnly, "read-only", false,
		"Serve cached results only, never execute")
	flags.StringVar(&f.resultDir, "result-dir", "",
		"Base directory for the result cache")
	flags.StringVar(&f.configPath, "config", "",
		"Path to a settings file")
	flags.BoolVar(&f.outputJSON, "json", false,
		"Output summary as JSON instead of a table")
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Expand a parameter grid and run it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGrids(cmd.Context(), logger, &f)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false,
		"Print generated scripts instead of executing")

	return cmd
}

func newScriptCmd(logger *slog.Logger) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Print the generated child scripts for a grid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.dryRun = true

			return runGrids(cmd.Context(), logger, &f)
		},
	}

	f.register(cmd)

	return cmd
}

func newLsCmd() *cobra.Command {
	var resultDir string

	cmd := &cobra.Command{
		Use:   "ls [benchmark]",
		Short: "List cached result keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store := cache.NewStore(resultDir)

			names := []string{}
			if len(args) == 1 {
				names = append(names, args[0])
			} else {
				var err error

				names, err = store.Benchmarks()
				if err != nil {
					return err
				}
			}

			for _, name := range names {
				keys, err := store.Keys(name)
				if err != nil {
					return err
				}

				for _, key := range keys {
					fmt.Println(key)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&resultDir, "result-dir", "",
		"Base directory for the result cache")

	return cmd
}

// newExecCaseCmd is the child-process entry point: it replays a
// directive script from stdin and emits the sentinel-framed result on
// stdout. The parent spawns this re-entrantly so every measured case
// runs in pristine process state.
func newExecCaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "exec-case",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bench.ExecScript(
				cmd.Context(), os.Stdin, os.Stdout, bench.DefaultRegistry,
			)
		},
	}
}

func runGrids(ctx context.Context, logger *slog.Logger, f *runFlags) error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working dir: %w", err)
	}

	settings, err := config.Load(workDir, f.configPath)
	if err != nil {
		return err
	}

	runs, options, err := resolveRuns(f)
	if err != nil {
		return err
	}

	if f.iterations > 0 {
		options.Iterations = f.iterations
	}

	if options.Iterations == 0 {
		options.Iterations = settings.Iterations
	}

	if f.readOnly {
		options.ReadOnly = true
	}

	timeout := settings.Timeout
	if options.Timeout > 0 {
		timeout = options.Timeout
	}

	resultDir := f.resultDir
	if resultDir == "" {
		resultDir = settings.ResultDir
	}

	store := cache.NewStore(resultDir)

	runner, err := harness.NewExecRunner(settings.ChildCommand, timeout, logger)
	if err != nil {
		return err
	}

	coordinator := &harness.Coordinator{
		Store:       store,
		Runner:      runner,
		Provisioner: harness.PathProvisioner{},
		Options: harness.Options{
			Iterations: options.Iterations,
			ReadOnly:   options.ReadOnly,
		},
		Logger: logger,
	}

	gridRunner := &harness.GridRunner{Coordinator: coordinator, Logger: logger}

	for _, run := range runs {
		spec, err := bench.DefaultRegistry.Lookup(run.Benchmark)
		if err != nil {
			return err
		}

		overrides := globalOverrides(f, options)
		for name, values := range run.Overrides {
			overrides[name] = values
		}

		rows, err := grid.Expand(spec.FullDomain(), overrides, spec.ValidParams)
		if err != nil {
			// A bad override dooms this benchmark's grid, not the
			// whole invocation.
			logger.Error("skipping benchmark",
				slog.String("benchmark", spec.Name),
				slog.String("error", err.Error()),
			)

			continue
		}

		if f.dryRun {
			if err := printScripts(ctx, coordinator, spec, rows); err != nil {
				return err
			}

			continue
		}

		results, err := gridRunner.Run(ctx, spec, rows)
		if err != nil {
			return err
		}

		if f.outputJSON {
			if err := report.GenerateJSON(os.Stdout, results); err != nil {
				return fmt.Errorf("generate JSON report: %w", err)
			}
		} else {
			if err := report.Generate(os.Stdout, spec.Name, results); err != nil {
				return fmt.Errorf("generate report: %w", err)
			}
		}
	}

	return nil
}

// resolveRuns collects the benchmark selections from either a plan file
// or the --benchmark/--set flags.
func resolveRuns(f *runFlags) ([]plan.Run, plan.Options, error) {
	if f.planPath != "" && f.benchmark != "" {
		return nil, plan.Options{}, fmt.Errorf(
			"--plan and --benchmark are mutually exclusive",
		)
	}

	if f.planPath != "" {
		p, err := plan.Load(f.planPath)
		if err != nil {
			return nil, plan.Options{}, err
		}

		return p.Runs, p.Options, nil
	}

	if f.benchmark == "" {
		return nil, plan.Options{}, fmt.Errorf(
			"either --plan or --benchmark is required",
		)
	}

	overrides := make(map[string][]bench.Value, len(f.sets))

	for _, set := range f.sets {
		name, raw, ok := strings.Cut(set, "=")
		if !ok {
			return nil, plan.Options{}, fmt.Errorf(
				"malformed --set %q, want name=value[,value...]", set,
			)
		}

		var values []bench.Value
		for _, part := range strings.Split(raw, ",") {
			values = append(values, parseValue(part))
		}

		overrides[name] = values
	}

	run := plan.Run{Benchmark: f.benchmark, Overrides: overrides}

	return []plan.Run{run}, plan.Options{}, nil
}

// globalOverrides pins the reserved global parameters from flags and
// plan options.
func globalOverrides(f *runFlags, options plan.Options) map[string][]bench.Value {
	overrides := make(map[string][]bench.Value)

	cpus := f.cpuCount
	if cpus == 0 {
		cpus = options.CPUCount
	}

	if cpus > 0 {
		overrides[bench.ParamCPUCount] = []bench.Value{float64(cpus)}
	}

	alloc := f.allocator
	if alloc == "" {
		alloc = options.Allocator
	}

	if alloc != "" {
		overrides[bench.ParamMemAlloc] = []bench.Value{alloc}
	}

	if f.libPath != "" {
		overrides[bench.ParamLibPath] = []bench.Value{f.libPath}
	}

	return overrides
}

func printScripts(
	ctx context.Context,
	coordinator *harness.Coordinator,
	spec *bench.Spec,
	rows []bench.Params,
) error {
	for _, row := range rows {
		script, err := coordinator.Script(ctx, spec, row)
		if err != nil {
			return err
		}

		fmt.Printf("# %s: %s\n%s\n", spec.Name, row, script)
	}

	return nil
}

func parseValue(s string) bench.Value {
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}

	return s
}
