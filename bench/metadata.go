package bench

import (
	"os"
	"runtime"
	"runtime/debug"
	"strconv"
)

// Options controls how a single case is run.
type Options struct {
	Iterations int    `json:"iterations"`
	CPUCount   int    `json:"cpu_count"`
	Allocator  string `json:"allocator"`
}

// DefaultIterations is used when a plan or flag does not say otherwise.
const DefaultIterations = 5

// Metadata is the provenance bundle captured alongside every successful
// run: what was measured, under which runtime, built from which source.
// Computed fresh from the live process each run, never cached on its own.
type Metadata struct {
	// Tags identify the case: parameter values plus dataset identity
	// and CPU count.
	Tags map[string]string `json:"tags"`

	// Info describes the runtime environment.
	Info map[string]string `json:"info"`

	// Context carries build settings (compiler, flags).
	Context map[string]string `json:"context"`

	// SourceRef is the VCS revision the binary was built from, when the
	// build recorded one.
	SourceRef string `json:"source_ref,omitempty"`

	Options Options `json:"options"`
}

// CollectMetadata assembles the provenance bundle for one case.
func CollectMetadata(spec *Spec, params Params, opts Options) Metadata {
	tags := make(map[string]string, len(params)+2)
	for _, name := range params.Names() {
		tags[name] = ValueString(params[name])
	}

	if spec.Dataset != "" {
		tags["dataset"] = spec.Dataset
	}

	tags["cpus"] = strconv.Itoa(opts.CPUCount)

	hostname, _ := os.Hostname()

	info := map[string]string{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
	}
	if hostname != "" {
		info["host"] = hostname
	}

	buildCtx := make(map[string]string)

	var sourceRef string

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				sourceRef = setting.Value
			case "-gcflags", "-ldflags", "-tags", "CGO_ENABLED":
				if setting.Value != "" {
					buildCtx[setting.Key] = setting.Value
				}
			}
		}
	}

	return Metadata{
		Tags:      tags,
		Info:      info,
		Context:   buildCtx,
		SourceRef: sourceRef,
		Options:   opts,
	}
}
