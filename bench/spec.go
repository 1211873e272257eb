package bench

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
)

// ParamDomain declares one parameter: a single default value or an
// enumerated set of legal choices.
type ParamDomain struct {
	Name   string
	Values []Value
}

// Domain is an ordered list of parameter declarations. Declaration order
// fixes the cartesian expansion order and therefore cache-key and
// progress reproducibility.
type Domain []ParamDomain

// Choice declares a parameter with an enumerated candidate set.
func Choice(name string, values ...Value) ParamDomain {
	normalized := make([]Value, len(values))
	for i, v := range values {
		normalized[i] = Normalize(v)
	}

	return ParamDomain{Name: name, Values: normalized}
}

// Default declares a parameter with a single default value.
func Default(name string, value Value) ParamDomain {
	return ParamDomain{Name: name, Values: []Value{Normalize(value)}}
}

// Spec is a declarative benchmark definition: a named bundle of lifecycle
// procedures plus the statically declared parameter domain they accept.
// Immutable once registered.
type Spec struct {
	Name   string
	Domain Domain

	// Dataset identifies the input data the benchmark consumes, recorded
	// as a provenance tag. Empty when the benchmark generates its own
	// input.
	Dataset string

	// Setup builds the per-case context from a parameter row. Run is
	// the measured body; BeforeEach/AfterEach bracket every iteration
	// outside the measurement window. Teardown releases the context.
	// BeforeEach, AfterEach, and Teardown may be nil.
	Setup      func(Params) (any, error)
	BeforeEach func(any) error
	Run        func(any) error
	AfterEach  func(any) error
	Teardown   func(any) error

	// ValidParams filters expanded rows; nil accepts all.
	ValidParams func(Params) bool

	// CaseVersion maps a row to a version tag, busting stale cache
	// entries when case semantics change without a rename. Nil or an
	// empty tag leaves the key untouched.
	CaseVersion func(Params) string
}

// FullDomain returns the declared domain with the reserved global
// parameters appended for any the benchmark did not declare itself.
func (s *Spec) FullDomain() Domain {
	declared := make(map[string]bool, len(s.Domain))
	for _, d := range s.Domain {
		declared[d.Name] = true
	}

	full := make(Domain, len(s.Domain), len(s.Domain)+3)
	copy(full, s.Domain)

	if !declared[ParamLibPath] {
		full = append(full, Default(ParamLibPath, Installed))
	}

	if !declared[ParamCPUCount] {
		full = append(full, Default(ParamCPUCount, runtime.NumCPU()))
	}

	if !declared[ParamMemAlloc] {
		full = append(full, Default(ParamMemAlloc, DefaultAllocator))
	}

	return full
}

// Registry is a catalog of benchmark specs keyed by name.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*Spec
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*Spec)}
}

// Register adds spec to the catalog. Duplicate names panic: the catalog
// is assembled at init time and a collision is a programming error.
func (r *Registry) Register(spec *Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.specs[spec.Name]; ok {
		panic("bench: duplicate benchmark " + spec.Name)
	}

	r.specs[spec.Name] = spec
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name string) (*Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[name]
	if !ok {
		return nil, fmt.Errorf("unknown benchmark %q", name)
	}

	return spec, nil
}

// Names returns all registered benchmark names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// DefaultRegistry is the process-wide catalog consulted by the CLI and
// the child-process entry point.
var DefaultRegistry = NewRegistry()

// Register adds spec to the default catalog.
func Register(spec *Spec) {
	DefaultRegistry.Register(spec)
}
