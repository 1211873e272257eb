// Package bench defines benchmark specifications, parameter rows, and the
// in-process execution path shared by the parent harness and the child
// process it spawns.
package bench

import (
	"fmt"
	"sort"
	"strconv"
)

// Value is a scalar parameter value: string, bool, or float64. Integers
// are normalized to float64 so that rows survive a JSON round trip
// unchanged.
type Value any

// Normalize coerces v into one of the canonical Value kinds.
// It panics on non-scalar input; parameter domains are declared with
// literals and a non-scalar is a programming error in the catalog.
func Normalize(v Value) Value {
	switch x := v.(type) {
	case string, bool, float64:
		return x
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	default:
		panic(fmt.Sprintf("bench: non-scalar parameter value %T", v))
	}
}

// ValueString renders v for cache keys and logs. Whole floats render
// without a fractional part so that an integer-valued parameter keys the
// same before and after a JSON round trip.
func ValueString(v Value) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Params is one concrete assignment of values to all declared parameters:
// a single point in a benchmark's grid.
type Params map[string]Value

// Reserved global parameter names. These control process-environment
// setup rather than the benchmark body and are present in every expanded
// row.
const (
	ParamLibPath  = "lib_path"
	ParamCPUCount = "cpu_count"
	ParamMemAlloc = "mem_alloc"

	// Installed is the lib_path sentinel meaning "whatever is currently
	// installed": no provisioning, no library path injection.
	Installed = "installed"

	// DefaultAllocator is the mem_alloc value matching an unmodified
	// binary.
	DefaultAllocator = "default"
)

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}

	sort.Strings(names)

	return names
}

// String renders the row as "k1=v1 k2=v2 ..." in name order, for logs
// and failure summaries.
func (p Params) String() string {
	out := ""

	for i, name := range p.Names() {
		if i > 0 {
			out += " "
		}

		out += name + "=" + ValueString(p[name])
	}

	return out
}

// GetString returns the named parameter as a string.
func (p Params) GetString(name string) (string, bool) {
	v, ok := p[name]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// GetInt returns the named parameter as an int. Numeric parameters are
// stored as float64; values with a fractional part do not convert.
func (p Params) GetInt(name string) (int, bool) {
	v, ok := p[name]
	if !ok {
		return 0, false
	}

	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}

	return int(f), true
}

// GetBool returns the named parameter as a bool.
func (p Params) GetBool(name string) (bool, bool) {
	v, ok := p[name]
	if !ok {
		return false, false
	}

	b, ok := v.(bool)

	return b, ok
}
