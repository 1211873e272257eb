package harness

import "strconv"

// Child environment variable names. The CPU count fans out to every
// thread-pool knob a benchmark body might consult, plus an explicit
// runtime call inside the child via the set_threads directive.
const (
	EnvLibPath   = "GRIDBENCH_LIB_PATH"
	EnvAllocator = "GRIDBENCH_ALLOC"

	envGomaxprocs  = "GOMAXPROCS"
	envOMPThreads  = "OMP_NUM_THREADS"
	envBLASThreads = "OPENBLAS_NUM_THREADS"
)

// ExecutionEnvironment describes the process environment a row requires.
// The ProcessRunner is solely responsible for projecting it onto whatever
// the child actually reads; nothing else touches the environment.
type ExecutionEnvironment struct {
	// LibraryPath is prepended to the child's library search path.
	// Empty means the currently installed version, untouched.
	LibraryPath string

	// CPUCount bounds the child's thread pools. Zero leaves the
	// inherited value.
	CPUCount int

	// Allocator selects the memory-allocator backend; the child asserts
	// it before measuring.
	Allocator string
}

// Environ renders the environment as KEY=VALUE entries to append to the
// inherited environment.
func (e ExecutionEnvironment) Environ() []string {
	var env []string

	if e.LibraryPath != "" {
		env = append(env, EnvLibPath+"="+e.LibraryPath)
	}

	if e.CPUCount > 0 {
		n := strconv.Itoa(e.CPUCount)
		env = append(env,
			envGomaxprocs+"="+n,
			envOMPThreads+"="+n,
			envBLASThreads+"="+n,
		)
	}

	if e.Allocator != "" {
		env = append(env, EnvAllocator+"="+e.Allocator)
	}

	return env
}
