package bench

import (
	"runtime"
	"time"
)

// Iteration is one per-iteration measurement row: wall time plus heap
// allocation deltas for a single execution of the benchmark body.
type Iteration struct {
	Iteration  int    `json:"iteration"`
	WallNanos  int64  `json:"wall_ns"`
	AllocBytes uint64 `json:"alloc_bytes"`
	Allocs     uint64 `json:"allocs"`
	GCCycles   uint32 `json:"gc_cycles"`
}

// measure times a single execution of thunk and records allocation
// activity across it.
func measure(iteration int, thunk func() error) (Iteration, error) {
	var before, after runtime.MemStats

	runtime.ReadMemStats(&before)

	start := time.Now()

	err := thunk()

	elapsed := time.Since(start)

	runtime.ReadMemStats(&after)

	return Iteration{
		Iteration:  iteration,
		WallNanos:  elapsed.Nanoseconds(),
		AllocBytes: after.TotalAlloc - before.TotalAlloc,
		Allocs:     after.Mallocs - before.Mallocs,
		GCCycles:   after.NumGC - before.NumGC,
	}, err
}
