package bench

// activeAllocator names the memory-allocator backend this binary runs
// with. Builds that link an alternative allocator override it from a
// build-tagged file; the stock binary uses the Go runtime allocator.
var activeAllocator = DefaultAllocator

// ActiveAllocator reports the allocator backend of the current process.
// Children assert it against the backend the parent requested before
// running any measurements.
func ActiveAllocator() string {
	return activeAllocator
}
