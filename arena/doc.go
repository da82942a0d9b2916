// Package arena provides a chunked bump allocator for bit vector storage.
//
// # Memory Management
//
// Arena maps memory in large chunks (1 MiB default) outside the Go heap and
// hands out 8-byte aligned blocks with a lock-free CAS on the current chunk.
// Blocks are never freed individually. All memory is released at once by Free,
// or recycled by Reset.
//
// Requests larger than the chunk size get a dedicated chunk of their own, so a
// single bit vector is never limited by the chunk size.
//
// # Concurrency Model
//
// Allocation (AllocWords, AllocBytes) may run on many goroutines. Reset and
// Free must NOT run concurrently with allocations.
//
// # Usage
//
//	a, err := arena.New(0)
//	if err != nil { ... }
//	defer a.Free()
//
//	live, err := bitvec.New(numValues, a)
//
// Every slice obtained from an arena becomes invalid after Reset or Free.
// Touching it afterwards is undefined behavior and likely a crash.
//
// # Memory Budget
//
// WithMemoryAcquirer binds the arena to a budget, usually a
// resource.Controller shared by all arenas of a compilation. Each chunk is
// reserved before it is mapped and released on Reset/Free.
package arena
