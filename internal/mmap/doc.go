// Package mmap provides anonymous memory mappings for off-heap storage.
//
// # Overview
//
// MapAnon returns a zeroed, read-write region that lives outside the Go heap.
// The arena allocator carves bit vector words out of such regions, so large
// dataflow problems do not add to garbage collector scan work.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON | MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE | MEM_COMMIT
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must
// ensure no goroutine touches the bytes after Close returns.
package mmap
