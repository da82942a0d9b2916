package arena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/time/rate"

	"github.com/hupe1980/bitvec/internal/conv"
	"github.com/hupe1980/bitvec/internal/mmap"
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

var (
	// ErrMaxChunksExceeded is returned when the arena exceeds the maximum number of chunks.
	ErrMaxChunksExceeded = errors.New("arena: max chunks exceeded")
	// ErrClosed is returned when allocating from an arena after Free.
	ErrClosed = errors.New("arena: closed")
)

const (
	// DefaultChunkSize is the default size of a chunk (1MB).
	DefaultChunkSize = 1024 * 1024
	// DefaultAlignment is the default memory alignment (8 bytes).
	DefaultAlignment = 8
	// MaxChunks limits the number of chunks to prevent excessive memory usage.
	MaxChunks = 65536

	// acquireTimeout bounds the wait for memory budget when the caller's
	// context has no deadline.
	acquireTimeout = 100 * time.Millisecond

	wordSize = int(unsafe.Sizeof(uint64(0)))
)

// Stats tracks arena memory usage metrics.
//
// Note on semantics:
//   - BytesReserved: total memory currently mapped
//   - BytesUsed: actual bytes requested by allocations (before alignment)
//   - BytesWasted: padding added for alignment
//   - ActiveChunks: number of chunks currently held
//   - DedicatedChunks: chunks mapped for a single oversized allocation
//   - TotalAllocs: cumulative allocation count
type Stats struct {
	ChunksAllocated uint64 // Historical: total chunks ever created
	BytesReserved   uint64 // Current: total memory reserved
	BytesUsed       uint64 // Current: actual bytes used
	BytesWasted     uint64 // Current: alignment padding
	ActiveChunks    uint64 // Current: active chunk count
	DedicatedChunks uint64 // Current: active oversized chunks
	TotalAllocs     uint64 // Historical: total allocations
}

type atomicStats struct {
	ChunksAllocated atomic.Uint64
	BytesReserved   atomic.Uint64
	BytesUsed       atomic.Uint64
	BytesWasted     atomic.Uint64
	ActiveChunks    atomic.Uint64
	DedicatedChunks atomic.Uint64
	TotalAllocs     atomic.Uint64
}

type chunk struct {
	data    []byte
	mapping *mmap.Mapping
	offset  atomic.Int64 // MUST be atomic - accessed concurrently without locks
	index   int
}

// Arena is a memory arena allocator.
type Arena struct {
	chunkSize  int
	alignment  int
	chunks     []*chunk // protected by mu
	current    atomic.Pointer[chunk]
	mu         sync.Mutex
	stats      atomicStats
	generation atomic.Uint32 // Generation counter, bumped by Reset and Free
	acquirer   MemoryAcquirer
	logger     *slog.Logger
	budgetWarn rate.Sometimes
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// WithLogger sets the logger for chunk mapping events.
// Pass nil to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Arena) {
		a.logger = logger
	}
}

// New creates a new Arena with the given chunk size.
// The chunk size is rounded up to the next power of two; values <= 0 select
// DefaultChunkSize.
func New(chunkSize int, opts ...Option) (*Arena, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	// Round up to next power of 2
	// Example: 1024 -> 1023 -> Len=10 -> 1024. 1025 -> 1024 -> Len=11 -> 2048.
	chunkSize = 1 << bits.Len(uint(chunkSize-1)) //nolint:gosec // chunkSize > 0

	a := &Arena{
		chunkSize:  chunkSize,
		alignment:  DefaultAlignment,
		budgetWarn: rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}

	// Initialize generation to 1 so 0 is invalid
	a.generation.Store(1)

	a.mu.Lock()
	defer a.mu.Unlock()
	c, err := a.mapChunkLocked(context.Background(), a.chunkSize)
	if err != nil {
		return nil, err
	}
	a.current.Store(c)
	return a, nil
}

// Generation returns the current generation of the arena.
// Blocks handed out in an earlier generation are no longer valid.
func (a *Arena) Generation() uint32 {
	return a.generation.Load()
}

// ChunkSize returns the size of a regular chunk in bytes.
func (a *Arena) ChunkSize() int {
	return a.chunkSize
}

func (a *Arena) mapChunkLocked(ctx context.Context, size int) (*chunk, error) {
	idx := len(a.chunks)
	if idx >= MaxChunks {
		return nil, ErrMaxChunksExceeded
	}

	size64 := int64(size)
	if a.acquirer != nil {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, acquireTimeout)
			defer cancel()
		}
		if err := a.acquirer.AcquireMemory(ctx, size64); err != nil {
			a.budgetWarn.Do(func() {
				a.logger.Warn("arena memory budget exhausted",
					"chunk_bytes", size,
					"reserved_bytes", a.stats.BytesReserved.Load(),
					"error", err,
				)
			})
			return nil, fmt.Errorf("arena: reserve %d bytes: %w", size, err)
		}
	}

	// Off-heap anonymous mapping keeps bit vector words out of GC scans
	mapping, err := mmap.MapAnon(size)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(size64)
		}
		return nil, fmt.Errorf("arena: map anonymous memory for chunk: %w", err)
	}

	c := &chunk{
		data:    mapping.Bytes(),
		mapping: mapping,
		index:   idx,
	}
	a.chunks = append(a.chunks, c)

	a.stats.ChunksAllocated.Add(1)
	sizeU64, _ := conv.IntToUint64(size)
	a.stats.BytesReserved.Add(sizeU64)
	a.stats.ActiveChunks.Add(1)

	a.logger.Debug("arena chunk mapped",
		"index", idx,
		"bytes", size,
	)
	return c, nil
}

// AllocWords allocates count 8-byte aligned uint64 words.
// The words are not guaranteed to be zero.
func (a *Arena) AllocWords(count int) ([]uint64, error) {
	return a.AllocWordsContext(context.Background(), count)
}

// AllocWordsContext is AllocWords with a context that bounds the wait for
// memory budget.
func (a *Arena) AllocWordsContext(ctx context.Context, count int) ([]uint64, error) {
	if count <= 0 {
		return nil, nil
	}
	size, err := conv.MulInt(count, wordSize)
	if err != nil {
		return nil, fmt.Errorf("arena: %w", err)
	}
	data, err := a.alloc(ctx, size)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&data[0])), count), nil //nolint:gosec // unsafe is required for arena implementation
}

// AllocBytes allocates a byte slice of the given size.
func (a *Arena) AllocBytes(size int) ([]byte, error) {
	return a.alloc(context.Background(), size)
}

func (a *Arena) alloc(ctx context.Context, size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}

	mask := a.alignment - 1
	alignedSize := (size + mask) & ^mask

	if alignedSize > a.chunkSize {
		return a.allocDedicated(ctx, size, alignedSize)
	}

	for {
		curr := a.current.Load()
		if curr == nil {
			return nil, ErrClosed
		}

		if data, ok := a.tryAllocInChunk(curr, size, alignedSize); ok {
			return data, nil
		}

		// Current chunk is full. Check if someone else already replaced it.
		if a.current.Load() != curr {
			continue
		}

		a.mu.Lock()
		// Double check under lock
		if a.current.Load() != curr {
			a.mu.Unlock()
			continue
		}

		next, err := a.mapChunkLocked(ctx, a.chunkSize)
		if err != nil {
			a.mu.Unlock()
			return nil, err
		}
		a.current.Store(next)
		a.mu.Unlock()
	}
}

// allocDedicated maps a chunk for a single request that does not fit a regular chunk.
func (a *Arena) allocDedicated(ctx context.Context, size, alignedSize int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current.Load() == nil {
		return nil, ErrClosed
	}

	c, err := a.mapChunkLocked(ctx, alignedSize)
	if err != nil {
		return nil, err
	}
	c.offset.Store(int64(alignedSize))
	a.stats.DedicatedChunks.Add(1)
	a.recordAlloc(size, alignedSize)

	return c.data[:alignedSize:alignedSize], nil
}

func (a *Arena) tryAllocInChunk(curr *chunk, size, alignedSize int) ([]byte, bool) {
	oldOffset := curr.offset.Load()
	newOffset := oldOffset + int64(alignedSize)

	if newOffset > int64(len(curr.data)) {
		return nil, false
	}

	if !curr.offset.CompareAndSwap(oldOffset, newOffset) {
		return nil, false
	}

	a.recordAlloc(size, alignedSize)
	return curr.data[oldOffset:newOffset:newOffset], true
}

func (a *Arena) recordAlloc(size, alignedSize int) {
	sizeU64, _ := conv.IntToUint64(size)
	a.stats.BytesUsed.Add(sizeU64)
	wastedU64, _ := conv.IntToUint64(alignedSize - size)
	a.stats.BytesWasted.Add(wastedU64)
	a.stats.TotalAllocs.Add(1)
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		ChunksAllocated: a.stats.ChunksAllocated.Load(),
		BytesReserved:   a.stats.BytesReserved.Load(),
		BytesUsed:       a.stats.BytesUsed.Load(),
		BytesWasted:     a.stats.BytesWasted.Load(),
		ActiveChunks:    a.stats.ActiveChunks.Load(),
		DedicatedChunks: a.stats.DedicatedChunks.Load(),
		TotalAllocs:     a.stats.TotalAllocs.Load(),
	}
}

// Free releases all arena memory.
//
// IMPORTANT:
//  1. Do NOT call Free concurrently with allocations
//  2. All slices allocated from this arena become invalid after Free
//  3. Typical usage: defer a.Free() next to the analysis that owns the arena
//
// After Free(), the arena cannot be reused. Create a new arena instead.
func (a *Arena) Free() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generation.Add(1)
	a.unmapLocked(a.chunks)
	a.chunks = nil
	a.current.Store(nil)

	a.stats.ActiveChunks.Store(0)
	a.stats.DedicatedChunks.Store(0)
	a.stats.BytesReserved.Store(0)
	a.stats.BytesUsed.Store(0)
	a.stats.BytesWasted.Store(0)
}

// Reset clears all allocations and releases extra chunks, keeping only the first chunk.
//
// IMPORTANT:
//  1. Do NOT call Reset concurrently with allocations
//  2. All slices allocated before Reset become invalid
//  3. Useful for reusing one arena across the functions of a compilation unit
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generation.Add(1)
	if len(a.chunks) == 0 {
		return
	}

	first := a.chunks[0]
	first.offset.Store(0)
	a.unmapLocked(a.chunks[1:])
	clear(a.chunks[1:])
	a.chunks = a.chunks[:1]
	a.current.Store(first)

	// Update stats - only first chunk remains
	a.stats.ActiveChunks.Store(1)
	a.stats.DedicatedChunks.Store(0)
	sizeU64, _ := conv.IntToUint64(len(first.data))
	a.stats.BytesReserved.Store(sizeU64)

	// Clear usage stats (historical counts like ChunksAllocated/TotalAllocs unchanged)
	a.stats.BytesUsed.Store(0)
	a.stats.BytesWasted.Store(0)
}

func (a *Arena) unmapLocked(chunks []*chunk) {
	for _, c := range chunks {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(len(c.data)))
		}
		if err := c.mapping.Close(); err != nil {
			a.logger.Warn("arena chunk unmap failed",
				"index", c.index,
				"error", err,
			)
		}
	}
}

// Usage returns the memory usage percentage.
func (a *Arena) Usage() float64 {
	stats := a.Stats()
	if stats.BytesReserved == 0 {
		return 0
	}
	return float64(stats.BytesUsed) / float64(stats.BytesReserved) * 100
}

func (a *Arena) String() string {
	stats := a.Stats()
	return fmt.Sprintf(
		"Arena{chunks: %d, reserved: %.2f MB, used: %.2f MB, wasted: %.2f KB, usage: %.1f%%, allocs: %d}",
		stats.ActiveChunks,
		float64(stats.BytesReserved)/(1024*1024),
		float64(stats.BytesUsed)/(1024*1024),
		float64(stats.BytesWasted)/1024,
		a.Usage(),
		stats.TotalAllocs,
	)
}
