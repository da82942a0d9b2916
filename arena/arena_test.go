package arena

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bitvec/resource"
)

func newArena(t testing.TB, chunkSize int, opts ...Option) *Arena {
	t.Helper()
	a, err := New(chunkSize, opts...)
	require.NoError(t, err)
	t.Cleanup(a.Free)
	return a
}

func TestArena_New(t *testing.T) {
	t.Run("default chunk size", func(t *testing.T) {
		a := newArena(t, 0)

		assert.Equal(t, DefaultChunkSize, a.ChunkSize())
		assert.Equal(t, DefaultAlignment, a.alignment)
		assert.NotNil(t, a.current.Load(), "current chunk should not be nil")
		assert.Equal(t, uint32(1), a.Generation())
	})

	t.Run("custom chunk size", func(t *testing.T) {
		a := newArena(t, 4096)
		assert.Equal(t, 4096, a.ChunkSize())
	})

	t.Run("rounds up to power of two", func(t *testing.T) {
		a := newArena(t, 1025)
		assert.Equal(t, 2048, a.ChunkSize())
	})
}

func TestArena_AllocWords(t *testing.T) {
	t.Run("basic allocation", func(t *testing.T) {
		a := newArena(t, 1024)

		words, err := a.AllocWords(10)
		require.NoError(t, err)
		require.Len(t, words, 10)

		for i := range words {
			words[i] = uint64(i) << 32
		}
		for i, w := range words {
			assert.Equal(t, uint64(i)<<32, w)
		}
	})

	t.Run("zero count", func(t *testing.T) {
		a := newArena(t, 1024)

		words, err := a.AllocWords(0)
		require.NoError(t, err)
		assert.Nil(t, words)
	})

	t.Run("alignment", func(t *testing.T) {
		a := newArena(t, 1024)

		// Misalign the bump pointer with odd byte allocations in between
		for _, pad := range []int{1, 3, 5, 7} {
			_, err := a.AllocBytes(pad)
			require.NoError(t, err)

			words, err := a.AllocWords(2)
			require.NoError(t, err)
			ptr := uintptr(unsafe.Pointer(&words[0]))
			assert.Zero(t, ptr%unsafe.Alignof(uint64(0)), "pad=%d ptr=%x not aligned", pad, ptr)
		}
	})

	t.Run("no overlap", func(t *testing.T) {
		a := newArena(t, 256)

		blocks := make([][]uint64, 20)
		for i := range blocks {
			words, err := a.AllocWords(5)
			require.NoError(t, err)
			for j := range words {
				words[j] = uint64(i)
			}
			blocks[i] = words
		}
		for i, words := range blocks {
			for _, w := range words {
				require.Equal(t, uint64(i), w, "block %d was overwritten", i)
			}
		}
	})

	t.Run("larger than chunk", func(t *testing.T) {
		a := newArena(t, 1024)

		// 5_000_000 bits worth of words
		count := 78125
		words, err := a.AllocWords(count)
		require.NoError(t, err)
		require.Len(t, words, count)
		words[count-1] = 42
		assert.Equal(t, uint64(42), words[count-1])

		stats := a.Stats()
		assert.Equal(t, uint64(1), stats.DedicatedChunks)
		assert.Equal(t, uint64(2), stats.ActiveChunks)

		// Regular allocations still use the regular chunk
		_, err = a.AllocWords(4)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), a.Stats().ActiveChunks)
	})
}

func TestArena_AllocBytes(t *testing.T) {
	t.Run("basic allocation", func(t *testing.T) {
		a := newArena(t, 1024)

		slice, err := a.AllocBytes(100)
		require.NoError(t, err)
		assert.Len(t, slice, 100)

		// Fresh chunks are zero-initialized
		for i, b := range slice {
			if b != 0 {
				t.Errorf("byte at index %d not zero: %d", i, b)
			}
		}
	})

	t.Run("zero size", func(t *testing.T) {
		a := newArena(t, 1024)

		slice, err := a.AllocBytes(0)
		require.NoError(t, err)
		assert.Nil(t, slice)
	})

	t.Run("multiple chunks", func(t *testing.T) {
		a := newArena(t, 128)

		for i := 0; i < 10; i++ {
			slice, err := a.AllocBytes(64)
			require.NoError(t, err, "allocation %d failed", i)
			require.NotNil(t, slice)
		}

		stats := a.Stats()
		assert.Greater(t, stats.ChunksAllocated, uint64(1), "expected multiple chunks")
		assert.Zero(t, stats.DedicatedChunks)
	})
}

func TestArena_Stats(t *testing.T) {
	t.Run("initial stats", func(t *testing.T) {
		a := newArena(t, 1024)

		stats := a.Stats()
		assert.Equal(t, uint64(1), stats.ChunksAllocated)
		assert.Equal(t, uint64(1024), stats.BytesReserved)
		assert.Equal(t, uint64(0), stats.BytesUsed)
	})

	t.Run("after allocations", func(t *testing.T) {
		a := newArena(t, 1024)

		_, err := a.AllocBytes(100)
		require.NoError(t, err)
		_, err = a.AllocBytes(200)
		require.NoError(t, err)
		_, err = a.AllocWords(10)
		require.NoError(t, err)

		stats := a.Stats()
		assert.Equal(t, uint64(380), stats.BytesUsed)
		assert.Equal(t, uint64(4), stats.BytesWasted)
		assert.Equal(t, uint64(3), stats.TotalAllocs)
	})
}

func TestArena_Free(t *testing.T) {
	a, err := New(1024)
	require.NoError(t, err)

	_, err = a.AllocBytes(100)
	require.NoError(t, err)
	_, err = a.AllocWords(1000)
	require.NoError(t, err)

	statsBefore := a.Stats()
	assert.NotZero(t, statsBefore.BytesUsed)

	gen := a.Generation()
	a.Free()

	statsAfter := a.Stats()
	assert.Zero(t, statsAfter.ActiveChunks)
	assert.Zero(t, statsAfter.BytesReserved)
	assert.Greater(t, a.Generation(), gen)

	_, err = a.AllocWords(1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = a.AllocWords(10000)
	assert.ErrorIs(t, err, ErrClosed)

	// Reset after Free is a no-op
	a.Reset()
	_, err = a.AllocBytes(1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestArena_Reset(t *testing.T) {
	t.Run("basic reset", func(t *testing.T) {
		a := newArena(t, 1024)

		_, err := a.AllocBytes(100)
		require.NoError(t, err)
		_, err = a.AllocBytes(200)
		require.NoError(t, err)

		allocsBefore := a.Stats().TotalAllocs
		gen := a.Generation()

		a.Reset()

		statsAfter := a.Stats()
		assert.Zero(t, statsAfter.BytesUsed)
		assert.Equal(t, allocsBefore, statsAfter.TotalAllocs, "alloc count should be preserved after reset")
		assert.Equal(t, uint64(1), statsAfter.ActiveChunks)
		assert.Equal(t, gen+1, a.Generation())
	})

	t.Run("reset after multiple chunks", func(t *testing.T) {
		a := newArena(t, 256)

		for i := 0; i < 10; i++ {
			_, err := a.AllocBytes(128)
			require.NoError(t, err)
		}
		_, err := a.AllocWords(1024)
		require.NoError(t, err)

		assert.Greater(t, a.Stats().ActiveChunks, uint64(1), "expected multiple chunks before reset")

		a.Reset()

		statsAfter := a.Stats()
		assert.Equal(t, uint64(1), statsAfter.ActiveChunks)
		assert.Zero(t, statsAfter.DedicatedChunks)
		assert.Equal(t, uint64(256), statsAfter.BytesReserved)

		// Arena is usable again
		words, err := a.AllocWords(8)
		require.NoError(t, err)
		assert.Len(t, words, 8)
	})
}

func TestArena_Usage(t *testing.T) {
	a := newArena(t, 1000)

	assert.LessOrEqual(t, a.Usage(), 1.0, "initial usage should be near 0%%")

	_, err := a.AllocBytes(500)
	require.NoError(t, err)

	usage := a.Usage()
	assert.InDelta(t, 50.0, usage, 5.0)
	assert.Contains(t, a.String(), "allocs: 1")
}

func TestArena_MemoryAcquirer(t *testing.T) {
	t.Run("chunks are reserved and released", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 4096})
		a, err := New(1024, WithMemoryAcquirer(rc))
		require.NoError(t, err)
		assert.Equal(t, int64(1024), rc.MemoryUsage())

		for i := 0; i < 3; i++ {
			_, err = a.AllocBytes(1024)
			require.NoError(t, err)
		}
		assert.Equal(t, int64(3072), rc.MemoryUsage())

		a.Reset()
		assert.Equal(t, int64(1024), rc.MemoryUsage())

		a.Free()
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("limit exceeded", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 2048})
		a := newArena(t, 1024, WithMemoryAcquirer(rc))

		_, err := a.AllocWords(128) // fills the first chunk
		require.NoError(t, err)
		_, err = a.AllocWords(128) // second chunk
		require.NoError(t, err)

		_, err = a.AllocWords(1)
		assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)

		// Oversized requests are checked against the same budget
		_, err = a.AllocWords(1 << 20)
		assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	})

	t.Run("canceled context aborts the wait", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1024})
		a := newArena(t, 1024, WithMemoryAcquirer(rc))

		_, err := a.AllocWords(128)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = a.AllocWordsContext(ctx, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestArena_Concurrent(t *testing.T) {
	a := newArena(t, DefaultChunkSize)

	const goroutines = 100
	const allocsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < allocsPerGoroutine; j++ {
				words, err := a.AllocWords(16)
				if err != nil {
					t.Error(err)
					return
				}
				words[0] = uint64(j)
				runtime.KeepAlive(words)
			}
		}()
	}

	wg.Wait()

	stats := a.Stats()
	assert.Equal(t, uint64(goroutines*allocsPerGoroutine), stats.TotalAllocs)
}

func BenchmarkArena_AllocWords(b *testing.B) {
	counts := []int{1, 16, 64, 1024}

	for _, count := range counts {
		b.Run(fmt.Sprintf("words=%d", count), func(b *testing.B) {
			a := newArena(b, DefaultChunkSize)

			b.ReportAllocs()
			for i := 0; b.Loop(); i++ {
				if i%1000 == 0 {
					a.Reset()
				}
				if _, err := a.AllocWords(count); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkArena_vs_Make(b *testing.B) {
	b.Run("arena", func(b *testing.B) {
		a := newArena(b, DefaultChunkSize)

		b.ReportAllocs()
		for i := 0; b.Loop(); i++ {
			if i%10000 == 0 {
				a.Reset()
			}
			_, _ = a.AllocWords(16)
		}
	})

	b.Run("make", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			s := make([]uint64, 16)
			runtime.KeepAlive(s)
		}
	})
}
