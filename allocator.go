package bitvec

// Allocator provides word storage for bit vectors.
//
// AllocWords must return at least count words. The words need not be zeroed;
// bit vectors clear them before use. Storage is never handed back: its lifetime
// is the allocator's lifetime.
type Allocator interface {
	AllocWords(count int) ([]uint64, error)
}

// HeapAllocator allocates words on the Go heap.
type HeapAllocator struct{}

// AllocWords implements Allocator.
func (HeapAllocator) AllocWords(count int) ([]uint64, error) {
	return make([]uint64, count), nil
}

func allocWords(alloc Allocator, count int) ([]uint64, error) {
	if alloc == nil {
		alloc = HeapAllocator{}
	}
	words, err := alloc.AllocWords(count)
	if err != nil {
		return nil, &AllocationError{Words: count, cause: err}
	}
	return words[:count:count], nil
}
