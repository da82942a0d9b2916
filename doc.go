// Package bitvec provides dense bit vectors for dataflow analysis.
//
// Two types are offered:
//
//   - Fixed holds a fixed number of bits packed into 64-bit words. It supports
//     bulk union, intersection and difference plus "is changed" variants that
//     report whether the destination was modified, which is the termination
//     test of a fixed-point iteration.
//   - Growable is an unbounded set of non-negative integers built on Fixed.
//     Its capacity doubles on demand and never shrinks.
//
// # Storage
//
// Word storage comes from an Allocator. HeapAllocator uses the Go heap; the
// arena package provides a bump allocator whose storage is released all at
// once when the analysis pass ends:
//
//	a, _ := arena.New(arena.DefaultChunkSize)
//	defer a.Free()
//
//	in, _ := bitvec.New(numVars, a)
//	out, _ := bitvec.New(numVars, a)
//
// Vectors never free their words. An allocator failure is reported as an
// *AllocationError.
//
// # Fixed-Point Iteration
//
//	for changed := true; changed; {
//	    changed = false
//	    for _, b := range blocks {
//	        if b.out.UnionIsChanged(b.in) {
//	            changed = true
//	        }
//	    }
//	}
//
// # Iteration
//
// Set bits are visited in ascending order, either with an Iterator or a
// range-over-func sequence:
//
//	for it := v.Iterator(); !it.Done(); it.Advance() {
//	    use(it.Current())
//	}
//
//	for i := range v.All() {
//	    use(i)
//	}
//
// # Contract Violations
//
// Out-of-range indices, length mismatches between operands, shrinking
// resizes and reading a finished iterator are programming errors and panic.
// The panic value is an error wrapping one of ErrIndexOutOfRange,
// ErrLengthMismatch, ErrInvalidResize, ErrInvalidLength or ErrIteratorDone.
//
// # Interoperability
//
// Fixed converts to and from roaring bitmaps (ToRoaring, PopulateFromRoaring)
// and exposes its words as a bits-and-blooms bitset without copying (BitSet).
//
// Neither type is safe for concurrent use.
package bitvec
