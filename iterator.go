package bitvec

import (
	"fmt"
	"math/bits"
)

// Iterator walks the set bits of a bit vector in ascending order.
//
// It is forward-only and cannot be restarted. Mutating the vector while
// iterating is undefined.
//
//	for it := f.Iterator(); !it.Done(); it.Advance() {
//	    use(it.Current())
//	}
type Iterator struct {
	words     []uint64
	wordIndex int
	// value holds the bits of words[wordIndex] above current that have not
	// been reported yet, shifted down so bit 0 is current+1.
	value   uint64
	current int
}

func newIterator(words []uint64) *Iterator {
	it := &Iterator{
		words:   words,
		value:   words[0],
		current: -1,
	}
	it.Advance()
	return it
}

// Done reports whether all set bits have been visited.
func (it *Iterator) Done() bool {
	return it.wordIndex >= len(it.words)
}

// Advance moves to the next set bit.
func (it *Iterator) Advance() {
	it.current++
	val := it.value
	for val == 0 {
		it.wordIndex++
		if it.Done() {
			return
		}
		val = it.words[it.wordIndex]
		it.current = it.wordIndex << wordShift
	}
	skip := bits.TrailingZeros64(val)
	it.current += skip
	it.value = val >> uint(skip) >> 1
}

// Current returns the index of the set bit the iterator is positioned at.
func (it *Iterator) Current() int {
	if it.Done() {
		panic(fmt.Errorf("%w: after index %d", ErrIteratorDone, it.current))
	}
	return it.current
}
