package bitvec

import (
	"fmt"
	"iter"
	"math/bits"
)

const (
	// WordBits is the number of bits per storage word.
	WordBits = 64

	wordShift = 6
	wordMask  = WordBits - 1
)

// Fixed is a bit vector with a fixed number of addressable bits.
//
// Bits are packed into 64-bit words obtained from an Allocator. Bulk operations
// work a word at a time. The length only changes through Resize, which never
// shrinks the vector.
//
// A Fixed is not safe for concurrent use.
type Fixed struct {
	length int
	words  []uint64
}

// WordsFor returns the number of words needed to hold length bits.
// At least one word is always used.
func WordsFor(length int) int {
	if length == 0 {
		return 1
	}
	return 1 + (length-1)>>wordShift
}

// New creates a Fixed of the given length with all bits cleared.
func New(length int, alloc Allocator) (*Fixed, error) {
	if length < 0 {
		panic(fmt.Errorf("%w: %d", ErrInvalidLength, length))
	}
	words, err := allocWords(alloc, WordsFor(length))
	if err != nil {
		return nil, err
	}
	f := &Fixed{length: length, words: words}
	f.Clear()
	return f, nil
}

// Clone returns a copy of f backed by fresh storage from alloc.
func (f *Fixed) Clone(alloc Allocator) (*Fixed, error) {
	words, err := allocWords(alloc, WordsFor(f.length))
	if err != nil {
		return nil, err
	}
	c := &Fixed{length: f.length, words: words}
	c.copyWords(f.words)
	return c, nil
}

// CopyFrom overwrites f with the bits of other. Bits of f beyond other's
// words are cleared. other must not be longer than f.
func (f *Fixed) CopyFrom(other *Fixed) {
	if other.length > f.length {
		panic(fmt.Errorf("%w: cannot copy %d bits into %d", ErrLengthMismatch, other.length, f.length))
	}
	f.copyWords(other.words)
}

func (f *Fixed) copyWords(src []uint64) {
	n := copy(f.words, src)
	clear(f.words[n:])
}

// Resize grows f to newLength bits. Set bits are preserved and the new bits
// are clear. A new block is requested from alloc only when the current words
// cannot hold newLength bits; the old block is left to the allocator.
func (f *Fixed) Resize(newLength int, alloc Allocator) error {
	if newLength <= f.length {
		panic(fmt.Errorf("%w: %d -> %d", ErrInvalidResize, f.length, newLength))
	}
	if n := WordsFor(newLength); n > len(f.words) {
		words, err := allocWords(alloc, n)
		if err != nil {
			return err
		}
		old := f.words
		f.words = words
		f.copyWords(old)
	}
	f.length = newLength
	return nil
}

// Len returns the number of addressable bits.
func (f *Fixed) Len() int {
	return f.length
}

// WordCount returns the number of storage words.
func (f *Fixed) WordCount() int {
	return len(f.words)
}

// Contains reports whether bit i is set.
func (f *Fixed) Contains(i int) bool {
	checkIndex(i, f.length)
	return f.words[i>>wordShift]&(uint64(1)<<(uint(i)&wordMask)) != 0
}

// Add sets bit i.
func (f *Fixed) Add(i int) {
	checkIndex(i, f.length)
	f.words[i>>wordShift] |= uint64(1) << (uint(i) & wordMask)
}

// Remove clears bit i.
func (f *Fixed) Remove(i int) {
	checkIndex(i, f.length)
	f.words[i>>wordShift] &^= uint64(1) << (uint(i) & wordMask)
}

// AddAll sets every bit of every storage word, including the padding bits
// past Len() in the last word. Count and iteration observe those bits until
// the next Clear.
func (f *Fixed) AddAll() {
	for i := range f.words {
		f.words[i] = ^uint64(0)
	}
}

// Clear clears every bit.
func (f *Fixed) Clear() {
	clear(f.words)
}

// Union sets every bit that is set in other.
func (f *Fixed) Union(other *Fixed) {
	checkSameLength(f.length, other.length)
	src := other.words[:len(f.words)]
	for i, w := range src {
		f.words[i] |= w
	}
}

// UnionIsChanged is Union and reports whether any bit of f changed.
func (f *Fixed) UnionIsChanged(other *Fixed) bool {
	checkSameLength(f.length, other.length)
	src := other.words[:len(f.words)]
	changed := false
	for i, w := range src {
		old := f.words[i]
		f.words[i] = old | w
		if f.words[i] != old {
			changed = true
		}
	}
	return changed
}

// Intersect clears every bit that is not set in other.
func (f *Fixed) Intersect(other *Fixed) {
	checkSameLength(f.length, other.length)
	src := other.words[:len(f.words)]
	for i, w := range src {
		f.words[i] &= w
	}
}

// IntersectIsChanged is Intersect and reports whether any bit of f changed.
func (f *Fixed) IntersectIsChanged(other *Fixed) bool {
	checkSameLength(f.length, other.length)
	src := other.words[:len(f.words)]
	changed := false
	for i, w := range src {
		old := f.words[i]
		f.words[i] = old & w
		if f.words[i] != old {
			changed = true
		}
	}
	return changed
}

// Subtract clears every bit that is set in other.
func (f *Fixed) Subtract(other *Fixed) {
	checkSameLength(f.length, other.length)
	src := other.words[:len(f.words)]
	for i, w := range src {
		f.words[i] &^= w
	}
}

// IsEmpty reports whether no bit is set.
func (f *Fixed) IsEmpty() bool {
	for _, w := range f.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Equals reports whether f and other have the same bits set.
// Both vectors must have the same length.
func (f *Fixed) Equals(other *Fixed) bool {
	checkSameLength(f.length, other.length)
	src := other.words[:len(f.words)]
	for i, w := range src {
		if f.words[i] != w {
			return false
		}
	}
	return true
}

// Count returns the number of set bits.
func (f *Fixed) Count() int {
	count := 0
	for _, w := range f.words {
		count += bits.OnesCount64(w)
	}
	return count
}

// Iterator returns an iterator positioned at the lowest set bit.
func (f *Fixed) Iterator() *Iterator {
	return newIterator(f.words)
}

// All returns an iterator over the indices of the set bits in ascending order.
func (f *Fixed) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for it := f.Iterator(); !it.Done(); it.Advance() {
			if !yield(it.Current()) {
				return
			}
		}
	}
}
