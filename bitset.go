package bitvec

import (
	"github.com/bits-and-blooms/bitset"
)

// BitSet returns a bitset.BitSet view sharing the words of f.
// Writes through either value are visible to the other until f is resized
// onto new storage. The view's length is WordCount()*WordBits.
func (f *Fixed) BitSet() *bitset.BitSet {
	return bitset.From(f.words)
}

// PopulateFromBitSet sets every bit that is set in b. All set bits of b must
// be smaller than Len().
func (f *Fixed) PopulateFromBitSet(b *bitset.BitSet) {
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		f.Add(int(i))
	}
}
