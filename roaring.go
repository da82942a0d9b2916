package bitvec

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/bitvec/internal/conv"
)

// roaringBatch is the number of values buffered before calling AddMany.
const roaringBatch = 256

// ToRoaring returns a compressed copy of the set bits of f.
// It fails if a set bit does not fit into uint32.
func (f *Fixed) ToRoaring() (*roaring.Bitmap, error) {
	return toRoaring(f.Iterator())
}

// ToRoaring returns a compressed copy of the elements of g.
func (g *Growable) ToRoaring() (*roaring.Bitmap, error) {
	return toRoaring(g.Iterator())
}

func toRoaring(it *Iterator) (*roaring.Bitmap, error) {
	rb := roaring.New()
	buf := make([]uint32, 0, roaringBatch)
	for ; !it.Done(); it.Advance() {
		v, err := conv.IntToUint32(it.Current())
		if err != nil {
			return nil, err
		}
		buf = append(buf, v)
		if len(buf) == cap(buf) {
			rb.AddMany(buf)
			buf = buf[:0]
		}
	}
	rb.AddMany(buf)
	return rb, nil
}

// PopulateFromRoaring sets every bit contained in rb. All values of rb must
// be smaller than Len().
func (f *Fixed) PopulateFromRoaring(rb *roaring.Bitmap) {
	it := rb.Iterator()
	for it.HasNext() {
		f.Add(int(it.Next()))
	}
}
