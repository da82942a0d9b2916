package bitvec

import (
	"fmt"
	"iter"
	"math"
	"time"
)

// emptyWord backs iterators over a Growable that has no storage yet.
// Iterators never write to their words.
var emptyWord = []uint64{0}

// Growable is a bit vector without an upper bound.
//
// Storage is allocated on the first Add and its capacity doubles whenever an
// index beyond the current capacity is added. Capacity never shrinks.
// The zero value is an empty set ready to use.
//
// A Growable is not safe for concurrent use.
type Growable struct {
	bits *Fixed
	opts *options
}

// NewGrowable creates an empty Growable. No storage is allocated until the first Add.
func NewGrowable(optFns ...Option) *Growable {
	o := applyOptions(optFns)
	return &Growable{opts: &o}
}

// NewGrowableWithLength creates a Growable with storage for length bits.
func NewGrowableWithLength(length int, alloc Allocator, optFns ...Option) (*Growable, error) {
	g := NewGrowable(optFns...)
	bits, err := New(length, alloc)
	if err != nil {
		return nil, err
	}
	g.bits = bits
	return g, nil
}

func (g *Growable) options() *options {
	if g.opts == nil {
		o := applyOptions(nil)
		g.opts = &o
	}
	return g.opts
}

// Len returns the current capacity in bits.
func (g *Growable) Len() int {
	if g.bits == nil {
		return 0
	}
	return g.bits.Len()
}

// Contains reports whether value is in the set.
func (g *Growable) Contains(value int) bool {
	if !g.inBitsRange(value) {
		return false
	}
	return g.bits.Contains(value)
}

// Add inserts value, growing the storage through alloc if needed.
// value must be in [0, math.MaxInt).
func (g *Growable) Add(value int, alloc Allocator) error {
	if value < 0 || value == math.MaxInt {
		panic(fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, value, math.MaxInt))
	}
	if err := g.ensureCapacity(value, alloc); err != nil {
		return err
	}
	g.bits.Add(value)
	return nil
}

// Union adds every element of other.
func (g *Growable) Union(other *Growable, alloc Allocator) error {
	for it := other.Iterator(); !it.Done(); it.Advance() {
		if err := g.Add(it.Current(), alloc); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes all elements. The capacity is retained.
func (g *Growable) Clear() {
	if g.bits != nil {
		g.bits.Clear()
	}
}

// Iterator returns an iterator over the elements in ascending order.
func (g *Growable) Iterator() *Iterator {
	if g.bits == nil {
		return newIterator(emptyWord)
	}
	return g.bits.Iterator()
}

// All returns an iterator over the elements in ascending order.
func (g *Growable) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for it := g.Iterator(); !it.Done(); it.Advance() {
			if !yield(it.Current()) {
				return
			}
		}
	}
}

func (g *Growable) inBitsRange(value int) bool {
	return g.bits != nil && value >= 0 && value < g.bits.Len()
}

func (g *Growable) ensureCapacity(value int, alloc Allocator) error {
	if g.inBitsRange(value) {
		return nil
	}
	o := g.options()

	oldLength := g.Len()
	newLength := o.initialLength
	if oldLength > 0 {
		newLength = oldLength
	}
	for newLength <= value {
		if newLength > math.MaxInt/2 {
			newLength = value + 1
			break
		}
		newLength *= 2
	}

	start := time.Now()
	var err error
	if g.bits == nil {
		g.bits, err = New(newLength, alloc)
	} else {
		err = g.bits.Resize(newLength, alloc)
	}
	o.metricsCollector.RecordGrowth(oldLength, newLength, time.Since(start), err)
	o.logger.LogGrowth(oldLength, newLength, err)
	return err
}
