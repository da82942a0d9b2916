package bitvec

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is the cause of panics for bit indices outside [0, Len()).
	ErrIndexOutOfRange = errors.New("bitvec: index out of range")

	// ErrLengthMismatch is the cause of panics when a binary operation is
	// applied to bit vectors of different length.
	ErrLengthMismatch = errors.New("bitvec: length mismatch")

	// ErrInvalidResize is the cause of panics when Resize would not grow the vector.
	ErrInvalidResize = errors.New("bitvec: resize must grow the vector")

	// ErrInvalidLength is the cause of panics for negative lengths.
	ErrInvalidLength = errors.New("bitvec: invalid length")

	// ErrIteratorDone is the cause of panics when Current is called on an exhausted iterator.
	ErrIteratorDone = errors.New("bitvec: iterator is done")
)

// AllocationError indicates that the Allocator could not provide storage.
//
// The allocator's own error can be accessed via errors.Unwrap.
type AllocationError struct {
	Words int
	cause error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("bitvec: allocation of %d words failed: %v", e.Words, e.cause)
}

func (e *AllocationError) Unwrap() error { return e.cause }

func checkIndex(i, length int) {
	if i < 0 || i >= length {
		panic(fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, length))
	}
}

func checkSameLength(a, b int) {
	if a != b {
		panic(fmt.Errorf("%w: %d != %d", ErrLengthMismatch, a, b))
	}
}
