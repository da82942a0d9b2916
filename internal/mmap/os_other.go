//go:build !unix && !windows

package mmap

// Platforms without anonymous mappings fall back to the Go heap.
func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	return make([]byte, size), func([]byte) error { return nil }, nil
}
