// Package conv provides safe integer conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow/underflow
// when converting between Go's int and fixed-width types, or when scaling
// element counts to byte sizes.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
