// Package testutil provides testing utilities for bitvec.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source and samplers for populating bit vectors
// at a given density.
//
// # Random Populations
//
//	rng := testutil.NewRNG(seed)
//	idx := rng.SampleDensity(10000, 0.01) // ~1% of [0, 10000), ascending
//	idx = rng.SampleExact(10000, 9999)    // exactly 9999 distinct, ascending
package testutil
