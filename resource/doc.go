// Package resource limits the memory that arenas may reserve.
//
// A Controller enforces a hard byte budget with a weighted semaphore and
// tracks current usage with an atomic counter. Arenas reserve a whole chunk
// before mapping it and release it on Reset or Free:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20, // 64MB for all liveness sets
//	})
//	a, err := arena.New(0, arena.WithMemoryAcquirer(rc))
//
// A nil *Controller is valid and imposes no limit.
package resource
