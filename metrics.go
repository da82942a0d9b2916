package bitvec

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting growth metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordGrowth is called after a Growable changed (or failed to change)
	// its capacity. err is nil if the new storage was obtained.
	RecordGrowth(oldLength, newLength int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

// RecordGrowth implements MetricsCollector.
func (NoopMetricsCollector) RecordGrowth(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// It is safe to share one collector between Growables used on different goroutines.
type BasicMetricsCollector struct {
	GrowthCount      atomic.Int64
	GrowthErrors     atomic.Int64
	GrowthTotalNanos atomic.Int64
	MaxLength        atomic.Int64
}

// RecordGrowth implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrowth(_, newLength int, duration time.Duration, err error) {
	b.GrowthCount.Add(1)
	b.GrowthTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GrowthErrors.Add(1)
		return
	}
	n := int64(newLength)
	for {
		cur := b.MaxLength.Load()
		if n <= cur || b.MaxLength.CompareAndSwap(cur, n) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		GrowthCount:    b.GrowthCount.Load(),
		GrowthErrors:   b.GrowthErrors.Load(),
		GrowthAvgNanos: b.getAvgGrowthNanos(),
		MaxLength:      b.MaxLength.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgGrowthNanos() int64 {
	count := b.GrowthCount.Load()
	if count == 0 {
		return 0
	}
	return b.GrowthTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	GrowthCount    int64
	GrowthErrors   int64
	GrowthAvgNanos int64
	MaxLength      int64
}
