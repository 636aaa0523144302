package lbdist

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordEnvelopes is called after the envelope precompute phase.
	// count is the number of envelopes computed.
	RecordEnvelopes(count int, duration time.Duration)

	// RecordBuild is called after each matrix build.
	// pairs is the number of series pairs evaluated, err is nil on success.
	RecordBuild(pairs int, duration time.Duration, err error)

	// RecordSymmetrize is called after a symmetry pass over a square matrix.
	RecordSymmetrize(duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEnvelopes(int, time.Duration)    {}
func (NoopMetricsCollector) RecordBuild(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSymmetrize(time.Duration)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EnvelopesComputed atomic.Int64
	BuildCount        atomic.Int64
	BuildErrors       atomic.Int64
	BuildTotalNanos   atomic.Int64
	PairsComputed     atomic.Int64
	SymmetrizeCount   atomic.Int64
}

// RecordEnvelopes implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEnvelopes(count int, duration time.Duration) {
	b.EnvelopesComputed.Add(int64(count))
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(pairs int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	} else {
		b.PairsComputed.Add(int64(pairs))
	}
}

// RecordSymmetrize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSymmetrize(time.Duration) {
	b.SymmetrizeCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EnvelopesComputed: b.EnvelopesComputed.Load(),
		BuildCount:        b.BuildCount.Load(),
		BuildErrors:       b.BuildErrors.Load(),
		BuildAvgNanos:     b.getAvgBuildNanos(),
		PairsComputed:     b.PairsComputed.Load(),
		SymmetrizeCount:   b.SymmetrizeCount.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgBuildNanos() int64 {
	count := b.BuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.BuildTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EnvelopesComputed int64
	BuildCount        int64
	BuildErrors       int64
	BuildAvgNanos     int64
	PairsComputed     int64
	SymmetrizeCount   int64
}
