package sharky

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting pipeline metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordTransfer is called after each chunk handed to the pipe.
	RecordTransfer(bytes int, duration time.Duration, err error)

	// RecordCandidates is called once per distance when the writer finishes.
	RecordCandidates(distance, count int)

	// RecordLookup is called after each dictionary lookup.
	RecordLookup(hit bool, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTransfer(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCandidates(int, int)                {}
func (NoopMetricsCollector) RecordLookup(bool, time.Duration)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Safe for concurrent use by both workers.
type BasicMetricsCollector struct {
	TransferCount      atomic.Int64
	TransferErrors     atomic.Int64
	TransferBytes      atomic.Int64
	TransferTotalNanos atomic.Int64
	Candidates         atomic.Int64
	LookupCount        atomic.Int64
	LookupHits         atomic.Int64
	LookupTotalNanos   atomic.Int64
}

// RecordTransfer implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTransfer(bytes int, duration time.Duration, err error) {
	b.TransferCount.Add(1)
	b.TransferTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TransferErrors.Add(1)
		return
	}
	b.TransferBytes.Add(int64(bytes))
}

// RecordCandidates implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCandidates(_, count int) {
	b.Candidates.Add(int64(count))
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(hit bool, duration time.Duration) {
	b.LookupCount.Add(1)
	b.LookupTotalNanos.Add(duration.Nanoseconds())
	if hit {
		b.LookupHits.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TransferCount:    b.TransferCount.Load(),
		TransferErrors:   b.TransferErrors.Load(),
		TransferBytes:    b.TransferBytes.Load(),
		TransferAvgNanos: avg(b.TransferTotalNanos.Load(), b.TransferCount.Load()),
		Candidates:       b.Candidates.Load(),
		LookupCount:      b.LookupCount.Load(),
		LookupHits:       b.LookupHits.Load(),
		LookupAvgNanos:   avg(b.LookupTotalNanos.Load(), b.LookupCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TransferCount    int64
	TransferErrors   int64
	TransferBytes    int64
	TransferAvgNanos int64
	Candidates       int64
	LookupCount      int64
	LookupHits       int64
	LookupAvgNanos   int64
}
