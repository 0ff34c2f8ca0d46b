package gallerybench

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/gallerybench/model"
)

// MetricsCollector defines an interface for collecting harness metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Engine calls are reported from inside workers, so with WorkerProcess only
// RecordShard and RecordFinalize reach a collector in the parent.
type MetricsCollector interface {
	// RecordTemplate is called after each template creation call.
	RecordTemplate(role model.TemplateRole, duration time.Duration, code model.ReturnCode)

	// RecordSearch is called after each engine search call.
	// k is the candidate list length requested.
	RecordSearch(k int, duration time.Duration, code model.ReturnCode)

	// RecordFinalize is called after each finalization that reached the engine.
	RecordFinalize(duration time.Duration, err error)

	// RecordShard is called after each worker exited.
	RecordShard(action model.Action, status model.ShardStatus, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTemplate(model.TemplateRole, time.Duration, model.ReturnCode) {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, model.ReturnCode)                  {}
func (NoopMetricsCollector) RecordFinalize(time.Duration, error)                                {}
func (NoopMetricsCollector) RecordShard(model.Action, model.ShardStatus, time.Duration)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicMetricsCollector struct {
	TemplateCount      atomic.Int64
	TemplateFailures   atomic.Int64
	TemplateTotalNanos atomic.Int64
	SearchCount        atomic.Int64
	SearchFailures     atomic.Int64
	SearchTotalNanos   atomic.Int64
	FinalizeCount      atomic.Int64
	FinalizeErrors     atomic.Int64
	ShardCount         atomic.Int64
	ShardFailures      atomic.Int64
	ShardNotImpl       atomic.Int64
}

// RecordTemplate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTemplate(_ model.TemplateRole, duration time.Duration, code model.ReturnCode) {
	b.TemplateCount.Add(1)
	b.TemplateTotalNanos.Add(duration.Nanoseconds())
	if code != model.Success {
		b.TemplateFailures.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ int, duration time.Duration, code model.ReturnCode) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if code != model.Success {
		b.SearchFailures.Add(1)
	}
}

// RecordFinalize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFinalize(_ time.Duration, err error) {
	b.FinalizeCount.Add(1)
	if err != nil {
		b.FinalizeErrors.Add(1)
	}
}

// RecordShard implements MetricsCollector.
func (b *BasicMetricsCollector) RecordShard(_ model.Action, status model.ShardStatus, _ time.Duration) {
	b.ShardCount.Add(1)
	switch status {
	case model.StatusFailure:
		b.ShardFailures.Add(1)
	case model.StatusNotImplemented:
		b.ShardNotImpl.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TemplateCount:    b.TemplateCount.Load(),
		TemplateFailures: b.TemplateFailures.Load(),
		TemplateAvgNanos: avg(b.TemplateTotalNanos.Load(), b.TemplateCount.Load()),
		SearchCount:      b.SearchCount.Load(),
		SearchFailures:   b.SearchFailures.Load(),
		SearchAvgNanos:   avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		FinalizeCount:    b.FinalizeCount.Load(),
		FinalizeErrors:   b.FinalizeErrors.Load(),
		ShardCount:       b.ShardCount.Load(),
		ShardFailures:    b.ShardFailures.Load(),
		ShardNotImpl:     b.ShardNotImpl.Load(),
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
	TemplateCount    int64
	TemplateFailures int64
	TemplateAvgNanos int64
	SearchCount      int64
	SearchFailures   int64
	SearchAvgNanos   int64
	FinalizeCount    int64
	FinalizeErrors   int64
	ShardCount       int64
	ShardFailures    int64
	ShardNotImpl     int64
}
