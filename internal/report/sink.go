package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/metrics"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/resilience"
)

// Sink persists or publishes a Report.
type Sink interface {
	Name() string
	Write(ctx context.Context, r *Report) error
}

// MultiSink writes to every sink in order. One failing sink does not stop
// the others; all failures are returned together.
type MultiSink struct {
	sinks   []Sink
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewMultiSink bounds each write by timeout (0 = no bound). m may be nil.
func NewMultiSink(timeout time.Duration, m *metrics.Metrics, sinks ...Sink) *MultiSink {
	return &MultiSink{
		sinks:   sinks,
		timeout: timeout,
		metrics: m,
		logger:  slog.Default().With("component", "report"),
	}
}

// Name implements Sink.
func (m *MultiSink) Name() string { return "multi" }

// Len returns the number of wrapped sinks.
func (m *MultiSink) Len() int { return len(m.sinks) }

// Write implements Sink.
func (m *MultiSink) Write(ctx context.Context, r *Report) error {
	var result error
	for _, s := range m.sinks {
		start := time.Now()
		err := resilience.WithTimeout(ctx, m.timeout, s.Name(), func(ctx context.Context) error {
			return s.Write(ctx, r)
		})
		status := "ok"
		if err != nil {
			status = "error"
			result = multierror.Append(result, fmt.Errorf("sink %s: %w", s.Name(), err))
			m.logger.Error("sink write failed", "sink", s.Name(), "error", err)
		} else {
			m.logger.Info("report written", "sink", s.Name(), "elapsed", time.Since(start).Round(time.Millisecond))
		}
		if m.metrics != nil {
			m.metrics.SinkWritesTotal.WithLabelValues(s.Name(), status).Inc()
		}
	}
	return result
}
