package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels used on kpistats counters
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// StatsMetrics are the instruments recorded by the stats pipeline
type StatsMetrics struct {
	fetchTotal    metric.Int64Counter
	fetchDuration metric.Float64Histogram
	rowsFiltered  metric.Int64Histogram
	runsTotal     metric.Int64Counter
}

// NewStatsMetrics registers the pipeline instruments on meter
func NewStatsMetrics(meter metric.Meter) (*StatsMetrics, error) {
	fetchTotal, err := meter.Int64Counter(
		"kpistats.fetch",
		metric.WithDescription("KPI source fetches by outcome"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"kpistats.fetch.duration",
		metric.WithDescription("KPI source fetch latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsFiltered, err := meter.Int64Histogram(
		"kpistats.rows.filtered",
		metric.WithDescription("Rows left after date filtering"),
	)
	if err != nil {
		return nil, err
	}

	runsTotal, err := meter.Int64Counter(
		"kpistats.runs",
		metric.WithDescription("Stats pipeline runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &StatsMetrics{
		fetchTotal:    fetchTotal,
		fetchDuration: fetchDuration,
		rowsFiltered:  rowsFiltered,
		runsTotal:     runsTotal,
	}, nil
}

// RecordFetch records one fetch attempt
func (m *StatsMetrics) RecordFetch(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.fetchTotal.Add(ctx, 1, attrs)
	m.fetchDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordRowsFiltered records the filtered table size
func (m *StatsMetrics) RecordRowsFiltered(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.rowsFiltered.Record(ctx, int64(rows))
}

// RecordRun records the outcome of a whole pipeline run
func (m *StatsMetrics) RecordRun(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.runsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
