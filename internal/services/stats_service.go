package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kpistats/internal/dataprocessing"
	"kpistats/internal/datasource"
	apperrors "kpistats/internal/errors"
	"kpistats/internal/infrastructure"
	"kpistats/pkg/contracts/domain"
)

// Query is one stats request
type Query struct {
	Range domain.DateRange
	KPIs  domain.KPIList
}

// ParseQuery converts raw user input into a Query. An empty start leaves the
// range unbounded below; stop and kpiList are required.
func ParseQuery(start, stop, kpiList string) (Query, error) {
	var q Query

	if strings.TrimSpace(start) != "" {
		t, err := dataprocessing.ParseDate(start)
		if err != nil {
			return q, apperrors.NewAppValidationError("invalid start date").WithContext("start", start)
		}
		q.Range.Start = t
	}

	if strings.TrimSpace(stop) == "" {
		return q, apperrors.NewAppValidationError("stop date is required")
	}
	t, err := dataprocessing.ParseDate(stop)
	if err != nil {
		return q, apperrors.NewAppValidationError("invalid stop date").WithContext("stop", stop)
	}
	q.Range.Stop = t

	q.KPIs = domain.ParseKPIList(kpiList)
	for _, name := range q.KPIs {
		if name == "" {
			return q, apperrors.NewAppValidationError("kpi list contains an empty name").
				WithContext("kpi_list", kpiList)
		}
	}
	return q, nil
}

// StatsService runs the fetch, filter and compute pipeline
type StatsService struct {
	fetcher datasource.Fetcher
	tracer  trace.Tracer
	metrics *infrastructure.StatsMetrics
	logger  *slog.Logger
}

// NewStatsService creates a stats service. A nil telemetry records nothing.
func NewStatsService(fetcher datasource.Fetcher, tel *infrastructure.Telemetry, logger *slog.Logger) (*StatsService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = infrastructure.NoopTelemetry()
	}

	metrics, err := infrastructure.NewStatsMetrics(tel.Meter)
	if err != nil {
		return nil, err
	}

	return &StatsService{
		fetcher: fetcher,
		tracer:  tel.Tracer,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "stats_service"),
	}, nil
}

// Run executes the pipeline for q. An empty payload gives empty results.
func (s *StatsService) Run(ctx context.Context, q Query) (domain.Results, error) {
	ctx, span := s.tracer.Start(ctx, "kpistats.run", trace.WithAttributes(
		attribute.String("kpistats.kpi_list", q.KPIs.String()),
		attribute.String("kpistats.stop", q.Range.Stop.Format(time.DateOnly)),
	))
	defer span.End()

	results, err := s.run(ctx, q)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.metrics.RecordRun(ctx, infrastructure.OutcomeError)
		s.logger.ErrorContext(ctx, "stats run failed", slog.String("error", err.Error()))
		return nil, err
	}

	outcome := infrastructure.OutcomeSuccess
	if len(results) == 0 {
		outcome = infrastructure.OutcomeEmpty
	}
	s.metrics.RecordRun(ctx, outcome)
	s.logger.InfoContext(ctx, "stats computed",
		slog.Int("columns", len(results)),
		slog.String("outcome", outcome))
	return results, nil
}

func (s *StatsService) run(ctx context.Context, q Query) (domain.Results, error) {
	csvText, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	table, err := s.filter(ctx, csvText, q)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "kpistats.compute")
	defer span.End()

	results, err := dataprocessing.ComputeStats(table)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	return results, nil
}

func (s *StatsService) fetch(ctx context.Context) (string, error) {
	ctx, span := s.tracer.Start(ctx, "kpistats.fetch")
	defer span.End()

	start := time.Now()
	csvText, err := s.fetcher.Fetch(ctx)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		infrastructure.RecordError(ctx, err)
		s.metrics.RecordFetch(ctx, infrastructure.OutcomeError, elapsed)
		return "", err
	case csvText == "":
		s.metrics.RecordFetch(ctx, infrastructure.OutcomeEmpty, elapsed)
		s.logger.WarnContext(ctx, "kpi source returned an empty payload")
	default:
		s.metrics.RecordFetch(ctx, infrastructure.OutcomeSuccess, elapsed)
	}

	span.SetAttributes(attribute.Int("kpistats.payload_bytes", len(csvText)))
	s.logger.DebugContext(ctx, "payload fetched",
		slog.Int("bytes", len(csvText)),
		slog.Duration("elapsed", elapsed))
	return csvText, nil
}

func (s *StatsService) filter(ctx context.Context, csvText string, q Query) (*dataprocessing.Table, error) {
	ctx, span := s.tracer.Start(ctx, "kpistats.filter")
	defer span.End()

	table, err := dataprocessing.FilterTable(csvText, q.Range, q.KPIs)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	s.metrics.RecordRowsFiltered(ctx, table.Len())
	span.SetAttributes(
		attribute.Int("kpistats.rows", table.Len()),
		attribute.Int("kpistats.columns", len(table.Names())),
	)
	if dates := table.Dates(); len(dates) > 0 {
		span.SetAttributes(
			attribute.String("kpistats.first_date", dates[0].Format(time.DateOnly)),
			attribute.String("kpistats.last_date", dates[len(dates)-1].Format(time.DateOnly)),
		)
	}
	s.logger.DebugContext(ctx, "table filtered",
		slog.Int("rows", table.Len()),
		slog.Any("columns", table.Names()))
	return table, nil
}
