package services

import (
	"context"
	"log/slog"
	"time"

	"kpistats/pkg/contracts"
	api "kpistats/pkg/contracts/api/v1"
)

// HealthService reports process health
type HealthService struct {
	sourceURL string
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a health service for a process reading sourceURL
func NewHealthService(sourceURL string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		sourceURL: sourceURL,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Health returns the current health status
func (s *HealthService) Health(ctx context.Context) api.HealthResponse {
	uptime := time.Since(s.startTime).Round(time.Second)
	s.logger.DebugContext(ctx, "health check", slog.Duration("uptime", uptime))

	return api.HealthResponse{
		Status:    "ok",
		Version:   contracts.GetVersionInfo(),
		Uptime:    uptime.String(),
		SourceURL: s.sourceURL,
	}
}
