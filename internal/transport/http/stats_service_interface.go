package http

import (
	"context"

	"kpistats/internal/services"
	api "kpistats/pkg/contracts/api/v1"
	"kpistats/pkg/contracts/domain"
)

// StatsServiceInterface runs the stats pipeline for one query
type StatsServiceInterface interface {
	Run(ctx context.Context, q services.Query) (domain.Results, error)
}

// HealthServiceInterface reports process health
type HealthServiceInterface interface {
	Health(ctx context.Context) api.HealthResponse
}
