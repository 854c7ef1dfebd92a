package api

import "kpistats/pkg/contracts"

// HealthResponse is returned by GET /api/health
type HealthResponse struct {
	Status    string                `json:"status"`
	Version   contracts.VersionInfo `json:"version"`
	Uptime    string                `json:"uptime"`
	SourceURL string                `json:"source_url"`
}
