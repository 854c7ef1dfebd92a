// Package services implements the kpistats application layer shared by the
// CLI and the HTTP API.
//
// StatsService runs the sequential pipeline for one query:
//
//	fetch -> filter -> compute
//
// Each step runs in its own span under a kpistats.run span and the run is
// counted in the kpistats metrics. HealthService reports liveness data for
// GET /api/health.
package services
