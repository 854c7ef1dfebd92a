// Package api contains the HTTP API contract of kpistats.
package api

// StatsRequest holds the query parameters of GET /api/stats.
// Dates accept every layout of the date column.
type StatsRequest struct {
	Start   string `json:"start" query:"start" validate:"omitempty,kpidate"`
	Stop    string `json:"stop" query:"stop" validate:"required,kpidate"`
	KPIList string `json:"kpi_list" query:"kpi_list" validate:"required,kpilist"`
}
