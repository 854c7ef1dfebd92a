// Package http implements the HTTP handlers of the kpistats API.
//
// Handlers stay thin: they parse and validate the request, delegate to a
// service and render the result. Every failure goes through the shared
// errors.ErrorHandler so clients always receive RFC 7807 problem details.
//
// # Endpoints
//
//	GET /api/stats?start=&stop=&kpi_list=&format=   summary statistics
//	GET /api/health                                 liveness and version
//
// The stats endpoint answers with the ordered JSON object by default. The
// optional format parameter selects csv, table or xlsx output instead.
package http
