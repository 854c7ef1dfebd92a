// Package app wires the kpistats HTTP API together and manages its lifecycle.
//
// NewApplication receives its configuration, logger, telemetry and data
// source from the caller, builds the services and mounts them on a chi
// router behind the standard middleware chain:
//
//	RequestID → RealIP → OTel → StructuredLogger → Recoverer → SecurityHeaders → RateLimiter
//
// Run serves until the context is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests within the configured shutdown timeout. The
// package never calls os.Exit; errors go back to the caller.
package app
