// Package config loads kpistats configuration.
//
// # Configuration Sources
//
// Values are layered in this order, later sources overriding earlier ones:
//
//	1. Built-in defaults (Default)
//	2. YAML file passed to Load
//	3. Environment variables prefixed with KPISTATS_
//
// A .env file in the working directory is read into the process environment
// before the environment is consulted. Command line flags are applied on top
// by the caller.
//
// # Environment Variables
//
//	KPISTATS_SOURCE_URL=https://kpi.example.com/api/kpis
//	KPISTATS_SOURCE_TIMEOUT=30s
//	KPISTATS_SERVER_PORT=8080
//	KPISTATS_LOGGING_LEVEL=debug
//	KPISTATS_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load("kpistats.yaml")
//	if err != nil {
//	    return err
//	}
package config
