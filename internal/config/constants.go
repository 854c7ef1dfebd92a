package config

import "time"

// Application info
const (
	AppName = "kpistats"

	// EnvPrefix namespaces every environment variable read by Load
	EnvPrefix = "KPISTATS"

	// DotEnvFile is loaded into the environment when present
	DotEnvFile = ".env"
)

// Server defaults
const (
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20
)

// Rate limit defaults
const (
	DefaultRateLimitRPS   = 20
	DefaultRateLimitBurst = 40
)
