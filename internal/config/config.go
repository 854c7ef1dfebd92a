package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "kpistats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// SourceConfig describes the remote KPI endpoint.
// A zero Timeout means the request is only bounded by its context.
type SourceConfig struct {
	URL     string        `yaml:"url" envconfig:"URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig controls OpenTelemetry tracing and metrics
type TelemetryConfig struct {
	Tracing       bool    `yaml:"tracing" envconfig:"TRACING"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	Metrics       bool    `yaml:"metrics" envconfig:"METRICS"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Override adjusts a loaded configuration before it is validated
type Override func(cfg *Config)

// Load builds the configuration from defaults, an optional YAML file and the
// environment, then applies overrides in order. An empty path skips the file.
func Load(path string, overrides ...Override) (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewConfigError("failed to load "+DotEnvFile, err)
	}

	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and reports the first problem as a CONFIG error
func (c *Config) Validate() error {
	if err := validateSourceURL(c.Source.URL); err != nil {
		return err
	}

	if c.Source.Timeout < 0 {
		return apperrors.NewConfigError("source timeout must not be negative", nil)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.NewConfigError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	if c.Server.ReadTimeout <= 0 {
		return apperrors.NewConfigError("server read timeout must be positive", nil)
	}

	if c.Server.WriteTimeout <= 0 {
		return apperrors.NewConfigError("server write timeout must be positive", nil)
	}

	if c.Server.ShutdownTimeout <= 0 {
		return apperrors.NewConfigError("server shutdown timeout must be positive", nil)
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return apperrors.NewConfigError("rate limit rps and burst must be positive", nil)
	}

	if !oneOf(c.Logging.Level, "debug", "info", "warn", "warning", "error") {
		return apperrors.NewConfigError(fmt.Sprintf("unknown log level %q", c.Logging.Level), nil)
	}

	if !oneOf(c.Logging.Format, "json", "text") {
		return apperrors.NewConfigError(fmt.Sprintf("unknown log format %q", c.Logging.Format), nil)
	}

	if !oneOf(c.Logging.Output, "console", "file", "both") {
		return apperrors.NewConfigError(fmt.Sprintf("unknown log output %q", c.Logging.Output), nil)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return apperrors.NewConfigError("log file path required for file output", nil)
	}

	if !oneOf(c.Telemetry.TraceExporter, "stdout", "none") {
		return apperrors.NewConfigError(fmt.Sprintf("unknown trace exporter %q", c.Telemetry.TraceExporter), nil)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return apperrors.NewConfigError("telemetry sample ratio must be within [0, 1]", nil)
	}

	return nil
}

func validateSourceURL(raw string) error {
	if raw == "" {
		return apperrors.NewConfigError("source url is required", nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return apperrors.NewConfigError("invalid source url", err).WithContext("url", raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewConfigError("source url must be an absolute http(s) url", nil).
			WithContext("url", raw)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL: "http://localhost:8000/api/kpis",
		},
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			MaxHeaderBytes:  DefaultMaxHeaderBytes,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/kpistats.log",
		},
		Telemetry: TelemetryConfig{
			Tracing:       false,
			TraceExporter: "none",
			Metrics:       true,
			SampleRatio:   1,
			Environment:   "development",
		},
	}
}
