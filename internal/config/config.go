// Package config loads the API configuration from defaults, an optional YAML file and the environment
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	axonErrors "github.com/toyz/receitas/internal/errors"
)

// Adapters lists the supported HTTP adapters
var Adapters = []string{"gin", "echo", "fiber", "mux"}

// Drivers lists the supported database drivers
var Drivers = []string{"mysql", "sqlite"}

// Config holds application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Prefix          string        `yaml:"prefix"`
	Adapter         string        `yaml:"adapter"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigin      string        `yaml:"cors_origin"`
	CORSCredentials bool          `yaml:"cors_credentials"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	BodyLimit       int64         `yaml:"body_limit"`
}

// DatabaseConfig configures the SQL connection
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	// DSN overrides the fields above when set
	DSN string `yaml:"dsn"`

	ConnectAttempts int           `yaml:"connect_attempts"`
	InitialBackoff  time.Duration `yaml:"initial_backoff"`
	BackoffFactor   float64       `yaml:"backoff_factor"`
}

// JWTConfig configures token signing
type JWTConfig struct {
	Secret            string        `yaml:"secret"`
	ExpiresIn         time.Duration `yaml:"expires_in"`
	RecoveryExpiresIn time.Duration `yaml:"recovery_expires_in"`
	Issuer            string        `yaml:"issuer"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
	File     string `yaml:"file"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			Prefix:          "/api",
			Adapter:         "gin",
			ShutdownTimeout: 30 * time.Second,
			CORSOrigin:      "*",
			RateLimitRPS:    100,
			RateLimitBurst:  200,
			BodyLimit:       1 << 20,
		},
		Database: DatabaseConfig{
			Driver:          "mysql",
			Host:            "localhost",
			Port:            3306,
			User:            "root",
			Name:            "receitas",
			ConnectAttempts: 5,
			InitialBackoff:  2 * time.Second,
			BackoffFactor:   1.5,
		},
		JWT: JWTConfig{
			ExpiresIn:         24 * time.Hour,
			RecoveryExpiresIn: time.Hour,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if any), then the environment.
// The result is not validated; callers apply flag overrides and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, axonErrors.WrapConfigurationError(path, "read", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, axonErrors.WrapConfigurationError(path, "decode", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	env := envReader{lookup: lookup}

	env.str("HOST", &c.Server.Host)
	env.int("PORT", &c.Server.Port)
	env.str("SERVER_PREFIX", &c.Server.Prefix)
	env.str("HTTP_ADAPTER", &c.Server.Adapter)
	env.str("CORS_ORIGIN", &c.Server.CORSOrigin)
	env.bool("CORS_CREDENTIALS", &c.Server.CORSCredentials)
	env.float("RATE_LIMIT_RPS", &c.Server.RateLimitRPS)
	env.int("RATE_LIMIT_BURST", &c.Server.RateLimitBurst)
	env.seconds("SHUTDOWN_TIMEOUT_SECONDS", &c.Server.ShutdownTimeout)
	env.int64("BODY_LIMIT", &c.Server.BodyLimit)

	env.str("DB_DRIVER", &c.Database.Driver)
	env.str("DB_HOST", &c.Database.Host)
	env.int("DB_PORT", &c.Database.Port)
	env.str("DB_USER", &c.Database.User)
	env.str("DB_PASSWORD", &c.Database.Password)
	env.str("DB_NAME", &c.Database.Name)
	env.str("DB_DSN", &c.Database.DSN)

	env.str("JWT_SECRET", &c.JWT.Secret)
	env.duration("JWT_EXPIRES_IN", &c.JWT.ExpiresIn)
	env.duration("JWT_RECOVERY_EXPIRES_IN", &c.JWT.RecoveryExpiresIn)
	env.str("JWT_ISSUER", &c.JWT.Issuer)

	env.str("LOG_LEVEL", &c.Log.Level)
	env.str("LOG_FORMAT", &c.Log.Encoding)
	env.str("LOG_FILE", &c.Log.File)

	env.bool("METRICS_ENABLED", &c.Metrics.Enabled)
	env.str("METRICS_PATH", &c.Metrics.Path)

	return env.errs.ErrorOrNil()
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	errs := axonErrors.NewMultipleErrors()

	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs.Add(axonErrors.NewConfigurationError("JWT_SECRET", "must not be empty").
			WithSuggestions("export JWT_SECRET with a long random value"))
	}
	if !slices.Contains(Adapters, c.Server.Adapter) {
		errs.Add(axonErrors.NewConfigurationError("HTTP_ADAPTER", fmt.Sprintf("unknown adapter %q", c.Server.Adapter)).
			WithSuggestions("use one of: " + strings.Join(Adapters, ", ")))
	}
	if !slices.Contains(Drivers, c.Database.Driver) {
		errs.Add(axonErrors.NewConfigurationError("DB_DRIVER", fmt.Sprintf("unknown driver %q", c.Database.Driver)).
			WithSuggestions("use one of: " + strings.Join(Drivers, ", ")))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs.Add(axonErrors.NewConfigurationError("PORT", fmt.Sprintf("%d is not a valid port", c.Server.Port)))
	}
	if c.Server.Prefix != "" && !strings.HasPrefix(c.Server.Prefix, "/") {
		errs.Add(axonErrors.NewConfigurationError("SERVER_PREFIX", "must start with /"))
	}
	if c.Database.ConnectAttempts < 1 {
		errs.Add(axonErrors.NewConfigurationError("database.connect_attempts", "must be at least 1"))
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		errs.Add(axonErrors.NewConfigurationError("RATE_LIMIT_RPS", "rate limit must not be negative"))
	}
	if c.Server.BodyLimit <= 0 {
		errs.Add(axonErrors.NewConfigurationError("BODY_LIMIT", "must be a positive number of bytes"))
	}

	return errs.ErrorOrNil()
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type envReader struct {
	lookup lookupFunc
	errs   axonErrors.MultipleErrors
}

func (r *envReader) get(key string) (string, bool) {
	value, ok := r.lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func (r *envReader) invalid(key, value, expected string) {
	err := axonErrors.NewConfigurationError(key, fmt.Sprintf("%q is not a valid %s", value, expected))
	err.WithOrigin(axonErrors.Origin{Source: "environment"})
	r.errs.Add(err)
}

func (r *envReader) str(key string, dst *string) {
	if value, ok := r.get(key); ok {
		*dst = value
	}
}

func (r *envReader) int(key string, dst *int) {
	if value, ok := r.get(key); ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			r.invalid(key, value, "integer")
			return
		}
		*dst = n
	}
}

func (r *envReader) int64(key string, dst *int64) {
	if value, ok := r.get(key); ok {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			r.invalid(key, value, "integer")
			return
		}
		*dst = n
	}
}

func (r *envReader) float(key string, dst *float64) {
	if value, ok := r.get(key); ok {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			r.invalid(key, value, "number")
			return
		}
		*dst = f
	}
}

func (r *envReader) bool(key string, dst *bool) {
	if value, ok := r.get(key); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			r.invalid(key, value, "boolean")
			return
		}
		*dst = b
	}
}

// duration accepts Go durations ("24h") and the "7d" day suffix used by JWT_EXPIRES_IN
func (r *envReader) duration(key string, dst *time.Duration) {
	value, ok := r.get(key)
	if !ok {
		return
	}
	d, err := ParseDuration(value)
	if err != nil {
		r.invalid(key, value, "duration")
		return
	}
	*dst = d
}

func (r *envReader) seconds(key string, dst *time.Duration) {
	value, ok := r.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		r.invalid(key, value, "number of seconds")
		return
	}
	*dst = time.Duration(n) * time.Second
}

// ParseDuration parses a Go duration, also accepting a whole number of days ("7d")
func ParseDuration(value string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(value)
}
