// Package config provides centralized configuration for the sorter service
// and CLI. Values come from environment variables (optionally seeded from a
// .env file by the entrypoints), fall back to tagged defaults, and are
// validated once on startup.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Sort     SortConfig
	History  HistoryConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including draining sort jobs.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the chi Timeout middleware deadline (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// SortConfig holds table sorting settings.
type SortConfig struct {
	// DefaultColumn is used when a request names no column. The default is
	// the effective call number column of FOLIO item exports.
	DefaultColumn string `env:"SORT_DEFAULT_COLUMN" default:"item_effective_call_number"`

	// MaxFileSize is the largest accepted upload in bytes (default: 100MB)
	MaxFileSize int64 `env:"SORT_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the number of sort jobs allowed to run at once.
	MaxConcurrent int `env:"SORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a job waits for a free slot.
	MaxWaitTime time.Duration `env:"SORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds one sort job end to end.
	Timeout time.Duration `env:"SORT_TIMEOUT" default:"5m"`
}

// HistoryConfig selects where sort runs are recorded.
type HistoryConfig struct {
	// Backend is one of: memory, postgres, sqlite (default: memory)
	Backend string `env:"HISTORY_BACKEND" default:"memory"`

	// DatabaseURL is the PostgreSQL connection string for the postgres backend.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `env:"HISTORY_SQLITE_PATH" default:"locsort-history.db"`

	// Capacity caps the memory backend (default: 500 runs)
	Capacity int `env:"HISTORY_CAPACITY" default:"500"`

	// ListLimit is how many runs history listings return by default.
	ListLimit int `env:"HISTORY_LIST_LIMIT" default:"50"`

	// Retention is how long runs are kept; 0 keeps them forever.
	Retention time.Duration `env:"HISTORY_RETENTION" default:"720h"`

	// PruneInterval is how often the server deletes runs past Retention.
	PruneInterval time.Duration `env:"HISTORY_PRUNE_INTERVAL" default:"1h"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the per-IP budget (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are honored.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key checks on /api routes.
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys.
	APIKeys []string `env:"API_KEYS"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
