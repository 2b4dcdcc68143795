package config

import (
	"time"

	"github.com/vietddude/studyclient/internal/infra/api"
	redisclient "github.com/vietddude/studyclient/internal/infra/redis"
	"github.com/vietddude/studyclient/internal/infra/storage/postgres"
	"github.com/vietddude/studyclient/internal/resolve"
)

// Session stores.
const (
	SessionFile   = "file"
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Cache stores.
const (
	CacheNone     = "none"
	CacheMemory   = "memory"
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	API      api.Config         `yaml:"api"`
	Auth     AuthConfig         `yaml:"auth"`
	Session  SessionConfig      `yaml:"session"`
	Cache    CacheConfig        `yaml:"cache"`
	Retry    RetryConfig        `yaml:"retry"`
	Server   ServerConfig       `yaml:"server"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	Logging  LoggingConfig      `yaml:"logging"`
}

// AuthConfig holds login settings.
type AuthConfig struct {
	DevBypass bool `yaml:"dev_bypass"` // admin/admin creates an offline session
}

// SessionConfig selects where the login session is kept.
type SessionConfig struct {
	Store   string `yaml:"store"`   // file, memory, redis
	Path    string `yaml:"path"`    // file store location
	Profile string `yaml:"profile"` // redis key suffix, lets several profiles share one server
}

// CacheConfig selects where successful reads are kept for offline use.
type CacheConfig struct {
	Store     string        `yaml:"store"` // none, memory, sqlite, postgres
	Path      string        `yaml:"path"`  // sqlite file
	Retention time.Duration `yaml:"retention"`
}

// RetryConfig holds the default policy and per-operation overrides.
type RetryConfig struct {
	Default    resolve.RetryPolicy            `yaml:"default"`
	Operations map[string]resolve.RetryPolicy `yaml:"operations"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int           `yaml:"port"`
	ProbeInterval time.Duration `yaml:"probe_interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
