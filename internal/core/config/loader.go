package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"

	"github.com/vietddude/studyclient/internal/resolve"
)

// DefaultBaseURL is where the backend listens in local development.
const DefaultBaseURL = "http://localhost:8003"

// overrides are environment variables applied on top of the file.
type overrides struct {
	APIURL       string `env:"STUDYCLIENT_API_URL"`
	APITimeout   string `env:"STUDYCLIENT_API_TIMEOUT"`
	LogLevel     string `env:"STUDYCLIENT_LOG_LEVEL"`
	LogFormat    string `env:"STUDYCLIENT_LOG_FORMAT"`
	DevBypass    *bool  `env:"STUDYCLIENT_DEV_BYPASS"`
	SessionStore string `env:"STUDYCLIENT_SESSION_STORE"`
	SessionPath  string `env:"STUDYCLIENT_SESSION_PATH"`
	CacheStore   string `env:"STUDYCLIENT_CACHE_STORE"`
	CachePath    string `env:"STUDYCLIENT_CACHE_PATH"`
	RedisURL     string `env:"STUDYCLIENT_REDIS_URL"`
	DatabaseURL  string `env:"STUDYCLIENT_DATABASE_URL"`
	ServerPort   int    `env:"STUDYCLIENT_SERVER_PORT"`
}

// Load reads configuration from a YAML file. An empty path uses defaults only.
// Environment overrides are applied last.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Expand environment variables in the YAML content
		expandedData := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	var o overrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.APIURL != "" {
		cfg.API.BaseURL = o.APIURL
	}
	if o.APITimeout != "" {
		d, err := time.ParseDuration(o.APITimeout)
		if err != nil {
			return fmt.Errorf("STUDYCLIENT_API_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}
	if o.DevBypass != nil {
		cfg.Auth.DevBypass = *o.DevBypass
	}
	if o.SessionStore != "" {
		cfg.Session.Store = o.SessionStore
	}
	if o.SessionPath != "" {
		cfg.Session.Path = o.SessionPath
	}
	if o.CacheStore != "" {
		cfg.Cache.Store = o.CacheStore
	}
	if o.CachePath != "" {
		cfg.Cache.Path = o.CachePath
	}
	if o.RedisURL != "" {
		cfg.Redis.URL = o.RedisURL
	}
	if o.DatabaseURL != "" {
		cfg.Database.URL = o.DatabaseURL
	}
	if o.ServerPort != 0 {
		cfg.Server.Port = o.ServerPort
	}
	return nil
}

func setDefaults(cfg *AppConfig) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = SessionFile
	}
	if cfg.Session.Profile == "" {
		cfg.Session.Profile = "default"
	}
	if cfg.Cache.Store == "" {
		cfg.Cache.Store = CacheSQLite
	}
	if cfg.Cache.Retention == 0 {
		cfg.Cache.Retention = 7 * 24 * time.Hour
	}
	if cfg.Retry.Default == (resolve.RetryPolicy{}) {
		cfg.Retry.Default = resolve.DefaultRetryPolicy
	}
	if cfg.Retry.Default.MaxAttempts == 0 {
		cfg.Retry.Default.MaxAttempts = resolve.DefaultRetryPolicy.MaxAttempts
	}
	if cfg.Retry.Default.Multiplier == 0 {
		cfg.Retry.Default.Multiplier = resolve.DefaultRetryPolicy.Multiplier
	}
	for name, p := range cfg.Retry.Operations {
		if p.MaxAttempts == 0 {
			p.MaxAttempts = cfg.Retry.Default.MaxAttempts
		}
		if p.Multiplier == 0 {
			p.Multiplier = cfg.Retry.Default.Multiplier
		}
		cfg.Retry.Operations[name] = p
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ProbeInterval == 0 {
		cfg.Server.ProbeInterval = time.Minute
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate reports every problem in the configuration.
func (c *AppConfig) Validate() error {
	var errs []error

	if !slices.Contains([]string{SessionFile, SessionMemory, SessionRedis}, c.Session.Store) {
		errs = append(errs, fmt.Errorf("session.store must be file, memory or redis, got %q", c.Session.Store))
	}
	if c.Session.Store == SessionRedis && c.Redis.URL == "" {
		errs = append(errs, errors.New("redis.url is required for the redis session store"))
	}
	if !slices.Contains([]string{CacheNone, CacheMemory, CacheSQLite, CachePostgres}, c.Cache.Store) {
		errs = append(errs, fmt.Errorf("cache.store must be none, memory, sqlite or postgres, got %q", c.Cache.Store))
	}
	if c.Cache.Store == CachePostgres && c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required for the postgres cache"))
	}
	if c.Cache.Retention < 0 {
		errs = append(errs, fmt.Errorf("cache.retention must not be negative, got %s", c.Cache.Retention))
	}
	if err := c.Retry.Default.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("retry.default: %w", err))
	}
	for name, p := range c.Retry.Operations {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("retry.operations.%s: %w", name, err))
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}
