package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/studyclient/internal/core/config"
	"github.com/vietddude/studyclient/internal/core/worker"
	"github.com/vietddude/studyclient/internal/health"
	"github.com/vietddude/studyclient/internal/infra/api"
	redisclient "github.com/vietddude/studyclient/internal/infra/redis"
	"github.com/vietddude/studyclient/internal/infra/session"
	"github.com/vietddude/studyclient/internal/infra/storage"
	"github.com/vietddude/studyclient/internal/infra/storage/memory"
	"github.com/vietddude/studyclient/internal/infra/storage/postgres"
	"github.com/vietddude/studyclient/internal/infra/storage/sqlite"
	"github.com/vietddude/studyclient/internal/metrics"
	"github.com/vietddude/studyclient/internal/resolve"
	"github.com/vietddude/studyclient/internal/studyapi"
)

// App wires the study client together with its stores and background workers.
type App struct {
	Client    *studyapi.Client
	Transport *api.Transport
	Sessions  session.Store
	Cache     storage.CacheRepository // nil when caching is disabled

	cfg          *config.AppConfig
	pruner       *worker.Pruner
	prober       *health.Prober
	healthMon    *health.Monitor
	healthServer *health.Server
	closers      []func() error
	log          *slog.Logger
}

// Option configures an App.
type Option func(*options)

type options struct {
	onUnauthorized func(ctx context.Context)
	sessions       session.Store
	cache          storage.CacheRepository
	clientOpts     []studyapi.Option
}

// WithUnauthorizedHook is called once each time the backend rejects the stored token.
func WithUnauthorizedHook(fn func(ctx context.Context)) Option {
	return func(o *options) { o.onUnauthorized = fn }
}

// WithSessionStore replaces the configured session store.
func WithSessionStore(s session.Store) Option {
	return func(o *options) { o.sessions = s }
}

// WithCacheRepository replaces the configured cache.
func WithCacheRepository(repo storage.CacheRepository) Option {
	return func(o *options) { o.cache = repo }
}

// WithClientOptions appends options passed to the study client.
func WithClientOptions(opts ...studyapi.Option) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// New builds the application from configuration. Close releases what New opened.
func New(ctx context.Context, cfg *config.AppConfig, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{cfg: cfg, log: slog.Default()}

	sessions := o.sessions
	if sessions == nil {
		var err error
		if sessions, err = app.openSessions(); err != nil {
			app.Close()
			return nil, err
		}
	}
	app.Sessions = sessions

	cache := o.cache
	if cache == nil {
		var err error
		if cache, err = app.openCache(ctx); err != nil {
			app.Close()
			return nil, err
		}
	}
	app.Cache = cache

	transportOpts := []api.Option{api.WithSessions(sessions)}
	if o.onUnauthorized != nil {
		transportOpts = append(transportOpts, api.WithUnauthorizedHook(o.onUnauthorized))
	}
	transport, err := api.NewTransport(cfg.API, transportOpts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("create transport: %w", err)
	}
	app.Transport = transport

	clientOpts := []studyapi.Option{
		studyapi.WithDevBypass(cfg.Auth.DevBypass),
		studyapi.WithRetry(cfg.Retry.Default),
		studyapi.WithOperationRetry(cfg.Retry.Operations),
		studyapi.WithObservers(resolve.NewLogObserver(app.log), metrics.NewObserver()),
	}
	if cache != nil {
		clientOpts = append(clientOpts, studyapi.WithCache(cache))
	}
	client, err := studyapi.New(transport, sessions, append(clientOpts, o.clientOpts...)...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}
	app.Client = client

	if cfg.Auth.DevBypass {
		app.log.Warn("Development login bypass enabled, admin/admin works offline")
	}

	if cache != nil {
		app.pruner = worker.NewPruner(cfg.Cache.Retention, cache)
	}
	app.prober = health.NewProber(client, cfg.Server.ProbeInterval)
	app.healthMon = health.NewMonitor(transport, sessions, cache, app.prober)
	app.healthServer = health.NewServer(app.healthMon, cfg.Server.Port)

	return app, nil
}

func (a *App) openSessions() (session.Store, error) {
	switch a.cfg.Session.Store {
	case config.SessionMemory:
		a.log.Info("Using in-memory session store")
		return session.WithExpiry(session.NewMemoryStore()), nil
	case config.SessionRedis:
		a.log.Info("Using Redis session store", "profile", a.cfg.Session.Profile)
		rc, err := redisclient.NewClient(a.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, rc.Close)
		return session.WithExpiry(rc.Sessions(a.cfg.Session.Profile)), nil
	default:
		path := a.cfg.Session.Path
		if path == "" {
			path = session.DefaultPath()
		}
		a.log.Debug("Using file session store", "path", path)
		return session.WithExpiry(session.NewFileStore(path)), nil
	}
}

func (a *App) openCache(ctx context.Context) (storage.CacheRepository, error) {
	switch a.cfg.Cache.Store {
	case config.CacheNone:
		a.log.Info("Response cache disabled")
		return nil, nil
	case config.CacheMemory:
		a.log.Info("Using in-memory response cache")
		return memory.NewCacheRepo(), nil
	case config.CachePostgres:
		a.log.Info("Using PostgreSQL response cache")
		db, err := postgres.NewDB(ctx, a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return postgres.NewCacheRepo(db.DB), nil
	default:
		path := a.cfg.Cache.Path
		if path == "" {
			path = sqlite.DefaultPath()
		}
		a.log.Debug("Using SQLite response cache", "path", path)
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
}

// Start launches the health server, the prober and the cache pruner.
// It returns immediately; the workers stop when ctx is done.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	a.log.Info("Starting backend prober", "interval", a.cfg.Server.ProbeInterval)
	go a.prober.Start(ctx)

	if a.pruner != nil {
		a.log.Info("Starting cache pruner", "retention", a.cfg.Cache.Retention)
		go a.pruner.Start(ctx)
	}

	return nil
}

// Stop shuts the health server down.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping study client...")
	return a.healthServer.Stop(ctx)
}

// Close releases stores opened by New.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Health returns the current health report.
func (a *App) Health(ctx context.Context) health.Report {
	return a.healthMon.CheckHealth(ctx)
}

// Probe resolves subjects once and records the outcome for health reports.
func (a *App) Probe(ctx context.Context) health.ProbeResult {
	return a.prober.Probe(ctx)
}

// RetryPolicy returns the default retry policy operations run with.
func (a *App) RetryPolicy() resolve.RetryPolicy {
	return a.cfg.Retry.Default
}

// HealthHandler exposes the health routes without starting a listener.
func (a *App) HealthHandler() http.Handler {
	return a.healthServer.Handler()
}

// PruneCache deletes expired cache entries once.
func (a *App) PruneCache(ctx context.Context) (int64, error) {
	if a.pruner == nil {
		return 0, errors.New("response cache is disabled")
	}
	return a.pruner.Prune(ctx)
}
