package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/metrics"
	"github.com/vietddude/studyclient/internal/resolve"
)

const maxResponseBytes = 10 << 20

// Config holds transport settings.
type Config struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 disables
	Burst     int           `yaml:"burst"`
	UserAgent string        `yaml:"user_agent"`
}

// Sessions is the part of the session store the transport needs.
type Sessions interface {
	Get(ctx context.Context) (domain.Session, error)
	Clear(ctx context.Context) error
}

// Transport sends requests to the study backend and classifies failures
// into resolve.Error values.
type Transport struct {
	baseURL    *url.URL
	userAgent  string
	httpClient *http.Client
	sessions   Sessions
	limiter    *rate.Limiter
	monitors   *Monitors

	authMu         sync.Mutex
	onUnauthorized func(ctx context.Context)
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the default tuned client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.httpClient = c }
}

// WithSessions sets the store the bearer token is read from.
func WithSessions(s Sessions) Option {
	return func(t *Transport) { t.sessions = s }
}

// WithUnauthorizedHook is called after a rejected token has been cleared.
func WithUnauthorizedHook(fn func(ctx context.Context)) Option {
	return func(t *Transport) { t.onUnauthorized = fn }
}

// NewTransport creates a transport for cfg.BaseURL.
func NewTransport(cfg Config, opts ...Option) (*Transport, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api base url is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "studyclient/1.0"
	}

	t := &Transport{
		baseURL:   base,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		monitors: NewMonitors(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// BaseURL of the backend.
func (t *Transport) BaseURL() string { return t.baseURL.String() }

// Monitors exposes per-endpoint health.
func (t *Transport) Monitors() *Monitors { return t.monitors }

// Do sends req and decodes a JSON response into out when out is non-nil.
// Every failure is returned as a *resolve.Error.
func (t *Transport) Do(ctx context.Context, req Request, out any) error {
	op := req.op()

	var token string
	if req.Auth {
		tok, err := t.token(ctx, op)
		if err != nil {
			return err
		}
		token = tok
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return &resolve.Error{Class: resolve.Classify(ctx.Err()), Op: op, Err: err}
		}
	}

	httpReq, err := t.newRequest(ctx, req, token)
	if err != nil {
		// Local problems (unreadable file, unmarshalable body) will not improve on retry.
		return &resolve.Error{Class: resolve.ClassValidation, Op: op, Err: err}
	}

	mon := t.monitors.For(req.endpoint())
	start := time.Now()
	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		mon.RecordFailure(err)
		class := resolve.Classify(err)
		if class == resolve.ClassUnknown {
			class = resolve.ClassNetwork
		}
		return &resolve.Error{Class: class, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	latency := time.Since(start)
	if err != nil {
		mon.RecordFailure(err)
		return &resolve.Error{Class: resolve.ClassNetwork, Status: resp.StatusCode, Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	mon.RecordResponse(resp.StatusCode, latency)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			t.clearRejected(ctx, token)
		}
		return &resolve.Error{
			Class:  StatusClass(resp.StatusCode),
			Status: resp.StatusCode,
			Op:     op,
			Detail: parseDetail(body),
			Err:    fmt.Errorf("http %d", resp.StatusCode),
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &resolve.Error{Class: resolve.ClassDecode, Status: resp.StatusCode, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// StatusClass maps an HTTP status code to a failure class.
func StatusClass(code int) resolve.Class {
	switch {
	case code == http.StatusUnauthorized:
		return resolve.ClassUnauthorized
	case code >= 400 && code < 500:
		return resolve.ClassClient
	case code >= 500:
		return resolve.ClassServer
	default:
		return resolve.ClassUnknown
	}
}

func (t *Transport) token(ctx context.Context, op string) (string, error) {
	if t.sessions == nil {
		return "", &resolve.Error{Class: resolve.ClassUnauthorized, Op: op, Detail: "not logged in"}
	}
	sess, err := t.sessions.Get(ctx)
	if err != nil {
		return "", &resolve.Error{Class: resolve.ClassUnauthorized, Op: op, Err: fmt.Errorf("load session: %w", err)}
	}
	if sess.Empty() {
		return "", &resolve.Error{Class: resolve.ClassUnauthorized, Op: op, Detail: "not logged in"}
	}
	if sess.Source.IsSynthetic() {
		// A locally fabricated session is never sent to the backend.
		return "", &resolve.Error{Class: resolve.ClassUnauthorized, Op: op, Detail: "offline session is not accepted by the server"}
	}
	return sess.Token, nil
}

// clearRejected discards the stored session if it still holds the token the
// backend rejected, so concurrent 401s clear it once.
func (t *Transport) clearRejected(ctx context.Context, rejected string) {
	t.authMu.Lock()
	defer t.authMu.Unlock()

	current, err := t.sessions.Get(ctx)
	if err != nil || current.Token != rejected {
		return
	}
	if err := t.sessions.Clear(ctx); err != nil {
		slog.Warn("Failed to clear rejected session", "error", err)
		return
	}
	metrics.SessionClears.Inc()
	slog.Info("Session rejected by server, token cleared", "username", current.Username)

	if t.onUnauthorized != nil {
		t.onUnauthorized(ctx)
	}
}

func (t *Transport) newRequest(ctx context.Context, req Request, token string) (*http.Request, error) {
	u := *t.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + req.Path
	u.RawPath = ""
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	body, contentType, err := req.body()
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}
