package studyapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/api"
	"github.com/vietddude/studyclient/internal/infra/session"
	"github.com/vietddude/studyclient/internal/infra/storage"
	"github.com/vietddude/studyclient/internal/resolve"
)

// Operation names, used for metrics labels and per-operation retry overrides.
const (
	OpLogin              = "Login"
	OpCurrentUser        = "CurrentUser"
	OpRegister           = "Register"
	OpListSubjects       = "ListSubjects"
	OpListTopics         = "ListTopics"
	OpGetSubject         = "GetSubject"
	OpGetTopic           = "GetTopic"
	OpListContents       = "ListContents"
	OpGetContent         = "GetContent"
	OpRecommendations    = "Recommendations"
	OpGenerateStudySheet = "GenerateStudySheet"
	OpFetchStudySheet    = "FetchStudySheet"
	OpUploadTextbook     = "UploadTextbook"
	OpUpdatePreferences  = "UpdatePreferences"
	OpGetProgress        = "GetProgress"
	OpUpdateProgress     = "UpdateProgress"
	OpGenerateQuestions  = "GenerateQuestions"
	OpEducationSystems   = "EducationSystems"
	OpGrades             = "Grades"
)

// Operations lists every operation name the client resolves.
func Operations() []string {
	return []string{
		OpLogin, OpCurrentUser, OpRegister,
		OpListSubjects, OpListTopics, OpGetSubject, OpGetTopic, OpListContents, OpGetContent,
		OpRecommendations, OpGenerateStudySheet, OpFetchStudySheet, OpUploadTextbook,
		OpUpdatePreferences, OpGetProgress, OpUpdateProgress, OpGenerateQuestions,
		OpEducationSystems, OpGrades,
	}
}

// ErrNotLoggedIn is returned by operations that need a stored session.
var ErrNotLoggedIn = errors.New("not logged in")

// Client is the study backend client. Every call is resolved through an
// ordered chain of strategies so reads degrade to cached or synthetic data
// instead of failing.
type Client struct {
	transport *api.Transport
	sessions  session.Store
	cache     storage.CacheRepository
	validate  *validator.Validate

	devBypass bool
	retry     resolve.RetryPolicy
	overrides map[string]resolve.RetryPolicy
	observers []resolve.Observer
	now       func() time.Time
	sleep     resolve.SleepFunc

	login             *resolve.Operation[domain.Credentials, domain.Token]
	currentUser       *resolve.Operation[struct{}, domain.User]
	register          *resolve.Operation[domain.Registration, domain.User]
	listSubjects      *resolve.Operation[struct{}, []domain.Subject]
	listTopics        *resolve.Operation[string, []domain.Topic]
	getSubject        *resolve.Operation[string, domain.Subject]
	getTopic          *resolve.Operation[string, domain.Topic]
	listContents      *resolve.Operation[ContentQuery, []domain.Content]
	getContent        *resolve.Operation[string, domain.Content]
	recommendations   *resolve.Operation[RecommendationQuery, []domain.Content]
	generateSheet     *resolve.Operation[domain.GenerateRequest, domain.StudySheet]
	fetchSheet        *resolve.Operation[string, domain.StudySheet]
	uploadTextbook    *resolve.Operation[domain.TextbookUpload, domain.Textbook]
	updatePrefs       *resolve.Operation[domain.Preferences, domain.User]
	getProgress       *resolve.Operation[struct{}, []domain.Progress]
	updateProgress    *resolve.Operation[domain.ProgressUpdate, domain.Progress]
	generateQuestions *resolve.Operation[domain.QuestionRequest, []domain.Question]
	educationSystems  *resolve.Operation[struct{}, []domain.EducationSystem]
	grades            *resolve.Operation[string, []domain.Grade]
}

// Option configures a Client.
type Option func(*Client)

// WithCache stores successful reads in repo and serves them when the backend is down.
func WithCache(repo storage.CacheRepository) Option {
	return func(c *Client) { c.cache = repo }
}

// WithDevBypass enables the local admin/admin login. Sessions it creates are
// never sent to the backend.
func WithDevBypass(enabled bool) Option {
	return func(c *Client) { c.devBypass = enabled }
}

// WithRetry sets the default retry policy of every operation.
func WithRetry(p resolve.RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithOperationRetry overrides the retry policy of individual operations by name.
func WithOperationRetry(policies map[string]resolve.RetryPolicy) Option {
	return func(c *Client) {
		for name, p := range policies {
			c.overrides[name] = p
		}
	}
}

// WithObservers adds resolution observers.
func WithObservers(obs ...resolve.Observer) Option {
	return func(c *Client) { c.observers = append(c.observers, obs...) }
}

// WithClock replaces the time source and the backoff sleeper.
func WithClock(now func() time.Time, sleep resolve.SleepFunc) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates a client sending requests through transport. The session store
// must be the one the transport reads tokens from.
func New(transport *api.Transport, sessions session.Store, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}

	c := &Client{
		transport: transport,
		sessions:  sessions,
		validate:  newValidator(),
		retry:     resolve.DefaultRetryPolicy,
		overrides: make(map[string]resolve.RetryPolicy),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	known := make(map[string]bool)
	for _, name := range Operations() {
		known[name] = true
	}
	var errs []error
	for name := range c.overrides {
		if !known[name] {
			errs = append(errs, fmt.Errorf("retry override for unknown operation %q", name))
		}
	}

	c.login = build(&errs, c.loginOperation())
	c.currentUser = build(&errs, c.currentUserOperation())
	c.register = build(&errs, c.registerOperation())
	c.listSubjects = build(&errs, c.listSubjectsOperation())
	c.listTopics = build(&errs, c.listTopicsOperation())
	c.getSubject = build(&errs, c.getSubjectOperation())
	c.getTopic = build(&errs, c.getTopicOperation())
	c.listContents = build(&errs, c.listContentsOperation())
	c.getContent = build(&errs, c.getContentOperation())
	c.recommendations = build(&errs, c.recommendationsOperation())
	c.generateSheet = build(&errs, c.generateSheetOperation())
	c.fetchSheet = build(&errs, c.fetchSheetOperation())
	c.uploadTextbook = build(&errs, c.uploadTextbookOperation())
	c.updatePrefs = build(&errs, c.updatePreferencesOperation())
	c.getProgress = build(&errs, c.getProgressOperation())
	c.updateProgress = build(&errs, c.updateProgressOperation())
	c.generateQuestions = build(&errs, c.generateQuestionsOperation())
	c.educationSystems = build(&errs, c.educationSystemsOperation())
	c.grades = build(&errs, c.gradesOperation())

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("build operations: %w", err)
	}
	return c, nil
}

// Session returns the stored session.
func (c *Client) Session(ctx context.Context) (domain.Session, error) {
	return c.sessions.Get(ctx)
}

func build[In, Out any](errs *[]error, b *resolve.Builder[In, Out]) *resolve.Operation[In, Out] {
	op, err := b.Build()
	if err != nil {
		*errs = append(*errs, err)
	}
	return op
}

// operation starts a builder carrying the client's policy, observers and clock.
func operation[In, Out any](c *Client, name string) *resolve.Builder[In, Out] {
	policy := c.retry
	if p, ok := c.overrides[name]; ok {
		policy = p
	}
	return resolve.New[In, Out](name).
		Retry(policy).
		Observe(c.observers...).
		Clock(c.now, c.sleep)
}

// call sends req and decodes the response into a T.
func call[T any](ctx context.Context, t *api.Transport, req api.Request) (T, error) {
	var out T
	err := t.Do(ctx, req, &out)
	return out, err
}

// offline reports whether the stored session was created locally.
func (c *Client) offline(ctx context.Context) bool {
	sess, err := c.sessions.Get(ctx)
	return err == nil && !sess.Empty() && sess.Source.IsSynthetic()
}

// offlineShortcut answers reads from local data while an offline session is active.
func offlineShortcut[In, Out any](c *Client, fn resolve.SynthesizeFunc[In, Out]) resolve.ShortcutFunc[In, Out] {
	return func(ctx context.Context, in In) (Out, bool) {
		if !c.offline(ctx) {
			var zero Out
			return zero, false
		}
		return fn(ctx, in), true
	}
}

// cacheStrategy serves the last stored copy of a read. It is tried once.
func cacheStrategy[In, Out any](c *Client, key func(In) string, tag func(Out, domain.Provenance) Out) resolve.Strategy[In, Out] {
	once := resolve.Once
	return resolve.Strategy[In, Out]{
		Name:       "cache",
		Provenance: domain.ProvenanceCached,
		Retry:      &once,
		Execute: func(ctx context.Context, in In) (Out, error) {
			v, storedAt, err := storage.LoadJSON[Out](ctx, c.cache, key(in))
			if err != nil {
				return v, err
			}
			slog.Debug("Serving cached response", "key", key(in), "stored_at", storedAt)
			return tag(v, domain.ProvenanceCached), nil
		},
	}
}

// withCache appends the cache strategy when a cache is configured.
func withCache[In, Out any](c *Client, b *resolve.Builder[In, Out], key func(In) string, tag func(Out, domain.Provenance) Out) *resolve.Builder[In, Out] {
	if c.cache == nil {
		return b
	}
	return b.Add(cacheStrategy(c, key, tag))
}

// remember stores a backend result so the cache strategy can serve it later.
func remember[Out any](ctx context.Context, c *Client, key string, res resolve.Result[Out]) {
	if c.cache == nil || !res.Provenance.IsBackend() {
		return
	}
	if err := storage.SaveJSON(ctx, c.cache, key, res.Value); err != nil {
		slog.Warn("Failed to cache response", "key", key, "error", err)
	}
}

// check validates in before any strategy runs.
func (c *Client) check(in any) error {
	if err := c.validate.Struct(in); err != nil {
		return resolve.Invalid(describe(err))
	}
	return nil
}
