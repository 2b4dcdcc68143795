package studyapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/api"
	"github.com/vietddude/studyclient/internal/infra/session"
	"github.com/vietddude/studyclient/internal/resolve"
	"github.com/vietddude/studyclient/internal/synth"
)

const (
	devUsername = "admin"
	devPassword = "admin"
)

func (c *Client) loginOperation() *resolve.Builder[domain.Credentials, domain.Token] {
	token := func(enc api.Encoding) resolve.ExecuteFunc[domain.Credentials, domain.Token] {
		return func(ctx context.Context, in domain.Credentials) (domain.Token, error) {
			req := api.Request{
				Method:   http.MethodPost,
				Path:     "/api/auth/token",
				Encoding: enc,
				Fields:   url.Values{"username": {in.Username}, "password": {in.Password}},
			}
			tok, err := call[domain.Token](ctx, c.transport, req)
			if err == nil && tok.AccessToken == "" {
				err = &resolve.Error{Class: resolve.ClassDecode, Op: "POST /api/auth/token", Err: errors.New("response has no access_token")}
			}
			return tok, err
		}
	}

	b := operation[domain.Credentials, domain.Token](c, OpLogin).
		Strategy("multipart", domain.ProvenanceReal, token(api.EncodingMultipart)).
		Strategy("urlencoded", domain.ProvenanceReal, token(api.EncodingForm))

	if c.devBypass {
		b.Shortcut(func(_ context.Context, in domain.Credentials) (domain.Token, bool) {
			if in.Username != devUsername || in.Password != devPassword {
				return domain.Token{}, false
			}
			return domain.Token{AccessToken: synth.DevToken, TokenType: "bearer"}, true
		})
	}
	return b
}

// Login obtains a token and stores the session. With the development bypass
// enabled, admin/admin creates an offline session without contacting the backend.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Session, error) {
	creds := domain.Credentials{Username: username, Password: password}
	if err := c.check(creds); err != nil {
		return domain.Session{}, err
	}

	res, err := c.login.Resolve(ctx, creds)
	if err != nil {
		return domain.Session{}, err
	}

	var sess domain.Session
	if res.Synthetic() {
		sess = synth.DevSession(username)
		slog.Warn("Development login bypass used, session is offline only", "username", username)
	} else {
		sess = domain.Session{Token: res.Value.AccessToken, Username: username, Source: res.Provenance}
		if exp, ok := session.TokenExpiry(sess.Token); ok {
			sess.ExpiresAt = exp
		}
		// The sub claim names the account the token was issued for.
		if sub := session.TokenSubject(sess.Token); sub != "" {
			sess.Username = sub
		}
	}

	if err := c.sessions.Set(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Logout discards the stored session.
func (c *Client) Logout(ctx context.Context) error {
	return c.sessions.Clear(ctx)
}

func (c *Client) currentUserOperation() *resolve.Builder[struct{}, domain.User] {
	return operation[struct{}, domain.User](c, OpCurrentUser).
		Shortcut(offlineShortcut(c, func(ctx context.Context, _ struct{}) domain.User {
			sess, _ := c.sessions.Get(ctx)
			return synth.DevUser(sess.Username, c.now())
		})).
		Strategy("me", domain.ProvenanceReal, func(ctx context.Context, _ struct{}) (domain.User, error) {
			u, err := call[domain.User](ctx, c.transport, api.Request{Method: http.MethodGet, Path: "/api/auth/me", Auth: true})
			u.Provenance = domain.ProvenanceReal
			return u, err
		})
}

// CurrentUser returns the logged in user.
func (c *Client) CurrentUser(ctx context.Context) (resolve.Result[domain.User], error) {
	if err := c.requireSession(ctx); err != nil {
		return resolve.Result[domain.User]{}, err
	}
	return c.currentUser.Resolve(ctx, struct{}{})
}

func (c *Client) registerOperation() *resolve.Builder[domain.Registration, domain.User] {
	// Account creation is not idempotent: one attempt unless overridden.
	policy := resolve.Once
	if p, ok := c.overrides[OpRegister]; ok {
		policy = p
	}
	return operation[domain.Registration, domain.User](c, OpRegister).
		Retry(policy).
		Strategy("register", domain.ProvenanceReal, func(ctx context.Context, in domain.Registration) (domain.User, error) {
			u, err := call[domain.User](ctx, c.transport, api.Request{
				Method:   http.MethodPost,
				Path:     "/api/auth/register",
				Encoding: api.EncodingJSON,
				Body:     in,
			})
			u.Provenance = domain.ProvenanceReal
			return u, err
		})
}

// Register creates an account with default preferences and logs in with it.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	if reg.Preferences == nil {
		reg.Preferences = domain.DefaultPreferences()
	}
	if err := c.check(reg); err != nil {
		return domain.User{}, err
	}

	res, err := c.register.Resolve(ctx, reg)
	if err != nil {
		return domain.User{}, err
	}
	if _, err := c.Login(ctx, reg.Username, reg.Password); err != nil {
		return res.Value, fmt.Errorf("account created but login failed: %w", err)
	}
	return res.Value, nil
}

func (c *Client) updatePreferencesOperation() *resolve.Builder[domain.Preferences, domain.User] {
	return operation[domain.Preferences, domain.User](c, OpUpdatePreferences).
		Strategy("update", domain.ProvenanceReal, func(ctx context.Context, prefs domain.Preferences) (domain.User, error) {
			u, err := call[domain.User](ctx, c.transport, api.Request{
				Method:   http.MethodPut,
				Path:     "/api/users/me",
				Encoding: api.EncodingJSON,
				Body:     map[string]any{"preferences": prefs},
				Auth:     true,
			})
			u.Provenance = domain.ProvenanceReal
			return u, err
		})
}

// UpdatePreferences replaces the user's preferences. Failures are always returned.
func (c *Client) UpdatePreferences(ctx context.Context, prefs domain.Preferences) (domain.User, error) {
	if len(prefs) == 0 {
		return domain.User{}, resolve.Invalid(errors.New("preferences are required"))
	}
	if err := c.requireSession(ctx); err != nil {
		return domain.User{}, err
	}
	res, err := c.updatePrefs.Resolve(ctx, prefs)
	return res.Value, err
}

// requireSession fails with an unauthorized error when no one is logged in.
func (c *Client) requireSession(ctx context.Context) error {
	sess, err := c.sessions.Get(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess.Empty() {
		return &resolve.Error{Class: resolve.ClassUnauthorized, Detail: "not logged in", Err: ErrNotLoggedIn}
	}
	return nil
}
