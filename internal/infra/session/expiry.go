package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vietddude/studyclient/internal/core/domain"
)

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// ok is false when the token is not a JWT or carries no expiry.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	t, err := claims.GetExpirationTime()
	if err != nil || t == nil {
		return time.Time{}, false
	}
	return t.Time, true
}

// TokenSubject reads the sub claim, which the backend sets to the username.
func TokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

// ExpiringStore drops sessions whose expiry has passed.
type ExpiringStore struct {
	Store
	now func() time.Time
}

// WithExpiry wraps s so expired sessions read as empty and are cleared.
func WithExpiry(s Store) *ExpiringStore {
	return &ExpiringStore{Store: s, now: time.Now}
}

func (e *ExpiringStore) Get(ctx context.Context) (domain.Session, error) {
	s, err := e.Store.Get(ctx)
	if err != nil || s.Empty() {
		return s, err
	}
	if !s.Expired(e.now()) {
		return s, nil
	}

	slog.Info("Stored session expired", "username", s.Username, "expired_at", s.ExpiresAt)
	if err := e.Store.Clear(ctx); err != nil {
		return domain.Session{}, fmt.Errorf("clear expired session: %w", err)
	}
	return domain.Session{}, nil
}

// Set fills ExpiresAt from the token when the caller left it empty.
func (e *ExpiringStore) Set(ctx context.Context, s domain.Session) error {
	if s.ExpiresAt.IsZero() {
		if exp, ok := TokenExpiry(s.Token); ok {
			s.ExpiresAt = exp
		}
	}
	return e.Store.Set(ctx, s)
}
