package session

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vietddude/studyclient/internal/core/domain"
)

func signedToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !s.Empty() {
		t.Errorf("expected empty session, got %+v", s)
	}

	first := domain.Session{Token: "a", Username: "alice", Source: domain.ProvenanceReal}
	second := domain.Session{Token: "b", Username: "bob", Source: domain.ProvenanceReal}
	if err := store.Set(ctx, first); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s, err = store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Token != "b" || s.Username != "bob" || s.Source != domain.ProvenanceReal {
		t.Errorf("expected last write to win, got %+v", s)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear should be a no-op, got %v", err)
	}
	s, _ = store.Get(ctx)
	if !s.Empty() {
		t.Errorf("expected empty session after clear, got %+v", s)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	testStore(t, NewFileStore(path))
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	if err := store.Set(context.Background(), domain.Session{Token: "secret"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected 0600, got %o", perm)
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Get(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signedToken(t, "alice", exp)

	got, ok := TokenExpiry(tok)
	if !ok {
		t.Fatal("expected expiry to be found")
	}
	if !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}
	if sub := TokenSubject(tok); sub != "alice" {
		t.Errorf("expected subject alice, got %q", sub)
	}

	if _, ok := TokenExpiry("not-a-jwt"); ok {
		t.Error("expected opaque token to have no expiry")
	}
}

func TestExpiringStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	inner := NewMemoryStore()
	store := WithExpiry(inner)
	store.now = func() time.Time { return now }

	tok := signedToken(t, "alice", now.Add(30*time.Minute))
	if err := store.Set(ctx, domain.Session{Token: tok, Source: domain.ProvenanceReal}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Token != tok {
		t.Fatal("expected valid session to be returned")
	}
	if !s.ExpiresAt.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("expected expiry from token, got %v", s.ExpiresAt)
	}

	now = now.Add(time.Hour)
	s, err = store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !s.Empty() {
		t.Errorf("expected expired session to read as empty, got %+v", s)
	}
	if raw, _ := inner.Get(ctx); !raw.Empty() {
		t.Error("expected expired session to be cleared from the underlying store")
	}
}

func TestExpiringStore_OpaqueToken(t *testing.T) {
	ctx := context.Background()
	store := WithExpiry(NewMemoryStore())
	if err := store.Set(ctx, domain.Session{Token: "opaque"}); err != nil {
		t.Fatal(err)
	}
	s, _ := store.Get(ctx)
	if s.Token != "opaque" {
		t.Error("expected opaque token without expiry to be kept")
	}
}
