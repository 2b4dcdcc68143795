package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/vietddude/studyclient/internal/core/domain"
)

// Requires a running Redis, e.g. STUDYCLIENT_TEST_REDIS_URL=redis://localhost:6379/15
func newTestClient(t *testing.T) *Client {
	t.Helper()
	url := os.Getenv("STUDYCLIENT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("STUDYCLIENT_TEST_REDIS_URL not set")
	}
	c, err := NewClient(Config{URL: url})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSessionStore_RoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	store := c.Sessions("test-" + time.Now().Format("150405.000000"))
	t.Cleanup(func() { _ = store.Clear(ctx) })

	want := domain.Session{Token: "tok", Username: "alice", Source: domain.ProvenanceReal}
	if err := store.Set(ctx, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Token != want.Token || got.Username != want.Username {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, _ = store.Get(ctx)
	if !got.Empty() {
		t.Errorf("expected empty session, got %+v", got)
	}
}

func TestSessionStore_ExpiredNotStored(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	store := c.Sessions("test-expired")

	sess := domain.Session{Token: "tok", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ := store.Get(ctx)
	if !got.Empty() {
		t.Error("expected expired session to be dropped")
	}
}

func TestSessionKey(t *testing.T) {
	if got := sessionKey("default"); got != "studyclient:session:default" {
		t.Errorf("unexpected key %s", got)
	}
}
