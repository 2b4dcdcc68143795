package worker

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/storage/memory"
)

func TestPruner_Prune(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCacheRepo()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_ = repo.Put(ctx, domain.CacheEntry{Key: "stale", Payload: []byte("1"), StoredAt: now.Add(-8 * 24 * time.Hour)})
	_ = repo.Put(ctx, domain.CacheEntry{Key: "fresh", Payload: []byte("2"), StoredAt: now.Add(-time.Hour)})

	p := NewPruner(7*24*time.Hour, repo)
	p.now = func() time.Time { return now }

	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("expected 1 remaining, got %d", n)
	}
}

func TestPruner_DisabledReturnsImmediately(t *testing.T) {
	p := NewPruner(0, memory.NewCacheRepo())
	done := make(chan struct{})
	go func() {
		p.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Start to return when retention is disabled")
	}
}

func TestPruner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPruner(time.Hour, memory.NewCacheRepo())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Start to return after cancel")
	}
}
