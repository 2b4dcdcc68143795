package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/studyclient/internal/infra/storage"
	"github.com/vietddude/studyclient/internal/metrics"
)

// Pruner deletes cached responses older than the retention period.
type Pruner struct {
	retention time.Duration
	repo      storage.CacheRepository
	now       func() time.Time
}

// NewPruner creates a new Pruner worker.
func NewPruner(retention time.Duration, repo storage.CacheRepository) *Pruner {
	return &Pruner{
		retention: retention,
		repo:      repo,
		now:       time.Now,
	}
}

// Start runs the pruner loop until ctx is done.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check at 10% of the retention period, between 1 minute and 1 hour
	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	_, _ = p.Prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = p.Prune(ctx)
		}
	}
}

// Prune removes expired entries once and refreshes the cache size gauge.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.retention)

	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("[Pruner] failed to prune cache", "error", err)
		return 0, err
	}
	if deleted > 0 {
		slog.Info("[Pruner] pruned cache entries", "deleted", deleted, "cutoff", cutoff)
	}

	if n, err := p.repo.Count(ctx); err == nil {
		metrics.CacheEntries.Set(float64(n))
	}
	return deleted, nil
}
