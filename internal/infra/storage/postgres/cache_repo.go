package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/storage"
)

// CacheRepo implements storage.CacheRepository using PostgreSQL.
type CacheRepo struct {
	db *sqlx.DB
}

// NewCacheRepo creates a repository over an open connection.
func NewCacheRepo(db *sqlx.DB) *CacheRepo {
	return &CacheRepo{db: db}
}

type cacheRow struct {
	Key      string    `db:"cache_key"`
	Payload  []byte    `db:"payload"`
	StoredAt time.Time `db:"stored_at"`
}

// Put upserts an entry.
func (r *CacheRepo) Put(ctx context.Context, entry domain.CacheEntry) error {
	if err := storage.Prepare(&entry); err != nil {
		return err
	}

	query := `
		INSERT INTO response_cache (cache_key, payload, stored_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			stored_at = EXCLUDED.stored_at
	`
	if _, err := r.db.ExecContext(ctx, query, entry.Key, entry.Payload, entry.StoredAt); err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}
	return nil
}

// Get returns the entry for key.
func (r *CacheRepo) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	query := `SELECT cache_key, payload, stored_at FROM response_cache WHERE cache_key = $1`

	var row cacheRow
	if err := r.db.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	return &domain.CacheEntry{Key: row.Key, Payload: row.Payload, StoredAt: row.StoredAt.UTC()}, nil
}

// DeleteOlderThan removes entries stored before cutoff.
func (r *CacheRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM response_cache WHERE stored_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned entries: %w", err)
	}
	return n, nil
}

// Count returns the number of entries.
func (r *CacheRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM response_cache`); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}
