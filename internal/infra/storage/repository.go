package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vietddude/studyclient/internal/core/domain"
)

var (
	// ErrCacheMiss is returned when no entry exists for a key
	ErrCacheMiss = errors.New("cache entry not found")
)

// CacheRepository stores copies of successful backend reads.
type CacheRepository interface {
	// Put upserts an entry. A zero StoredAt is set to the current time.
	Put(ctx context.Context, entry domain.CacheEntry) error

	// Get returns the entry for key or ErrCacheMiss
	Get(ctx context.Context, key string) (*domain.CacheEntry, error)

	// DeleteOlderThan removes entries stored before cutoff and returns how many were removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the number of stored entries
	Count(ctx context.Context) (int64, error)
}

// Key builds a cache key from an operation name and its input parts.
func Key(operation string, parts ...string) string {
	if len(parts) == 0 {
		return operation
	}
	return operation + ":" + strings.Join(parts, ":")
}

// SaveJSON marshals v and stores it under key.
func SaveJSON(ctx context.Context, repo CacheRepository, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache entry %s: %w", key, err)
	}
	return repo.Put(ctx, domain.CacheEntry{Key: key, Payload: payload})
}

// LoadJSON reads the entry under key into a T.
func LoadJSON[T any](ctx context.Context, repo CacheRepository, key string) (T, time.Time, error) {
	var v T
	entry, err := repo.Get(ctx, key)
	if err != nil {
		return v, time.Time{}, err
	}
	if err := json.Unmarshal(entry.Payload, &v); err != nil {
		return v, time.Time{}, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return v, entry.StoredAt, nil
}

// Prepare validates entry and fills StoredAt. Implementations call it from Put.
func Prepare(entry *domain.CacheEntry) error {
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return errors.New("cache key is required")
	}
	if len(entry.Payload) == 0 {
		return errors.New("cache payload is required")
	}
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now()
	}
	entry.StoredAt = entry.StoredAt.UTC()
	return nil
}
