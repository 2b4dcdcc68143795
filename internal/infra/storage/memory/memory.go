package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/storage"
)

// CacheRepo implements storage.CacheRepository in process memory.
type CacheRepo struct {
	entries map[string]domain.CacheEntry
	mu      sync.RWMutex
}

func NewCacheRepo() *CacheRepo {
	return &CacheRepo{entries: make(map[string]domain.CacheEntry)}
}

func (r *CacheRepo) Put(ctx context.Context, entry domain.CacheEntry) error {
	if err := storage.Prepare(&entry); err != nil {
		return err
	}
	entry.Payload = append([]byte(nil), entry.Payload...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Key] = entry
	return nil
}

func (r *CacheRepo) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	if !ok {
		return nil, storage.ErrCacheMiss
	}
	entry.Payload = append([]byte(nil), entry.Payload...)
	return &entry, nil
}

func (r *CacheRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, entry := range r.entries {
		if entry.StoredAt.Before(cutoff) {
			delete(r.entries, key)
			n++
		}
	}
	return n, nil
}

func (r *CacheRepo) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.entries)), nil
}
