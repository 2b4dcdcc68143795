package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/storage"
)

func newMockRepo(t *testing.T) (*CacheRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewCacheRepo(sqlx.NewDb(db, "pgx")), mock
}

func TestCacheRepo_Put(t *testing.T) {
	repo, mock := newMockRepo(t)
	storedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO response_cache (cache_key, payload, stored_at)")).
		WithArgs("ListSubjects", []byte(`[]`), storedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Put(context.Background(), domain.CacheEntry{Key: "ListSubjects", Payload: []byte(`[]`), StoredAt: storedAt})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCacheRepo_Get(t *testing.T) {
	repo, mock := newMockRepo(t)
	storedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	query := regexp.QuoteMeta("SELECT cache_key, payload, stored_at FROM response_cache WHERE cache_key = $1")

	rows := sqlmock.NewRows([]string{"cache_key", "payload", "stored_at"}).
		AddRow("FetchStudySheet:t1", []byte(`{"title":"x"}`), storedAt)
	mock.ExpectQuery(query).WithArgs("FetchStudySheet:t1").WillReturnRows(rows)

	entry, err := repo.Get(context.Background(), "FetchStudySheet:t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(entry.Payload) != `{"title":"x"}` || !entry.StoredAt.Equal(storedAt) {
		t.Errorf("unexpected entry %+v", entry)
	}

	// Not found
	mock.ExpectQuery(query).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"cache_key", "payload", "stored_at"}))
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, storage.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCacheRepo_DeleteOlderThan(t *testing.T) {
	repo, mock := newMockRepo(t)
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM response_cache WHERE stored_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7 deleted, got %d", n)
	}
}

func TestCacheRepo_Count(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM response_cache")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
}

func TestCacheRepo_PutError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO response_cache")).
		WillReturnError(errors.New("connection reset"))

	if err := repo.Put(context.Background(), domain.CacheEntry{Key: "k", Payload: []byte("v")}); err == nil {
		t.Error("expected error")
	}
}

func TestNewDB_RejectsUnknownDriver(t *testing.T) {
	_, err := NewDB(context.Background(), Config{URL: "postgres://localhost/study", Driver: "mysql"})
	if err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}
