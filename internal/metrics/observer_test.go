package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/resolve"
)

func TestObserver_RecordsResolution(t *testing.T) {
	obs := NewObserver()

	op := resolve.New[string, string]("MetricsTest").
		Retry(resolve.RetryPolicy{MaxAttempts: 2}).
		Strategy("primary", domain.ProvenanceReal, func(context.Context, string) (string, error) {
			return "", &resolve.Error{Class: resolve.ClassServer, Status: 502}
		}).
		Synthesize(func(context.Context, string) string { return "s" }).
		Observe(obs).
		Clock(nil, func(context.Context, time.Duration) error { return nil }).
		MustBuild()

	if _, err := op.Resolve(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(Attempts.WithLabelValues("MetricsTest", "primary", "server")); got != 2 {
		t.Errorf("expected 2 server attempts, got %v", got)
	}
	if got := testutil.ToFloat64(Resolutions.WithLabelValues("MetricsTest", "synthetic")); got != 1 {
		t.Errorf("expected 1 synthetic resolution, got %v", got)
	}
}

func TestObserver_RecordsFailure(t *testing.T) {
	obs := NewObserver()

	op := resolve.New[string, string]("MetricsFailure").
		Retry(resolve.Once).
		Strategy("primary", domain.ProvenanceReal, func(context.Context, string) (string, error) {
			return "", errors.New("boom")
		}).
		Observe(obs).
		MustBuild()

	if _, err := op.Resolve(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if got := testutil.ToFloat64(ResolutionFailures.WithLabelValues("MetricsFailure")); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(Attempts.WithLabelValues("MetricsFailure", "primary", "unknown")); got != 1 {
		t.Errorf("expected 1 unknown attempt, got %v", got)
	}
}
