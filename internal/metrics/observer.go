package metrics

import (
	"context"

	"github.com/vietddude/studyclient/internal/resolve"
)

// Observer records resolver events as Prometheus metrics.
type Observer struct {
	resolve.NopObserver
}

// NewObserver returns a resolver observer backed by the package metrics.
func NewObserver() *Observer {
	return &Observer{}
}

func (*Observer) OnAttempt(_ context.Context, op string, rec resolve.AttemptRecord) {
	Attempts.WithLabelValues(op, rec.Strategy, rec.Outcome()).Inc()
	AttemptLatency.WithLabelValues(op, rec.Strategy).Observe(rec.Duration.Seconds())
}

func (*Observer) OnResolved(_ context.Context, op string, tl resolve.Timeline) {
	Resolutions.WithLabelValues(op, string(tl.Provenance)).Inc()
}

func (*Observer) OnFailed(_ context.Context, op string, _ resolve.Timeline) {
	ResolutionFailures.WithLabelValues(op).Inc()
}
