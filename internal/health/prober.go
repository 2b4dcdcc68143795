package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/resolve"
)

// SubjectLister is the read the prober resolves.
type SubjectLister interface {
	ListSubjects(ctx context.Context) (resolve.Result[[]domain.Subject], error)
}

// Prober periodically resolves a cheap read to keep the health report current.
type Prober struct {
	client   SubjectLister
	interval time.Duration
	now      func() time.Time

	mu   sync.RWMutex
	last *ProbeResult
}

// NewProber creates a prober running every interval.
func NewProber(client SubjectLister, interval time.Duration) *Prober {
	return &Prober{
		client:   client,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs the probe loop until ctx is done.
func (p *Prober) Start(ctx context.Context) {
	if p.interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Probe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}

// Probe resolves once and records the outcome.
func (p *Prober) Probe(ctx context.Context) ProbeResult {
	start := p.now()
	res, err := p.client.ListSubjects(ctx)

	result := ProbeResult{
		At:         start,
		Provenance: res.Provenance,
		Strategy:   res.Strategy,
		Attempts:   res.Attempts,
		Duration:   p.now().Sub(start),
	}
	if err != nil {
		result.Error = resolve.UserMessage(err)
		slog.Warn("[Prober] probe failed", "error", err)
	} else if !res.Provenance.IsBackend() {
		slog.Warn("[Prober] backend unavailable, served locally", "provenance", res.Provenance, "strategy", res.Strategy)
	}

	p.mu.Lock()
	p.last = &result
	p.mu.Unlock()
	return result
}

// Last returns the most recent probe result.
func (p *Prober) Last() (ProbeResult, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return ProbeResult{}, false
	}
	return *p.last, true
}
