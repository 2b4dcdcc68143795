package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/studyclient/internal/infra/api"
	"github.com/vietddude/studyclient/internal/infra/session"
	"github.com/vietddude/studyclient/internal/infra/storage"
)

const checkInterval = 5 * time.Second

// Monitor aggregates health status from the transport, session store, cache and prober.
type Monitor struct {
	baseURL   string
	endpoints *api.Monitors
	sessions  session.Store
	cache     storage.CacheRepository
	prober    *Prober
	now       func() time.Time

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport *Report
}

// NewMonitor creates a new health monitor. cache and prober may be nil.
func NewMonitor(
	transport *api.Transport,
	sessions session.Store,
	cache storage.CacheRepository,
	prober *Prober,
) *Monitor {
	return &Monitor{
		baseURL:   transport.BaseURL(),
		endpoints: transport.Monitors(),
		sessions:  sessions,
		cache:     cache,
		prober:    prober,
		now:       time.Now,
	}
}

// CheckHealth builds a report, reusing the previous one for a few seconds.
func (m *Monitor) CheckHealth(ctx context.Context) Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastReport != nil && m.now().Sub(m.lastCheck) < checkInterval {
		return *m.lastReport
	}

	report := Report{
		SystemStatus: StatusHealthy,
		BaseURL:      m.baseURL,
		Endpoints:    m.endpoints.Snapshot(),
	}

	if sess, err := m.sessions.Get(ctx); err == nil && !sess.Empty() {
		report.LoggedIn = true
		report.Username = sess.Username
	}
	if m.cache != nil {
		if n, err := m.cache.Count(ctx); err == nil {
			report.CacheEntries = n
		}
	}
	if m.prober != nil {
		if last, ok := m.prober.Last(); ok {
			report.LastProbe = &last
		}
	}

	report.SystemStatus = evaluate(m.endpoints.Overall(), report.LastProbe)

	m.lastCheck = m.now()
	m.lastReport = &report
	return report
}

// Reprobe runs the prober immediately and drops the cached report.
// It reports false when no prober is configured.
func (m *Monitor) Reprobe(ctx context.Context) (ProbeResult, bool) {
	if m.prober == nil {
		return ProbeResult{}, false
	}
	result := m.prober.Probe(ctx)

	m.mu.Lock()
	m.lastReport = nil
	m.mu.Unlock()
	return result, true
}

// evaluate picks the worst of the endpoint status and the last probe.
func evaluate(endpoints api.Status, probe *ProbeResult) SystemStatus {
	status := StatusHealthy
	switch endpoints {
	case api.StatusFailing:
		return StatusCritical
	case api.StatusDegraded:
		status = StatusDegraded
	}

	if probe == nil {
		return status
	}
	switch {
	case probe.Error != "":
		return StatusCritical
	case !probe.Provenance.IsBackend():
		// Served from cache or synthesized: the backend did not answer.
		status = StatusDegraded
	}
	return status
}
