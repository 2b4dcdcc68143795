package api

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Status is the health state of a backend endpoint.
type Status int

const (
	StatusHealthy  Status = iota // responding normally
	StatusDegraded               // slow or intermittently failing
	StatusFailing                // consecutive failures, likely down
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusFailing:
		return "failing"
	default:
		return "unknown"
	}
}

// MonitorStats holds monitoring statistics for one endpoint.
type MonitorStats struct {
	Endpoint            string        `json:"endpoint"`
	Status              string        `json:"status"`
	AverageLatency      time.Duration `json:"average_latency"`
	Requests            int           `json:"requests"`
	Failures            int           `json:"failures"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	Throttled           int           `json:"throttled"`
	LastStatusCode      int           `json:"last_status_code,omitempty"`
	LastError           string        `json:"last_error,omitempty"`
	LastSuccessAt       time.Time     `json:"last_success_at,omitzero"`
}

// Monitor tracks latency and failures for one endpoint.
type Monitor struct {
	mu sync.RWMutex

	recentLatencies  []time.Duration
	maxLatencyWindow int

	requests            int
	failures            int
	consecutiveFailures int
	throttled           int
	lastStatusCode      int
	lastError           string
	lastSuccessAt       time.Time

	slowResponseThreshold time.Duration
	degradedErrorRate     float64
	failingAfter          int
}

// NewMonitor creates a monitor with default thresholds.
func NewMonitor() *Monitor {
	return &Monitor{
		recentLatencies:       make([]time.Duration, 0, 100),
		maxLatencyWindow:      100,
		slowResponseThreshold: 3 * time.Second,
		degradedErrorRate:     0.3,
		failingAfter:          5,
	}
}

// RecordResponse records a received HTTP response. 5xx counts as a failure.
func (m *Monitor) RecordResponse(statusCode int, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests++
	m.lastStatusCode = statusCode
	m.recentLatencies = append(m.recentLatencies, latency)
	if len(m.recentLatencies) > m.maxLatencyWindow {
		m.recentLatencies = m.recentLatencies[1:]
	}

	if statusCode == 429 {
		m.throttled++
	}
	if statusCode >= 500 {
		m.failures++
		m.consecutiveFailures++
		m.lastError = "http " + strconv.Itoa(statusCode)
		return
	}
	m.consecutiveFailures = 0
	m.lastSuccessAt = time.Now()
}

// RecordFailure records a request that got no response.
func (m *Monitor) RecordFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests++
	m.failures++
	m.consecutiveFailures++
	m.lastStatusCode = 0
	if err != nil {
		m.lastError = err.Error()
	}
}

// Status returns the current health of the endpoint.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

func (m *Monitor) statusLocked() Status {
	if m.consecutiveFailures >= m.failingAfter {
		return StatusFailing
	}
	if m.requests >= 10 && float64(m.failures)/float64(m.requests) > m.degradedErrorRate {
		return StatusDegraded
	}
	if len(m.recentLatencies) > 10 && m.averageLatencyLocked() > m.slowResponseThreshold {
		return StatusDegraded
	}
	return StatusHealthy
}

func (m *Monitor) averageLatencyLocked() time.Duration {
	if len(m.recentLatencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, lat := range m.recentLatencies {
		total += lat
	}
	return total / time.Duration(len(m.recentLatencies))
}

// Stats returns a snapshot of the endpoint statistics.
func (m *Monitor) Stats() MonitorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MonitorStats{
		Status:              m.statusLocked().String(),
		AverageLatency:      m.averageLatencyLocked(),
		Requests:            m.requests,
		Failures:            m.failures,
		ConsecutiveFailures: m.consecutiveFailures,
		Throttled:           m.throttled,
		LastStatusCode:      m.lastStatusCode,
		LastError:           m.lastError,
		LastSuccessAt:       m.lastSuccessAt,
	}
}

// Monitors holds one Monitor per endpoint.
type Monitors struct {
	mu sync.RWMutex
	m  map[string]*Monitor
}

// NewMonitors creates an empty registry.
func NewMonitors() *Monitors {
	return &Monitors{m: make(map[string]*Monitor)}
}

// For returns the monitor for endpoint, creating it on first use.
func (ms *Monitors) For(endpoint string) *Monitor {
	ms.mu.RLock()
	mon, ok := ms.m[endpoint]
	ms.mu.RUnlock()
	if ok {
		return mon
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if mon, ok = ms.m[endpoint]; ok {
		return mon
	}
	mon = NewMonitor()
	ms.m[endpoint] = mon
	return mon
}

// Snapshot returns stats for every known endpoint, sorted by name.
func (ms *Monitors) Snapshot() []MonitorStats {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]MonitorStats, 0, len(ms.m))
	for name, mon := range ms.m {
		st := mon.Stats()
		st.Endpoint = name
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

// Overall is the worst status across endpoints. An empty registry is healthy.
func (ms *Monitors) Overall() Status {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	worst := StatusHealthy
	for _, mon := range ms.m {
		if s := mon.Status(); s > worst {
			worst = s
		}
	}
	return worst
}
