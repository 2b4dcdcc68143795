package api

import (
	"errors"
	"testing"
	"time"
)

func TestMonitor_Status(t *testing.T) {
	m := NewMonitor()
	if m.Status() != StatusHealthy {
		t.Errorf("expected healthy, got %s", m.Status())
	}

	for i := 0; i < 5; i++ {
		m.RecordFailure(errors.New("connection refused"))
	}
	if m.Status() != StatusFailing {
		t.Errorf("expected failing after 5 consecutive failures, got %s", m.Status())
	}

	m.RecordResponse(200, 10*time.Millisecond)
	// 5 failures out of 6 requests, but fewer than 10 requests in total
	if m.Status() != StatusHealthy {
		t.Errorf("expected healthy after a success, got %s", m.Status())
	}

	for i := 0; i < 4; i++ {
		m.RecordResponse(200, 10*time.Millisecond)
	}
	// 5 of 10 failed
	if m.Status() != StatusDegraded {
		t.Errorf("expected degraded with 50%% error rate, got %s", m.Status())
	}
}

func TestMonitor_SlowResponses(t *testing.T) {
	m := NewMonitor()
	for i := 0; i < 11; i++ {
		m.RecordResponse(200, 4*time.Second)
	}
	if m.Status() != StatusDegraded {
		t.Errorf("expected degraded for slow endpoint, got %s", m.Status())
	}
	if avg := m.Stats().AverageLatency; avg != 4*time.Second {
		t.Errorf("expected 4s average, got %v", avg)
	}
}

func TestMonitor_LatencyWindow(t *testing.T) {
	m := NewMonitor()
	for i := 0; i < 150; i++ {
		m.RecordResponse(200, 50*time.Millisecond)
	}
	stats := m.Stats()
	if stats.Requests != 150 {
		t.Errorf("expected 150 requests, got %d", stats.Requests)
	}
	if len(m.recentLatencies) != 100 {
		t.Errorf("expected latency window of 100, got %d", len(m.recentLatencies))
	}
}

func TestMonitor_ClientErrorsAreNotFailures(t *testing.T) {
	m := NewMonitor()
	m.RecordResponse(404, time.Millisecond)
	m.RecordResponse(429, time.Millisecond)
	stats := m.Stats()
	if stats.Failures != 0 {
		t.Errorf("expected no failures, got %d", stats.Failures)
	}
	if stats.Throttled != 1 {
		t.Errorf("expected 1 throttled response, got %d", stats.Throttled)
	}
}

func TestMonitors_Overall(t *testing.T) {
	ms := NewMonitors()
	if ms.Overall() != StatusHealthy {
		t.Error("expected empty registry to be healthy")
	}
	ms.For("a").RecordResponse(200, time.Millisecond)
	for i := 0; i < 5; i++ {
		ms.For("b").RecordResponse(500, time.Millisecond)
	}
	if ms.Overall() != StatusFailing {
		t.Errorf("expected failing, got %s", ms.Overall())
	}
	if ms.For("a") != ms.For("a") {
		t.Error("expected the same monitor for the same endpoint")
	}
}
