// Package health reports whether the study backend is reachable and how
// requests are being resolved.
package health

import (
	"time"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/api"
)

// SystemStatus represents the overall health state of the client.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ProbeResult is the outcome of one background resolution.
type ProbeResult struct {
	At         time.Time         `json:"at"`
	Provenance domain.Provenance `json:"provenance,omitempty"`
	Strategy   string            `json:"strategy,omitempty"`
	Attempts   int               `json:"attempts"`
	Duration   time.Duration     `json:"duration"`
	Error      string            `json:"error,omitempty"`
}

// Report contains the full health report.
type Report struct {
	SystemStatus SystemStatus       `json:"system_status"`
	BaseURL      string             `json:"base_url"`
	Endpoints    []api.MonitorStats `json:"endpoints"`
	LoggedIn     bool               `json:"logged_in"`
	Username     string             `json:"username,omitempty"`
	CacheEntries int64              `json:"cache_entries"`
	LastProbe    *ProbeResult       `json:"last_probe,omitempty"`
}
