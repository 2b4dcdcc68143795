package resolve

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/studyclient/internal/core/domain"
)

// State is a step of a single resolution.
type State int

const (
	StatePending State = iota
	StateAttempting
	StateSucceeded
	StateExhausted
	StateSynthesizing
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	case StateSynthesizing:
		return "synthesizing"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AttemptRecord describes one strategy invocation.
type AttemptRecord struct {
	Strategy string
	Attempt  int           // 1-based within the strategy
	Waited   time.Duration // backoff slept before this attempt
	Start    time.Time
	Duration time.Duration
	Err      error
	Class    Class
	Action   Action
}

// Outcome is "ok" or the failure class.
func (r AttemptRecord) Outcome() string {
	if r.Err == nil {
		return "ok"
	}
	return r.Class.String()
}

// Timeline is the full history of one resolution.
type Timeline struct {
	Operation  string
	Started    time.Time
	Finished   time.Time
	Attempts   []AttemptRecord
	Strategy   string
	Provenance domain.Provenance
	Err        error
}

// Duration of the whole resolution.
func (t Timeline) Duration() time.Duration {
	return t.Finished.Sub(t.Started)
}

// Invocations counts the attempts made against the named strategy.
func (t Timeline) Invocations(strategy string) int {
	n := 0
	for _, a := range t.Attempts {
		if a.Strategy == strategy {
			n++
		}
	}
	return n
}

// Observer receives resolution events. Implementations must be safe for concurrent use.
type Observer interface {
	OnTransition(ctx context.Context, op string, from, to State)
	OnAttempt(ctx context.Context, op string, rec AttemptRecord)
	OnResolved(ctx context.Context, op string, tl Timeline)
	OnFailed(ctx context.Context, op string, tl Timeline)
}

// NopObserver ignores every event. Embed it to implement only part of Observer.
type NopObserver struct{}

func (NopObserver) OnTransition(context.Context, string, State, State) {}
func (NopObserver) OnAttempt(context.Context, string, AttemptRecord)   {}
func (NopObserver) OnResolved(context.Context, string, Timeline)       {}
func (NopObserver) OnFailed(context.Context, string, Timeline)         {}

// LogObserver writes resolution events to slog.
type LogObserver struct {
	NopObserver
	Logger *slog.Logger
}

// NewLogObserver returns an observer logging to logger, or slog.Default when nil.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) OnAttempt(ctx context.Context, op string, rec AttemptRecord) {
	if rec.Err == nil {
		o.Logger.DebugContext(ctx, "Attempt succeeded",
			"operation", op,
			"strategy", rec.Strategy,
			"attempt", rec.Attempt,
			"duration", rec.Duration,
		)
		return
	}
	level := slog.LevelDebug
	if rec.Action != ActionRetry {
		level = slog.LevelWarn
	}
	o.Logger.Log(ctx, level, "Attempt failed",
		"operation", op,
		"strategy", rec.Strategy,
		"attempt", rec.Attempt,
		"class", rec.Class.String(),
		"action", rec.Action.String(),
		"error", rec.Err,
	)
}

func (o *LogObserver) OnTransition(ctx context.Context, op string, from, to State) {
	if to == StateSynthesizing {
		o.Logger.WarnContext(ctx, "All strategies failed, synthesizing result", "operation", op)
	}
}

func (o *LogObserver) OnResolved(ctx context.Context, op string, tl Timeline) {
	o.Logger.DebugContext(ctx, "Resolved",
		"operation", op,
		"strategy", tl.Strategy,
		"provenance", string(tl.Provenance),
		"attempts", len(tl.Attempts),
		"duration", tl.Duration(),
	)
}

func (o *LogObserver) OnFailed(ctx context.Context, op string, tl Timeline) {
	o.Logger.ErrorContext(ctx, "Resolution failed",
		"operation", op,
		"attempts", len(tl.Attempts),
		"duration", tl.Duration(),
		"error", tl.Err,
	)
}
