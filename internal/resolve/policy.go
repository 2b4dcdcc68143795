package resolve

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryPolicy defines how often a strategy is attempted and how long to wait between attempts.
type RetryPolicy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultRetryPolicy is used by operations that do not set their own.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   200 * time.Millisecond,
	MaxDelay:    5 * time.Second,
	Multiplier:  2.0,
}

// Once runs a strategy a single time with no backoff.
var Once = RetryPolicy{MaxAttempts: 1, Multiplier: 1}

// Delay returns the wait before retry number attempt (0-based):
// BaseDelay * Multiplier^attempt, capped at MaxDelay when set.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 || p.BaseDelay <= 0 {
		return 0
	}
	delay := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if delay > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(delay)
}

// MaxWait is the total backoff a strategy can spend if every attempt fails.
func (p RetryPolicy) MaxWait() time.Duration {
	var total time.Duration
	for i := 0; i < p.MaxAttempts-1; i++ {
		total += p.Delay(i)
	}
	return total
}

// Validate checks the policy for values that would never terminate or never run.
func (p RetryPolicy) Validate() error {
	var errs []error
	if p.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be >= 1, got %d", p.MaxAttempts))
	}
	if p.BaseDelay < 0 {
		errs = append(errs, fmt.Errorf("base_delay must not be negative, got %s", p.BaseDelay))
	}
	if p.MaxDelay < 0 {
		errs = append(errs, fmt.Errorf("max_delay must not be negative, got %s", p.MaxDelay))
	}
	if p.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("multiplier must be >= 1, got %g", p.Multiplier))
	}
	return errors.Join(errs...)
}

// withDefaults fills zero fields from DefaultRetryPolicy. A zero BaseDelay is kept
// so tests and local strategies can retry without waiting.
func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if p.Multiplier == 0 {
		p.Multiplier = DefaultRetryPolicy.Multiplier
	}
	return p
}
