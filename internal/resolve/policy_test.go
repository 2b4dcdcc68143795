package resolve

import (
	"testing"
	"time"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second, Multiplier: 2}

	tests := []struct {
		attempt int
		expect  time.Duration
	}{
		{-1, 0},
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{2, 800 * time.Millisecond},
		{4, 3200 * time.Millisecond},
		{5, 5 * time.Second}, // capped
		{60, 5 * time.Second},
	}

	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.expect {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.expect)
		}
	}
}

func TestRetryPolicy_DelayUncapped(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, Multiplier: 3}
	if got := p.Delay(2); got != 900*time.Millisecond {
		t.Errorf("expected 900ms, got %v", got)
	}
}

func TestRetryPolicy_MaxWait(t *testing.T) {
	if got := DefaultRetryPolicy.MaxWait(); got != 600*time.Millisecond {
		t.Errorf("expected 600ms, got %v", got)
	}
	if got := Once.MaxWait(); got != 0 {
		t.Errorf("expected 0 for a single attempt, got %v", got)
	}
}

func TestRetryPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  RetryPolicy
		wantErr bool
	}{
		{"default", DefaultRetryPolicy, false},
		{"once", Once, false},
		{"zero attempts", RetryPolicy{MaxAttempts: 0, Multiplier: 2}, true},
		{"negative delay", RetryPolicy{MaxAttempts: 1, BaseDelay: -time.Second, Multiplier: 2}, true},
		{"shrinking", RetryPolicy{MaxAttempts: 3, Multiplier: 0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryPolicy_WithDefaults(t *testing.T) {
	p := RetryPolicy{BaseDelay: 10 * time.Millisecond}.withDefaults()
	if p.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", p.MaxAttempts)
	}
	if p.Multiplier != 2 {
		t.Errorf("expected multiplier 2, got %g", p.Multiplier)
	}
	if p.BaseDelay != 10*time.Millisecond {
		t.Errorf("expected base delay to be kept, got %v", p.BaseDelay)
	}

	zero := RetryPolicy{MaxAttempts: 2}.withDefaults()
	if zero.BaseDelay != 0 {
		t.Errorf("expected zero base delay to be kept, got %v", zero.BaseDelay)
	}
}
