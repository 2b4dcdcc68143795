package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"go.uber.org/multierr"
)

// Class is the cause category of a failed attempt.
type Class int

const (
	ClassUnknown Class = iota
	ClassNetwork
	ClassTimeout
	ClassServer
	ClassClient
	ClassUnauthorized
	ClassDecode
	ClassValidation
	ClassCanceled
)

func (c Class) String() string {
	switch c {
	case ClassNetwork:
		return "network"
	case ClassTimeout:
		return "timeout"
	case ClassServer:
		return "server"
	case ClassClient:
		return "client"
	case ClassUnauthorized:
		return "unauthorized"
	case ClassDecode:
		return "decode"
	case ClassValidation:
		return "validation"
	case ClassCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Transports return it so the resolver does not
// have to guess from error strings.
type Error struct {
	Class  Class
	Status int    // HTTP status, 0 when no response was received
	Op     string // e.g. "GET /api/subjects"
	Detail string // human readable message from the backend, if any
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Class.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the single line shown to a user.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error()
}

// Invalid marks err as an input validation failure.
func Invalid(err error) error {
	return &Error{Class: ClassValidation, Err: err}
}

// Classify determines the cause category of err.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}

	var re *Error
	if errors.As(err, &re) {
		return re.Class
	}

	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ClassTimeout
		}
		return ClassNetwork
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ClassDecode
	}

	return ClassUnknown
}

// Action determines how the resolver reacts to a failed attempt.
type Action int

const (
	ActionRetry    Action = iota // attempt the same strategy again after backoff
	ActionFailover               // give up on this strategy, move to the next one
	ActionAbort                  // stop the whole resolution
)

func (a Action) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionFailover:
		return "failover"
	case ActionAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// ActionFor maps a cause class to the resolver's reaction.
func ActionFor(c Class) Action {
	switch c {
	case ClassClient, ClassUnauthorized, ClassDecode:
		return ActionFailover
	case ClassCanceled, ClassValidation:
		return ActionAbort
	default:
		// Network, timeout, 5xx and anything unrecognised
		return ActionRetry
	}
}

// IsRetryable reports whether err should be retried within the same strategy.
func IsRetryable(err error) bool {
	return ActionFor(Classify(err)) == ActionRetry
}

// StrategyFailure is the last cause recorded for one exhausted strategy.
type StrategyFailure struct {
	Strategy string
	Attempts int
	Err      error
}

// ExhaustedError is returned when every strategy failed and no synthesis exists.
type ExhaustedError struct {
	Operation string
	Failures  []StrategyFailure
	Err       error // multierr aggregate of every failure
}

func newExhaustedError(op string, failures []StrategyFailure) *ExhaustedError {
	var merr error
	for _, f := range failures {
		merr = multierr.Append(merr, fmt.Errorf("%s: %w", f.Strategy, f.Err))
	}
	return &ExhaustedError{Operation: op, Failures: failures, Err: merr}
}

func (e *ExhaustedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: no strategies available", e.Operation)
	}
	return fmt.Sprintf("%s: all strategies failed: %v", e.Operation, e.Err)
}

func (e *ExhaustedError) Unwrap() []error {
	return multierr.Errors(e.Err)
}

// Last returns the final failure, which is usually the most relevant to a user.
func (e *ExhaustedError) Last() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[len(e.Failures)-1].Err
}

// UserMessage extracts a single human readable line from err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ex *ExhaustedError
	if errors.As(err, &ex) {
		// Prefer a backend detail from any strategy, latest first.
		for i := len(ex.Failures) - 1; i >= 0; i-- {
			var re *Error
			if errors.As(ex.Failures[i].Err, &re) && re.Detail != "" {
				return re.Detail
			}
		}
		if last := ex.Last(); last != nil {
			return UserMessage(last)
		}
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Message()
	}
	return err.Error()
}
