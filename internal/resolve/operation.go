package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/vietddude/studyclient/internal/core/domain"
)

const tracerName = "github.com/vietddude/studyclient/internal/resolve"

// Strategy names reported for results that did not come from a strategy.
const (
	ShortcutStrategy  = "shortcut"
	SynthesisStrategy = "synthesis"
)

// ExecuteFunc performs one attempt of a strategy.
type ExecuteFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

// SynthesizeFunc builds a local result. It cannot fail.
type SynthesizeFunc[In, Out any] func(ctx context.Context, in In) Out

// ShortcutFunc answers locally before any strategy runs when ok is true.
type ShortcutFunc[In, Out any] func(ctx context.Context, in In) (out Out, ok bool)

// KeyFunc returns the deduplication key for an input. An empty key disables dedupe for that call.
type KeyFunc[In any] func(in In) string

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Strategy is one way to obtain an operation's result.
type Strategy[In, Out any] struct {
	Name       string
	Provenance domain.Provenance // tag applied on success, defaults to real
	Retry      *RetryPolicy      // overrides the operation policy when set
	Execute    ExecuteFunc[In, Out]
}

// Result is a resolved value and where it came from.
type Result[Out any] struct {
	Value      Out
	Provenance domain.Provenance
	Strategy   string
	Attempts   int
	Timeline   Timeline
}

// Synthetic reports whether the value was generated locally.
func (r Result[Out]) Synthetic() bool {
	return r.Provenance.IsSynthetic()
}

// Operation resolves a logical request through an ordered list of strategies.
// It is safe for concurrent use.
type Operation[In, Out any] struct {
	name       string
	policy     RetryPolicy
	strategies []Strategy[In, Out]
	synth      SynthesizeFunc[In, Out]
	shortcut   ShortcutFunc[In, Out]
	key        KeyFunc[In]
	observers  []Observer

	group  singleflight.Group
	sleep  SleepFunc
	now    func() time.Time
	tracer trace.Tracer
}

// Name of the operation.
func (o *Operation[In, Out]) Name() string { return o.name }

// Strategies lists strategy names in the order they are attempted.
func (o *Operation[In, Out]) Strategies() []string {
	names := make([]string, len(o.strategies))
	for i, s := range o.strategies {
		names[i] = s.Name
	}
	return names
}

// Resolve runs the strategies in order until one succeeds, falling back to
// synthesis when every strategy is exhausted.
//
// With a dedupe key, concurrent calls with the same key share one resolution
// and its result. The shared resolution is detached from every caller's
// cancellation; a caller whose context ends stops waiting and gets its own
// context error while the others keep waiting.
func (o *Operation[In, Out]) Resolve(ctx context.Context, in In) (Result[Out], error) {
	if o.key != nil {
		if key := o.key(in); key != "" {
			return o.shared(ctx, key, in)
		}
	}
	return o.resolve(ctx, in)
}

func (o *Operation[In, Out]) shared(ctx context.Context, key string, in In) (Result[Out], error) {
	if err := ctx.Err(); err != nil {
		return Result[Out]{}, fmt.Errorf("%s: %w", o.name, err)
	}
	detached := context.WithoutCancel(ctx)
	ch := o.group.DoChan(key, func() (any, error) {
		return o.resolve(detached, in)
	})
	select {
	case r := <-ch:
		res, _ := r.Val.(Result[Out])
		return res, r.Err
	case <-ctx.Done():
		return Result[Out]{}, fmt.Errorf("%s: %w", o.name, ctx.Err())
	}
}

// resolution tracks state for one Resolve call.
type resolution struct {
	op        string
	state     State
	timeline  Timeline
	observers []Observer
}

func (r *resolution) transition(ctx context.Context, to State) {
	for _, obs := range r.observers {
		obs.OnTransition(ctx, r.op, r.state, to)
	}
	r.state = to
}

func (r *resolution) record(ctx context.Context, rec AttemptRecord) {
	r.timeline.Attempts = append(r.timeline.Attempts, rec)
	for _, obs := range r.observers {
		obs.OnAttempt(ctx, r.op, rec)
	}
}

func (o *Operation[In, Out]) resolve(ctx context.Context, in In) (Result[Out], error) {
	ctx, span := o.tracer.Start(ctx, o.name,
		trace.WithAttributes(attribute.String("resolve.operation", o.name)))
	defer span.End()

	res := &resolution{
		op:        o.name,
		state:     StatePending,
		timeline:  Timeline{Operation: o.name, Started: o.now()},
		observers: o.observers,
	}

	if o.shortcut != nil {
		if v, ok := o.shortcut(ctx, in); ok {
			res.transition(ctx, StateSynthesizing)
			return o.finish(ctx, span, res, v, ShortcutStrategy, domain.ProvenanceSynthetic), nil
		}
	}

	var failures []StrategyFailure
	for _, s := range o.strategies {
		res.transition(ctx, StateAttempting)
		v, attempts, err := o.run(ctx, res, s, in)
		if err == nil {
			res.transition(ctx, StateSucceeded)
			return o.finish(ctx, span, res, v, s.Name, s.Provenance), nil
		}
		res.transition(ctx, StateExhausted)

		if ctx.Err() != nil {
			return Result[Out]{}, o.fail(ctx, span, res, fmt.Errorf("%s: %w", o.name, ctx.Err()))
		}
		if ActionFor(Classify(err)) == ActionAbort {
			return Result[Out]{}, o.fail(ctx, span, res, err)
		}
		failures = append(failures, StrategyFailure{Strategy: s.Name, Attempts: attempts, Err: err})
	}

	if o.synth != nil {
		res.transition(ctx, StateSynthesizing)
		v := o.synth(ctx, in)
		return o.finish(ctx, span, res, v, SynthesisStrategy, domain.ProvenanceSynthetic), nil
	}

	return Result[Out]{}, o.fail(ctx, span, res, newExhaustedError(o.name, failures))
}

// run attempts a single strategy under its retry policy. It returns the number
// of attempts made.
func (o *Operation[In, Out]) run(ctx context.Context, res *resolution, s Strategy[In, Out], in In) (Out, int, error) {
	var zero Out
	policy := o.policy
	if s.Retry != nil {
		policy = *s.Retry
	}

	var lastErr error
	var waited time.Duration
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			waited = policy.Delay(attempt - 1)
			if err := o.sleep(ctx, waited); err != nil {
				return zero, attempt, err
			}
		}

		v, rec := o.invoke(ctx, s, in, attempt+1, waited)
		res.record(ctx, rec)
		if rec.Err == nil {
			return v, attempt + 1, nil
		}

		lastErr = rec.Err
		if rec.Action != ActionRetry || ctx.Err() != nil {
			return zero, attempt + 1, lastErr
		}
	}

	return zero, policy.MaxAttempts, lastErr
}

func (o *Operation[In, Out]) invoke(ctx context.Context, s Strategy[In, Out], in In, n int, waited time.Duration) (Out, AttemptRecord) {
	ctx, span := o.tracer.Start(ctx, o.name+"/"+s.Name,
		trace.WithAttributes(
			attribute.String("resolve.strategy", s.Name),
			attribute.Int("resolve.attempt", n),
		))
	defer span.End()

	start := o.now()
	v, err := s.Execute(ctx, in)
	rec := AttemptRecord{
		Strategy: s.Name,
		Attempt:  n,
		Waited:   waited,
		Start:    start,
		Duration: o.now().Sub(start),
		Err:      err,
	}
	if err != nil {
		rec.Class = Classify(err)
		rec.Action = ActionFor(rec.Class)
		span.RecordError(err)
		span.SetStatus(codes.Error, rec.Class.String())
	}
	return v, rec
}

func (o *Operation[In, Out]) finish(ctx context.Context, span trace.Span, res *resolution, v Out, strategy string, prov domain.Provenance) Result[Out] {
	res.timeline.Finished = o.now()
	res.timeline.Strategy = strategy
	res.timeline.Provenance = prov
	res.transition(ctx, StateResolved)
	for _, obs := range o.observers {
		obs.OnResolved(ctx, o.name, res.timeline)
	}

	span.SetAttributes(
		attribute.String("resolve.provenance", string(prov)),
		attribute.String("resolve.strategy", strategy),
		attribute.Int("resolve.attempts", len(res.timeline.Attempts)),
	)

	return Result[Out]{
		Value:      v,
		Provenance: prov,
		Strategy:   strategy,
		Attempts:   len(res.timeline.Attempts),
		Timeline:   res.timeline,
	}
}

func (o *Operation[In, Out]) fail(ctx context.Context, span trace.Span, res *resolution, err error) error {
	res.timeline.Finished = o.now()
	res.timeline.Err = err
	res.transition(ctx, StateFailed)
	for _, obs := range o.observers {
		obs.OnFailed(ctx, o.name, res.timeline)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "exhausted")
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Builder assembles an Operation.
type Builder[In, Out any] struct {
	op *Operation[In, Out]
}

// New starts building the operation called name with DefaultRetryPolicy.
func New[In, Out any](name string) *Builder[In, Out] {
	return &Builder[In, Out]{
		op: &Operation[In, Out]{
			name:   name,
			policy: DefaultRetryPolicy,
			sleep:  sleepContext,
			now:    time.Now,
			tracer: otel.Tracer(tracerName),
		},
	}
}

// Retry sets the policy used by strategies without their own.
func (b *Builder[In, Out]) Retry(p RetryPolicy) *Builder[In, Out] {
	b.op.policy = p.withDefaults()
	return b
}

// Strategy appends a strategy using the operation's retry policy.
func (b *Builder[In, Out]) Strategy(name string, prov domain.Provenance, fn ExecuteFunc[In, Out]) *Builder[In, Out] {
	return b.Add(Strategy[In, Out]{Name: name, Provenance: prov, Execute: fn})
}

// Add appends s.
func (b *Builder[In, Out]) Add(s Strategy[In, Out]) *Builder[In, Out] {
	b.op.strategies = append(b.op.strategies, s)
	return b
}

// Synthesize sets the fallback used when every strategy is exhausted.
func (b *Builder[In, Out]) Synthesize(fn SynthesizeFunc[In, Out]) *Builder[In, Out] {
	b.op.synth = fn
	return b
}

// Shortcut sets a local decision consulted before any strategy.
func (b *Builder[In, Out]) Shortcut(fn ShortcutFunc[In, Out]) *Builder[In, Out] {
	b.op.shortcut = fn
	return b
}

// Dedupe makes concurrent resolutions with equal keys share one result.
func (b *Builder[In, Out]) Dedupe(fn KeyFunc[In]) *Builder[In, Out] {
	b.op.key = fn
	return b
}

// Observe adds observers notified of every resolution.
func (b *Builder[In, Out]) Observe(obs ...Observer) *Builder[In, Out] {
	for _, o := range obs {
		if o != nil {
			b.op.observers = append(b.op.observers, o)
		}
	}
	return b
}

// Clock replaces the time source and the backoff sleeper. Nil values keep the defaults.
func (b *Builder[In, Out]) Clock(now func() time.Time, sleep SleepFunc) *Builder[In, Out] {
	if now != nil {
		b.op.now = now
	}
	if sleep != nil {
		b.op.sleep = sleep
	}
	return b
}

// Build validates and returns the operation.
func (b *Builder[In, Out]) Build() (*Operation[In, Out], error) {
	op := b.op
	var errs []error

	if op.name == "" {
		errs = append(errs, errors.New("operation name is required"))
	}
	if len(op.strategies) == 0 && op.synth == nil {
		errs = append(errs, fmt.Errorf("operation %q needs at least one strategy or a synthesis function", op.name))
	}
	if err := op.policy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("operation %q retry policy: %w", op.name, err))
	}

	seen := make(map[string]bool, len(op.strategies))
	for i := range op.strategies {
		s := &op.strategies[i]
		switch {
		case s.Name == "":
			errs = append(errs, fmt.Errorf("operation %q strategy %d has no name", op.name, i))
		case seen[s.Name]:
			errs = append(errs, fmt.Errorf("operation %q has duplicate strategy %q", op.name, s.Name))
		}
		seen[s.Name] = true
		if s.Execute == nil {
			errs = append(errs, fmt.Errorf("operation %q strategy %q has no execute function", op.name, s.Name))
		}
		if s.Provenance == "" {
			s.Provenance = domain.ProvenanceReal
		}
		if s.Retry != nil {
			p := s.Retry.withDefaults()
			if err := p.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("operation %q strategy %q retry policy: %w", op.name, s.Name, err))
			}
			s.Retry = &p
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return op, nil
}

// MustBuild is Build for operations defined at package init; it panics on error.
func (b *Builder[In, Out]) MustBuild() *Operation[In, Out] {
	op, err := b.Build()
	if err != nil {
		panic(err)
	}
	return op
}
