// Package retry runs a provider call under a bounded, exponentially
// backed-off retry policy and fires the provider's lifecycle hooks.
package retry

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mydehq/lrcfetch/internal/types"
)

// Verdict is the classification of one attempt.
type Verdict int

const (
	Success Verdict = iota
	RetryableFailure
	FatalFailure
)

func (v Verdict) String() string {
	switch v {
	case Success:
		return "success"
	case RetryableFailure:
		return "retryable"
	default:
		return "fatal"
	}
}

// Outcome is the tagged result of one attempt. Err is nil iff Verdict is
// Success.
type Outcome struct {
	Verdict   Verdict
	Responses []*types.LyricsResponse
	Err       error
}

// Classify tags the result of an attempt according to policy.
func Classify(policy types.RetryPolicy, responses []*types.LyricsResponse, err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Verdict: Success, Responses: responses}
	case policy.IsRetryable(err):
		return Outcome{Verdict: RetryableFailure, Err: err}
	default:
		return Outcome{Verdict: FatalFailure, Err: err}
	}
}

// Call is one fetch-family invocation on a provider instance.
type Call func(ctx context.Context) ([]*types.LyricsResponse, error)

// Request identifies the call being executed.
type Request struct {
	ID       string
	Provider string
	URL      string
	Op       types.FetchOp
	Policy   types.RetryPolicy
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Executor runs calls under their retry policy.
type Executor struct {
	hooks  *Hooks
	sleep  Sleeper
	logger *log.Logger
	now    func() time.Time
}

// Option configures an Executor
type Option func(*Executor)

// WithHooks sets the hook registry consulted on every run
func WithHooks(h *Hooks) Option {
	return func(e *Executor) { e.hooks = h }
}

// WithSleeper replaces the backoff wait
func WithSleeper(s Sleeper) Option {
	return func(e *Executor) { e.sleep = s }
}

// WithLogger sets the logger used for retry notices and hook failures
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New creates an Executor
func New(opts ...Option) *Executor {
	e := &Executor{
		hooks:  NewHooks(),
		sleep:  sleepWithContext,
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hooks returns the executor's hook registry
func (e *Executor) Hooks() *Hooks {
	return e.hooks
}

// Run executes call until it succeeds, fails fatally, or exhausts
// req.Policy.MaxAttempts. The last error is returned unchanged.
func (e *Executor) Run(ctx context.Context, req Request, call Call) ([]*types.LyricsResponse, error) {
	maxAttempts := req.Policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	start := e.now()
	var out Outcome
	attempt := 1

	for {
		e.fire(e.hooks.Before(req.Provider), req.event(attempt, 0, nil, nil))

		responses, err := call(ctx)
		out = Classify(req.Policy, responses, err)

		if out.Verdict != RetryableFailure || attempt >= maxAttempts {
			break
		}

		wait := req.Policy.Backoff(attempt)
		e.logger.Warnf("%s: attempt %d/%d failed (%v), retrying in %s",
			req.Provider, attempt, maxAttempts, out.Err, wait)
		if hint := retryAfter(out.Err); hint > 0 {
			e.logger.Debug("provider sent retry hint", "provider", req.Provider, "retry_after", hint)
		}

		if err := e.sleep(ctx, wait); err != nil {
			e.logger.Debug("retry wait interrupted", "provider", req.Provider, "err", err)
			break
		}
		attempt++
	}

	e.fire(e.hooks.After(req.Provider), req.event(attempt, e.now().Sub(start), out.Responses, out.Err))

	if out.Verdict != Success {
		return nil, out.Err
	}
	return out.Responses, nil
}

func (e *Executor) fire(hooks []types.Hook, ev types.FetchEvent) {
	for _, hook := range hooks {
		if err := callHook(hook, ev); err != nil {
			e.logger.Debug("hook failed", "provider", ev.Provider, "op", ev.Op, "err", err)
		}
	}
}

func (r Request) event(attempt int, elapsed time.Duration, responses []*types.LyricsResponse, err error) types.FetchEvent {
	return types.FetchEvent{
		RequestID: r.ID,
		Provider:  r.Provider,
		URL:       r.URL,
		Op:        r.Op,
		Attempt:   attempt,
		Elapsed:   elapsed,
		Responses: responses,
		Err:       err,
	}
}

func retryAfter(err error) time.Duration {
	if rl, ok := types.AsError[types.ErrRateLimited](err); ok {
		return rl.RetryAfter
	}
	return 0
}

// sleepWithContext sleeps for d, returning early if ctx is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
