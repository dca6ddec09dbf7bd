// Package retry runs a single logical operation through a bounded,
// backoff-governed sequence of attempts. Retries are never fanned out in
// parallel: one operation is one sequential state machine, which keeps two
// network calls from ever sharing a cancellation signal.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/pondpilot/pondpilot-sub007/pkg/engine"
	"github.com/pondpilot/pondpilot-sub007/pkg/failure"
)

// Policy bounds a retry sequence. Immutable per execution.
type Policy struct {
	MaxAttempts        int
	BaseDelay          time.Duration
	ExponentialBackoff bool
	// Timeout is the per-attempt budget. Zero disables the attempt timer.
	Timeout time.Duration
}

// DefaultPolicy returns the policy used when the caller supplies none.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:        2,
		BaseDelay:          500 * time.Millisecond,
		ExponentialBackoff: true,
		Timeout:            30 * time.Second,
	}
}

// Single returns a copy of the policy reduced to exactly one attempt.
func (p Policy) Single() Policy {
	p.MaxAttempts = 1
	return p
}

// Backoff delay bounds: ~30% jitter to avoid retry storms against a shared
// proxy, capped at one minute.
const (
	jitterFraction = 0.3
	maxDelay       = 60 * time.Second
)

// Attempt is one execution of the operation under retry.
type Attempt func(ctx context.Context) (*engine.Result, error)

// Outcome is the terminal value of a retry sequence.
type Outcome struct {
	Result    *engine.Result
	Err       failure.Classified
	Attempts  int
	Cancelled bool
}

// Success reports whether the sequence settled with a result.
func (o Outcome) Success() bool {
	return o.Result != nil && o.Err.Err == nil && !o.Cancelled
}

// Executor drives attempts under a policy.
type Executor struct {
	classifier failure.Classifier
	log        zerolog.Logger

	// test seams
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

// NewExecutor creates an executor using the given failure classifier.
func NewExecutor(classifier failure.Classifier, log zerolog.Logger) *Executor {
	return &Executor{
		classifier: classifier,
		log:        log,
		sleep:      sleepCtx,
		jitter:     rand.Float64,
	}
}

// Run executes attempt under the policy. Timeout-classified failures are
// retried while attempts remain; every other failure class is terminal for
// this executor; cross-origin fallback is the gateway's single-retry
// decision, not a loop here. Caller cancellation aborts the in-flight call
// and any pending backoff and yields a distinct cancelled outcome.
func (e *Executor) Run(ctx context.Context, policy Policy, attempt Attempt) Outcome {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var last failure.Classified
	for n := 1; ; n++ {
		res, err := e.runOnce(ctx, policy.Timeout, attempt)
		if err == nil {
			return Outcome{Result: res, Attempts: n}
		}
		if ctx.Err() != nil {
			return Outcome{Err: failure.Classified{Kind: failure.KindCancelled, Err: ctx.Err()}, Attempts: n, Cancelled: true}
		}

		last = e.classifier.Classify(err)
		if last.Kind == failure.KindCancelled {
			return Outcome{Err: last, Attempts: n, Cancelled: true}
		}

		if last.Kind != failure.KindTimeout || n >= policy.MaxAttempts {
			if last.Kind == failure.KindTimeout && n >= policy.MaxAttempts && policy.MaxAttempts > 1 {
				last.Err = fmt.Errorf("giving up after %d attempts: %w", n, last.Err)
			}
			return Outcome{Err: last, Attempts: n}
		}

		d := e.delay(policy, n)
		e.log.Debug().
			Int("attempt", n).
			Dur("backoff", d).
			Str("kind", last.Kind.String()).
			Msg("retrying after backoff")
		if err := e.sleep(ctx, d); err != nil {
			return Outcome{Err: failure.Classified{Kind: failure.KindCancelled, Err: err}, Attempts: n, Cancelled: true}
		}
	}
}

// runOnce races one attempt against the per-attempt timer and the caller's
// cancellation. The attempt runs in its own goroutine with a derived
// context; when the timer wins, the context is cancelled and the losing
// call is left to drain in the background; it owns no shared state.
func (e *Executor) runOnce(ctx context.Context, timeout time.Duration, attempt Attempt) (*engine.Result, error) {
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type reply struct {
		res *engine.Result
		err error
	}
	done := make(chan reply, 1)
	go func() {
		res, err := attempt(attemptCtx)
		done <- reply{res: res, err: err}
	}()

	var timerC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerC = timer.C
	}

	select {
	case r := <-done:
		return r.res, r.err
	case <-timerC:
		return nil, &failure.TimeoutError{Limit: timeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// delay computes the wait before retry n+1. With backoff disabled it is the
// base delay; otherwise base * 2^(n-1) with bounded jitter, capped.
func (e *Executor) delay(p Policy, attempt int) time.Duration {
	if !p.ExponentialBackoff {
		return p.BaseDelay
	}
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	d *= 1 + jitterFraction*e.jitter()
	if d > float64(maxDelay) {
		d = float64(maxDelay)
	}
	return time.Duration(d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
