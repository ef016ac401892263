// Package pool runs a batch of independent tasks on a bounded worker pool
// with a uniform retry policy: transient failures are retried with capped
// exponential backoff and jitter, and an optional global rate limit spaces
// out task starts across all workers.
//
// Task failures never fail the batch. Each task's error is recorded in its
// Outcome, so a misbehaving task cannot take down its siblings.
package pool

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Options controls pool behavior. Zero values get sensible defaults.
type Options struct {
	// Workers bounds how many tasks run at once. Workers == 1 gives strict
	// sequential, in-order execution.
	Workers int

	// MaxRetries is the number of extra attempts after the first, applied
	// only to transient failures.
	MaxRetries int

	// TaskTimeout bounds each attempt. <= 0 means no per-attempt timeout.
	TaskTimeout time.Duration

	// RateLimitRPS is a global limit on attempt starts across all workers.
	// <= 0 disables the limiter.
	RateLimitRPS float64

	// Delay is a fixed pause before each attempt, applied per worker. Used
	// for polite inter-request spacing independent of the global limiter.
	Delay time.Duration

	// BackoffInitial is the sleep before the first retry.
	BackoffInitial time.Duration
	// BackoffMax caps exponential backoff growth.
	BackoffMax time.Duration
	// BackoffJitterFrac applies +/- jitter to backoff sleeps (0.2 = 20%).
	BackoffJitterFrac float64
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.BackoffInitial <= 0 {
		o.BackoffInitial = 500 * time.Millisecond
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = 5 * time.Second
	}
	return o
}

// Outcome holds the result of one task.
type Outcome[In any, Out any] struct {
	Input  In
	Output Out
	Err    error
}

// TransientError marks an error as retryable.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e == nil || e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Run executes fn over all items and returns one Outcome per item, index
// aligned with items.
//
// If ctx expires mid-batch, Run returns the outcomes gathered so far
// (unfinished slots are zero valued) together with the context error, so
// callers can keep completed work and account for abandoned items.
func Run[In any, Out any](
	ctx context.Context,
	items []In,
	fn func(context.Context, In) (Out, error),
	opts Options,
) ([]Outcome[In, Out], error) {
	return RunWithCallback(ctx, items, fn, nil, opts)
}

// RunWithCallback is Run plus a completion callback invoked serially, in
// completion order, as each task finishes.
func RunWithCallback[In any, Out any](
	ctx context.Context,
	items []In,
	fn func(context.Context, In) (Out, error),
	onDone func(idx int, o Outcome[In, Out]),
	opts Options,
) ([]Outcome[In, Out], error) {
	opts = opts.withDefaults()

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}

	out := make([]Outcome[In, Out], len(items))

	type job struct {
		idx int
		in  In
	}
	type completion struct {
		idx int
		res Outcome[In, Out]
	}

	jobs := make(chan job)
	done := make(chan completion, opts.Workers)

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					return
				}
				res := runOne(ctx, j.in, fn, limiter, opts)
				select {
				case done <- completion{idx: j.idx, res: res}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, item := range items {
			select {
			case jobs <- job{idx: i, in: item}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	for c := range done {
		out[c.idx] = c.res
		if onDone != nil {
			onDone(c.idx, c.res)
		}
	}

	return out, ctx.Err()
}

func runOne[In any, Out any](
	ctx context.Context,
	item In,
	fn func(context.Context, In) (Out, error),
	limiter *rate.Limiter,
	opts Options,
) Outcome[In, Out] {
	var last Out
	var err error
	for attempt := 0; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return Outcome[In, Out]{Input: item, Output: last, Err: cerr}
		}

		if opts.Delay > 0 {
			if !sleepCtx(ctx, opts.Delay) {
				return Outcome[In, Out]{Input: item, Output: last, Err: ctx.Err()}
			}
		}
		if limiter != nil {
			if werr := limiter.Wait(ctx); werr != nil {
				return Outcome[In, Out]{Input: item, Output: last, Err: werr}
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if opts.TaskTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, opts.TaskTimeout)
		}
		last, err = fn(attemptCtx, item)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			return Outcome[In, Out]{Input: item, Output: last}
		}
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return Outcome[In, Out]{Input: item, Output: last, Err: ctx.Err()}
		}
		if !IsTransient(err) || attempt >= opts.MaxRetries {
			return Outcome[In, Out]{Input: item, Output: last, Err: err}
		}

		if !sleepCtx(ctx, backoff(opts, attempt)) {
			return Outcome[In, Out]{Input: item, Output: last, Err: ctx.Err()}
		}
	}
}

// IsTransient reports whether an error is worth retrying: anything wrapped
// in TransientError, attempt deadline expiry, or a network timeout.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

func backoff(opts Options, attempt int) time.Duration {
	sleep := opts.BackoffInitial
	for i := 0; i < attempt && sleep < opts.BackoffMax; i++ {
		sleep *= 2
	}
	if sleep > opts.BackoffMax {
		sleep = opts.BackoffMax
	}
	if opts.BackoffJitterFrac <= 0 {
		return sleep
	}
	j := 1 + (rand.Float64()*2-1)*opts.BackoffJitterFrac
	return time.Duration(float64(sleep) * j)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
