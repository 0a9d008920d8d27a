// Package retry provides a bounded fixed-delay retry combinator over a
// tagged outcome, so content-level failures can be retried the same way as
// transport errors without string comparisons leaking into callers.
package retry

import (
	"context"
	"time"
)

type Outcome int

const (
	// Ok means the value is usable and retrying must stop.
	Ok Outcome = iota
	// Transient means the value is not usable yet but a retry may help.
	Transient
	// Permanent means retrying cannot help; the loop stops immediately.
	Permanent
)

// Result pairs a value with how the attempt went.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

func OkResult[T any](v T) Result[T]        { return Result[T]{Value: v, Outcome: Ok} }
func TransientResult[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Outcome: Transient, Err: err}
}
func PermanentResult[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Outcome: Permanent, Err: err}
}

// Fixed runs fn up to attempts times, sleeping delay between attempts.
// It returns as soon as an attempt is Ok or Permanent. After the final
// attempt the last result is returned as-is, even if still Transient;
// callers decide whether a transient value is acceptable to surface.
func Fixed[T any](ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) Result[T]) (Result[T], int) {
	if attempts < 1 {
		attempts = 1
	}

	var res Result[T]
	for attempt := 1; ; attempt++ {
		res = fn(ctx)
		if res.Outcome != Transient || attempt >= attempts {
			return res, attempt
		}

		select {
		case <-ctx.Done():
			return PermanentResult(res.Value, ctx.Err()), attempt
		case <-time.After(delay):
		}
	}
}
