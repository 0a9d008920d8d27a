package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFixedStopsOnOk(t *testing.T) {
	var calls int
	res, attempts := Fixed(context.Background(), 5, time.Millisecond, func(context.Context) Result[int] {
		calls++
		if calls < 3 {
			return TransientResult(0, errors.New("not yet"))
		}
		return OkResult(42)
	})

	if res.Outcome != Ok || res.Value != 42 {
		t.Fatalf("got %+v, want Ok/42", res)
	}
	if attempts != 3 || calls != 3 {
		t.Fatalf("attempts=%d calls=%d, want 3/3", attempts, calls)
	}
}

func TestFixedStopsOnPermanent(t *testing.T) {
	var calls int
	res, attempts := Fixed(context.Background(), 5, time.Millisecond, func(context.Context) Result[string] {
		calls++
		return PermanentResult("bad", errors.New("no point"))
	})

	if res.Outcome != Permanent || attempts != 1 || calls != 1 {
		t.Fatalf("got outcome=%v attempts=%d calls=%d, want Permanent/1/1", res.Outcome, attempts, calls)
	}
}

func TestFixedReturnsLastTransientAfterExhaustion(t *testing.T) {
	wantErr := errors.New("still failing")
	res, attempts := Fixed(context.Background(), 3, time.Millisecond, func(context.Context) Result[string] {
		return TransientResult("partial", wantErr)
	})

	if res.Outcome != Transient {
		t.Fatalf("outcome = %v, want Transient surfaced to the caller", res.Outcome)
	}
	if res.Value != "partial" || !errors.Is(res.Err, wantErr) {
		t.Fatalf("got %+v, want the last transient value and error", res)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestFixedTreatsZeroAttemptsAsOne(t *testing.T) {
	var calls int
	_, attempts := Fixed(context.Background(), 0, time.Millisecond, func(context.Context) Result[int] {
		calls++
		return TransientResult(0, errors.New("x"))
	})
	if attempts != 1 || calls != 1 {
		t.Fatalf("attempts=%d calls=%d, want 1/1", attempts, calls)
	}
}

func TestFixedStopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	res, _ := Fixed(ctx, 10, time.Hour, func(context.Context) Result[int] {
		calls++
		cancel()
		return TransientResult(7, errors.New("try again"))
	})

	if res.Outcome != Permanent || !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("got %+v, want Permanent with context.Canceled", res)
	}
	if res.Value != 7 {
		t.Fatalf("value = %d, want last transient value preserved", res.Value)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
