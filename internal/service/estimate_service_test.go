package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/platform/ai"
	"github.com/fixline/homemart/pkg/config"
	"github.com/fixline/homemart/pkg/retry"
)

func estimateConfig(delay time.Duration) *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			MaxAttempts: 3,
			RetryDelay:  delay,
		},
	}
}

func TestEstimateSuccessFirstTry(t *testing.T) {
	completer := &scriptedCompleter{results: []retry.Result[ai.Completion]{
		retry.OkResult(ai.Completion{Description: "Bathroom remodel", PriceCents: 450000}),
	}}
	svc := NewEstimateService(completer, estimateConfig(10*time.Millisecond))

	res, err := svc.Estimate(context.Background(), &domain.EstimateRequest{ProjectType: "bathroom remodel"})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.EstimatedCents != 450000 || res.Attempts != 1 {
		t.Fatalf("got cents=%d attempts=%d, want 450000/1", res.EstimatedCents, res.Attempts)
	}
	if completer.calls != 1 {
		t.Fatalf("backend called %d times, want 1", completer.calls)
	}
}

func TestEstimateRecoversOnSecondTry(t *testing.T) {
	completer := &scriptedCompleter{results: []retry.Result[ai.Completion]{
		retry.TransientResult(ai.Completion{Description: ai.SentinelNoResult}, errors.New("empty completion")),
		retry.OkResult(ai.Completion{Description: "Kitchen floor", PriceCents: 120000}),
	}}
	svc := NewEstimateService(completer, estimateConfig(10*time.Millisecond))

	res, err := svc.Estimate(context.Background(), &domain.EstimateRequest{ProjectType: "kitchen floor"})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.Description != "Kitchen floor" || res.Attempts != 2 {
		t.Fatalf("got %q attempts=%d, want recovery on attempt 2", res.Description, res.Attempts)
	}
	if completer.calls != 2 {
		t.Fatalf("backend called %d times, want 2", completer.calls)
	}
}

func TestEstimatePersistentFailureExhaustsRetriesAndKeepsSentinel(t *testing.T) {
	const delay = 30 * time.Millisecond
	completer := &scriptedCompleter{results: []retry.Result[ai.Completion]{
		retry.TransientResult(ai.Completion{Description: ai.SentinelInvalidJSON}, errors.New("not valid JSON")),
	}}
	svc := NewEstimateService(completer, estimateConfig(delay))

	start := time.Now()
	res, err := svc.Estimate(context.Background(), &domain.EstimateRequest{ProjectType: "deck"})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.Description != ai.SentinelInvalidJSON {
		t.Fatalf("description = %q, want the sentinel", res.Description)
	}
	if res.EstimatedCents != 0 {
		t.Fatalf("cents = %d, want 0 on failure", res.EstimatedCents)
	}
	if res.Attempts != 3 || completer.calls != 3 {
		t.Fatalf("attempts=%d calls=%d, want 3/3", res.Attempts, completer.calls)
	}
	// Two inter-attempt delays must have elapsed.
	if elapsed < 2*delay {
		t.Fatalf("elapsed %v, want at least %v", elapsed, 2*delay)
	}
}

func TestEstimateValidatesInput(t *testing.T) {
	svc := NewEstimateService(&scriptedCompleter{results: []retry.Result[ai.Completion]{
		retry.OkResult(ai.Completion{Description: "x"}),
	}}, estimateConfig(time.Millisecond))

	_, err := svc.Estimate(context.Background(), &domain.EstimateRequest{})
	var v *domain.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}
