package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/platform/ai"
	"github.com/fixline/homemart/pkg/config"
	"github.com/fixline/homemart/pkg/logger"
	"github.com/fixline/homemart/pkg/retry"
)

type EstimateService interface {
	Estimate(ctx context.Context, req *domain.EstimateRequest) (*domain.EstimateResponse, error)
}

type estimateService struct {
	completer ai.Completer
	config    *config.Config
}

func NewEstimateService(completer ai.Completer, config *config.Config) EstimateService {
	return &estimateService{completer: completer, config: config}
}

// Estimate asks the AI backend for a project description and price. Transient
// failures, including sentinel answers delivered on a 200, are retried with a
// fixed delay. When every attempt fails the sentinel description is returned
// to the caller with a zero price rather than an error, so clients can render
// the failure text directly.
func (s *estimateService) Estimate(ctx context.Context, req *domain.EstimateRequest) (*domain.EstimateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prompt := buildPrompt(req)

	res, attempts := retry.Fixed(ctx, s.config.AI.MaxAttempts, s.config.AI.RetryDelay,
		func(ctx context.Context) retry.Result[ai.Completion] {
			return s.completer.Complete(ctx, prompt)
		})

	if res.Outcome != retry.Ok {
		logger.WarnContext(ctx, "AI estimate did not converge",
			"attempts", attempts, "description", res.Value.Description, "error", res.Err)
		return &domain.EstimateResponse{
			Description: res.Value.Description,
			Attempts:    attempts,
		}, nil
	}

	return &domain.EstimateResponse{
		Description:    res.Value.Description,
		EstimatedCents: res.Value.PriceCents,
		Attempts:       attempts,
	}, nil
}

func buildPrompt(req *domain.EstimateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project type: %s\n", req.ProjectType)
	if req.Area != "" {
		fmt.Fprintf(&b, "Area: %s\n", req.Area)
	}
	if req.Materials != "" {
		fmt.Fprintf(&b, "Materials: %s\n", req.Materials)
	}
	if req.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", req.Location)
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", req.Notes)
	}
	b.WriteString("Estimate the total project cost.")
	return b.String()
}
