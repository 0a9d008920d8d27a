package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fixline/homemart/pkg/config"
	"github.com/fixline/homemart/pkg/retry"
	"github.com/tidwall/gjson"
)

// Sentinel descriptions the backend hands back when it produced nothing
// usable. They ride on an HTTP 200, so the retry layer treats them as
// transient content failures rather than transport errors.
const (
	SentinelNoResult    = "AI did not return any result."
	SentinelInvalidJSON = "Invalid JSON returned by AI"
)

func IsSentinel(description string) bool {
	return description == SentinelNoResult || description == SentinelInvalidJSON
}

// Completion is one parsed answer from the model.
type Completion struct {
	Description string
	PriceCents  int64
}

type Completer interface {
	Complete(ctx context.Context, prompt string) retry.Result[Completion]
}

// Client calls an OpenAI-style chat-completions endpoint. The model is asked
// for a JSON object {"description": ..., "estimated_price_cents": ...}.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const systemPrompt = `You are a pricing assistant for home improvement projects.
Respond with a single JSON object: {"description": string, "estimated_price_cents": integer}.`

func (c *Client) Complete(ctx context.Context, prompt string) retry.Result[Completion] {
	failed := Completion{Description: SentinelNoResult}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return retry.PermanentResult(failed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return retry.PermanentResult(failed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		// Network and timeout failures are retried the same way as
		// empty answers; the estimator does not distinguish them.
		return retry.TransientResult(failed, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return retry.TransientResult(failed, err)
	}
	if res.StatusCode != http.StatusOK {
		return retry.TransientResult(failed, fmt.Errorf("ai backend status %d", res.StatusCode))
	}

	content := gjson.GetBytes(raw, "choices.0.message.content").String()
	if content == "" {
		return retry.TransientResult(failed, errors.New("empty completion"))
	}

	if !gjson.Valid(content) {
		return retry.TransientResult(Completion{Description: SentinelInvalidJSON}, errors.New("completion is not valid JSON"))
	}

	description := gjson.Get(content, "description").String()
	price := gjson.Get(content, "estimated_price_cents").Int()
	if description == "" {
		return retry.TransientResult(failed, errors.New("completion missing description"))
	}

	return retry.OkResult(Completion{Description: description, PriceCents: price})
}

var _ Completer = (*Client)(nil)
