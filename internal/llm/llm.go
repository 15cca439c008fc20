// Package llm wraps the chat completion endpoint used to guess an event organizer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/pfrederiksen/tradeshow-events/internal/logger"
)

const (
	DefaultModel       = "gpt-4o"
	DefaultMaxAttempts = 3
)

// Prompt is a single system + user exchange
type Prompt struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Completion is the model's reply and what it cost
type Completion struct {
	Text        string
	TotalTokens int
}

// Completer sends one prompt and returns the reply
type Completer interface {
	Complete(ctx context.Context, p Prompt) (Completion, error)
}

// Config holds the OpenAI client settings
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	MaxAttempts  int
	RetryInitial time.Duration
}

// OpenAI is a Completer backed by the OpenAI chat completions API
type OpenAI struct {
	client       *openai.Client
	model        string
	maxAttempts  int
	retryInitial time.Duration
}

// NewOpenAI creates a client. It returns an error when no API key is configured.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key not set")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	initial := cfg.RetryInitial
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}

	return &OpenAI{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        model,
		maxAttempts:  attempts,
		retryInitial: initial,
	}, nil
}

// Model returns the model name requests are sent to
func (o *OpenAI) Model() string {
	return o.model
}

// Complete sends p, retrying rate limits and server errors with exponential backoff
func (o *OpenAI) Complete(ctx context.Context, p Prompt) (Completion, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}

	var resp openai.ChatCompletionResponse
	attempt := 0
	op := func() error {
		attempt++
		var err error
		resp, err = o.client.CreateChatCompletion(ctx, req)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		logger.Debug("Retrying chat completion", logger.Fields{
			"attempt": attempt,
			"model":   o.model,
		})
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.retryInitial
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(o.maxAttempts-1)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return Completion{}, fmt.Errorf("chat completion after %d attempt(s): %w", attempt, err)
	}

	if len(resp.Choices) == 0 {
		return Completion{TotalTokens: resp.Usage.TotalTokens}, errors.New("chat completion returned no choices")
	}

	return Completion{
		Text:        strings.TrimSpace(resp.Choices[0].Message.Content),
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

func retryable(err error) bool {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return false
	}

	return status == http.StatusTooManyRequests || status >= 500
}
