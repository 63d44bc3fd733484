package breakdown

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/llm"
)

// Breaker expands a task description into concrete steps.
type Breaker interface {
	Breakdown(ctx context.Context, text string) ([]string, error)
}

// Requester implements Breaker on top of an llm.Client.
type Requester struct {
	client llm.Client
	logger *log.Logger
}

// NewRequester creates a Requester. A nil client makes every call fail with
// ErrConfiguration.
func NewRequester(client llm.Client, logger *log.Logger) *Requester {
	return &Requester{client: client, logger: logger}
}

// Breakdown asks the model once for steps. Errors wrap ErrConfiguration,
// ErrExternalService or ErrParse; there is no retry.
func (r *Requester) Breakdown(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	if r.client == nil {
		return nil, fmt.Errorf("%w: no language model configured", ErrConfiguration)
	}

	resp, err := r.client.Generate(ctx, llm.GenerateRequest{
		Task:       llm.TaskBreakdown,
		UserPrompt: BuildPrompt(text),
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}

	result := ParseSteps(resp.Text)
	if !result.OK() {
		r.debug("breakdown reply rejected", "reason", result.Reason)
		return nil, fmt.Errorf("%w: %s", ErrParse, result.Reason)
	}
	r.debug("breakdown parsed", "outcome", result.Outcome.String(), "steps", len(result.Steps))
	return result.Steps, nil
}

func (r *Requester) debug(msg string, kv ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, kv...)
	}
}
