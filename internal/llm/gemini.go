package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiClient implements Client on the Gemini API SDK.
type geminiClient struct {
	cfg      Config
	observer Observer
}

// NewGeminiClient creates a Client for Google's Gemini models. A missing API
// key is reported by Generate as ErrNotConfigured without touching the network.
func NewGeminiClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	cfg.Provider = ProviderGemini
	return &geminiClient{cfg: cfg.withDefaults(), observer: observer}
}

func (c *geminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		c.observer.OnCallComplete(LLMCallEvent{
			Task:      req.Task,
			Provider:  ProviderGemini,
			Model:     c.cfg.Model,
			ErrorCode: errorCode(ErrNotConfigured),
		})
		return nil, fmt.Errorf("%w: gemini API key is not set", ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	text, model, err := c.generate(ctx, req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		err = classify(ctx, err)
		c.observer.OnCallComplete(LLMCallEvent{
			Task:      req.Task,
			Provider:  ProviderGemini,
			Model:     c.cfg.Model,
			LatencyMs: latency,
			ErrorCode: errorCode(err),
		})
		return nil, err
	}

	c.observer.OnCallComplete(LLMCallEvent{
		Task:      req.Task,
		Provider:  ProviderGemini,
		Model:     model,
		LatencyMs: latency,
		Success:   true,
	})
	return &GenerateResponse{Text: text, Model: model, LatencyMs: latency}, nil
}

func (c *geminiClient) newSDKClient(ctx context.Context) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     c.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(),
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    strings.TrimRight(c.cfg.Endpoint, "/") + "/",
			APIVersion: "v1beta",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	return client, nil
}

func (c *geminiClient) generate(ctx context.Context, req GenerateRequest) (string, string, error) {
	client, err := c.newSDKClient(ctx)
	if err != nil {
		return "", "", err
	}

	temp, maxTok := callParams(c.cfg, req)
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temp)),
		MaxOutputTokens: int32(maxTok),
	}
	if req.SystemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(req.UserPrompt), gc)
	if err != nil {
		return "", "", apiError(err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", "", fmt.Errorf("%w: prompt blocked: %s", ErrUpstream, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", "", fmt.Errorf("%w: no candidates returned", ErrUpstream)
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	model := resp.ModelVersion
	if model == "" {
		model = c.cfg.Model
	}
	return b.String(), model, nil
}

// apiError marks error statuses from the API as ErrUpstream and leaves
// transport errors for classify.
func apiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: gemini returned status %d: %s", ErrUpstream, apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fmt.Errorf("%w: gemini returned status %d: %s", ErrUpstream, apiErrPtr.Code, apiErrPtr.Message)
	}
	return err
}

func (c *geminiClient) Available(context.Context) bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}
