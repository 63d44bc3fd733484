package llm

import "time"

// Provider names a text-generation backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOllama Provider = "ollama"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskBreakdown TaskType = "breakdown"
)

// Config holds all configuration for the LLM subsystem.
type Config struct {
	Provider    Provider
	APIKey      string
	Model       string
	Endpoint    string
	TimeoutMs   int
	Temperature float64
	MaxTokens   int
	LogCalls    bool
}

// DefaultConfig returns the defaults for the Gemini provider.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderGemini,
		Model:       DefaultModel(ProviderGemini),
		Endpoint:    DefaultEndpoint(ProviderGemini),
		TimeoutMs:   20000,
		Temperature: 0.4,
		MaxTokens:   512,
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderOllama:
		return "llama3.2"
	default:
		return "gemini-1.5-flash"
	}
}

// DefaultEndpoint returns the base URL used when none is configured.
func DefaultEndpoint(p Provider) string {
	switch p {
	case ProviderOllama:
		return "http://localhost:11434"
	default:
		return "https://generativelanguage.googleapis.com"
	}
}

// Timeout returns the per-call deadline. Non-positive values fall back to
// the default so a call can never hang.
func (c Config) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return time.Duration(DefaultConfig().TimeoutMs) * time.Millisecond
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// withDefaults fills empty model and endpoint for the configured provider.
func (c Config) withDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	if c.Model == "" {
		c.Model = DefaultModel(c.Provider)
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint(c.Provider)
	}
	return c
}
