package llm

import "errors"

var (
	// ErrNotConfigured indicates required credentials are missing. It is
	// returned before any network call is made.
	ErrNotConfigured = errors.New("llm provider not configured")

	// ErrUnavailable indicates the provider could not be reached.
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrUpstream indicates the provider answered with an error status or
	// refused to produce a completion.
	ErrUpstream = errors.New("llm provider returned an error")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown llm provider")
)
