package llm

import "errors"

var (
	// ErrNotConfigured indicates no API credential is configured.
	ErrNotConfigured = errors.New("llm client not configured")

	// ErrUnavailable indicates the provider endpoint is unreachable.
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrRateLimited indicates the provider rejected the call with a rate limit.
	ErrRateLimited = errors.New("llm provider rate limited")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)
