package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// Client provides access to a language model for text generation.
type Client interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Configured reports whether a credential is available.
	Configured() bool
}

// RetryDecision reports whether a failed attempt should be retried.
type RetryDecision func(err error) bool

// RetryHook runs before each retry, after the backoff delay is computed.
type RetryHook func(attempt int, delay time.Duration, err error)

// ClientOption customizes a chat client.
type ClientOption func(*chatClient)

// WithRetryDecision replaces the default transient-error predicate.
func WithRetryDecision(d RetryDecision) ClientOption {
	return func(c *chatClient) { c.shouldRetry = d }
}

// WithRetryHook installs a side-effect hook invoked before each retry.
func WithRetryHook(h RetryHook) ClientOption {
	return func(c *chatClient) { c.onRetry = h }
}

// chatClient implements Client against an OpenAI-compatible chat API.
type chatClient struct {
	cfg         Config
	http        *http.Client
	observer    Observer
	backoff     *Backoff
	shouldRetry RetryDecision
	onRetry     RetryHook
	sleep       func(context.Context, time.Duration) error
}

// NewChatClient creates a Client that talks to a hosted chat-completions API.
func NewChatClient(cfg Config, observer Observer, opts ...ClientOption) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	c := &chatClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer:    observer,
		backoff:     NewBackoff(cfg.Backoff, nil),
		shouldRetry: DefaultRetryable,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statusError marks a non-2xx provider response with its HTTP status.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.status, e.body)
}

// DefaultRetryable treats rate limits, server errors, timeouts, and
// connection failures as transient.
func DefaultRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return true
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func (c *chatClient) Configured() bool {
	return c.cfg.Configured()
}

func (c *chatClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if !c.cfg.Configured() {
		return nil, ErrNotConfigured
	}

	start := time.Now()

	taskCfg := c.cfg.Tasks[req.Task]
	temp := taskCfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := taskCfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}

	timeoutMs := c.cfg.TaskTimeout(req.Task)
	deadline := time.Duration(timeoutMs) * time.Millisecond

	body := chatRequest{
		Model:       c.cfg.Model,
		Temperature: temp,
		MaxTokens:   maxTok,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
	}

	attempts := c.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			delay := c.backoff.Delay(i - 1)
			if c.onRetry != nil {
				c.onRetry(i, delay, lastErr)
			}
			if err := c.sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}

		text, model, err := c.doRequest(ctx, deadline, body)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			c.observer.OnCallComplete(CallEvent{
				Task:      req.Task,
				Model:     c.cfg.Model,
				Attempts:  i + 1,
				LatencyMs: latency,
				Success:   true,
			})
			return &GenerateResponse{Text: text, Model: model, LatencyMs: latency}, nil
		}
		lastErr = err

		if ctx.Err() != nil || !c.shouldRetry(err) {
			break
		}
	}

	latency := time.Since(start).Milliseconds()
	final := classifyFailure(ctx, lastErr)
	c.observer.OnCallComplete(CallEvent{
		Task:      req.Task,
		Model:     c.cfg.Model,
		LatencyMs: latency,
		Success:   false,
		ErrorCode: errorCode(final),
	})
	return nil, final
}

func classifyFailure(ctx context.Context, lastErr error) error {
	if ctx.Err() != nil {
		return ErrTimeout
	}
	var se *statusError
	if errors.As(lastErr, &se) && se.status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrRetryExhausted, ErrRateLimited)
	}
	if isConnectionError(lastErr) {
		return ErrUnavailable
	}
	if errors.Is(lastErr, ErrTimeout) || errors.Is(lastErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrRetryExhausted, ErrTimeout)
	}
	return fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
}

// chatRequest is the JSON body sent to POST /v1/chat/completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *chatClient) doRequest(ctx context.Context, timeout time.Duration, body chatRequest) (text, model string, err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := json.Marshal(body)
	if err != nil {
		return "", "", fmt.Errorf("marshaling request: %w", err)
	}

	url := c.cfg.Endpoint + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", "", ErrTimeout
		}
		return "", "", err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", "", fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", "", &statusError{status: httpResp.StatusCode, body: truncate(string(respBody), 200)}
	}

	var envelope map[string]any
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return "", "", fmt.Errorf("decoding response: %w", err)
	}

	raw, ok := ExtractResponseText(envelope)
	if !ok {
		return "", "", fmt.Errorf("%w: no text in provider response", ErrInvalidOutput)
	}

	model, _ = envelope["model"].(string)
	return raw, model, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrNotConfigured):
		return "NOT_CONFIGURED"
	default:
		return "UNKNOWN"
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
