package llm

import (
	"os"
	"strconv"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskSignals  TaskType = "signals"
	TaskClassify TaskType = "classify"
	TaskPlan     TaskType = "plan"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// BackoffConfig controls the retry delay schedule between attempts.
type BackoffConfig struct {
	InitialDelayMs int
	MaxDelayMs     int
	Multiplier     float64
	JitterRatio    float64 // fraction of the delay randomized, in [0,1]
}

// Config holds all configuration for the LLM subsystem.
type Config struct {
	Enabled     bool
	Endpoint    string
	Model       string
	APIKey      string
	TimeoutMs   int
	MaxAttempts int
	Backoff     BackoffConfig
	Tasks       map[TaskType]TaskConfig
}

// DefaultConfig returns a Config with sensible defaults. The client stays
// unusable until an API key is configured.
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		Endpoint:    "https://api.openai.com",
		Model:       "gpt-4o-mini",
		TimeoutMs:   12000,
		MaxAttempts: 3,
		Backoff: BackoffConfig{
			InitialDelayMs: 250,
			MaxDelayMs:     4000,
			Multiplier:     2.0,
			JitterRatio:    0.2,
		},
		Tasks: map[TaskType]TaskConfig{
			TaskSignals:  {Temperature: 0.1, MaxTokens: 768, TimeoutMs: 8000},
			TaskClassify: {Temperature: 0.1, MaxTokens: 512, TimeoutMs: 8000},
			TaskPlan:     {Temperature: 0.3, MaxTokens: 2048, TimeoutMs: 15000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("PROMPTCANVAS_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("PROMPTCANVAS_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("PROMPTCANVAS_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PROMPTCANVAS_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("PROMPTCANVAS_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("PROMPTCANVAS_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}
	if v := os.Getenv("PROMPTCANVAS_LLM_BACKOFF_INITIAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Backoff.InitialDelayMs = n
		}
	}
	if v := os.Getenv("PROMPTCANVAS_LLM_BACKOFF_MAX_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Backoff.MaxDelayMs = n
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskSignals, "PROMPTCANVAS_LLM_SIGNALS_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskClassify, "PROMPTCANVAS_LLM_CLASSIFY_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskPlan, "PROMPTCANVAS_LLM_PLAN_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c Config) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// Configured reports whether the client is enabled and has a credential.
func (c Config) Configured() bool {
	return c.Enabled && c.APIKey != ""
}

func applyTaskTimeoutEnv(cfg *Config, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
