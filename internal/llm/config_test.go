package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "https://api.openai.com", cfg.Endpoint)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.False(t, cfg.Configured(), "no API key means not configured")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PROMPTCANVAS_LLM_API_KEY", "sk-test")
	t.Setenv("PROMPTCANVAS_LLM_ENDPOINT", "http://localhost:9099")
	t.Setenv("PROMPTCANVAS_LLM_MODEL", "local-model")
	t.Setenv("PROMPTCANVAS_LLM_MAX_ATTEMPTS", "5")
	t.Setenv("PROMPTCANVAS_LLM_TIMEOUT_MS", "2500")
	t.Setenv("PROMPTCANVAS_LLM_PLAN_TIMEOUT_MS", "9000")

	cfg := LoadConfig()

	assert.Equal(t, "http://localhost:9099", cfg.Endpoint)
	assert.Equal(t, "local-model", cfg.Model)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 2500, cfg.TimeoutMs)
	assert.Equal(t, 9000, cfg.TaskTimeout(TaskPlan))
	assert.True(t, cfg.Configured())
}

func TestLoadConfigIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("PROMPTCANVAS_LLM_TIMEOUT_MS", "not-a-number")
	t.Setenv("PROMPTCANVAS_LLM_MAX_ATTEMPTS", "-2")

	cfg := LoadConfig()

	assert.Equal(t, DefaultConfig().TimeoutMs, cfg.TimeoutMs)
	assert.Equal(t, DefaultConfig().MaxAttempts, cfg.MaxAttempts)
}

func TestLoadConfigDisabled(t *testing.T) {
	t.Setenv("PROMPTCANVAS_LLM_ENABLED", "false")
	t.Setenv("PROMPTCANVAS_LLM_API_KEY", "sk-test")

	cfg := LoadConfig()
	assert.False(t, cfg.Configured(), "disabled wins over a present key")
}

func TestTaskTimeoutFallsBackToGlobal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutMs = 7000
	cfg.Tasks[TaskSignals] = TaskConfig{Temperature: 0.1, MaxTokens: 768}

	assert.Equal(t, 7000, cfg.TaskTimeout(TaskSignals))
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskPlan))

	require.NotContains(t, cfg.Tasks, TaskType("unknown"))
	assert.Equal(t, 7000, cfg.TaskTimeout(TaskType("unknown")))
}
