package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, 10_000, cfg.Session.MaxSessions)
	assert.Equal(t, 0.75, cfg.Personalization.LLMOverrideThreshold)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PROMPTCANVAS_SERVER_ADDR", ":9999")
	t.Setenv("PROMPTCANVAS_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_RejectsBadLevel(t *testing.T) {
	t.Setenv("PROMPTCANVAS_LOGGING_LEVEL", "shouty")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:          ServerConfig{Addr: ":8080"},
		Session:         SessionConfig{IdleTTL: time.Minute, MaxSessions: 10, MaxEvents: 5},
		Personalization: PersonalizationConfig{LLMOverrideThreshold: 0.75},
		Logging:         LoggingConfig{Level: "info"},
	}
	assert.NoError(t, valid.Validate())

	broken := valid
	broken.Personalization.LLMOverrideThreshold = 1.5
	assert.Error(t, broken.Validate())

	broken = valid
	broken.Session.MaxSessions = 0
	assert.Error(t, broken.Validate())
}
