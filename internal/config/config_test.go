package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEventLogConfig_DefaultsWhenUnset(t *testing.T) {
	t.Setenv("DB_CONN_STRING", "")
	t.Setenv("SXLRUN_EVENTLOG_DISABLED", "")

	cfg := GetEventLogConfig()
	assert.Equal(t, "postgres://localhost:5432/postgres?sslmode=disable", cfg.ConnectionString)
	assert.True(t, cfg.Enabled)
}

func TestGetEventLogConfig_HonorsEnv(t *testing.T) {
	t.Setenv("DB_CONN_STRING", "postgres://db.internal:5432/sxlrun")
	t.Setenv("SXLRUN_EVENTLOG_DISABLED", "1")

	cfg := GetEventLogConfig()
	assert.Equal(t, "postgres://db.internal:5432/sxlrun", cfg.ConnectionString)
	assert.False(t, cfg.Enabled)
}

func TestGetLLMConfig_DefaultModel(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "")

	cfg := GetLLMConfig()
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.Model)
}

func TestGetExecutorConfig_FallsBackOnInvalidValue(t *testing.T) {
	t.Setenv("SXLRUN_BASE_BACKOFF_MS", "not-a-number")
	t.Setenv("SXLRUN_MAX_BACKOFF_MS", "500")

	cfg := GetExecutorConfig()
	assert.Equal(t, 50*time.Millisecond, cfg.BaseBackoff)
	assert.Equal(t, 500*time.Millisecond, cfg.MaxBackoff)
}

func TestGetPromptConfig_Defaults(t *testing.T) {
	t.Setenv("SXLRUN_LLM_PROVIDER", "")
	t.Setenv("GEMINI_MODEL", "")

	cfg := GetPromptConfig()
	assert.Equal(t, "google", cfg.Provider)
	assert.Equal(t, "gemini-1.5-pro", cfg.Model)
}

func TestGetGrammarDirConfig_Default(t *testing.T) {
	t.Setenv("SXLRUN_GRAMMAR_DIR", "")
	cfg := GetGrammarDirConfig()
	assert.Equal(t, "testdata/grammars", cfg.Dir)
}
