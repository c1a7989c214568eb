package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("NEON_DB_URL", "")
	t.Setenv("SCRIPTURA_DEFAULT_TRANSLATION", "")

	dir := t.TempDir()
	app := writeFile(t, dir, "config.json", `{"store":{"driver":"memory"}}`)

	cfg, sys, err := Load(app, filepath.Join(dir, "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "BSB", cfg.DefaultTranslation)
	assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
	assert.Equal(t, DefaultSystemConfig(), sys)
}

func TestLoadEnvOverridesStore(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("NEON_DB_URL", "postgres://u:p@db/bible")
	t.Setenv("SCRIPTURA_DEFAULT_TRANSLATION", "kjv")

	dir := t.TempDir()
	app := writeFile(t, dir, "config.json", `{}`)

	cfg, _, err := Load(app, "")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://u:p@db/bible", cfg.Store.DSN)
	assert.Equal(t, "KJV", cfg.DefaultTranslation)
}

func TestLoadRejectsInvalidStore(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("NEON_DB_URL", "")

	tests := []struct {
		name string
		body string
	}{
		{"missing driver", `{}`},
		{"unknown driver", `{"store":{"driver":"oracle","dsn":"x"}}`},
		{"sql without dsn", `{"store":{"driver":"sqlite"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := writeFile(t, t.TempDir(), "config.json", tt.body)
			_, _, err := Load(app, "")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.json"), "")
	assert.ErrorContains(t, err, "not found")
}

func TestLoadSystemConfig(t *testing.T) {
	dir := t.TempDir()

	partial := writeFile(t, dir, "system.json", `{"max_agent_iterations": 2, "log_level": "debug"}`)
	cfg := LoadSystemConfig(partial)
	assert.Equal(t, 2, cfg.MaxAgentIterations)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3, cfg.MaxRetries, "unset fields keep their defaults")

	corrupt := writeFile(t, dir, "bad.json", `{not json`)
	assert.Equal(t, DefaultSystemConfig(), LoadSystemConfig(corrupt))
}

func TestSystemStoreReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "system.json", `{"tool_timeout_ms": 1}`)

	store := NewSystemStore(nil)
	assert.Equal(t, 10000, store.Get().ToolTimeoutMs)

	store.Reload(path)
	assert.Equal(t, 1, store.Get().ToolTimeoutMs)

	store.Set(nil)
	assert.NotNil(t, store.Get())
}

func TestProviderAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_AI_API_KEY", "legacy")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	assert.Equal(t, "legacy", ProviderAPIKey("gemini"))
	assert.Equal(t, "sk-test", ProviderAPIKey("openai"))
	assert.Empty(t, ProviderAPIKey("ollama"))
}
