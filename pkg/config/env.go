package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file from the working directory into the process
// environment. Variables already set are never overwritten.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// applyEnvOverrides lets the environment supply secrets that should not live in
// config.json. A DSN from the environment implies the postgres driver when the
// file names none.
func (c *Config) applyEnvOverrides() {
	if dsn := firstEnv("DATABASE_URL", "NEON_DB_URL"); dsn != "" {
		c.Store.DSN = dsn
		if c.Store.Driver == "" {
			c.Store.Driver = "postgres"
		}
	}
	if tr := os.Getenv("SCRIPTURA_DEFAULT_TRANSLATION"); tr != "" {
		c.DefaultTranslation = tr
	}
}

// ProviderAPIKey returns the API key exported for a provider type, or "".
// Provider configs with an empty api_key fall back to it.
func ProviderAPIKey(providerType string) string {
	switch providerType {
	case "gemini":
		return firstEnv("GEMINI_API_KEY", "GEMINI_AI_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}
