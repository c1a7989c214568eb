package config

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTranslation is the translation code used when a reference names none.
const DefaultTranslation = "BSB"

// DefaultSystemPrompt is the instruction sent as the first message of every
// delegated conversation.
const DefaultSystemPrompt = `You are a structured Bible study assistant.
Use tools when necessary.
Always cite verses.
Only quote scripture text returned by the scripture_lookup tool; never quote from memory.
If a translation is not available, ask the user to choose one of the available translations.
Prefer scripture_lookup for direct references.
Prefer semantic_search for thematic questions.
If you don't know the answer, say "I do not have a strong answer for you".`

// Config defines the global application configuration structure.
// This structure maps directly to the config.json file and holds
// business-level settings like channel credentials, LLM provider choices
// and the scripture store location.
type Config struct {
	// Channels contains a map of channel identifiers (e.g., "telegram", "web")
	// to their specific configuration payloads in raw JSON format.
	Channels map[string]jsoniter.RawMessage `json:"channels"`
	// LLM holds the provider group configuration in raw JSON.
	LLM jsoniter.RawMessage `json:"llm"`
	// SystemPrompt is the persona/instruction string sent to the model
	// as the initial system message of every delegated conversation.
	SystemPrompt string `json:"system_prompt"`
	// DefaultTranslation is applied to parsed references without a code.
	DefaultTranslation string `json:"default_translation"`
	// Store selects the scripture repository backend.
	Store StoreConfig `json:"store"`
}

// StoreConfig names the database driver and its connection string.
type StoreConfig struct {
	Driver string `json:"driver"` // "postgres", "mysql", "sqlite" or "memory"
	DSN    string `json:"dsn"`
}

// Validate ensures the configuration structure contains all mandatory fields.
// The LLM section is checked later by the provider loader so that commands
// which never reach the model (translations, fast-path lookups) still start.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres", "mysql", "sqlite":
		if c.Store.DSN == "" {
			return fmt.Errorf("store driver %q requires a dsn", c.Store.Driver)
		}
	case "memory":
	case "":
		return fmt.Errorf("mandatory 'store.driver' configuration is missing")
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DefaultTranslation == "" {
		c.DefaultTranslation = DefaultTranslation
	}
	c.DefaultTranslation = strings.ToUpper(strings.TrimSpace(c.DefaultTranslation))
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
}

// SystemConfig defines engine-level technical parameters.
// These settings are usually stored in system.json and control the
// performance, reliability, and technical behavior of the orchestrator.
type SystemConfig struct {
	// MaxRetries is the number of times a reasoning step is retried after a
	// transient provider error before the request fails.
	MaxRetries int `json:"max_retries"`
	// RetryDelayMs is the duration to wait (in milliseconds) between
	// consecutive retry attempts.
	RetryDelayMs int `json:"retry_delay_ms"`
	// LLMTimeoutMs bounds a single reasoning step.
	LLMTimeoutMs int `json:"llm_timeout_ms"`
	// ToolTimeoutMs bounds a single tool invocation.
	ToolTimeoutMs int `json:"tool_timeout_ms"`
	// MaxAgentIterations caps the number of reasoning steps per request.
	// A conversation still asking for tools after the cap fails as non-convergent.
	MaxAgentIterations int `json:"max_agent_iterations"`
	// OllamaDefaultURL is the fallback endpoint used when connecting
	// to a local Ollama instance if no specific URL is provided.
	OllamaDefaultURL string `json:"ollama_default_url"`
	// TelegramMessageLimit is the maximum character count for a single
	// Telegram message. Longer answers are split.
	TelegramMessageLimit int `json:"telegram_message_limit"`
	// DebugChunks enables saving every raw LLM response chunk to the /debug
	// folder for inspection and troubleshooting purposes.
	DebugChunks bool `json:"debug_chunks"`
	// LogLevel sets the minimum severity for log output.
	// Accepted values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `json:"log_level"`
	// EnableTools globally toggles tool calling. With tools disabled the
	// model can only answer from the conversation itself.
	EnableTools bool `json:"enable_tools"`
	// TranscriptPath is the bbolt file delegated conversations are archived
	// to. Empty disables archiving.
	TranscriptPath string `json:"transcript_path"`
	// TranscriptRetentionHours drops archived conversations older than this. 0 keeps all.
	TranscriptRetentionHours int `json:"transcript_retention_hours"`
}

// DefaultSystemConfig returns a SystemConfig pointer initialized with hardcoded
// safe default values. This is used as a fallback when the system.json file
// is missing or corrupt, ensuring the engine can always start.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		MaxRetries:           3,
		RetryDelayMs:         500,
		LLMTimeoutMs:         60000,
		ToolTimeoutMs:        10000,
		MaxAgentIterations:   6,
		OllamaDefaultURL:     "http://localhost:11434",
		TelegramMessageLimit: 4000,
		LogLevel:             "info",
		EnableTools:          true,
	}
}

// Load reads and parses the JSON configuration files.
// The application config at appPath is mandatory; environment overrides
// (including a .env file) are applied before validation.
// Then it calls LoadSystemConfig to load sysPath.
func Load(appPath, sysPath string) (*Config, *SystemConfig, error) {
	if _, err := os.Stat(appPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("config file '%s' not found. please create one", appPath)
	}

	appFile, err := os.ReadFile(appPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(appFile, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	LoadEnv()
	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return &cfg, LoadSystemConfig(sysPath), nil
}

// LoadSystemConfig attempts to load system settings, returns defaults if it fails
func LoadSystemConfig(path string) *SystemConfig {
	cfg := DefaultSystemConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	if err := json.Unmarshal(file, cfg); err != nil {
		return DefaultSystemConfig()
	}

	return cfg
}

// SystemStore publishes the current SystemConfig to concurrent readers.
// Each request takes one snapshot and uses it for its whole lifetime.
type SystemStore struct {
	current atomic.Pointer[SystemConfig]
}

// NewSystemStore creates a store holding cfg (or the defaults when nil).
func NewSystemStore(cfg *SystemConfig) *SystemStore {
	if cfg == nil {
		cfg = DefaultSystemConfig()
	}
	s := &SystemStore{}
	s.current.Store(cfg)
	return s
}

// Get returns the current snapshot. Callers must not mutate it.
func (s *SystemStore) Get() *SystemConfig {
	return s.current.Load()
}

// Set replaces the current snapshot.
func (s *SystemStore) Set(cfg *SystemConfig) {
	if cfg != nil {
		s.current.Store(cfg)
	}
}

// Reload re-reads path and publishes the result.
func (s *SystemStore) Reload(path string) *SystemConfig {
	cfg := LoadSystemConfig(path)
	s.Set(cfg)
	return cfg
}
