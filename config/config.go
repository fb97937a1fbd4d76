// Package config loads application configuration from config.yaml with
// viper, applying sensible defaults for every knob.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	// Model transport.
	Provider          string  `mapstructure:"provider"`
	Model             string  `mapstructure:"model"`
	APIKey            string  `mapstructure:"api_key"`
	Temperature       float64 `mapstructure:"temperature"`
	MaxResponseTokens int     `mapstructure:"max_response_tokens"`

	// Task loop behavior.
	OperationMode            string `mapstructure:"operation_mode"`
	CommandTimeout           int    `mapstructure:"command_timeout"` // seconds
	AllowClarifyingQuestions bool   `mapstructure:"allow_clarifying_questions"`
	// MaxParseRetries caps the retry-until-valid loop for malformed phase
	// responses. 0 means unbounded, matching the original behavior.
	MaxParseRetries int `mapstructure:"max_parse_retries"`

	// Context budget.
	MaxContextTokens    int     `mapstructure:"max_context_tokens"`
	CompactionThreshold float64 `mapstructure:"compaction_threshold"`
	// AccurateTokenCount switches the estimator from the chars/4 heuristic
	// to tiktoken's cl100k_base encoding.
	AccurateTokenCount bool `mapstructure:"accurate_token_count"`

	// Command gating.
	AllowedCommands     map[string]string `mapstructure:"allowed_commands"`
	BlacklistedCommands map[string]string `mapstructure:"blacklisted_commands"`

	// Phase prompt overrides. Empty fields fall back to the built-in
	// templates.
	Prompts Prompts `mapstructure:"prompts"`
}

// Prompts holds per-phase system prompt overrides.
type Prompts struct {
	Plan              string `mapstructure:"plan"`
	Action            string `mapstructure:"action"`
	Evaluate          string `mapstructure:"evaluate"`
	CompletionSummary string `mapstructure:"completion_summary"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_response_tokens", 4096)

	v.SetDefault("operation_mode", "normal")
	v.SetDefault("command_timeout", 30)
	v.SetDefault("allow_clarifying_questions", true)
	v.SetDefault("max_parse_retries", 10)

	v.SetDefault("max_context_tokens", 20480)
	v.SetDefault("compaction_threshold", 0.75)
	v.SetDefault("accurate_token_count", false)

	v.SetDefault("allowed_commands", map[string]string{
		"ls":   "List directory contents.",
		"cat":  "Display file content.",
		"echo": "Print text to the console.",
	})
	v.SetDefault("blacklisted_commands", map[string]string{})
}

// Dir returns the directory holding config.yaml and context.json.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "termaite"), nil
}

// ContextPath returns the session store file path under dir.
func ContextPath(dir string) string {
	return filepath.Join(dir, "context.json")
}

// Load reads configuration from the given file. An empty path means the
// default location; a missing file yields pure defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	// A missing config file is fine; a malformed one is not.
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
