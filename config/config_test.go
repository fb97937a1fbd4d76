package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.OperationMode != "normal" {
		t.Errorf("operation_mode = %q", cfg.OperationMode)
	}
	if cfg.MaxContextTokens != 20480 {
		t.Errorf("max_context_tokens = %d", cfg.MaxContextTokens)
	}
	if cfg.CompactionThreshold != 0.75 {
		t.Errorf("compaction_threshold = %v", cfg.CompactionThreshold)
	}
	if cfg.CommandTimeout != 30 {
		t.Errorf("command_timeout = %d", cfg.CommandTimeout)
	}
	if !cfg.AllowClarifyingQuestions {
		t.Error("allow_clarifying_questions should default on")
	}
	if cfg.MaxParseRetries != 10 {
		t.Errorf("max_parse_retries = %d", cfg.MaxParseRetries)
	}
	if _, ok := cfg.AllowedCommands["ls"]; !ok {
		t.Error("default allowed_commands should include ls")
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `provider: anthropic
model: claude-sonnet-4-5
operation_mode: gremlin
max_context_tokens: 4096
allowed_commands:
  git: version control
prompts:
  plan: custom planner prompt
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "anthropic" || cfg.Model != "claude-sonnet-4-5" {
		t.Errorf("transport config not applied: %+v", cfg)
	}
	if cfg.OperationMode != "gremlin" {
		t.Errorf("operation_mode = %q", cfg.OperationMode)
	}
	if cfg.MaxContextTokens != 4096 {
		t.Errorf("max_context_tokens = %d", cfg.MaxContextTokens)
	}
	if cfg.AllowedCommands["git"] != "version control" {
		t.Errorf("allowed_commands = %v", cfg.AllowedCommands)
	}
	if cfg.Prompts.Plan != "custom planner prompt" {
		t.Errorf("prompts.plan = %q", cfg.Prompts.Plan)
	}
	// Untouched keys keep their defaults.
	if cfg.CompactionThreshold != 0.75 {
		t.Errorf("compaction_threshold = %v", cfg.CompactionThreshold)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("provider: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
}
