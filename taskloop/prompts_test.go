package taskloop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termaite/config"
	"termaite/permission"
)

func newTestPromptBuilder(workdir string, mode permission.Mode, allowClarify bool, allowed map[string]string) *promptBuilder {
	return &promptBuilder{
		prompts:      config.Prompts{},
		workdir:      workdir,
		mode:         mode,
		allowClarify: allowClarify,
		allowed:      allowed,
	}
}

func TestSystemPromptClarifyEnabled(t *testing.T) {
	b := newTestPromptBuilder(t.TempDir(), permission.ModeNormal, true, nil)
	prompt := b.SystemPrompt(PhasePlan)
	assert.Contains(t, prompt, "CLARIFY_USER")
	assert.NotContains(t, prompt, "{{if ALLOW_CLARIFYING_QUESTIONS}}")
	assert.NotContains(t, prompt, "{{else}}")
	assert.NotContains(t, prompt, "Do not ask clarifying questions")
}

func TestSystemPromptClarifyDisabled(t *testing.T) {
	b := newTestPromptBuilder(t.TempDir(), permission.ModeNormal, false, nil)

	plan := b.SystemPrompt(PhasePlan)
	assert.NotContains(t, plan, "CLARIFY_USER")
	assert.Contains(t, plan, "Do not ask clarifying questions")

	eval := b.SystemPrompt(PhaseEvaluate)
	assert.NotContains(t, eval, "CLARIFY_USER")
	assert.NotContains(t, eval, "{{end}}")
}

func TestSystemPromptSubstitutesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	b := newTestPromptBuilder(dir, permission.ModeNormal, true, nil)
	assert.Contains(t, b.SystemPrompt(PhasePlan), "Working directory: "+dir)
}

func TestToolInstructionsNormalModeListsCommandsAsYAML(t *testing.T) {
	b := newTestPromptBuilder(t.TempDir(), permission.ModeNormal, true,
		map[string]string{"ls": "list files"})
	prompt := b.SystemPrompt(PhaseAction)
	assert.Contains(t, prompt, "```yaml")
	assert.Contains(t, prompt, "allowed_commands:")
	assert.Contains(t, prompt, "ls: list files")
}

func TestToolInstructionsNormalModeEmptyAllowList(t *testing.T) {
	b := newTestPromptBuilder(t.TempDir(), permission.ModeNormal, true, nil)
	prompt := b.SystemPrompt(PhaseAction)
	assert.Contains(t, prompt, "allowed commands is empty")
}

func TestToolInstructionsPermissiveModes(t *testing.T) {
	gremlin := newTestPromptBuilder(t.TempDir(), permission.ModeGremlin, true,
		map[string]string{"ls": "list files", "cat": "print files"})
	prompt := gremlin.SystemPrompt(PhaseAction)
	assert.Contains(t, prompt, "GREMLIN")
	assert.Contains(t, prompt, "cat, ls")

	goblin := newTestPromptBuilder(t.TempDir(), permission.ModeGoblin, true, nil)
	assert.Contains(t, goblin.SystemPrompt(PhaseAction), "GOBLIN")
}

func TestToolInstructionsOnlyForActionPhase(t *testing.T) {
	b := newTestPromptBuilder(t.TempDir(), permission.ModeNormal, true,
		map[string]string{"ls": "list files"})
	assert.NotContains(t, b.SystemPrompt(PhasePlan), "```yaml")
	assert.NotContains(t, b.SystemPrompt(PhaseEvaluate), "```yaml")
}

func TestProjectGuidanceAppended(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".termaite"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".termaite", "PLANNER.md"),
		[]byte("Always prefer make targets over raw commands."), 0o644))

	b := newTestPromptBuilder(dir, permission.ModeNormal, true, nil)
	plan := b.SystemPrompt(PhasePlan)
	assert.Contains(t, plan, "PROJECT-SPECIFIC GUIDANCE:")
	assert.Contains(t, plan, "Always prefer make targets")

	// Only the planner has an override file in this project.
	assert.NotContains(t, b.SystemPrompt(PhaseAction), "PROJECT-SPECIFIC GUIDANCE:")
}

func TestConfiguredPromptOverridesDefault(t *testing.T) {
	b := newTestPromptBuilder(t.TempDir(), permission.ModeNormal, true, nil)
	b.prompts.Plan = "Custom planner prompt for {working_directory}."
	prompt := b.SystemPrompt(PhasePlan)
	assert.Contains(t, prompt, "Custom planner prompt for "+b.workdir)
	assert.NotContains(t, prompt, "REQUIRED OUTPUT FORMAT")
}
