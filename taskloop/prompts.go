package taskloop

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"termaite/config"
	"termaite/permission"
)

// promptBuilder assembles the per-phase system prompt: configured override
// or built-in template, project guidance from .termaite/, the clarifying
// questions conditional, and the placeholder substitutions.
type promptBuilder struct {
	prompts      config.Prompts
	workdir      string
	mode         permission.Mode
	allowClarify bool
	allowed      map[string]string
}

var clarifyIfElse = regexp.MustCompile(`(?s)\{\{if ALLOW_CLARIFYING_QUESTIONS\}\}(.*?)\{\{else\}\}(.*?)\{\{end\}\}`)
var clarifyIf = regexp.MustCompile(`(?s)\{\{if ALLOW_CLARIFYING_QUESTIONS\}\}(.*?)\{\{end\}\}`)

// projectPromptFiles maps phases to their override file under .termaite/.
var projectPromptFiles = map[Phase]string{
	PhasePlan:     "PLANNER.md",
	PhaseAction:   "ACTOR.md",
	PhaseEvaluate: "EVALUATOR.md",
}

func (b *promptBuilder) SystemPrompt(phase Phase) string {
	prompt := b.basePrompt(phase)

	if guidance := b.projectGuidance(phase); guidance != "" {
		prompt += "\n\nPROJECT-SPECIFIC GUIDANCE:\n" + guidance
	}

	prompt = resolveClarifyConditional(prompt, b.allowClarify)
	prompt = strings.ReplaceAll(prompt, "{working_directory}", b.workdir)
	prompt = strings.ReplaceAll(prompt, "{tool_instructions}", b.toolInstructions(phase))
	return strings.TrimSpace(prompt)
}

func (b *promptBuilder) basePrompt(phase Phase) string {
	var override, fallback string
	switch phase {
	case PhasePlan:
		override, fallback = b.prompts.Plan, config.DefaultPlanPrompt
	case PhaseAction:
		override, fallback = b.prompts.Action, config.DefaultActionPrompt
	case PhaseEvaluate:
		override, fallback = b.prompts.Evaluate, config.DefaultEvaluatePrompt
	case PhaseCompletionSummary:
		override, fallback = b.prompts.CompletionSummary, config.DefaultCompletionSummaryPrompt
	}
	if strings.TrimSpace(override) != "" {
		return override
	}
	return fallback
}

// projectGuidance reads the phase's .termaite/ override file, if any.
// Unreadable files are treated as absent.
func (b *promptBuilder) projectGuidance(phase Phase) string {
	name, ok := projectPromptFiles[phase]
	if !ok || b.workdir == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(b.workdir, ".termaite", name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// resolveClarifyConditional keeps the branch matching the setting and
// strips the template markers.
func resolveClarifyConditional(prompt string, allow bool) string {
	if !strings.Contains(prompt, "{{if ALLOW_CLARIFYING_QUESTIONS}}") {
		return prompt
	}
	if allow {
		prompt = clarifyIfElse.ReplaceAllString(prompt, "$1")
		prompt = clarifyIf.ReplaceAllString(prompt, "$1")
	} else {
		prompt = clarifyIfElse.ReplaceAllString(prompt, "$2")
		prompt = clarifyIf.ReplaceAllString(prompt, "")
	}
	for _, marker := range []string{"{{if ALLOW_CLARIFYING_QUESTIONS}}", "{{else}}", "{{end}}"} {
		prompt = strings.ReplaceAll(prompt, marker, "")
	}
	return prompt
}

// toolInstructions renders the command policy for the actor. Other phases
// get nothing.
func (b *promptBuilder) toolInstructions(phase Phase) string {
	if phase != PhaseAction {
		return ""
	}
	switch b.mode {
	case permission.ModeGremlin:
		var preApproved string
		if len(b.allowed) > 0 {
			names := make([]string, 0, len(b.allowed))
			for name := range b.allowed {
				names = append(names, name)
			}
			sort.Strings(names)
			preApproved = fmt.Sprintf("Pre-approved commands that run without confirmation: %s. ", strings.Join(names, ", "))
		}
		return "\nYou are operating in GREMLIN mode. " + preApproved +
			"You may suggest ANY shell command you deem necessary; commands not on the " +
			"pre-approved list will ask the user for permission first.\n"
	case permission.ModeGoblin:
		return "\nYou are operating in GOBLIN mode: every command you suggest runs " +
			"immediately without confirmation. Choose commands carefully.\n"
	default:
		return b.normalModeInstructions()
	}
}

func (b *promptBuilder) normalModeInstructions() string {
	if len(b.allowed) == 0 {
		return "\nThe list of allowed commands is empty, so you cannot suggest any shell " +
			"command. State that you cannot perform the action and explain why.\n"
	}
	rendered, err := yaml.Marshal(map[string]map[string]string{"allowed_commands": b.allowed})
	if err != nil {
		rendered = []byte{}
	}
	return fmt.Sprintf(
		"\nYou are permitted to use ONLY the following commands, listed below in YAML "+
			"with their descriptions:\n\n```yaml\n%s```\n\nIf no command on this list fits, "+
			"state that you cannot perform the action with the available commands and why.\n",
		rendered)
}
