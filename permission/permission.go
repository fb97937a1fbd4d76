// Package permission gates suggested shell commands by operation mode.
//
// Modes: normal runs only pre-approved commands and confirms each one,
// gremlin runs pre-approved commands immediately and prompts for the rest,
// goblin runs everything without checks. Blacklisted commands never run in
// normal or gremlin mode.
package permission

import (
	"fmt"
	"strings"
)

// Mode is the command gating policy.
type Mode string

const (
	ModeNormal  Mode = "normal"
	ModeGremlin Mode = "gremlin"
	ModeGoblin  Mode = "goblin"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNormal:
		return ModeNormal, nil
	case ModeGremlin:
		return ModeGremlin, nil
	case ModeGoblin:
		return ModeGoblin, nil
	default:
		return "", fmt.Errorf("unknown operation mode %q", s)
	}
}

// PromptDecision is the user's answer to a gremlin-mode permission prompt.
type PromptDecision int

const (
	AllowOnce PromptDecision = iota
	Deny
	CancelTask
)

// Manager checks commands against the configured allow and black lists.
// Commands are identified by their first shell word.
type Manager struct {
	allowed     map[string]string // name -> description
	blacklisted map[string]string // name -> reason
}

// NewManager creates a Manager from the configured command maps. Nil maps
// are treated as empty.
func NewManager(allowed, blacklisted map[string]string) *Manager {
	if allowed == nil {
		allowed = map[string]string{}
	}
	if blacklisted == nil {
		blacklisted = map[string]string{}
	}
	return &Manager{allowed: allowed, blacklisted: blacklisted}
}

// Allowed returns the allow map, used to render the actor's tool
// instructions.
func (m *Manager) Allowed() map[string]string { return m.allowed }

// baseCommand extracts the command name a policy applies to.
func baseCommand(command string) string {
	fields := strings.Fields(strings.TrimSpace(command))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// IsBlacklisted reports whether the command's base name is blacklisted.
func (m *Manager) IsBlacklisted(command string) bool {
	_, ok := m.blacklisted[baseCommand(command)]
	return ok
}

// Check decides whether a command may run under the given mode. When it
// returns false the reason explains the block; in gremlin mode an
// un-blacklisted false verdict means "ask the user".
func (m *Manager) Check(command string, mode Mode) (bool, string) {
	base := baseCommand(command)
	if base == "" {
		return false, "empty command"
	}

	if mode == ModeGoblin {
		return true, ""
	}

	if reason, ok := m.blacklisted[base]; ok {
		if reason == "" {
			reason = "command is blacklisted"
		}
		return false, fmt.Sprintf("'%s' is blacklisted: %s", base, reason)
	}

	if _, ok := m.allowed[base]; ok {
		return true, ""
	}

	switch mode {
	case ModeNormal:
		return false, fmt.Sprintf("'%s' is not in the allowed command list", base)
	default: // gremlin
		return false, fmt.Sprintf("'%s' is not pre-approved", base)
	}
}

// LineReader is the single blocking read of one line of user input.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// PromptUser asks for a decision on an unapproved command in gremlin mode.
// Unrecognized answers count as deny.
func PromptUser(r LineReader, command string) (PromptDecision, string, error) {
	answer, err := r.ReadLine(fmt.Sprintf("Permission required for '%s' [a]llow once / [d]eny / [c]ancel task: ", command))
	if err != nil {
		return Deny, "failed to read permission answer", err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "a", "allow", "allow once", "y", "yes":
		return AllowOnce, "user allowed once", nil
	case "c", "cancel":
		return CancelTask, "user cancelled the task", nil
	default:
		return Deny, "user denied permission", nil
	}
}
