// Package extract parses free-text model responses into typed fields.
//
// Phase responses follow a fixed tag grammar: each field is wrapped in a
// distinct start/end marker (<think>, <checklist>, <instruction>, <decision>,
// <summary>, <definition_of_done>, <command>). Every accessor tolerates
// absence and returns the empty string; callers decide whether an empty
// field is an error. When a tag occurs more than once, the first match wins.
package extract

import (
	"regexp"
	"strings"
)

var (
	thoughtRe     = regexp.MustCompile(`(?s)<think>(.*?)</think>`)
	checklistRe   = regexp.MustCompile(`(?s)<checklist>(.*?)</checklist>`)
	instructionRe = regexp.MustCompile(`(?s)<instruction>(.*?)</instruction>`)
	decisionRe    = regexp.MustCompile(`(?s)<decision>(.*?)</decision>`)
	summaryRe     = regexp.MustCompile(`(?s)<summary>(.*?)</summary>`)
	doneRe        = regexp.MustCompile(`(?s)<definition_of_done>(.*?)</definition_of_done>`)
	commandRe     = regexp.MustCompile(`(?s)<command>(.*?)</command>`)
)

func first(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Thought returns the content of the <think> block.
func Thought(text string) string { return first(thoughtRe, text) }

// Plan returns the content of the <checklist> block.
func Plan(text string) string { return first(checklistRe, text) }

// Instruction returns the content of the <instruction> block.
func Instruction(text string) string { return first(instructionRe, text) }

// RawDecision returns the content of the <decision> block.
func RawDecision(text string) string { return first(decisionRe, text) }

// Summary returns the content of the <summary> block.
func Summary(text string) string { return first(summaryRe, text) }

// DefinitionOfDone returns the content of the <definition_of_done> block.
func DefinitionOfDone(text string) string { return first(doneRe, text) }

// Command returns the content of the <command> block.
func Command(text string) string { return first(commandRe, text) }

// Decision is an evaluator verdict in "TYPE: message" form, parsed once at
// the boundary.
type Decision struct {
	Type    string
	Message string
}

// IsZero reports whether no decision was present.
func (d Decision) IsZero() bool { return d.Type == "" && d.Message == "" }

// ParseDecision splits raw decision text on the first colon. Without a
// colon, the whole trimmed string becomes the type and the message is empty.
func ParseDecision(raw string) Decision {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Decision{}
	}
	if i := strings.Index(raw, ":"); i >= 0 {
		return Decision{
			Type:    strings.TrimSpace(raw[:i]),
			Message: strings.TrimSpace(raw[i+1:]),
		}
	}
	return Decision{Type: raw}
}

// DecisionFrom extracts and parses the decision from a full response.
func DecisionFrom(text string) Decision {
	return ParseDecision(RawDecision(text))
}

// ChecklistItems splits plan text into its non-empty steps, stripping common
// list markers ("- ", "* ", "+ ", "1. ").
func ChecklistItems(plan string) []string {
	var items []string
	for _, line := range strings.Split(plan, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "), strings.HasPrefix(line, "+ "):
			items = append(items, strings.TrimSpace(line[2:]))
		default:
			items = append(items, strings.TrimSpace(numberedItemRe.ReplaceAllString(line, "")))
		}
	}
	return items
}

var numberedItemRe = regexp.MustCompile(`^\d+\.?\s+`)
