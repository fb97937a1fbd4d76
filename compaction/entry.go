package compaction

import (
	"strings"

	"termaite/session"
)

// ContextEntry is one prompt/response pair in the in-memory view of a
// session, annotated with the flags the compaction algorithm needs.
type ContextEntry struct {
	Kind              string
	UserPrompt        string
	Response          string
	Timestamp         string
	IsPlan            bool
	IsOriginalRequest bool
	CompactionLevel   int // 0 = original, 1 = summarized once, 2 = very compact
}

// summaryMarker is the prompt text of every synthetic summary entry. It
// round-trips through the session store unchanged.
const summaryMarker = "[HISTORICAL CONTEXT SUMMARY]"

// FromStored converts raw session entries into annotated context entries.
// The first entry is the original request; a plan entry is one whose prompt
// mentions "plan" or whose response contains a checklist.
func FromStored(stored []session.Entry) []ContextEntry {
	entries := make([]ContextEntry, 0, len(stored))
	for i, raw := range stored {
		entries = append(entries, ContextEntry{
			Kind:              raw.Kind,
			UserPrompt:        raw.UserPrompt,
			Response:          raw.Response,
			Timestamp:         raw.Timestamp,
			IsOriginalRequest: i == 0,
			IsPlan: strings.Contains(strings.ToLower(raw.UserPrompt), "plan") ||
				strings.Contains(strings.ToLower(raw.Response), "checklist"),
			CompactionLevel: raw.CompactionLevel,
		})
	}
	return entries
}

// ToStored converts annotated entries back into their durable form.
func ToStored(entries []ContextEntry) []session.Entry {
	stored := make([]session.Entry, 0, len(entries))
	for _, e := range entries {
		stored = append(stored, session.Entry{
			Kind:            e.Kind,
			UserPrompt:      e.UserPrompt,
			Response:        e.Response,
			Timestamp:       e.Timestamp,
			CompactionLevel: e.CompactionLevel,
		})
	}
	return stored
}
