// Package compaction keeps a session's context history within a token
// budget.
//
// When the estimated cost of a session's history crosses a threshold
// fraction of the budget, the oldest half of the compactable entries is
// replaced by a single model-generated summary entry. The most recent plan
// entry and the entry matching the live prompt are never summarized, and
// the chronological order of everything else is preserved.
package compaction

import (
	"context"
	"fmt"
	"strings"

	"termaite/llm"
	"termaite/session"
)

// Defaults for the token budget.
const (
	DefaultMaxTokens = 20480
	DefaultThreshold = 0.75
)

// Compactor is the context budget manager.
type Compactor struct {
	maxTokens int
	threshold float64
	estimator Estimator
	client    llm.Client
	store     session.Store
}

// CompactorOption configures a Compactor.
type CompactorOption func(*Compactor)

// WithMaxTokens sets the token budget.
func WithMaxTokens(n int) CompactorOption {
	return func(c *Compactor) { c.maxTokens = n }
}

// WithThreshold sets the budget fraction that triggers compaction.
func WithThreshold(f float64) CompactorOption {
	return func(c *Compactor) { c.threshold = f }
}

// WithEstimator replaces the default chars/4 token estimator.
func WithEstimator(e Estimator) CompactorOption {
	return func(c *Compactor) { c.estimator = e }
}

// NewCompactor creates a budget manager that summarizes via client and
// persists via store.
func NewCompactor(client llm.Client, store session.Store, opts ...CompactorOption) *Compactor {
	c := &Compactor{
		maxTokens: DefaultMaxTokens,
		threshold: DefaultThreshold,
		estimator: HeuristicEstimator{},
		client:    client,
		store:     store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EstimateTokens returns the estimated token cost of the whole sequence.
func (c *Compactor) EstimateTokens(entries []ContextEntry) int {
	total := 0
	for _, e := range entries {
		total += c.estimator.Estimate(e.UserPrompt + e.Response)
	}
	return total
}

// ShouldCompact reports whether the sequence exceeds the threshold
// fraction of the token budget.
func (c *Compactor) ShouldCompact(entries []ContextEntry) bool {
	return c.EstimateTokens(entries) > int(float64(c.maxTokens)*c.threshold)
}

// Compact returns a smaller, semantically equivalent sequence, or the
// input unchanged when compaction is unnecessary or impossible. A non-nil
// error means the summarizer failed; the original sequence is returned
// alongside it so no information is lost.
func (c *Compactor) Compact(ctx context.Context, entries []ContextEntry, currentPrompt string) ([]ContextEntry, error) {
	if !c.ShouldCompact(entries) {
		return entries, nil
	}

	// Preserve the most recent plan entry.
	latestPlan := -1
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].IsPlan {
			latestPlan = i
			break
		}
	}

	// Preserve the entry carrying the live prompt, if any.
	currentIdx := -1
	if currentPrompt != "" {
		for i := len(entries) - 1; i >= 0; i-- {
			if strings.Contains(entries[i].UserPrompt, currentPrompt) {
				currentIdx = i
				break
			}
		}
	}

	var compactable []int
	for i := range entries {
		if i != latestPlan && i != currentIdx {
			compactable = append(compactable, i)
		}
	}
	if len(compactable) < 2 {
		return entries, nil
	}

	// The oldest half of the compactable set becomes one summary entry.
	numToCompact := len(compactable) / 2
	toCompact := make(map[int]bool, numToCompact)
	for _, idx := range compactable[:numToCompact] {
		toCompact[idx] = true
	}

	var victims []ContextEntry
	for i, e := range entries {
		if toCompact[i] {
			victims = append(victims, e)
		}
	}

	summaryText, err := c.summarize(ctx, victims)
	if err != nil {
		return entries, fmt.Errorf("context summarization failed: %w", err)
	}

	summaryEntry := ContextEntry{
		Kind:            session.KindCompacted,
		UserPrompt:      summaryMarker,
		Response:        summaryText,
		Timestamp:       victims[0].Timestamp,
		CompactionLevel: 1,
	}

	// Rebuild in chronological order; the summary takes the position of
	// the first summarized entry.
	result := make([]ContextEntry, 0, len(entries)-numToCompact+1)
	inserted := false
	for i, e := range entries {
		if toCompact[i] {
			if !inserted {
				result = append(result, summaryEntry)
				inserted = true
			}
			continue
		}
		result = append(result, e)
	}

	// A live prompt with no matching entry gets its own marker at the end;
	// it is not itself subject to compaction this pass.
	if currentPrompt != "" && currentIdx == -1 {
		result = append(result, ContextEntry{
			Kind:       session.KindCurrentPrompt,
			UserPrompt: currentPrompt,
			Response:   "[CURRENT TASK]",
			Timestamp:  session.Now(),
		})
	}

	return result, nil
}

// summarize asks the model for a single prose paragraph covering the
// given entries.
func (c *Compactor) summarize(ctx context.Context, entries []ContextEntry) (string, error) {
	prompt := fmt.Sprintf(summaryParagraphPrompt, serializeEntries(entries))
	return c.client.Generate(ctx, "", prompt)
}

// CompactSegment rewrites a run of entries as one shorter text. Level 1
// targets roughly half the original length, level 2 a quarter. On failure
// the original serialized text is returned so nothing is lost.
func (c *Compactor) CompactSegment(ctx context.Context, entries []ContextEntry, level int) string {
	text := serializeEntries(entries)
	if text == "" {
		return ""
	}
	template := compactPrompt
	if level >= 2 {
		template = veryCompactPrompt
	}
	out, err := c.client.Generate(ctx, "", fmt.Sprintf(template, text))
	if err != nil {
		return text
	}
	return out
}

func serializeEntries(entries []ContextEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString("User: ")
		sb.WriteString(e.UserPrompt)
		sb.WriteString("\nAssistant: ")
		sb.WriteString(e.Response)
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// CheckAndCompact loads the session for key, compacts it if the budget
// demands, and persists the result. Storage or summarizer failures are
// returned to the caller, which proceeds without compaction; they must not
// abort the task loop.
func (c *Compactor) CheckAndCompact(ctx context.Context, key, currentPrompt string) error {
	stored, err := c.store.Load(key)
	if err != nil {
		return fmt.Errorf("load session %s: %w", key, err)
	}
	if len(stored) == 0 {
		return nil
	}

	entries := FromStored(stored)
	if !c.ShouldCompact(entries) {
		return nil
	}

	compacted, err := c.Compact(ctx, entries, currentPrompt)
	if err != nil {
		return err
	}

	if err := c.store.Save(key, ToStored(compacted)); err != nil {
		return fmt.Errorf("save compacted session %s: %w", key, err)
	}
	return nil
}
