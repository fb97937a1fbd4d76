package compaction

// Summarization instruction templates. Each receives the serialized
// history segment appended after the instruction.

const summaryParagraphPrompt = `You are a context summarizer. Create a single detailed paragraph that summarizes the following historical conversation context. Focus on:
- Key decisions and outcomes that were reached
- Important context that may be relevant for future actions
- Any significant errors or successes
- The general flow and progression of the conversation

Write this as ONE cohesive paragraph that captures the essential information from this historical context.

Historical context to summarize:
%s

Summary paragraph:`

const compactPrompt = `You are a context compactor. Summarize the following conversation history into a more concise form while preserving:
- Key decisions and outcomes
- Important context for future actions
- The flow of the conversation
- Any error messages or important results

Make it about 50%% of the original length.

Context to compact:
%s

Provide a compact summary:`

const veryCompactPrompt = `You are a context compactor. Create a very brief summary of the following context, preserving only:
- Essential outcomes and decisions
- Critical context needed for task completion
- Major errors or successes

Make it about 25%% of the original length.

Context to compact:
%s

Provide a very compact summary:`
