package taskloop

import (
	"context"
	"time"

	"termaite/permission"
	"termaite/session"
	"termaite/shellexec"
)

// The task loop talks to its collaborators through narrow ports so tests
// can script them.

// ModelClient is the single model call every phase uses.
type ModelClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ContextManager compacts the durable session history when it outgrows
// the token budget. Failures are non-fatal to the loop.
type ContextManager interface {
	CheckAndCompact(ctx context.Context, key, currentPrompt string) error
}

// HistoryStore records phase calls for later context and summaries.
type HistoryStore interface {
	Load(key string) ([]session.Entry, error)
	Append(key string, entry session.Entry) error
}

// PermissionGate decides whether a suggested command may run.
type PermissionGate interface {
	Check(command string, mode permission.Mode) (bool, string)
	IsBlacklisted(command string) bool
	Allowed() map[string]string
}

// CommandRunner executes one shell command with a timeout.
type CommandRunner interface {
	Run(ctx context.Context, command string, timeout time.Duration) (shellexec.Result, error)
}

// LineReader is re-exported here for dependency declarations; the
// permission package owns the contract.
type LineReader = permission.LineReader
