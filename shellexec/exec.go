// Package shellexec runs suggested shell commands with a timeout and
// captures their output for the evaluator.
package shellexec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"
)

// DefaultTimeout bounds command execution when the caller does not
// override it.
const DefaultTimeout = 30 * time.Second

// Result holds the outcome of one command execution. A timeout is not an
// error at this level; it is reported through TimedOut and the standard
// 124 exit code so the evaluator can reason about it.
type Result struct {
	Command    string `json:"command"`
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	TimedOut   bool   `json:"timed_out"`
	DurationMs int64  `json:"duration_ms"`
}

// Output returns combined stdout and stderr, trimmed.
func (r Result) Output() string {
	out := strings.TrimSpace(r.Stdout)
	errOut := strings.TrimSpace(r.Stderr)
	switch {
	case out == "":
		return errOut
	case errOut == "":
		return out
	default:
		return out + "\n" + errOut
	}
}

// Success reports whether the command exited cleanly.
func (r Result) Success() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// String renders the result the way it is fed back to the evaluator.
func (r Result) String() string {
	output := r.Output()
	if output == "" {
		output = "(no output)"
	}
	if r.TimedOut {
		return fmt.Sprintf("Command timed out after %dms. Partial output:\n%s", r.DurationMs, output)
	}
	return fmt.Sprintf("Exit Code: %d. Output:\n%s", r.ExitCode, output)
}

// Runner executes shell commands in a fixed working directory.
type Runner struct {
	workdir        string
	defaultTimeout time.Duration
}

// NewRunner creates a Runner. An empty workdir means the process working
// directory at construction time.
func NewRunner(workdir string, defaultTimeout time.Duration) *Runner {
	if workdir == "" {
		workdir, _ = os.Getwd()
	}
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	return &Runner{workdir: workdir, defaultTimeout: defaultTimeout}
}

// WorkingDirectory returns the directory commands run in.
func (r *Runner) WorkingDirectory() string { return r.workdir }

// Run executes command through the shell, bounded by timeout (or the
// runner default when zero). The returned error covers only failures to
// start the process; command failures and timeouts land in the Result.
func (r *Runner) Run(ctx context.Context, command string, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shell, shellArg := "/bin/bash", "-c"
	if runtime.GOOS == "windows" {
		shell, shellArg = "cmd.exe", "/c"
	}

	cmd := exec.CommandContext(ctx, shell, shellArg, command)
	cmd.Dir = r.workdir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := Result{
		Command:    command,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMs: duration.Milliseconds(),
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			result.TimedOut = true
			result.ExitCode = 124
			if cmd.Process != nil {
				_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
			}
		} else if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			return result, fmt.Errorf("exec %q: %w", command, err)
		}
	}

	return result, nil
}
