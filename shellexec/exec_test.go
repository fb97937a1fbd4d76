package shellexec

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("bash-specific test")
	}
	r := NewRunner(t.TempDir(), 0)
	result, err := r.Run(context.Background(), "echo hello", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Errorf("expected success, got %+v", result)
	}
	if strings.TrimSpace(result.Stdout) != "hello" {
		t.Errorf("stdout = %q", result.Stdout)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("bash-specific test")
	}
	r := NewRunner(t.TempDir(), 0)
	result, err := r.Run(context.Background(), "exit 3", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", result.ExitCode)
	}
	if result.Success() {
		t.Error("non-zero exit is not success")
	}
}

func TestRunTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("bash-specific test")
	}
	r := NewRunner(t.TempDir(), 0)
	result, err := r.Run(context.Background(), "sleep 5", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("timeout must not be an error: %v", err)
	}
	if !result.TimedOut {
		t.Error("expected TimedOut")
	}
	if result.ExitCode != 124 {
		t.Errorf("exit code = %d, want 124", result.ExitCode)
	}
	if !strings.Contains(result.String(), "timed out") {
		t.Errorf("String() should mention the timeout: %q", result.String())
	}
}

func TestOutputCombinesStreams(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("bash-specific test")
	}
	r := NewRunner(t.TempDir(), 0)
	result, err := r.Run(context.Background(), "echo out; echo err 1>&2", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	combined := result.Output()
	if !strings.Contains(combined, "out") || !strings.Contains(combined, "err") {
		t.Errorf("Output() = %q, want both streams", combined)
	}
}

func TestResultStringNoOutput(t *testing.T) {
	r := Result{ExitCode: 0}
	if !strings.Contains(r.String(), "(no output)") {
		t.Errorf("String() = %q", r.String())
	}
}
