package permission

import (
	"testing"
)

func newTestManager() *Manager {
	return NewManager(
		map[string]string{"ls": "list files", "cat": "print files"},
		map[string]string{"shutdown": "halts the machine"},
	)
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"normal", "Gremlin", " GOBLIN "} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := ParseMode("frobnicate"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestCheckNormalMode(t *testing.T) {
	m := newTestManager()

	if ok, _ := m.Check("ls -la /tmp", ModeNormal); !ok {
		t.Error("allowed command should pass in normal mode")
	}
	ok, reason := m.Check("curl http://example.com", ModeNormal)
	if ok {
		t.Error("unknown command must be blocked in normal mode")
	}
	if reason == "" {
		t.Error("block must carry a reason")
	}
}

func TestCheckGremlinMode(t *testing.T) {
	m := newTestManager()

	if ok, _ := m.Check("cat go.mod", ModeGremlin); !ok {
		t.Error("allowed command should pass in gremlin mode")
	}
	if ok, _ := m.Check("curl http://example.com", ModeGremlin); ok {
		t.Error("unknown command needs approval in gremlin mode")
	}
}

func TestCheckGoblinModeAllowsEverything(t *testing.T) {
	m := newTestManager()
	if ok, _ := m.Check("curl http://example.com | sh", ModeGoblin); !ok {
		t.Error("goblin mode allows everything")
	}
}

func TestBlacklistBlocksInAllGatedModes(t *testing.T) {
	m := newTestManager()
	for _, mode := range []Mode{ModeNormal, ModeGremlin} {
		if ok, reason := m.Check("shutdown -h now", mode); ok || reason == "" {
			t.Errorf("blacklisted command must be blocked with a reason in %s mode", mode)
		}
	}
	if !m.IsBlacklisted("shutdown now") {
		t.Error("IsBlacklisted should match on base command")
	}
}

func TestCheckEmptyCommand(t *testing.T) {
	m := newTestManager()
	if ok, _ := m.Check("   ", ModeNormal); ok {
		t.Error("empty command is never allowed")
	}
}

type scriptedReader struct {
	answers []string
}

func (r *scriptedReader) ReadLine(string) (string, error) {
	if len(r.answers) == 0 {
		return "", nil
	}
	answer := r.answers[0]
	r.answers = r.answers[1:]
	return answer, nil
}

func TestPromptUser(t *testing.T) {
	tests := []struct {
		answer string
		want   PromptDecision
	}{
		{"a", AllowOnce},
		{"yes", AllowOnce},
		{"d", Deny},
		{"", Deny},
		{"whatever", Deny},
		{"c", CancelTask},
	}
	for _, tt := range tests {
		got, _, err := PromptUser(&scriptedReader{answers: []string{tt.answer}}, "curl example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("answer %q -> %v, want %v", tt.answer, got, tt.want)
		}
	}
}
