package extract

import (
	"reflect"
	"testing"
)

const sampleResponse = `<think>I should list the files first.</think>
<checklist>
1. List the files in the directory
2. Count the Go files
</checklist>
<instruction>List the files in the current directory</instruction>
<summary>Plan drafted for file counting.</summary>
<definition_of_done>A number of Go files is printed.</definition_of_done>`

func TestFieldExtraction(t *testing.T) {
	if got := Thought(sampleResponse); got != "I should list the files first." {
		t.Errorf("Thought = %q", got)
	}
	if got := Instruction(sampleResponse); got != "List the files in the current directory" {
		t.Errorf("Instruction = %q", got)
	}
	if got := Summary(sampleResponse); got != "Plan drafted for file counting." {
		t.Errorf("Summary = %q", got)
	}
	if got := DefinitionOfDone(sampleResponse); got != "A number of Go files is printed." {
		t.Errorf("DefinitionOfDone = %q", got)
	}
	if got := Plan(sampleResponse); got == "" {
		t.Error("Plan should not be empty")
	}
}

func TestMissingFieldsAreEmpty(t *testing.T) {
	text := "no tags here at all"
	for name, fn := range map[string]func(string) string{
		"Thought":          Thought,
		"Plan":             Plan,
		"Instruction":      Instruction,
		"RawDecision":      RawDecision,
		"Summary":          Summary,
		"DefinitionOfDone": DefinitionOfDone,
		"Command":          Command,
	} {
		if got := fn(text); got != "" {
			t.Errorf("%s on tagless input = %q, want empty", name, got)
		}
	}
}

func TestFirstMatchWins(t *testing.T) {
	text := "<command>ls</command> ignored <command>rm -rf /</command>"
	if got := Command(text); got != "ls" {
		t.Errorf("Command = %q, want first occurrence", got)
	}
}

func TestCommandSpansLines(t *testing.T) {
	text := "<command>\nls -la\n</command>"
	if got := Command(text); got != "ls -la" {
		t.Errorf("Command = %q", got)
	}
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		raw     string
		decType string
		message string
	}{
		{"CONTINUE_PLAN: step one done", "CONTINUE_PLAN", "step one done"},
		{"TASK_COMPLETE", "TASK_COMPLETE", ""},
		{"VERIFY_ACTION: cat out.txt: expect hello", "VERIFY_ACTION", "cat out.txt: expect hello"},
		{"  TASK_FAILED :  nope ", "TASK_FAILED", "nope"},
		{"", "", ""},
	}
	for _, tt := range tests {
		d := ParseDecision(tt.raw)
		if d.Type != tt.decType || d.Message != tt.message {
			t.Errorf("ParseDecision(%q) = {%q, %q}, want {%q, %q}",
				tt.raw, d.Type, d.Message, tt.decType, tt.message)
		}
	}
}

func TestDecisionFrom(t *testing.T) {
	text := "<think>done I think</think><decision>TASK_COMPLETE: all steps verified</decision>"
	d := DecisionFrom(text)
	if d.Type != "TASK_COMPLETE" || d.Message != "all steps verified" {
		t.Errorf("DecisionFrom = %+v", d)
	}
	if !DecisionFrom("nothing").IsZero() {
		t.Error("expected zero decision for tagless input")
	}
}

func TestChecklistItems(t *testing.T) {
	plan := "1. first step\n- second step\n* third step\n\nfourth step"
	want := []string{"first step", "second step", "third step", "fourth step"}
	if got := ChecklistItems(plan); !reflect.DeepEqual(got, want) {
		t.Errorf("ChecklistItems = %v, want %v", got, want)
	}
	if got := ChecklistItems(""); got != nil {
		t.Errorf("ChecklistItems(\"\") = %v, want nil", got)
	}
}
