package taskloop

import (
	"sync"
	"time"
)

// EventKind identifies the type of task event.
type EventKind string

const (
	EventTaskStart         EventKind = "task_start"
	EventTaskEnd           EventKind = "task_end"
	EventPlanThought       EventKind = "plan_thought"
	EventPlanChecklist     EventKind = "plan_checklist"
	EventPlanInstruction   EventKind = "plan_instruction"
	EventPlanSummary       EventKind = "plan_summary"
	EventDefinitionOfDone  EventKind = "definition_of_done"
	EventActionThought     EventKind = "action_thought"
	EventActionSummary     EventKind = "action_summary"
	EventCommandSuggested  EventKind = "command_suggested"
	EventCommandExecuting  EventKind = "command_executing"
	EventCommandResult     EventKind = "command_result"
	EventEvalThought       EventKind = "eval_thought"
	EventEvalSummary       EventKind = "eval_summary"
	EventEvalDecision      EventKind = "eval_decision"
	EventClarification     EventKind = "clarification"
	EventCompletionSummary EventKind = "completion_summary"
	EventRetry             EventKind = "retry"
	EventWarning           EventKind = "warning"
	EventError             EventKind = "error"
)

// TaskEvent is a typed event emitted by the task loop.
type TaskEvent struct {
	Kind      EventKind              `json:"kind"`
	Timestamp time.Time              `json:"timestamp"`
	RunID     string                 `json:"run_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// EventEmitter delivers typed events to the host application via a channel.
type EventEmitter struct {
	runID  string
	ch     chan TaskEvent
	closed bool
	mu     sync.Mutex
}

// NewEventEmitter creates an EventEmitter with a buffered channel.
func NewEventEmitter(runID string, bufferSize int) *EventEmitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &EventEmitter{
		runID: runID,
		ch:    make(chan TaskEvent, bufferSize),
	}
}

// Emit sends an event to the channel. If the emitter is closed, the event
// is silently dropped.
func (e *EventEmitter) Emit(kind EventKind, data map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	event := TaskEvent{
		Kind:      kind,
		Timestamp: time.Now(),
		RunID:     e.runID,
		Data:      data,
	}
	select {
	case e.ch <- event:
	default:
		// Channel full; drop event to avoid blocking the loop.
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan TaskEvent {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
