package taskloop

import "strings"

// TaskStatus marks where a task run stands. COMPLETED, FAILED and
// CANCELLED are terminal.
type TaskStatus string

const (
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusFailed     TaskStatus = "FAILED"
	StatusCancelled  TaskStatus = "CANCELLED"
)

// Terminal reports whether the status ends the loop.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Phase is the role the model is asked to play for one call.
type Phase string

const (
	PhasePlan              Phase = "plan"
	PhaseAction            Phase = "action"
	PhaseEvaluate          Phase = "evaluate"
	PhaseCompletionSummary Phase = "completion_summary"
)

// Decision types the evaluator (and, for clarification, the planner) may
// emit. Anything else is a protocol violation and fails the task.
const (
	DecisionNone           = ""
	DecisionContinuePlan   = "CONTINUE_PLAN"
	DecisionRevisePlan     = "REVISE_PLAN"
	DecisionTaskComplete   = "TASK_COMPLETE"
	DecisionTaskFailed     = "TASK_FAILED"
	DecisionClarifyUser    = "CLARIFY_USER"
	DecisionVerifyAction   = "VERIFY_ACTION"
	DecisionPlannerClarify = "PLANNER_CLARIFY"
)

// TaskState is the mutable state of one task run. It is owned by a single
// Handler.Run invocation and never shared.
type TaskState struct {
	CurrentPlan        string
	PlanSteps          []string
	StepIndex          int
	CurrentInstruction string
	LastActionTaken    string
	LastActionResult   string
	// UserClarification is single-use: context builders consume and clear
	// it.
	UserClarification string
	LastEvalDecision  string
	Iteration         int
	DefinitionOfDone  string

	PlannerSummary   string
	ActorSummary     string
	EvaluatorSummary string
}

// SetPlan records a fresh plan and derives its step list from the
// non-empty lines.
func (s *TaskState) SetPlan(plan, instruction string) {
	s.CurrentPlan = plan
	s.CurrentInstruction = instruction
	s.PlanSteps = s.PlanSteps[:0]
	for _, line := range strings.Split(plan, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			s.PlanSteps = append(s.PlanSteps, line)
		}
	}
	s.StepIndex = 0
}

// ClearPlan drops the plan and instruction so the next iteration re-plans.
func (s *TaskState) ClearPlan() {
	s.CurrentPlan = ""
	s.CurrentInstruction = ""
	s.PlanSteps = nil
	s.StepIndex = 0
}
