package taskloop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"termaite/config"
	"termaite/extract"
	"termaite/permission"
	"termaite/session"
)

// completionSentinel is the pseudo-command the actor returns when it
// believes the task is already done. It is never executed.
const completionSentinel = "report_task_completion"

// Deps bundles the collaborator ports a Handler needs.
type Deps struct {
	Client      ModelClient
	Context     ContextManager
	History     HistoryStore
	Permissions PermissionGate
	Runner      CommandRunner
	Input       LineReader
}

// Result is the outcome of one task run.
type Result struct {
	Status       TaskStatus
	FinalContext string
	Iterations   int
	// Summary is the best-effort completion summary; empty when the task
	// did not complete or the summary call failed.
	Summary string
}

// Handler drives one task at a time through the loop. It is not safe for
// concurrent Run calls.
type Handler struct {
	client     ModelClient
	contextMgr ContextManager
	history    HistoryStore
	gate       PermissionGate
	runner     CommandRunner
	input      LineReader
	emitter    *EventEmitter
	prompts    *promptBuilder

	mode            permission.Mode
	timeout         time.Duration
	allowClarify    bool
	maxParseRetries int
	sessionKey      string
}

// NewHandler wires a Handler from configuration and collaborator ports.
// The session key is derived from workdir; the core never reads ambient
// process state.
func NewHandler(cfg *config.Config, workdir string, deps Deps) (*Handler, error) {
	mode, err := permission.ParseMode(cfg.OperationMode)
	if err != nil {
		return nil, err
	}
	return &Handler{
		client:     deps.Client,
		contextMgr: deps.Context,
		history:    deps.History,
		gate:       deps.Permissions,
		runner:     deps.Runner,
		input:      deps.Input,
		emitter:    NewEventEmitter(uuid.New().String(), 256),
		prompts: &promptBuilder{
			prompts:      cfg.Prompts,
			workdir:      workdir,
			mode:         mode,
			allowClarify: cfg.AllowClarifyingQuestions,
			allowed:      deps.Permissions.Allowed(),
		},
		mode:            mode,
		timeout:         time.Duration(cfg.CommandTimeout) * time.Second,
		allowClarify:    cfg.AllowClarifyingQuestions,
		maxParseRetries: cfg.MaxParseRetries,
		sessionKey:      session.Key(workdir),
	}, nil
}

// Events returns the event channel for the host application.
func (h *Handler) Events() <-chan TaskEvent { return h.emitter.Events() }

// Close closes the event channel. Safe to call multiple times.
func (h *Handler) Close() { h.emitter.Close() }

// Run executes one task to a terminal status.
func (h *Handler) Run(ctx context.Context, userPrompt string) (Result, error) {
	st := &TaskState{}
	status := StatusInProgress
	current := userPrompt

	h.emitter.Emit(EventTaskStart, map[string]interface{}{"prompt": userPrompt})

	for status == StatusInProgress {
		if err := ctx.Err(); err != nil {
			h.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
			status = StatusFailed
			break
		}
		st.Iteration++

		if h.needsNewPlan(st) {
			status = h.planPhase(ctx, &current, st)
			if status != StatusInProgress {
				break
			}
			// The planner asked the user a question; loop straight back
			// into planning with the answer injected.
			if st.LastEvalDecision == DecisionPlannerClarify {
				continue
			}
			current = buildActionContext(userPrompt, st)
		}

		if st.CurrentInstruction == "" {
			h.emitter.Emit(EventError, map[string]interface{}{
				"error": "no current instruction entering the action phase",
			})
			status = StatusFailed
			break
		}

		status = h.actionPhase(ctx, &current, st)
		if status != StatusInProgress {
			break
		}

		status, current = h.evaluatePhase(ctx, buildEvaluationContext(userPrompt, st), st, userPrompt)
	}

	result := Result{
		Status:       status,
		FinalContext: buildEvaluationContext(userPrompt, st),
		Iterations:   st.Iteration,
	}
	if status == StatusCompleted {
		result.Summary = h.completionSummary(ctx, userPrompt, st)
	}
	h.emitter.Emit(EventTaskEnd, map[string]interface{}{"status": string(status)})
	return result, nil
}

func (h *Handler) needsNewPlan(st *TaskState) bool {
	if st.CurrentPlan == "" {
		return true
	}
	switch st.LastEvalDecision {
	case DecisionRevisePlan, DecisionContinuePlan:
		return true
	case DecisionClarifyUser, DecisionPlannerClarify:
		return st.UserClarification != ""
	}
	return false
}

// exceededRetryBudget enforces the configurable cap on the
// retry-until-valid loops. A zero cap means unbounded.
func (h *Handler) exceededRetryBudget(phase Phase, attempt int) bool {
	if h.maxParseRetries > 0 && attempt > h.maxParseRetries {
		h.emitter.Emit(EventError, map[string]interface{}{
			"phase": string(phase),
			"error": fmt.Sprintf("no valid response after %d attempts", h.maxParseRetries),
		})
		return true
	}
	return false
}

func (h *Handler) planPhase(ctx context.Context, current *string, st *TaskState) TaskStatus {
	system := h.prompts.SystemPrompt(PhasePlan)
	for attempt := 1; ; attempt++ {
		if h.exceededRetryBudget(PhasePlan, attempt) {
			return StatusFailed
		}
		h.compact(ctx, *current)

		response, err := h.client.Generate(ctx, system, *current)
		if err != nil {
			return h.transportFailure(PhasePlan, err)
		}
		h.record(session.KindSuccess, fmt.Sprintf("Planner Input (Attempt %d): %s", attempt, *current), response)

		if thought := extract.Thought(response); thought != "" {
			h.emitter.Emit(EventPlanThought, map[string]interface{}{"text": thought})
		}

		if decision := extract.DecisionFrom(response); decision.Type == DecisionClarifyUser {
			if h.allowClarify {
				return h.plannerClarify(current, st, decision.Message)
			}
			reason := "your last response requested user clarification, which is disabled; generate a plan without asking questions"
			h.emitRetry(PhasePlan, attempt, reason)
			*current = buildRetryContext(*current, reason)
			continue
		}

		plan := extract.Plan(response)
		instruction := extract.Instruction(response)
		st.PlannerSummary = extract.Summary(response)
		st.DefinitionOfDone = extract.DefinitionOfDone(response)

		if plan != "" && instruction != "" {
			st.SetPlan(plan, instruction)
			st.UserClarification = ""
			st.LastEvalDecision = DecisionNone
			if st.PlannerSummary != "" {
				h.emitter.Emit(EventPlanSummary, map[string]interface{}{"text": st.PlannerSummary})
			}
			if st.DefinitionOfDone != "" {
				h.emitter.Emit(EventDefinitionOfDone, map[string]interface{}{"text": st.DefinitionOfDone})
			}
			h.emitter.Emit(EventPlanChecklist, map[string]interface{}{"text": plan})
			h.emitter.Emit(EventPlanInstruction, map[string]interface{}{"text": instruction})
			return StatusInProgress
		}

		var missing []string
		if plan == "" {
			missing = append(missing, "Response did not contain a valid `<checklist>...</checklist>` block.")
		}
		if instruction == "" {
			missing = append(missing, "Response did not contain a valid `<instruction>...</instruction>` block.")
		}
		details := strings.Join(missing, " ")
		h.emitRetry(PhasePlan, attempt, details)
		*current = buildPlanCorrection(*current, details)
	}
}

// plannerClarify suspends for one line of user input, then sends the loop
// back into planning with the answer injected into the context.
func (h *Handler) plannerClarify(current *string, st *TaskState, question string) TaskStatus {
	h.emitter.Emit(EventClarification, map[string]interface{}{
		"phase":    string(PhasePlan),
		"question": question,
	})
	answer, err := h.input.ReadLine(question + "\nResponse: ")
	if err != nil {
		h.emitter.Emit(EventError, map[string]interface{}{"error": "failed to read clarification: " + err.Error()})
		return StatusFailed
	}
	st.UserClarification = answer
	st.LastEvalDecision = DecisionPlannerClarify
	st.ClearPlan()
	*current = fmt.Sprintf("%s\n\nYou asked: '%s'\nUser's answer: '%s'\nProduce the plan using this answer.",
		*current, question, answer)
	return StatusInProgress
}

func (h *Handler) actionPhase(ctx context.Context, current *string, st *TaskState) TaskStatus {
	system := h.prompts.SystemPrompt(PhaseAction)
	for attempt := 1; ; attempt++ {
		if h.exceededRetryBudget(PhaseAction, attempt) {
			return StatusFailed
		}
		h.compact(ctx, *current)

		response, err := h.client.Generate(ctx, system, *current)
		if err != nil {
			return h.transportFailure(PhaseAction, err)
		}
		h.record(session.KindSuccess, fmt.Sprintf("Actor Input (Attempt %d): %s", attempt, *current), response)

		if thought := extract.Thought(response); thought != "" {
			h.emitter.Emit(EventActionThought, map[string]interface{}{"text": thought})
		}
		if st.ActorSummary = extract.Summary(response); st.ActorSummary != "" {
			h.emitter.Emit(EventActionSummary, map[string]interface{}{"text": st.ActorSummary})
		}

		if command := extract.Command(response); command != "" {
			h.emitter.Emit(EventCommandSuggested, map[string]interface{}{"command": command})
			return h.handleCommand(ctx, command, st)
		}

		reason := "response did not contain a valid `<command>...</command>` block; you MUST provide a command"
		h.emitRetry(PhaseAction, attempt, reason)
		*current = buildRetryContext(*current, reason)
	}
}

// handleCommand gates and executes one suggested command. Blocked, denied
// and failed commands are non-fatal: their outcome feeds the evaluator.
func (h *Handler) handleCommand(ctx context.Context, command string, st *TaskState) TaskStatus {
	if command == completionSentinel {
		st.LastActionTaken = "Internal signal: report_task_completion"
		st.LastActionResult = "Action agent determined the task is complete and signaled the evaluator."
		return StatusInProgress
	}

	allowed, reason := h.gate.Check(command, h.mode)
	if !allowed {
		if h.mode == permission.ModeGremlin && !h.gate.IsBlacklisted(command) {
			decision, promptReason, err := permission.PromptUser(h.input, command)
			if err != nil {
				h.emitter.Emit(EventError, map[string]interface{}{"error": "failed to read permission answer: " + err.Error()})
				return StatusFailed
			}
			switch decision {
			case permission.AllowOnce:
				// Execute below.
			case permission.CancelTask:
				return StatusCancelled
			default:
				st.LastActionTaken = fmt.Sprintf("Command '%s' denied by user.", command)
				st.LastActionResult = "User denied permission: " + promptReason
				return StatusInProgress
			}
		} else {
			st.LastActionTaken = fmt.Sprintf("Command '%s' not executed.", command)
			st.LastActionResult = "Command blocked: " + reason
			return StatusInProgress
		}
	}

	// Normal mode confirms every command, allowed or not.
	if h.mode == permission.ModeNormal {
		answer, err := h.input.ReadLine(fmt.Sprintf("Execute? '%s' [y/N]: ", command))
		if err != nil {
			h.emitter.Emit(EventError, map[string]interface{}{"error": "failed to read confirmation: " + err.Error()})
			return StatusFailed
		}
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			return StatusCancelled
		}
	}

	h.emitter.Emit(EventCommandExecuting, map[string]interface{}{"command": command})
	result, err := h.runner.Run(ctx, command, h.timeout)
	if err != nil {
		st.LastActionTaken = "Attempted command: " + command
		st.LastActionResult = fmt.Sprintf("Command failed to start: %v", err)
		h.emitter.Emit(EventCommandResult, map[string]interface{}{"command": command, "error": err.Error()})
		return StatusInProgress
	}
	st.LastActionTaken = "Executed command: " + command
	st.LastActionResult = result.String()
	h.emitter.Emit(EventCommandResult, map[string]interface{}{
		"command":   command,
		"exit_code": result.ExitCode,
		"output":    result.Output(),
	})
	return StatusInProgress
}

func (h *Handler) evaluatePhase(ctx context.Context, evalContext string, st *TaskState, originalPrompt string) (TaskStatus, string) {
	system := h.prompts.SystemPrompt(PhaseEvaluate)
	current := evalContext
	for attempt := 1; ; attempt++ {
		if h.exceededRetryBudget(PhaseEvaluate, attempt) {
			return StatusFailed, ""
		}
		h.compact(ctx, current)

		response, err := h.client.Generate(ctx, system, current)
		if err != nil {
			return h.transportFailure(PhaseEvaluate, err), ""
		}
		h.record(session.KindSuccess, fmt.Sprintf("Evaluator Input (Attempt %d): %s", attempt, current), response)

		if thought := extract.Thought(response); thought != "" {
			h.emitter.Emit(EventEvalThought, map[string]interface{}{"text": thought})
		}
		if st.EvaluatorSummary = extract.Summary(response); st.EvaluatorSummary != "" {
			h.emitter.Emit(EventEvalSummary, map[string]interface{}{"text": st.EvaluatorSummary})
		}

		if decision := extract.DecisionFrom(response); !decision.IsZero() {
			h.emitter.Emit(EventEvalDecision, map[string]interface{}{
				"type":    decision.Type,
				"message": decision.Message,
			})
			st.LastEvalDecision = decision.Type
			return h.routeDecision(decision, st, originalPrompt)
		}

		reason := "response did not contain a valid `<decision>...</decision>` block"
		h.emitRetry(PhaseEvaluate, attempt, reason)
		current = buildRetryContext(evalContext, reason)
	}
}

// routeDecision maps the evaluator's decision to the next status and the
// context the next phase starts from.
func (h *Handler) routeDecision(d extract.Decision, st *TaskState, originalPrompt string) (TaskStatus, string) {
	switch d.Type {
	case DecisionTaskComplete:
		return StatusCompleted, ""

	case DecisionTaskFailed:
		return StatusFailed, ""

	case DecisionContinuePlan:
		st.StepIndex++
		next := buildNextStepContext(originalPrompt, st, d.Message)
		st.UserClarification = ""
		return StatusInProgress, next

	case DecisionRevisePlan:
		next := buildReviseContext(originalPrompt, st, d.Message)
		st.ClearPlan()
		st.UserClarification = ""
		return StatusInProgress, next

	case DecisionClarifyUser:
		if !h.allowClarify {
			h.emitter.Emit(EventError, map[string]interface{}{
				"error": "evaluator requested clarification but clarifying questions are disabled",
			})
			return StatusFailed, ""
		}
		h.emitter.Emit(EventClarification, map[string]interface{}{
			"phase":    string(PhaseEvaluate),
			"question": d.Message,
		})
		answer, err := h.input.ReadLine(d.Message + "\nResponse: ")
		if err != nil {
			h.emitter.Emit(EventError, map[string]interface{}{"error": "failed to read clarification: " + err.Error()})
			return StatusFailed, ""
		}
		st.UserClarification = answer
		next := buildClarifyContext(originalPrompt, st, d.Message, answer)
		st.ClearPlan()
		return StatusInProgress, next

	case DecisionVerifyAction:
		next := buildVerifyContext(originalPrompt, st, d.Message)
		st.CurrentInstruction = "Execute verification command: " + d.Message
		st.UserClarification = ""
		return StatusInProgress, next

	default:
		h.emitter.Emit(EventError, map[string]interface{}{
			"error": fmt.Sprintf("unknown evaluator decision %q", d.Type),
		})
		return StatusFailed, ""
	}
}

// completionSummary makes one best-effort model call over the stored
// session history. Failures only produce a warning.
func (h *Handler) completionSummary(ctx context.Context, originalPrompt string, st *TaskState) string {
	entries, err := h.history.Load(h.sessionKey)
	if err != nil {
		h.emitter.Emit(EventWarning, map[string]interface{}{"message": "could not load history for summary: " + err.Error()})
	}
	var history strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&history, "User: %s\nAssistant: %s\n\n", e.UserPrompt, e.Response)
	}

	summaryContext := buildSummaryContext(originalPrompt, history.String(), st)
	h.compact(ctx, summaryContext)

	response, err := h.client.Generate(ctx, h.prompts.SystemPrompt(PhaseCompletionSummary), summaryContext)
	if err != nil {
		h.emitter.Emit(EventWarning, map[string]interface{}{"message": "completion summary failed: " + err.Error()})
		return ""
	}
	summary := extract.Summary(response)
	if summary == "" {
		summary = strings.TrimSpace(response)
	}
	h.emitter.Emit(EventCompletionSummary, map[string]interface{}{"text": summary})
	return summary
}

func (h *Handler) compact(ctx context.Context, currentPrompt string) {
	if err := h.contextMgr.CheckAndCompact(ctx, h.sessionKey, currentPrompt); err != nil {
		h.emitter.Emit(EventWarning, map[string]interface{}{"message": "context compaction skipped: " + err.Error()})
	}
}

func (h *Handler) record(kind, prompt, response string) {
	err := h.history.Append(h.sessionKey, session.Entry{
		Kind:       kind,
		UserPrompt: prompt,
		Response:   response,
		Timestamp:  session.Now(),
	})
	if err != nil {
		h.emitter.Emit(EventWarning, map[string]interface{}{"message": "failed to record history: " + err.Error()})
	}
}

func (h *Handler) transportFailure(phase Phase, err error) TaskStatus {
	h.record(session.KindError, fmt.Sprintf("%s phase transport failure", phase), err.Error())
	h.emitter.Emit(EventError, map[string]interface{}{
		"phase": string(phase),
		"error": err.Error(),
	})
	return StatusFailed
}

func (h *Handler) emitRetry(phase Phase, attempt int, reason string) {
	h.emitter.Emit(EventRetry, map[string]interface{}{
		"phase":   string(phase),
		"attempt": attempt,
		"reason":  reason,
	})
}
