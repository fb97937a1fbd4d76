package taskloop

import (
	"fmt"
	"strings"
)

// Context builders produce the user-prompt text for each phase call. The
// UserClarification field is single-use: whichever builder sees it first
// consumes it.

func buildActionContext(originalPrompt string, st *TaskState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User's original request: '%s'\n\n", originalPrompt)
	fmt.Fprintf(&b, "Instruction to execute: '%s'", st.CurrentInstruction)

	if st.PlannerSummary != "" {
		fmt.Fprintf(&b, "\n\nPlanner's Summary: %s", st.PlannerSummary)
	}
	if st.UserClarification != "" {
		fmt.Fprintf(&b, "\n\nContext: User responded '%s' to my last question.", st.UserClarification)
		st.UserClarification = ""
	}
	return b.String()
}

func buildEvaluationContext(originalPrompt string, st *TaskState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User's original request: '%s'\n\n", originalPrompt)
	fmt.Fprintf(&b, "Current Plan Checklist (if available):\n%s\n\n", st.CurrentPlan)

	if st.DefinitionOfDone != "" {
		fmt.Fprintf(&b, "Definition of Done for this task:\n%s\n\n", st.DefinitionOfDone)
	}

	fmt.Fprintf(&b, "Instruction that was attempted: '%s'\n\n", st.CurrentInstruction)
	fmt.Fprintf(&b, "Action Taken by Actor:\n%s\n\n", st.LastActionTaken)
	fmt.Fprintf(&b, "Result of Action:\n%s", st.LastActionResult)

	if st.PlannerSummary != "" {
		fmt.Fprintf(&b, "\n\nPlanner's Summary: %s", st.PlannerSummary)
	}
	if st.ActorSummary != "" {
		fmt.Fprintf(&b, "\n\nActor's Summary: %s", st.ActorSummary)
	}
	if st.UserClarification != "" {
		fmt.Fprintf(&b, "\n\nContext: User responded '%s' to my last question.", st.UserClarification)
		st.UserClarification = ""
	}
	return b.String()
}

// buildNextStepContext re-enters planning after CONTINUE_PLAN, asking for
// the instruction of the next step.
func buildNextStepContext(originalPrompt string, st *TaskState, evalMessage string) string {
	return fmt.Sprintf(
		"Original request: '%s'.\n"+
			"Current plan:\n%s\n"+
			"Previous instruction ('%s') was completed successfully.\n"+
			"Result: '%s'.\n"+
			"Evaluator says: '%s'.\n"+
			"Provide the next instruction from the plan for step %d.",
		originalPrompt, st.CurrentPlan, st.CurrentInstruction,
		st.LastActionResult, evalMessage, st.StepIndex+1)
}

// buildReviseContext re-enters planning after REVISE_PLAN.
func buildReviseContext(originalPrompt string, st *TaskState, evalMessage string) string {
	return fmt.Sprintf(
		"Original request: '%s'.\n"+
			"Previous plan:\n%s\n"+
			"Previous instruction ('%s') result: '%s'.\n"+
			"Evaluator suggests revision: '%s'.\n"+
			"Revise the checklist and provide a new first instruction.",
		originalPrompt, st.CurrentPlan, st.CurrentInstruction,
		st.LastActionResult, evalMessage)
}

// buildClarifyContext re-enters planning with the user's answer to an
// evaluator question.
func buildClarifyContext(originalPrompt string, st *TaskState, question, answer string) string {
	return fmt.Sprintf(
		"Original request: '%s'.\n"+
			"After action '%s' (result: '%s'), the evaluator needed clarification.\n"+
			"Question: '%s'.\nUser's answer: '%s'.\n"+
			"Revise the plan and next instruction based on this.",
		originalPrompt, st.LastActionTaken, st.LastActionResult, question, answer)
}

// buildVerifyContext sends the loop straight back to the action phase with
// the evaluator's verification command.
func buildVerifyContext(originalPrompt string, st *TaskState, evalMessage string) string {
	return fmt.Sprintf(
		"Original request: '%s'.\n"+
			"Previous action: '%s' (result: '%s').\n"+
			"The evaluator needs verification. Execute this command to verify the outcome: %s",
		originalPrompt, st.LastActionTaken, st.LastActionResult, evalMessage)
}

// buildPlanCorrection wraps the previous context in a correction notice
// naming exactly which required tags were missing.
func buildPlanCorrection(prevContext, details string) string {
	return fmt.Sprintf(`<correction_request>
<error>
<type>Invalid Response Format</type>
<message>Your previous response was malformed and did not follow the required structure.</message>
<details>%s</details>
</error>
<instruction>
You MUST correct your output. Your response MUST contain BOTH a `+"`<checklist>...</checklist>`"+` block AND an `+"`<instruction>...</instruction>`"+` block. This is not optional.
</instruction>
<original_context>
%s
</original_context>
</correction_request>`, details, prevContext)
}

func buildRetryContext(prevContext, reason string) string {
	return fmt.Sprintf(
		"%s\n\nPREVIOUS ATTEMPT FAILED. Your last response was invalid. Reason: %s\n"+
			"Please correct your response.", prevContext, reason)
}

// buildSummaryContext assembles the completion-summary prompt from the
// stored session history and the final state.
func buildSummaryContext(originalPrompt, history string, st *TaskState) string {
	return fmt.Sprintf(
		"Original User Request: '%s'\n\n"+
			"Task Execution History:\n%s\n\n"+
			"Final Task State:\n- Plan: %s\n- Last Action: %s\n- Result: %s\n- Total Iterations: %d",
		originalPrompt, history, st.CurrentPlan, st.LastActionTaken,
		st.LastActionResult, st.Iteration)
}
