package main

import (
	"fmt"

	"github.com/fatih/color"

	"termaite/taskloop"
)

var (
	plannerColor = color.New(color.FgCyan).SprintfFunc()
	actorColor   = color.New(color.FgYellow).SprintfFunc()
	evalColor    = color.New(color.FgMagenta).SprintfFunc()
	systemColor  = color.New(color.FgGreen).SprintfFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintfFunc()
)

// printEvents renders the task event stream until the channel closes.
func printEvents(events <-chan taskloop.TaskEvent) {
	for event := range events {
		text, _ := event.Data["text"].(string)
		switch event.Kind {
		case taskloop.EventPlanThought:
			fmt.Println(plannerColor("[Planner Thought]: %s", text))
		case taskloop.EventPlanSummary:
			fmt.Println(plannerColor("[Planner Summary]: %s", text))
		case taskloop.EventPlanChecklist:
			fmt.Println(plannerColor("[Planner Checklist]:\n%s", text))
		case taskloop.EventPlanInstruction:
			fmt.Println(plannerColor("[Next Instruction]: %s", text))
		case taskloop.EventDefinitionOfDone:
			fmt.Println(plannerColor("[Definition of Done]: %s", text))
		case taskloop.EventActionThought:
			fmt.Println(actorColor("[Actor Thought]: %s", text))
		case taskloop.EventActionSummary:
			fmt.Println(actorColor("[Actor Summary]: %s", text))
		case taskloop.EventCommandSuggested:
			fmt.Println(actorColor("[Suggested Command]: %v", event.Data["command"]))
		case taskloop.EventCommandExecuting:
			fmt.Println(systemColor("Executing: %v", event.Data["command"]))
		case taskloop.EventCommandResult:
			if errText, ok := event.Data["error"]; ok {
				fmt.Println(errorColor("Command error: %v", errText))
			} else {
				fmt.Println(systemColor("Exit code %v", event.Data["exit_code"]))
				if out, _ := event.Data["output"].(string); out != "" {
					fmt.Println(out)
				}
			}
		case taskloop.EventEvalThought:
			fmt.Println(evalColor("[Evaluator Thought]: %s", text))
		case taskloop.EventEvalSummary:
			fmt.Println(evalColor("[Evaluator Summary]: %s", text))
		case taskloop.EventEvalDecision:
			fmt.Println(evalColor("[Evaluator Decision]: %v: %v", event.Data["type"], event.Data["message"]))
		case taskloop.EventClarification:
			// The question itself is printed by the input prompt.
		case taskloop.EventCompletionSummary:
			fmt.Printf("\n%s\n", text)
		case taskloop.EventRetry:
			fmt.Println(systemColor("[Retry %v] %v phase: %v",
				event.Data["attempt"], event.Data["phase"], event.Data["reason"]))
		case taskloop.EventWarning:
			fmt.Println(systemColor("[Warning] %v", event.Data["message"]))
		case taskloop.EventError:
			fmt.Println(errorColor("[Error] %v", event.Data["error"]))
		case taskloop.EventTaskEnd:
			fmt.Println(systemColor("Task finished: %v", event.Data["status"]))
		}
	}
}
