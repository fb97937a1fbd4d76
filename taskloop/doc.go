// Package taskloop runs a user task through the Plan -> Act -> Evaluate
// state machine.
//
// Each iteration plans (when a new plan is needed), asks the model for one
// shell command, gates it through the permission policy, executes it, and
// lets the evaluator decide what happens next. Phase responses that are
// missing required tags are retried with a corrective notice appended to
// the context; empty model responses fail the task immediately. Before
// every model call the durable session history is compacted if it has
// outgrown its token budget.
//
// The loop reports progress through a buffered event channel and talks to
// all of its collaborators through narrow ports, so it can run headless or
// under test with scripted fakes.
package taskloop
