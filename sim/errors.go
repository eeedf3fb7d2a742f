package sim

import "fmt"

// InvariantError reports a scheduler invariant violation (spec.md §7):
// executing a NOT_READY or FINISHED task, a task/device state disagreement,
// or round-counter divergence in an all-reduce. These are programmer
// errors, unreachable if the task graph and transport honor their
// contracts, and the core never attempts to recover from one — it aborts
// with a diagnostic identifying the offending task.
type InvariantError struct {
	TaskID string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("scheduler invariant violated for task %q: %s", e.TaskID, e.Reason)
}

// ConfigError reports an unknown device kind or task kind in the decoded
// task-graph input (spec.md §7), fatal at load time.
type ConfigError struct {
	Field string
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s = %q", e.Field, e.Value)
}
