package constants

// WorkflowStatus represents the lifecycle state of a workflow record.
// Status values use snake_case for JSON serialization compatibility.
type WorkflowStatus string

// Workflow status constants. A workflow starts in progress and ends in
// exactly one of the two terminal states:
//
//	InProgress → Completed
//	InProgress → Aborted
const (
	// WorkflowStatusInProgress indicates agents may still be started, completed, or skipped.
	WorkflowStatusInProgress WorkflowStatus = "in_progress"

	// WorkflowStatusCompleted indicates the workflow was explicitly marked done.
	WorkflowStatusCompleted WorkflowStatus = "completed"

	// WorkflowStatusAborted indicates the workflow was abandoned.
	WorkflowStatusAborted WorkflowStatus = "aborted"
)

// String returns the string representation of the WorkflowStatus.
func (s WorkflowStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that accept no further mutation.
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowStatusCompleted || s == WorkflowStatusAborted
}

// Phase names a stage of the workflow.
type Phase string

// Canonical phases, in execution order.
const (
	PhaseThink  Phase = "THINK"
	PhaseBuild  Phase = "BUILD"
	PhaseVerify Phase = "VERIFY"
	PhaseShip   Phase = "SHIP"
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	return string(p)
}

// PhaseOrder returns the canonical phase ordering.
// A fresh slice is returned so callers may not mutate the ordering.
func PhaseOrder() []Phase {
	return []Phase{PhaseThink, PhaseBuild, PhaseVerify, PhaseShip}
}

// AgentState is the derived per-agent state within a phase.
type AgentState string

// Agent states. Pending agents have not been resolved; an active agent is in flight.
const (
	AgentStatePending   AgentState = "pending"
	AgentStateActive    AgentState = "active"
	AgentStateCompleted AgentState = "completed"
	AgentStateSkipped   AgentState = "skipped"
)
