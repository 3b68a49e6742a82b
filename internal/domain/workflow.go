// Package domain provides shared domain types for the hody workflow system.
// These types are used across internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case to stay compatible with existing state files.
package domain

import (
	"slices"
	"time"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
)

// WorkflowRecord is the single persisted description of a project's workflow.
// At most one record exists per project; a new init replaces it.
//
// Example JSON representation:
//
//	{
//	    "workflow_id": "feat-add-login-20260314",
//	    "feature": "Add login",
//	    "type": "new-feature",
//	    "status": "in_progress",
//	    "created_at": "2026-03-14T09:30:00Z",
//	    "updated_at": "2026-03-14T09:31:12Z",
//	    "phases": {
//	        "THINK": {"agents": ["researcher"], "completed": [], "active": null, "skipped": []}
//	    },
//	    "phase_order": ["THINK"],
//	    "agent_log": []
//	}
type WorkflowRecord struct {
	// WorkflowID is derived from the feature text and creation date.
	// It is informational only and never used as a lookup key.
	WorkflowID string `json:"workflow_id"`

	// Feature is the free-text description supplied at init. Immutable.
	Feature string `json:"feature"`

	// Type is a caller-supplied category tag such as "new-feature" or "bug-fix".
	Type string `json:"type"`

	// Status is the workflow lifecycle status.
	Status constants.WorkflowStatus `json:"status"`

	// CreatedAt is when the workflow was initialized.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is rewritten on every persisted mutation.
	UpdatedAt time.Time `json:"updated_at"`

	// Phases maps each phase in PhaseOrder to its state.
	Phases map[constants.Phase]*PhaseState `json:"phases"`

	// PhaseOrder is the canonical ordering filtered to the supplied phases.
	PhaseOrder []constants.Phase `json:"phase_order"`

	// AgentLog is the append-only audit trail of agent runs.
	AgentLog []LogEntry `json:"agent_log"`
}

// PhaseState tracks the agents assigned to one phase.
// Completed and Skipped behave as insertion-ordered sets and never overlap.
type PhaseState struct {
	// Agents is the ordered roster fixed at init.
	Agents []string `json:"agents"`

	// Completed lists agents that finished successfully.
	Completed []string `json:"completed"`

	// Active is the agent currently in flight, or nil.
	Active *string `json:"active"`

	// Skipped lists agents that were explicitly bypassed.
	Skipped []string `json:"skipped"`
}

// LogEntry records one run of an agent.
// An entry is open while CompletedAt is nil.
type LogEntry struct {
	Agent           string          `json:"agent"`
	Phase           constants.Phase `json:"phase"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at"`
	OutputSummary   string          `json:"output_summary"`
	KBFilesModified []string        `json:"kb_files_modified"`
}

// NewPhaseState returns a phase with the given roster and empty progress.
func NewPhaseState(agents []string) *PhaseState {
	return &PhaseState{
		Agents:    slices.Clone(agents),
		Completed: []string{},
		Skipped:   []string{},
	}
}

// Has reports whether agent is assigned to this phase.
func (p *PhaseState) Has(agent string) bool {
	return slices.Contains(p.Agents, agent)
}

// IsCompleted reports whether agent is in the completed set.
func (p *PhaseState) IsCompleted(agent string) bool {
	return slices.Contains(p.Completed, agent)
}

// IsSkipped reports whether agent is in the skipped set.
func (p *PhaseState) IsSkipped(agent string) bool {
	return slices.Contains(p.Skipped, agent)
}

// IsResolved reports whether agent is completed or skipped.
func (p *PhaseState) IsResolved(agent string) bool {
	return p.IsCompleted(agent) || p.IsSkipped(agent)
}

// IsActive reports whether agent is the phase's in-flight agent.
func (p *PhaseState) IsActive(agent string) bool {
	return p.Active != nil && *p.Active == agent
}

// HasProgress reports whether the phase has at least one completion, or has
// had every one of its agents skipped.
func (p *PhaseState) HasProgress() bool {
	return len(p.Completed) > 0 || len(p.Skipped) == len(p.Agents)
}

// Remaining returns the agents that are neither completed nor skipped, in roster order.
func (p *PhaseState) Remaining() []string {
	remaining := make([]string, 0, len(p.Agents))
	for _, agent := range p.Agents {
		if !p.IsResolved(agent) {
			remaining = append(remaining, agent)
		}
	}
	return remaining
}

// AgentState derives the state of agent within this phase.
// Resolution wins over activity; an agent that is not assigned reports pending.
func (p *PhaseState) AgentState(agent string) constants.AgentState {
	switch {
	case p.IsCompleted(agent):
		return constants.AgentStateCompleted
	case p.IsSkipped(agent):
		return constants.AgentStateSkipped
	case p.IsActive(agent):
		return constants.AgentStateActive
	default:
		return constants.AgentStatePending
	}
}

// PhaseOf returns the phase agent is assigned to.
// Phases are scanned in PhaseOrder; the second return is false when no phase owns agent.
func (r *WorkflowRecord) PhaseOf(agent string) (constants.Phase, bool) {
	for _, phase := range r.PhaseOrder {
		if p, ok := r.Phases[phase]; ok && p.Has(agent) {
			return phase, true
		}
	}
	return "", false
}

// IsInProgress reports whether the record still accepts mutations.
func (r *WorkflowRecord) IsInProgress() bool {
	return r != nil && r.Status == constants.WorkflowStatusInProgress
}

// Agents returns every assigned agent in phase order.
func (r *WorkflowRecord) Agents() []string {
	var agents []string
	for _, phase := range r.PhaseOrder {
		if p, ok := r.Phases[phase]; ok {
			agents = append(agents, p.Agents...)
		}
	}
	return agents
}

// IsResolved reports whether agent is completed or skipped in its phase.
// Unknown agents are never resolved.
func (r *WorkflowRecord) IsResolved(agent string) bool {
	phase, ok := r.PhaseOf(agent)
	if !ok {
		return false
	}
	return r.Phases[phase].IsResolved(agent)
}

// LastOpenEntry returns the index of the most recent log entry for agent whose
// CompletedAt is nil, or -1 when there is none.
func (r *WorkflowRecord) LastOpenEntry(agent string) int {
	for i := len(r.AgentLog) - 1; i >= 0; i-- {
		if r.AgentLog[i].Agent == agent && r.AgentLog[i].CompletedAt == nil {
			return i
		}
	}
	return -1
}
