package workflow

import (
	"github.com/hodynguyen/Claude-Workflow/internal/constants"
	"github.com/hodynguyen/Claude-Workflow/internal/domain"
)

// Next identifies whose turn it is.
type Next struct {
	Phase constants.Phase `json:"phase"`
	Agent string          `json:"agent"`
}

// NextAgent returns the first agent, scanning phases in order and agents in
// roster order, that is neither completed nor skipped.
// It returns false when record is nil, not in progress, or fully resolved.
// NextAgent never mutates record.
func NextAgent(record *domain.WorkflowRecord) (Next, bool) {
	if !record.IsInProgress() {
		return Next{}, false
	}
	for _, phase := range record.PhaseOrder {
		p, ok := record.Phases[phase]
		if !ok {
			continue
		}
		for _, agent := range p.Agents {
			if !p.IsResolved(agent) {
				return Next{Phase: phase, Agent: agent}, true
			}
		}
	}
	return Next{}, false
}

// CurrentPhase returns the first phase with an unresolved agent.
// Unlike NextAgent it ignores the workflow status.
func CurrentPhase(record *domain.WorkflowRecord) (constants.Phase, bool) {
	if record == nil {
		return "", false
	}
	for _, phase := range record.PhaseOrder {
		if p, ok := record.Phases[phase]; ok && len(p.Remaining()) > 0 {
			return phase, true
		}
	}
	return "", false
}
