package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   WorkflowStatus
		terminal bool
	}{
		{WorkflowStatusInProgress, false},
		{WorkflowStatusCompleted, true},
		{WorkflowStatusAborted, true},
		{WorkflowStatus("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestPhaseOrder(t *testing.T) {
	order := PhaseOrder()
	assert.Equal(t, []Phase{PhaseThink, PhaseBuild, PhaseVerify, PhaseShip}, order)

	// Mutating the returned slice must not affect later calls.
	order[0] = "MUTATED"
	assert.Equal(t, PhaseThink, PhaseOrder()[0])
}
