package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
	"github.com/hodynguyen/Claude-Workflow/internal/domain"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits", in: "backend", width: 10, want: "backend"},
		{name: "exact", in: "backend", width: 7, want: "backend"},
		{name: "cut", in: "Designed REST API", width: 8, want: "Designe…"},
		{name: "wide runes", in: "登录功能设计", width: 5, want: "登录…"},
		{name: "zero width", in: "x", width: 0, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Truncate(tc.in, tc.width)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, DisplayWidth(got), max(tc.width, 0))
		})
	}
}

func TestPadRight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "登录 ", PadRight("登录", 5))
	assert.Equal(t, "toolong", PadRight("toolong", 3))
}

func TestAgentStateIcon(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "✓", AgentStateIcon(constants.AgentStateCompleted))
	assert.Equal(t, "●", AgentStateIcon(constants.AgentStateActive))
	assert.Equal(t, "⊘", AgentStateIcon(constants.AgentStateSkipped))
	assert.Equal(t, "○", AgentStateIcon(constants.AgentStatePending))
	assert.Equal(t, "?", AgentStateIcon("bogus"))
}

func TestHasColorSupport(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, HasColorSupport())
}

func TestHasColorSupport_DumbTerm(t *testing.T) {
	t.Setenv("TERM", "dumb")
	assert.False(t, HasColorSupport())
}

func sampleRecord() *domain.WorkflowRecord {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	active := "architect"
	think := domain.NewPhaseState([]string{"researcher", "architect"})
	think.Completed = []string{"researcher"}
	think.Active = &active
	build := domain.NewPhaseState([]string{"backend", "frontend"})
	build.Skipped = []string{"frontend"}

	return &domain.WorkflowRecord{
		WorkflowID: "feat-add-user-login-20260314",
		Feature:    "Add user login",
		Type:       "new-feature",
		Status:     constants.WorkflowStatusInProgress,
		CreatedAt:  created,
		UpdatedAt:  created.Add(time.Minute),
		Phases: map[constants.Phase]*domain.PhaseState{
			constants.PhaseThink: think,
			constants.PhaseBuild: build,
		},
		PhaseOrder: []constants.Phase{constants.PhaseThink, constants.PhaseBuild},
		AgentLog:   []domain.LogEntry{},
	}
}

func TestRenderWorkflow(t *testing.T) {
	t.Parallel()

	out := RenderWorkflow(sampleRecord(), "architect", 0)

	assert.Contains(t, out, "Add user login (new-feature)")
	assert.Contains(t, out, "in_progress")
	assert.Contains(t, out, "feat-add-user-login-20260314")
	assert.Contains(t, out, "2026-03-14 09:30 UTC")
	assert.Contains(t, out, "✓ researcher")
	assert.Contains(t, out, "● architect")
	assert.Contains(t, out, "○ backend")
	assert.Contains(t, out, "⊘ frontend")
	assert.Contains(t, out, "Next: architect")
	assert.Less(t, strings.Index(out, "THINK"), strings.Index(out, "BUILD"))
}

func TestRenderWorkflow_AllResolved(t *testing.T) {
	t.Parallel()

	out := RenderWorkflow(sampleRecord(), "", 80)
	assert.Contains(t, out, "hody done")
	assert.NotContains(t, out, "Next:")
}

func TestRenderWorkflow_TerminalHasNoHint(t *testing.T) {
	t.Parallel()

	r := sampleRecord()
	r.Status = constants.WorkflowStatusAborted
	out := RenderWorkflow(r, "", 80)
	assert.Contains(t, out, "aborted")
	assert.NotContains(t, out, "hody done")
}

func TestLogRows(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	end := start.Add(10 * time.Minute)
	rows := LogRows([]domain.LogEntry{
		{Agent: "researcher", Phase: constants.PhaseThink, StartedAt: start, CompletedAt: &end, OutputSummary: "Surveyed OAuth providers"},
		{Agent: "architect", Phase: constants.PhaseThink, StartedAt: end},
	}, 10)

	assert.Equal(t, []string{"researcher", "THINK", "2026-03-14 09:30 UTC", "2026-03-14 09:40 UTC", "Surveyed …"}, rows[0])
	assert.Equal(t, "running", rows[1][3])
	assert.Empty(t, rows[1][4])
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	out := RenderMarkdown("# architect-to-backend\n\nAPI Endpoints")
	assert.Contains(t, out, "architect-to-backend")
	assert.Contains(t, out, "API Endpoints")
}
