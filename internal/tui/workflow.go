package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
	"github.com/hodynguyen/Claude-Workflow/internal/domain"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

const timeLayout = "2006-01-02 15:04 MST"

// RenderWorkflow draws a record as a phase-by-phase board.
// next names the agent whose turn it is, or "" when there is none.
func RenderWorkflow(record *domain.WorkflowRecord, next string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}

	var b strings.Builder

	status := lipgloss.NewStyle().Foreground(WorkflowStatusColor(record.Status)).Render(record.Status.String())
	title := record.Feature
	if record.Type != "" {
		title += " (" + record.Type + ")"
	}
	b.WriteString(StyleBold.Render(Truncate(title, width-DisplayWidth(record.Status.String())-2)))
	b.WriteString("  " + status + "\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%s · created %s · updated %s",
		record.WorkflowID, formatTime(record.CreatedAt), formatTime(record.UpdatedAt))))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, phase := range record.PhaseOrder {
		labelWidth = max(labelWidth, DisplayWidth(phase.String()))
	}

	for _, phase := range record.PhaseOrder {
		p, ok := record.Phases[phase]
		if !ok {
			continue
		}
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Render(PadRight(phase.String(), labelWidth)))
		for _, agent := range p.Agents {
			state := p.AgentState(agent)
			cell := AgentStateIcon(state) + " " + agent
			b.WriteString("  " + lipgloss.NewStyle().Foreground(AgentStateColor(state)).Render(cell))
		}
		b.WriteString("\n")
	}

	switch {
	case next != "":
		b.WriteString("\nNext: " + StyleBold.Render(next) + "\n")
	case record.Status == constants.WorkflowStatusInProgress:
		b.WriteString("\nAll agents resolved. Run 'hody done' to close the workflow.\n")
	}

	return b.String()
}

// LogRows flattens the agent log for Table.
func LogRows(entries []domain.LogEntry, summaryWidth int) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		done := "running"
		if e.CompletedAt != nil {
			done = formatTime(*e.CompletedAt)
		}
		rows = append(rows, []string{
			e.Agent,
			e.Phase.String(),
			formatTime(e.StartedAt),
			done,
			Truncate(e.OutputSummary, summaryWidth),
		})
	}
	return rows
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}
