package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
)

//nolint:gochecknoglobals // shared palette
var (
	// ColorPrimary marks active agents and headings.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess marks completed agents and workflows.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning marks advisories and validation warnings.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError marks failures and aborted workflows.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted marks skipped and pending agents.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold is plain bold text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim is faint text.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// OutputStyles holds the message styles used by TTYOutput.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles builds the message styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// TableStyles holds header and cell styles for tables.
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
}

// NewTableStyles builds the table styles.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
	}
}

// CheckNoColor drops to the ASCII profile when color is unwanted.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport is false when NO_COLOR is present (any value) or TERM=dumb.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// AgentStateIcon returns the marker shown next to an agent.
func AgentStateIcon(state constants.AgentState) string {
	switch state {
	case constants.AgentStateCompleted:
		return "✓"
	case constants.AgentStateActive:
		return "●"
	case constants.AgentStateSkipped:
		return "⊘"
	case constants.AgentStatePending:
		return "○"
	default:
		return "?"
	}
}

// AgentStateColor returns the color for an agent state.
func AgentStateColor(state constants.AgentState) lipgloss.AdaptiveColor {
	switch state {
	case constants.AgentStateCompleted:
		return ColorSuccess
	case constants.AgentStateActive:
		return ColorPrimary
	default:
		return ColorMuted
	}
}

// WorkflowStatusColor returns the color for a workflow status.
func WorkflowStatusColor(status constants.WorkflowStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.WorkflowStatusCompleted:
		return ColorSuccess
	case constants.WorkflowStatusAborted:
		return ColorError
	case constants.WorkflowStatusInProgress:
		return ColorPrimary
	default:
		return ColorMuted
	}
}
