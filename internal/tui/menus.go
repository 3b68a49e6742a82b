package tui

import (
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ConfirmWidth is the form width used for confirmations.
const ConfirmWidth = 72

// HodyTheme maps the hody palette onto huh's base theme.
func HodyTheme() *huh.Theme {
	CheckNoColor()

	t := huh.ThemeBase()
	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorPrimary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorError)
	t.Blurred.Base = t.Blurred.Base.BorderForeground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	return t
}

// NewConfirmForm builds a yes/no form that writes the answer to value.
func NewConfirmForm(title, description, affirmative string, value *bool) *huh.Form {
	_, accessible := os.LookupEnv("ACCESSIBLE")

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative(affirmative).
				Negative("No, cancel").
				Value(value),
		),
	).WithTheme(HodyTheme()).WithWidth(ConfirmWidth).WithAccessible(accessible)
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
