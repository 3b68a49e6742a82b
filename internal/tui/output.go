// Package tui renders hody command output for terminals and for JSON consumers.
package tui

import (
	"io"
)

// Output formats supported by NewOutput.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output is how commands report to the user.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error, including its suggested action when one is known.
	Error(err error)
	// Warning prints an advisory message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Table prints rows under headers.
	Table(headers []string, rows [][]string)
	// JSON encodes v.
	JSON(v any) error
}

// NewOutput returns JSON output for FormatJSON and styled output otherwise.
func NewOutput(w io.Writer, format string) Output {
	if format == FormatJSON {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}
