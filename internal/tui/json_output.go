package tui

import (
	"encoding/json"
	"io"

	"github.com/hodynguyen/Claude-Workflow/internal/errors"
)

// JSONOutput writes one JSON document per call, for scripts and agents.
type JSONOutput struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewJSONOutput creates a JSONOutput writing to w.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{
		w:       w,
		encoder: json.NewEncoder(w),
	}
}

type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type jsonError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Success writes {"type":"success","message":...}.
func (o *JSONOutput) Success(msg string) {
	//nolint:errchkjson // no error return in the interface
	_ = o.encoder.Encode(jsonMessage{Type: "success", Message: msg})
}

// Error writes the error text, the user-facing summary as details when
// it adds something, and the suggested action.
func (o *JSONOutput) Error(err error) {
	summary, action := errors.Actionable(err)
	out := jsonError{Type: "error", Message: err.Error(), Suggestion: action}
	if summary != out.Message {
		out.Details = summary
	}
	//nolint:errchkjson // no error return in the interface
	_ = o.encoder.Encode(out)
}

// Warning writes {"type":"warning","message":...}.
func (o *JSONOutput) Warning(msg string) {
	//nolint:errchkjson // no error return in the interface
	_ = o.encoder.Encode(jsonMessage{Type: "warning", Message: msg})
}

// Info writes {"type":"info","message":...}.
func (o *JSONOutput) Info(msg string) {
	//nolint:errchkjson // no error return in the interface
	_ = o.encoder.Encode(jsonMessage{Type: "info", Message: msg})
}

// Table writes the rows as an array of header-keyed objects.
func (o *JSONOutput) Table(headers []string, rows [][]string) {
	result := make([]map[string]string, 0, len(rows))
	if len(headers) > 0 {
		for _, row := range rows {
			obj := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(row) {
					obj[h] = row[i]
				} else {
					obj[h] = ""
				}
			}
			result = append(result, obj)
		}
	}
	//nolint:errchkjson // no error return in the interface
	_ = o.encoder.Encode(result)
}

// JSON writes v.
func (o *JSONOutput) JSON(v any) error {
	return o.encoder.Encode(v)
}
