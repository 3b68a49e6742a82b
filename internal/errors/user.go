package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// A slice rather than a map because wrapped errors need errors.Is traversal in order.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Workflow state
	// ===================
	{
		err: ErrNoActiveWorkflow,
		info: ErrorInfo{
			Message: "No active workflow.",
			Action:  "Run 'hody init <feature> --phase THINK=researcher' to start one.",
		},
	},
	{
		err: ErrUnknownAgent,
		info: ErrorInfo{
			Message: "That agent is not part of the current workflow.",
			Action:  "Run 'hody status' to see the agents assigned to each phase.",
		},
	},
	{
		err: ErrStateCorrupted,
		info: ErrorInfo{
			Message: "The workflow state file could not be read.",
			Action:  "Inspect .hody/state.json, or run 'hody init --force' to replace it.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Another hody process is holding the workflow state lock.",
			Action:  "Wait for the other command to finish and retry.",
		},
	},

	// ===================
	// Workflow setup
	// ===================
	{
		err: ErrUnknownPhase,
		info: ErrorInfo{
			Message: "Unknown phase name.",
			Action:  "Use one of THINK, BUILD, VERIFY, SHIP.",
		},
	},
	{
		err: ErrEmptyPhase,
		info: ErrorInfo{
			Message: "Every phase needs at least one agent.",
			Action:  "Pass agents as --phase BUILD=backend,frontend.",
		},
	},
	{
		err: ErrDuplicateAgent,
		info: ErrorInfo{
			Message: "An agent can belong to only one phase.",
			Action:  "Remove the duplicate agent from the --phase flags.",
		},
	},
	{
		err: ErrNoPhases,
		info: ErrorInfo{
			Message: "A workflow needs at least one phase.",
			Action:  "Add one or more --phase flags.",
		},
	},
	{
		err: ErrInvalidPhaseSpec,
		info: ErrorInfo{
			Message: "Phase flags must look like PHASE=agent1,agent2.",
			Action:  "Example: --phase THINK=researcher,architect",
		},
	},

	// ===================
	// Contracts & team
	// ===================
	{
		err: ErrMalformedContract,
		info: ErrorInfo{
			Message: "A handoff contract file is malformed.",
			Action:  "Fix the reported field in the contract YAML.",
		},
	},
	{
		err: ErrContractNotFound,
		info: ErrorInfo{
			Message: "No contract exists for that agent pair.",
			Action:  "Run 'hody contract list' to see available contracts.",
		},
	},
	{
		err: ErrContractExists,
		info: ErrorInfo{
			Message: "A contract for that agent pair already exists.",
			Action:  "Edit the existing file, or re-run with --force to overwrite it.",
		},
	},
	{
		err: ErrTeamFileExists,
		info: ErrorInfo{
			Message: "A team configuration already exists.",
			Action:  "Re-run 'hody team init --force' to overwrite it.",
		},
	},
	{
		err: ErrMalformedTeam,
		info: ErrorInfo{
			Message: "The team configuration could not be parsed.",
			Action:  "Fix .hody/team.yaml or regenerate it with 'hody team init --force'.",
		},
	},
	{
		err: ErrPermissionDenied,
		info: ErrorInfo{
			Message: "Your role does not allow this operation.",
			Action:  "Ask a lead to run it, or update your role in .hody/team.yaml.",
		},
	},

	// ===================
	// CLI
	// ===================
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "Confirmation required but no terminal is attached.",
			Action:  "Re-run with --force.",
		},
	},
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Operation canceled.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was empty.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Direct sentinels hit the map; wrapped errors fall back to errors.Is traversal.
// Unknown errors keep their original message.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
// The action is empty when there is nothing useful to suggest.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
