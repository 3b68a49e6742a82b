// Package errors provides centralized error handling for hody.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrNoActiveWorkflow indicates that no workflow record exists, or that the
	// persisted record has already reached a terminal status.
	ErrNoActiveWorkflow = errors.New("no active workflow")

	// ErrUnknownAgent indicates that an agent name does not belong to any phase
	// of the current workflow.
	ErrUnknownAgent = errors.New("agent not found in any workflow phase")

	// ErrUnknownPhase indicates a phase name outside the canonical THINK, BUILD,
	// VERIFY, SHIP set.
	ErrUnknownPhase = errors.New("unknown phase")

	// ErrEmptyPhase indicates a phase was supplied without any agents.
	ErrEmptyPhase = errors.New("phase has no agents")

	// ErrDuplicateAgent indicates an agent was assigned more than once.
	ErrDuplicateAgent = errors.New("agent assigned more than once")

	// ErrNoPhases indicates a workflow was initialized with an empty phase map.
	ErrNoPhases = errors.New("workflow has no phases")

	// ErrInvalidPhaseSpec indicates a --phase flag value that is not PHASE=agent[,agent].
	ErrInvalidPhaseSpec = errors.New("invalid phase specification")

	// ErrMalformedContract indicates a contract file that does not match the
	// contract schema.
	ErrMalformedContract = errors.New("malformed contract")

	// ErrMalformedTeam indicates a team file that cannot be parsed.
	ErrMalformedTeam = errors.New("malformed team config")

	// ErrPermissionDenied indicates the requesting identity lacks the capability
	// for a gated operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrStateCorrupted indicates the state file exists but cannot be decoded.
	ErrStateCorrupted = errors.New("workflow state corrupted")

	// ErrLockTimeout indicates a file lock could not be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrNonInteractiveMode indicates that an operation requiring confirmation
	// was attempted in non-interactive mode without the force flag.
	ErrNonInteractiveMode = errors.New("use --force in non-interactive mode")

	// ErrOperationCanceled indicates the user declined a confirmation prompt.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// This ensures a non-zero exit code while preventing duplicate error messages.
	// Commands should silence cobra's error printing when this is returned.
	ErrJSONErrorOutput = errors.New("error output as JSON")

	// ErrTeamFileExists indicates team.yaml already exists and --force was not given.
	ErrTeamFileExists = errors.New("team config already exists")

	// ErrContractNotFound indicates no contract exists for an agent pair.
	ErrContractNotFound = errors.New("contract not found")

	// ErrContractExists indicates a scaffold would overwrite an existing contract.
	ErrContractExists = errors.New("contract already exists")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
