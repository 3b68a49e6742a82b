package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hodyerrors "github.com/hodynguyen/Claude-Workflow/internal/errors"
)

func allSentinels() []error {
	return []error{
		hodyerrors.ErrNoActiveWorkflow,
		hodyerrors.ErrUnknownAgent,
		hodyerrors.ErrUnknownPhase,
		hodyerrors.ErrEmptyPhase,
		hodyerrors.ErrDuplicateAgent,
		hodyerrors.ErrNoPhases,
		hodyerrors.ErrInvalidPhaseSpec,
		hodyerrors.ErrMalformedContract,
		hodyerrors.ErrMalformedTeam,
		hodyerrors.ErrPermissionDenied,
		hodyerrors.ErrStateCorrupted,
		hodyerrors.ErrLockTimeout,
		hodyerrors.ErrEmptyValue,
		hodyerrors.ErrValueOutOfRange,
		hodyerrors.ErrConfigNil,
		hodyerrors.ErrInvalidOutputFormat,
		hodyerrors.ErrNonInteractiveMode,
		hodyerrors.ErrOperationCanceled,
		hodyerrors.ErrJSONErrorOutput,
		hodyerrors.ErrContractNotFound,
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := allSentinels()
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b, "%q should not match %q", a, b)
		}
	}
}

func TestWrap_PreservesErrorChain(t *testing.T) {
	for _, sentinel := range allSentinels() {
		t.Run(sentinel.Error(), func(t *testing.T) {
			wrapped := hodyerrors.Wrap(sentinel, "context message")

			require.ErrorIs(t, wrapped, sentinel)
			assert.Contains(t, wrapped.Error(), "context message")
		})
	}
}

func TestWrap_NilError(t *testing.T) {
	assert.NoError(t, hodyerrors.Wrap(nil, "should not appear"))
	assert.NoError(t, hodyerrors.Wrapf(nil, "agent %s", "backend"))
}

func TestWrap_MultipleWraps(t *testing.T) {
	wrapped := hodyerrors.Wrap(hodyerrors.Wrap(hodyerrors.ErrUnknownAgent, "first"), "second")

	require.ErrorIs(t, wrapped, hodyerrors.ErrUnknownAgent)
	assert.Equal(t, "second: first: agent not found in any workflow phase", wrapped.Error())
}

func TestWrapf_MessageFormat(t *testing.T) {
	wrapped := hodyerrors.Wrapf(hodyerrors.ErrNoActiveWorkflow, "failed to start agent %s", "backend")
	assert.Equal(t, "failed to start agent backend: no active workflow", wrapped.Error())
}

func TestUserMessage(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, hodyerrors.UserMessage(nil))
	})

	t.Run("direct sentinel", func(t *testing.T) {
		assert.Equal(t, "No active workflow.", hodyerrors.UserMessage(hodyerrors.ErrNoActiveWorkflow))
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		err := fmt.Errorf("failed to skip agent 'qa': %w", hodyerrors.ErrUnknownAgent)
		assert.Equal(t, "That agent is not part of the current workflow.", hodyerrors.UserMessage(err))
	})

	t.Run("unknown error keeps original message", func(t *testing.T) {
		assert.Equal(t, "disk full", hodyerrors.UserMessage(errors.New("disk full")))
	})
}

func TestActionable(t *testing.T) {
	msg, action := hodyerrors.Actionable(hodyerrors.Wrap(hodyerrors.ErrPermissionDenied, "skip"))
	assert.Equal(t, "Your role does not allow this operation.", msg)
	assert.NotEmpty(t, action)

	msg, action = hodyerrors.Actionable(hodyerrors.ErrOperationCanceled)
	assert.Equal(t, "Operation canceled.", msg)
	assert.Empty(t, action)

	msg, action = hodyerrors.Actionable(nil)
	assert.Empty(t, msg)
	assert.Empty(t, action)
}

func TestExitCode2Error(t *testing.T) {
	err := hodyerrors.NewExitCode2Error(hodyerrors.ErrInvalidPhaseSpec)

	assert.Equal(t, hodyerrors.ErrInvalidPhaseSpec.Error(), err.Error())
	require.ErrorIs(t, err, hodyerrors.ErrInvalidPhaseSpec)
	assert.True(t, hodyerrors.IsExitCode2Error(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, hodyerrors.IsExitCode2Error(hodyerrors.ErrInvalidPhaseSpec))
	assert.False(t, hodyerrors.IsExitCode2Error(nil))
}
