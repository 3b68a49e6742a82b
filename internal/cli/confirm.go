package cli

import (
	"fmt"

	"github.com/hodynguyen/Claude-Workflow/internal/errors"
	"github.com/hodynguyen/Claude-Workflow/internal/tui"
)

// formRunner matches huh.Form's Run method.
type formRunner interface {
	Run() error
}

// createConfirmForm builds confirmation forms. Tests replace it.
//
//nolint:gochecknoglobals // test seam
var createConfirmForm = func(title, description, affirmative string, value *bool) formRunner {
	return tui.NewConfirmForm(title, description, affirmative, value)
}

// terminalCheck reports whether prompts can be shown. Tests replace it.
//
//nolint:gochecknoglobals // test seam
var terminalCheck = tui.IsInteractive

// confirmDestructive asks before a destructive operation.
// force skips the prompt. Without a terminal, or with JSON output, the
// operation is refused with ErrNonInteractiveMode. A "no" answer returns
// ErrOperationCanceled.
func confirmDestructive(env *commandEnv, force bool, title, description, affirmative string) error {
	if force {
		return nil
	}
	if env.format == OutputJSON || !terminalCheck() {
		return fmt.Errorf("%s: %w", title, errors.ErrNonInteractiveMode)
	}

	var confirmed bool
	if err := createConfirmForm(title, description, affirmative, &confirmed).Run(); err != nil {
		return errors.Wrap(err, "failed to get confirmation")
	}
	if !confirmed {
		return errors.ErrOperationCanceled
	}
	return nil
}
