package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// AddDoneCommand adds the done command to the root command.
func AddDoneCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "done",
		Short: "Mark the workflow completed",
		Long: `Mark the current workflow completed. Agents that are still pending
do not prevent this; they are listed as a reminder.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDone(cmd, cmd.OutOrStdout())
		},
	}

	root.AddCommand(cmd)
}

func runDone(cmd *cobra.Command, w io.Writer) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	m, _, err := env.machine()
	if err != nil {
		return env.fail(err)
	}
	record, err := m.CompleteWorkflow(env.ctx)
	if err != nil {
		return env.fail(err)
	}

	if env.format == OutputJSON {
		return env.out.JSON(record)
	}

	var pending []string
	for _, agent := range record.Agents() {
		if !record.IsResolved(agent) {
			pending = append(pending, agent)
		}
	}
	if len(pending) > 0 {
		env.out.Warning("Closed with unresolved agents: " + strings.Join(pending, ", "))
	}
	env.out.Success(fmt.Sprintf("Workflow %s completed", record.WorkflowID))
	return nil
}

// AddAbortCommand adds the abort command to the root command.
func AddAbortCommand(root *cobra.Command) {
	var force bool

	cmd := &cobra.Command{
		Use:   "abort",
		Short: "Abandon the workflow",
		Long: `Mark the current workflow aborted. Requires a role that may abort
workflows. Asks for confirmation unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAbort(cmd, cmd.OutOrStdout(), force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	root.AddCommand(cmd)
}

func runAbort(cmd *cobra.Command, w io.Writer, force bool) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	m, _, err := env.machine()
	if err != nil {
		return env.fail(err)
	}

	current, err := m.Load(env.ctx)
	if err != nil {
		return env.fail(err)
	}
	if current.IsInProgress() {
		err = confirmDestructive(env, force,
			fmt.Sprintf("Abort workflow '%s'?", current.Feature),
			"The record stays on disk with status aborted.",
			"Yes, abort")
		if err != nil {
			return env.fail(err)
		}
	}

	record, err := m.AbortWorkflow(env.ctx, env.user())
	if err != nil {
		return env.fail(err)
	}

	if env.format == OutputJSON {
		return env.out.JSON(record)
	}
	env.out.Success(fmt.Sprintf("Workflow %s aborted", record.WorkflowID))
	return nil
}
