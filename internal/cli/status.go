package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
	"github.com/hodynguyen/Claude-Workflow/internal/domain"
	"github.com/hodynguyen/Claude-Workflow/internal/tui"
	"github.com/hodynguyen/Claude-Workflow/internal/workflow"
)

// logSummaryWidth bounds the summary column of the agent log table.
const logSummaryWidth = 48

// statusResponse is the JSON shape of `hody status`.
type statusResponse struct {
	Record       *domain.WorkflowRecord `json:"record"`
	CurrentPhase constants.Phase        `json:"current_phase,omitempty"`
	Next         *workflow.Next         `json:"next"`
}

// nextResponse is the JSON shape of `hody next`.
type nextResponse struct {
	WorkflowID string                   `json:"workflow_id"`
	Status     constants.WorkflowStatus `json:"status"`
	Next       *workflow.Next           `json:"next"`
}

// AddStatusCommand adds the status command to the root command.
func AddStatusCommand(root *cobra.Command) {
	var showLog bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current workflow",
		Long: `Show the current workflow: feature, status, and every agent's state
in each phase. The record is shown even after it completed or was aborted.

Examples:
  hody status
  hody status --log
  hody status -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cmd.OutOrStdout(), showLog)
		},
	}

	cmd.Flags().BoolVarP(&showLog, "log", "l", false, "also list the agent log")

	root.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, w io.Writer, showLog bool) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	m, _, err := env.machine()
	if err != nil {
		return env.fail(err)
	}
	record, err := m.Load(env.ctx)
	if err != nil {
		return env.fail(err)
	}

	if env.format == OutputJSON {
		resp := statusResponse{Record: record}
		if phase, ok := workflow.CurrentPhase(record); ok {
			resp.CurrentPhase = phase
		}
		if next, ok := workflow.NextAgent(record); ok {
			resp.Next = &next
		}
		return env.out.JSON(resp)
	}

	renderBoard(env.w, record)
	if showLog && len(record.AgentLog) > 0 {
		_, _ = fmt.Fprintln(env.w)
		env.out.Table(
			[]string{"AGENT", "PHASE", "STARTED", "COMPLETED", "SUMMARY"},
			tui.LogRows(record.AgentLog, logSummaryWidth),
		)
	}
	return nil
}

// AddNextCommand adds the next command to the root command.
func AddNextCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show whose turn it is",
		Long: `Show the first agent, in phase order and then roster order, that has
neither completed nor been skipped. Nothing is changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNext(cmd, cmd.OutOrStdout())
		},
	}

	root.AddCommand(cmd)
}

func runNext(cmd *cobra.Command, w io.Writer) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	m, _, err := env.machine()
	if err != nil {
		return env.fail(err)
	}
	record, err := m.Load(env.ctx)
	if err != nil {
		return env.fail(err)
	}

	next, ok := workflow.NextAgent(record)

	if env.format == OutputJSON {
		resp := nextResponse{WorkflowID: record.WorkflowID, Status: record.Status}
		if ok {
			resp.Next = &next
		}
		return env.out.JSON(resp)
	}

	switch {
	case ok:
		_, _ = fmt.Fprintf(env.w, "%s (%s)\n", next.Agent, next.Phase)
	case record.IsInProgress():
		env.out.Info("All agents resolved. Run 'hody done' to close the workflow.")
	default:
		env.out.Info(fmt.Sprintf("Workflow %s is %s.", record.WorkflowID, record.Status))
	}
	return nil
}
