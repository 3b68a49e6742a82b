package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hodynguyen/Claude-Workflow/internal/domain"
	"github.com/hodynguyen/Claude-Workflow/internal/errors"
	"github.com/hodynguyen/Claude-Workflow/internal/tui"
	"github.com/hodynguyen/Claude-Workflow/internal/workflow"
)

// DefaultWorkflowType is used when --type is not given.
const DefaultWorkflowType = "new-feature"

type initOptions struct {
	workflowType string
	phases       []string
	force        bool
}

// AddInitCommand adds the init command to the root command.
func AddInitCommand(root *cobra.Command) {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init <feature>",
		Short: "Start a new workflow",
		Long: `Start a new workflow for a feature and assign agents to phases.

Phases are THINK, BUILD, VERIFY and SHIP (case-insensitive). Repeat --phase
for each phase; agents within a phase run in the order given.

A workflow that is still in progress is archived to history and replaced.
You are asked to confirm unless --force is given.

Examples:
  hody init "Add user login" --phase THINK=researcher,architect --phase BUILD=backend
  hody init "Fix checkout bug" -t bug-fix -p BUILD=backend -p VERIFY=unit-tester --force`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.workflowType, "type", "t", DefaultWorkflowType, "workflow category")
	cmd.Flags().StringArrayVarP(&opts.phases, "phase", "p", nil, "PHASE=agent[,agent...] (repeatable)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "replace an in-progress workflow without asking")
	_ = cmd.MarkFlagRequired("phase")

	root.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, w io.Writer, feature string, opts initOptions) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	phases, err := workflow.ParsePhaseSpecs(opts.phases)
	if err != nil {
		return env.fail(err)
	}

	m, _, err := env.machine()
	if err != nil {
		return env.fail(err)
	}

	existing, err := m.Load(env.ctx)
	switch {
	case err == nil && existing.IsInProgress():
		err = confirmDestructive(env, opts.force,
			fmt.Sprintf("Replace workflow '%s'?", existing.Feature),
			"The current record moves to state history.",
			"Yes, replace")
		if err != nil {
			return env.fail(err)
		}
	case err == nil, stderrors.Is(err, errors.ErrNoActiveWorkflow):
	case stderrors.Is(err, errors.ErrStateCorrupted) && opts.force:
		env.logger.Warn().Err(err).Msg("replacing unreadable workflow state")
	default:
		return env.fail(err)
	}

	record, err := m.Init(env.ctx, feature, opts.workflowType, phases)
	if err != nil {
		return env.fail(err)
	}

	if env.format == OutputJSON {
		return env.out.JSON(record)
	}
	env.out.Success("Workflow " + record.WorkflowID + " started")
	renderBoard(env.w, record)
	return nil
}

// renderBoard prints the phase board for record.
func renderBoard(w io.Writer, record *domain.WorkflowRecord) {
	next := ""
	if n, ok := workflow.NextAgent(record); ok {
		next = n.Agent
	}
	_, _ = fmt.Fprint(w, tui.RenderWorkflow(record, next, tui.TerminalWidth()))
}
