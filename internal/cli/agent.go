package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hodynguyen/Claude-Workflow/internal/contract"
	"github.com/hodynguyen/Claude-Workflow/internal/domain"
	"github.com/hodynguyen/Claude-Workflow/internal/knowledge"
	"github.com/hodynguyen/Claude-Workflow/internal/workflow"
)

// startResponse is the JSON shape of `hody start`.
type startResponse struct {
	*workflow.StartResult

	Contracts      []contract.IncomingResult `json:"contracts"`
	ContractErrors []string                  `json:"contract_errors,omitempty"`
}

// completeResponse is the JSON shape of `hody complete`.
type completeResponse struct {
	Record         *domain.WorkflowRecord `json:"record"`
	JournalEntryID string                 `json:"journal_entry_id,omitempty"`
	Next           *workflow.Next         `json:"next"`
}

// AddStartCommand adds the start command to the root command.
func AddStartCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "start <agent>",
		Short: "Mark an agent as running",
		Long: `Mark an agent as the active agent of its phase and open a log entry.

Starting before an earlier phase has any progress is allowed but reported.
Every contract that hands off to the agent is then checked against the
knowledge base; problems are reported as warnings and never block.

Examples:
  hody start architect
  hody start backend -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd, cmd.OutOrStdout(), args[0])
		},
	}

	root.AddCommand(cmd)
}

func runStart(cmd *cobra.Command, w io.Writer, agent string) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	m, _, err := env.machine()
	if err != nil {
		return env.fail(err)
	}
	result, err := m.Start(env.ctx, agent)
	if err != nil {
		return env.fail(err)
	}

	resp := startResponse{StartResult: result, Contracts: []contract.IncomingResult{}}
	incoming, err := contract.ValidateIncoming(env.ctx,
		env.cfg.ContractsPath(env.root), env.cfg.KnowledgePath(env.root), agent, result.Record)
	malformed, err := splitMalformed(err)
	if err != nil {
		// The agent has started; a failed check only costs the handoff report.
		env.logger.Warn().Err(err).Str("agent", agent).Msg("incoming contracts not checked")
		malformed = []string{err.Error()}
	}
	resp.ContractErrors = malformed
	if incoming != nil {
		resp.Contracts = incoming
	}

	if env.format == OutputJSON {
		return env.out.JSON(resp)
	}

	for _, warning := range result.Warnings {
		env.out.Warning(warning)
	}
	env.out.Success(fmt.Sprintf("Started %s (%s)", agent, result.Phase))
	printIncoming(env, resp.Contracts)
	printMalformed(env, resp.ContractErrors)
	return nil
}

func printMalformed(env *commandEnv, messages []string) {
	for _, msg := range messages {
		env.out.Warning("Contract not checked: " + msg)
	}
}

func printIncoming(env *commandEnv, results []contract.IncomingResult) {
	for _, r := range results {
		name := contract.FileName(r.Entry.From, r.Entry.To)
		if r.Result.Passed {
			env.out.Success("Handoff " + name + " satisfied")
			continue
		}
		env.out.Warning(fmt.Sprintf("Handoff %s has %d warning(s)", name, len(r.Result.Warnings)))
		for _, msg := range r.Result.Warnings {
			_, _ = fmt.Fprintln(env.w, "    "+msg)
		}
	}
}

// AddCompleteCommand adds the complete command to the root command.
func AddCompleteCommand(root *cobra.Command) {
	var (
		summary string
		files   []string
	)

	cmd := &cobra.Command{
		Use:   "complete <agent>",
		Short: "Mark an agent as finished",
		Long: `Mark an agent as completed and close its most recent log entry with a
summary and the knowledge-base files it touched.

When knowledge.journal is enabled the completion is also appended to the
journal document in the knowledge base.

Examples:
  hody complete architect --summary "Designed REST API" --file architecture.md --file api-contracts.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, cmd.OutOrStdout(), args[0], summary, files)
		},
	}

	cmd.Flags().StringVarP(&summary, "summary", "s", "", "what the agent produced")
	cmd.Flags().StringArrayVarP(&files, "file", "F", nil, "knowledge-base file the agent modified (repeatable)")

	root.AddCommand(cmd)
}

func runComplete(cmd *cobra.Command, w io.Writer, agent, summary string, files []string) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	m, _, err := env.machine()
	if err != nil {
		return env.fail(err)
	}
	record, err := m.Complete(env.ctx, agent, summary, files)
	if err != nil {
		return env.fail(err)
	}

	resp := completeResponse{Record: record}
	if env.cfg.Knowledge.Journal {
		resp.JournalEntryID = appendJournal(env, record, agent, summary, files)
	}
	if next, ok := workflow.NextAgent(record); ok {
		resp.Next = &next
	}

	if env.format == OutputJSON {
		return env.out.JSON(resp)
	}

	env.out.Success("Completed " + agent)
	if resp.Next != nil {
		env.out.Info(fmt.Sprintf("Next: %s (%s)", resp.Next.Agent, resp.Next.Phase))
	} else {
		env.out.Info("All agents resolved. Run 'hody done' to close the workflow.")
	}
	return nil
}

// appendJournal records the completion in the knowledge base. Failures are
// reported but do not undo the completion.
func appendJournal(env *commandEnv, record *domain.WorkflowRecord, agent, summary string, files []string) string {
	phase, _ := record.PhaseOf(agent)
	entry := knowledge.JournalEntry{
		WorkflowID: record.WorkflowID,
		Agent:      agent,
		Phase:      phase.String(),
		Summary:    summary,
		Files:      files,
		At:         record.UpdatedAt,
	}

	id, err := knowledge.NewJournal(env.cfg.JournalPath(env.root)).Append(env.ctx, entry)
	if err != nil {
		env.logger.Warn().Err(err).Str("agent", agent).Msg("journal entry not written")
		if env.format != OutputJSON {
			env.out.Warning("Journal entry not written: " + err.Error())
		}
		return ""
	}
	return id
}

// AddSkipCommand adds the skip command to the root command.
func AddSkipCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "skip <agent>",
		Short: "Bypass an agent",
		Long: `Mark an agent as skipped. Requires a role that may skip agents
(see 'hody team show'). The identity comes from HODY_USER, then team.user
in the config, then git user.name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkip(cmd, cmd.OutOrStdout(), args[0])
		},
	}

	root.AddCommand(cmd)
}

func runSkip(cmd *cobra.Command, w io.Writer, agent string) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	m, _, err := env.machine()
	if err != nil {
		return env.fail(err)
	}
	record, err := m.Skip(env.ctx, env.user(), agent)
	if err != nil {
		return env.fail(err)
	}

	if env.format == OutputJSON {
		return env.out.JSON(record)
	}

	phase, _ := record.PhaseOf(agent)
	env.out.Success(fmt.Sprintf("Skipped %s (%s)", agent, phase))
	if next, ok := workflow.NextAgent(record); ok {
		env.out.Info(fmt.Sprintf("Next: %s (%s)", next.Agent, next.Phase))
	}
	return nil
}
