package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hodynguyen/Claude-Workflow/internal/domain"
	"github.com/hodynguyen/Claude-Workflow/internal/errors"
	"github.com/hodynguyen/Claude-Workflow/internal/tui"
	"github.com/hodynguyen/Claude-Workflow/internal/workflow"
)

// historyFeatureWidth bounds the feature column of the workflow list.
const historyFeatureWidth = 40

// historyResponse is the JSON shape of `hody history`.
type historyResponse struct {
	Stats     workflow.Stats           `json:"stats"`
	Workflows []*domain.WorkflowRecord `json:"workflows,omitempty"`
}

// AddHistoryCommand adds the history command to the root command.
func AddHistoryCommand(root *cobra.Command) {
	var list bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Summarize past workflows",
		Long: `Summarize workflows replaced by 'hody init' together with the current
one: how many were started, completed and aborted, and which agents ran most.

Examples:
  hody history
  hody history --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "also list each workflow")

	root.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, w io.Writer, list bool) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	store, err := env.store()
	if err != nil {
		return env.fail(err)
	}

	history, err := store.History(env.ctx)
	if err != nil {
		return env.fail(err)
	}
	current, err := store.Load(env.ctx)
	if err != nil && !stderrors.Is(err, errors.ErrNoActiveWorkflow) {
		return env.fail(err)
	}

	stats := workflow.ComputeStats(current, history)
	records := history
	if current != nil {
		records = append(records, current)
	}

	if env.format == OutputJSON {
		resp := historyResponse{Stats: stats}
		if list {
			resp.Workflows = records
		}
		return env.out.JSON(resp)
	}

	if stats.TotalStarted == 0 {
		env.out.Info("No workflows yet.")
		return nil
	}

	env.out.Table([]string{"STARTED", "COMPLETED", "ABORTED", "COMPLETION", "AVG AGENTS"}, [][]string{{
		strconv.Itoa(stats.TotalStarted),
		strconv.Itoa(stats.TotalCompleted),
		strconv.Itoa(stats.TotalAborted),
		strconv.Itoa(stats.CompletionRate) + "%",
		strconv.FormatFloat(stats.AvgAgentsPerWorkflow, 'f', 1, 64),
	}})

	if len(stats.AgentUsage) > 0 {
		_, _ = fmt.Fprintln(env.w)
		env.out.Table([]string{"AGENT", "RUNS"}, usageRows(stats.AgentUsage))
	}

	if list {
		_, _ = fmt.Fprintln(env.w)
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				r.WorkflowID,
				tui.Truncate(r.Feature, historyFeatureWidth),
				r.Status.String(),
				r.CreatedAt.UTC().Format("2006-01-02"),
			})
		}
		env.out.Table([]string{"WORKFLOW", "FEATURE", "STATUS", "CREATED"}, rows)
	}
	return nil
}

// usageRows sorts agents by run count, then name.
func usageRows(usage map[string]int) [][]string {
	agents := make([]string, 0, len(usage))
	for agent := range usage {
		agents = append(agents, agent)
	}
	sort.Slice(agents, func(i, j int) bool {
		if usage[agents[i]] != usage[agents[j]] {
			return usage[agents[i]] > usage[agents[j]]
		}
		return agents[i] < agents[j]
	})

	rows := make([][]string, 0, len(agents))
	for _, agent := range agents {
		rows = append(rows, []string{agent, strconv.Itoa(usage[agent])})
	}
	return rows
}
