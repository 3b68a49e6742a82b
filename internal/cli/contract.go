package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hodynguyen/Claude-Workflow/internal/contract"
	"github.com/hodynguyen/Claude-Workflow/internal/domain"
	"github.com/hodynguyen/Claude-Workflow/internal/errors"
	"github.com/hodynguyen/Claude-Workflow/internal/team"
	"github.com/hodynguyen/Claude-Workflow/internal/tui"
)

// AddContractCommand adds the contract command group to the root command.
func AddContractCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Inspect and check handoff contracts",
		Long: `Handoff contracts declare what one agent should leave in the knowledge
base for the next. They live in .hody/contracts as <from>-to-<to>.yaml.`,
	}

	cmd.AddCommand(
		newContractListCmd(),
		newContractShowCmd(),
		newContractCheckCmd(),
		newContractIncomingCmd(),
		newContractNewCmd(),
	)

	root.AddCommand(cmd)
}

// contractListResponse is the JSON shape of `hody contract list`.
type contractListResponse struct {
	Contracts []contract.Entry `json:"contracts"`
	Malformed []string         `json:"malformed,omitempty"`
}

// incomingResponse is the JSON shape of `hody contract incoming`.
type incomingResponse struct {
	Contracts []contract.IncomingResult `json:"contracts"`
	Malformed []string                  `json:"malformed,omitempty"`
}

// splitMalformed turns the parse errors of a contract listing into messages.
// Any other failure is returned unchanged.
func splitMalformed(err error) ([]string, error) {
	if err == nil {
		return nil, nil
	}
	parseErrs := contract.Malformed(err)
	if len(parseErrs) == 0 {
		return nil, err
	}
	messages := make([]string, 0, len(parseErrs))
	for _, pe := range parseErrs {
		messages = append(messages, pe.Error())
	}
	return messages, nil
}

func newContractListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runContractList(cmd, cmd.OutOrStdout())
		},
	}
}

func runContractList(cmd *cobra.Command, w io.Writer) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	entries, err := contract.List(env.cfg.ContractsPath(env.root))
	malformed, err := splitMalformed(err)
	if err != nil {
		return env.fail(err)
	}

	if env.format == OutputJSON {
		if entries == nil {
			entries = []contract.Entry{}
		}
		return env.out.JSON(contractListResponse{Contracts: entries, Malformed: malformed})
	}

	defer printMalformed(env, malformed)
	if len(entries) == 0 {
		env.out.Info("No contracts in " + env.cfg.ContractsPath(env.root))
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.From,
			e.To,
			string(e.Contract.Version),
			strconv.Itoa(len(e.Contract.Validation)),
			strconv.Itoa(len(e.Contract.RequiredSections)),
		})
	}
	env.out.Table([]string{"FROM", "TO", "VERSION", "RULES", "SECTIONS"}, rows)
	return nil
}

func newContractShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <from> <to>",
		Short: "Show one contract",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContractShow(cmd, cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func runContractShow(cmd *cobra.Command, w io.Writer, from, to string) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	c, err := findContract(env, from, to)
	if err != nil {
		return env.fail(err)
	}

	if env.format == OutputJSON {
		return env.out.JSON(c)
	}
	_, _ = fmt.Fprint(env.w, tui.RenderMarkdown(contractMarkdown(c)))
	return nil
}

func findContract(env *commandEnv, from, to string) (*contract.Contract, error) {
	c, err := contract.Find(env.cfg.ContractsPath(env.root), from, to)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrContractNotFound, contract.FileName(from, to))
	}
	return c, nil
}

// contractMarkdown describes c as a markdown document.
func contractMarkdown(c *contract.Contract) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (v%s)\n\n", c.Name, c.Version)
	if c.Description != "" {
		b.WriteString(c.Description + "\n\n")
	}

	b.WriteString("## Validation\n\n")
	if len(c.Validation) == 0 {
		b.WriteString("_No rules._\n\n")
	}
	for _, rule := range c.Validation {
		fmt.Fprintf(&b, "- `%s` (%s): %s\n", rule.File, rule.Check, rule.MessageOrDefault())
	}

	b.WriteString("\n## Required sections\n\n")
	if len(c.RequiredSections) == 0 {
		b.WriteString("_None._\n")
	}
	for _, section := range c.RequiredSections {
		if section.Format != "" {
			fmt.Fprintf(&b, "- **%s**: %s\n", section.Name, section.Format)
		} else {
			fmt.Fprintf(&b, "- **%s**\n", section.Name)
		}
	}
	return b.String()
}

func newContractCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <from> <to>",
		Short: "Check one contract against the knowledge base",
		Long: `Check one contract against the knowledge base and the current workflow.
Problems are reported as warnings; the exit code is 0 either way.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContractCheck(cmd, cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func runContractCheck(cmd *cobra.Command, w io.Writer, from, to string) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	c, err := findContract(env, from, to)
	if err != nil {
		return env.fail(err)
	}
	record, err := currentRecord(env)
	if err != nil {
		return env.fail(err)
	}

	result := contract.Validate(c, env.cfg.KnowledgePath(env.root), record)

	if env.format == OutputJSON {
		return env.out.JSON(result)
	}
	printIncoming(env, []contract.IncomingResult{{
		Entry:  contract.Entry{From: from, To: to, Contract: c},
		Result: result,
	}})
	return nil
}

func newContractIncomingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "incoming <agent>",
		Short: "Check every contract that hands off to an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContractIncoming(cmd, cmd.OutOrStdout(), args[0])
		},
	}
}

func runContractIncoming(cmd *cobra.Command, w io.Writer, agent string) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	record, err := currentRecord(env)
	if err != nil {
		return env.fail(err)
	}

	results, err := contract.ValidateIncoming(env.ctx,
		env.cfg.ContractsPath(env.root), env.cfg.KnowledgePath(env.root), agent, record)
	malformed, err := splitMalformed(err)
	if err != nil {
		return env.fail(err)
	}

	if env.format == OutputJSON {
		if results == nil {
			results = []contract.IncomingResult{}
		}
		return env.out.JSON(incomingResponse{Contracts: results, Malformed: malformed})
	}
	if len(results) == 0 && len(malformed) == 0 {
		env.out.Info("No contracts hand off to " + agent)
		return nil
	}
	printIncoming(env, results)
	printMalformed(env, malformed)
	return nil
}

// currentRecord returns the persisted workflow, or nil when there is none.
func currentRecord(env *commandEnv) (*domain.WorkflowRecord, error) {
	store, err := env.store()
	if err != nil {
		return nil, err
	}
	record, err := store.Load(env.ctx)
	if stderrors.Is(err, errors.ErrNoActiveWorkflow) {
		return nil, nil
	}
	return record, err
}

func newContractNewCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new <from> <to>",
		Short: "Scaffold a contract",
		Long: `Write a starter contract for an agent pair. Requires a role that may
modify contracts. An existing contract is kept unless --force is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContractNew(cmd, cmd.OutOrStdout(), args[0], args[1], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing contract")

	return cmd
}

func runContractNew(cmd *cobra.Command, w io.Writer, from, to string, force bool) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	teamCfg, err := env.teamConfig()
	if err != nil {
		return env.fail(err)
	}
	if err := team.NewGate(teamCfg).Allow(env.ctx, env.user(), team.ActionModifyContract); err != nil {
		return env.fail(errors.Wrap(err, "failed to create contract"))
	}

	path, err := contract.WriteScaffold(env.cfg.ContractsPath(env.root), from, to, force)
	if err != nil {
		return env.fail(err)
	}

	if env.format == OutputJSON {
		return env.out.JSON(map[string]string{"path": path})
	}
	env.out.Success("Wrote " + path)
	return nil
}
