package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hodynguyen/Claude-Workflow/internal/team"
)

// teamShowResponse is the JSON shape of `hody team show`.
type teamShowResponse struct {
	team.Summary

	Members []team.Member `json:"members"`
	RolePermissions []roleView `json:"role_permissions"`
}

// roleView flattens a role for output.
type roleView struct {
	team.Role

	AgentList string `json:"agents"`
}

// AddTeamCommand adds the team command group to the root command.
func AddTeamCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Show and manage team roles",
		Long: `Roles decide who may skip agents, abort workflows and edit contracts.
They are declared in .hody/team.yaml; without the file everyone is a developer.`,
	}

	cmd.AddCommand(newTeamShowCmd(), newTeamInitCmd(), newTeamCheckCmd())

	root.AddCommand(cmd)
}

func newTeamShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show roles, members and the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTeamShow(cmd, cmd.OutOrStdout())
		},
	}
}

func runTeamShow(cmd *cobra.Command, w io.Writer) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	cfg, err := env.teamConfig()
	if err != nil {
		return env.fail(err)
	}

	user := env.user()
	resp := teamShowResponse{
		Summary: cfg.Summarize(user),
		Members: cfg.Members,
	}
	for _, name := range cfg.RoleNames() {
		role := cfg.Permissions(name)
		resp.RolePermissions = append(resp.RolePermissions, roleView{Role: role, AgentList: role.Agents.String()})
	}

	if env.format == OutputJSON {
		return env.out.JSON(resp)
	}

	identity := user
	if identity == "" {
		identity = "(unknown)"
	}
	env.out.Info(fmt.Sprintf("You are %s, role %s. %d member(s) configured.",
		identity, resp.CurrentRole, resp.MemberCount))

	rows := make([][]string, 0, len(resp.RolePermissions))
	for _, r := range resp.RolePermissions {
		rows = append(rows, []string{
			r.Name,
			yesNo(r.CanSkipAgents),
			yesNo(r.CanModifyContracts),
			yesNo(r.RequiresReview),
			r.AgentList,
		})
	}
	env.out.Table([]string{"ROLE", "SKIP", "CONTRACTS", "REVIEW", "AGENTS"}, rows)

	if len(resp.Members) > 0 {
		memberRows := make([][]string, 0, len(resp.Members))
		for _, m := range resp.Members {
			memberRows = append(memberRows, []string{m.Name, cfg.RoleOf(m.Name)})
		}
		_, _ = fmt.Fprintln(env.w)
		env.out.Table([]string{"MEMBER", "ROLE"}, memberRows)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newTeamInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter team.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTeamInit(cmd, cmd.OutOrStdout(), force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing team.yaml")

	return cmd
}

func runTeamInit(cmd *cobra.Command, w io.Writer, force bool) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	path := env.cfg.TeamPath(env.root)
	if err := team.WriteDefault(path, force); err != nil {
		return env.fail(err)
	}

	if env.format == OutputJSON {
		return env.out.JSON(map[string]string{"path": path})
	}
	env.out.Success("Wrote " + path)
	return nil
}

func newTeamCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <agent>",
		Short: "Report whether the current identity may use an agent",
		Long: `Report whether the current identity's role lists the agent.
Agent access is advisory; hody never blocks starting an agent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeamCheck(cmd, cmd.OutOrStdout(), args[0])
		},
	}
}

func runTeamCheck(cmd *cobra.Command, w io.Writer, agent string) error {
	env, err := newCommandEnv(cmd, w)
	if err != nil {
		return err
	}

	cfg, err := env.teamConfig()
	if err != nil {
		return env.fail(err)
	}

	user := env.user()
	allowed, reason := cfg.CanUseAgent(user, agent)

	if env.format == OutputJSON {
		return env.out.JSON(map[string]any{
			"user":    user,
			"role":    cfg.RoleOf(user),
			"agent":   agent,
			"allowed": allowed,
			"reason":  reason,
		})
	}
	if allowed {
		env.out.Success(reason)
	} else {
		env.out.Warning(reason)
	}
	return nil
}
