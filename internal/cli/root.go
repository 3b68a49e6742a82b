package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hodynguyen/Claude-Workflow/internal/errors"
	"github.com/hodynguyen/Claude-Workflow/internal/logging"
	"github.com/hodynguyen/Claude-Workflow/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// newRootCmd creates the root command for the hody CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "hody",
		Short: "hody - phase-gated workflow for agent teams",
		Long: `hody drives a feature through THINK, BUILD, VERIFY and SHIP phases.

Each phase has a roster of agents. hody records who is running, who has
finished and who was skipped, advises when work starts out of order, and
checks handoff contracts against the project knowledge base.

State lives in .hody/ under the project root.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			applyViper(v, flags)

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			logger := logging.InitLogger(flags.Verbose, flags.Quiet)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			logging.CloseLogFile()
		},
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, flags)

	AddInitCommand(cmd)
	AddStatusCommand(cmd)
	AddNextCommand(cmd)
	AddStartCommand(cmd)
	AddCompleteCommand(cmd)
	AddSkipCommand(cmd)
	AddDoneCommand(cmd)
	AddAbortCommand(cmd)
	AddHistoryCommand(cmd)
	AddContractCommand(cmd)
	AddTeamCommand(cmd)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// Errors are printed to stderr with their suggested fix, except those a
// command already wrote as JSON.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // cobra hands the context to subcommands
	cmd := newRootCmd(flags, info)
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(ctx)
	// PersistentPostRun is skipped when a command fails.
	logging.CloseLogFile()
	if err != nil && !stderrors.Is(err, errors.ErrJSONErrorOutput) {
		tui.NewTTYOutput(cmd.ErrOrStderr()).Error(err)
	}
	return err
}
