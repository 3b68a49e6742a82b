package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hodynguyen/Claude-Workflow/internal/config"
	"github.com/hodynguyen/Claude-Workflow/internal/constants"
	"github.com/hodynguyen/Claude-Workflow/internal/errors"
	"github.com/hodynguyen/Claude-Workflow/internal/team"
	"github.com/hodynguyen/Claude-Workflow/internal/tui"
	"github.com/hodynguyen/Claude-Workflow/internal/workflow"
)

// commandEnv is what every command needs: where the project is, how it is
// configured, and how to talk to the user.
type commandEnv struct {
	ctx    context.Context //nolint:containedctx // lives for one command invocation
	w      io.Writer
	out    tui.Output
	format string
	root   string
	cfg    *config.Config
	logger zerolog.Logger
}

// newCommandEnv resolves the project root and loads configuration.
// Errors are already rendered for the chosen format.
func newCommandEnv(cmd *cobra.Command, w io.Writer) (*commandEnv, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := flagString(cmd, "output", OutputText)
	env := &commandEnv{
		ctx:    ctx,
		w:      w,
		out:    tui.NewOutput(w, format),
		format: format,
		logger: *zerolog.Ctx(ctx),
	}

	root, err := projectRoot(flagString(cmd, "dir", ""))
	if err != nil {
		return nil, env.fail(err)
	}
	env.root = root

	cfg, err := config.Load(ctx, root)
	if err != nil {
		return nil, env.fail(err)
	}
	env.cfg = cfg

	return env, nil
}

func flagString(cmd *cobra.Command, name, fallback string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return fallback
}

func projectRoot(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "failed to get working directory")
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve project directory %s", dir)
	}
	return abs, nil
}

// fail renders err and returns what the command should return: the error
// itself for text output, ErrJSONErrorOutput once JSON has been written.
func (e *commandEnv) fail(err error) error {
	if err == nil {
		return nil
	}
	e.logger.Debug().Err(err).Msg("command failed")
	if e.format == OutputJSON {
		e.out.Error(err)
		return errors.ErrJSONErrorOutput
	}
	return err
}

// store opens the configured state file.
func (e *commandEnv) store() (*workflow.FileStore, error) {
	return workflow.NewFileStore(e.cfg.StatePath(e.root),
		workflow.WithHistoryPath(e.cfg.HistoryPath(e.root)),
		workflow.WithLockTimeout(e.cfg.Lock.Timeout),
	)
}

// teamConfig loads team.yaml, falling back to the built-in roles.
func (e *commandEnv) teamConfig() (*team.Config, error) {
	return team.Load(e.cfg.TeamPath(e.root))
}

// machine builds a state machine over the state file, gated by the team config.
func (e *commandEnv) machine() (*workflow.Machine, *workflow.FileStore, error) {
	store, err := e.store()
	if err != nil {
		return nil, nil, err
	}
	teamCfg, err := e.teamConfig()
	if err != nil {
		return nil, nil, err
	}
	return workflow.NewMachine(store, workflow.WithGate(team.NewGate(teamCfg))), store, nil
}

// user is the identity used for permission checks:
// HODY_USER, then team.user from config, then git user.name.
func (e *commandEnv) user() string {
	if u := strings.TrimSpace(os.Getenv(constants.EnvUser)); u != "" {
		return u
	}
	if u := strings.TrimSpace(e.cfg.Team.User); u != "" {
		return u
	}
	return team.CurrentUser(e.ctx, e.root)
}
