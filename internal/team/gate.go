package team

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	hodyerrors "github.com/hodynguyen/Claude-Workflow/internal/errors"
)

// Action names a gated workflow operation.
type Action string

// Gated actions.
const (
	ActionSkipAgent      Action = "skip_agent"
	ActionAbortWorkflow  Action = "abort_workflow"
	ActionModifyContract Action = "modify_contract"
)

// String returns the string representation of the Action.
func (a Action) String() string {
	return string(a)
}

// Gate decides whether an identity may perform an action.
// Allow returns nil when permitted and an error wrapping
// errors.ErrPermissionDenied otherwise.
type Gate interface {
	Allow(ctx context.Context, user string, action Action) error
}

// AllowAll is a Gate that permits everything.
type AllowAll struct{}

// Allow always returns nil.
func (AllowAll) Allow(context.Context, string, Action) error {
	return nil
}

// ConfigGate enforces the role permissions of a team Config.
type ConfigGate struct {
	config *Config
}

// NewGate returns a Gate backed by cfg. A nil cfg uses the built-in roles.
func NewGate(cfg *Config) *ConfigGate {
	if cfg == nil {
		cfg = Default()
	}
	return &ConfigGate{config: cfg}
}

// Allow checks user's role for action.
func (g *ConfigGate) Allow(ctx context.Context, user string, action Action) error {
	allowed, reason := g.config.Check(user, action)

	zerolog.Ctx(ctx).Debug().
		Str("component", "team_gate").
		Str("user", user).
		Str("action", action.String()).
		Bool("allowed", allowed).
		Msg(reason)

	if !allowed {
		return fmt.Errorf("%w: %s", hodyerrors.ErrPermissionDenied, reason)
	}
	return nil
}

// Ensure implementations satisfy Gate.
var (
	_ Gate = AllowAll{}
	_ Gate = (*ConfigGate)(nil)
)
