package team

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
)

// gitUserName runs `git config user.name` in dir.
// It is a variable so tests can stub the git lookup.
//
//nolint:gochecknoglobals // test seam
var gitUserName = func(ctx context.Context, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.GitUserTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "config", "user.name")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentUser returns the identity of the person driving the workflow.
// HODY_USER wins; otherwise git's user.name in dir; otherwise "".
func CurrentUser(ctx context.Context, dir string) string {
	if user := strings.TrimSpace(os.Getenv(constants.EnvUser)); user != "" {
		return user
	}
	name, err := gitUserName(ctx, dir)
	if err != nil {
		return ""
	}
	return name
}

// Summary describes the team setup for status output.
type Summary struct {
	Roles       []string `json:"roles"`
	MemberCount int      `json:"member_count"`
	CurrentUser string   `json:"current_user"`
	CurrentRole string   `json:"current_role"`
}

// Summarize builds a Summary for user.
func (c *Config) Summarize(user string) Summary {
	return Summary{
		Roles:       c.RoleNames(),
		MemberCount: len(c.Members),
		CurrentUser: user,
		CurrentRole: c.RoleOf(user),
	}
}
