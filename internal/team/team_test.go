package team

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hodyerrors "github.com/hodynguyen/Claude-Workflow/internal/errors"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "team.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"developer", "junior", "lead", "reviewer"}, cfg.RoleNames())
	assert.Empty(t, cfg.Members)
}

func TestParse_DefaultFileMatchesBuiltins(t *testing.T) {
	cfg, err := Parse([]byte(DefaultFileContent))
	require.NoError(t, err)

	assert.Equal(t, DefaultRoles(), cfg.Roles)
	assert.Empty(t, cfg.Members)
}

func TestParse_OverridesFieldByField(t *testing.T) {
	content := `
roles:
  developer:
    can_skip_agents: true
  ops:
    agents: [devops]
members:
  - name: alice
    role: lead
  - name: carol
    role: ops
`
	cfg, err := Parse([]byte(content))
	require.NoError(t, err)

	dev := cfg.Roles[RoleDeveloper]
	assert.True(t, dev.CanSkipAgents)
	assert.True(t, dev.RequiresReview, "unset fields keep the built-in value")
	assert.True(t, dev.Agents.Allows("backend"))

	ops := cfg.Roles["ops"]
	assert.Equal(t, "ops", ops.Name)
	assert.False(t, ops.CanSkipAgents)
	assert.True(t, ops.RequiresReview)
	assert.Equal(t, []string{"devops"}, ops.Agents.Agents)

	assert.Len(t, cfg.Members, 2)
	assert.Equal(t, RoleLead, cfg.RoleOf("alice"))
	assert.Equal(t, "ops", cfg.RoleOf("carol"))
	assert.Equal(t, RoleDeveloper, cfg.RoleOf("dave"))
	assert.Equal(t, RoleDeveloper, cfg.RoleOf(""))
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "roles: [unclosed"},
		{"unknown role field", "roles:\n  lead:\n    can_fly: true\n"},
		{"agents mapping", "roles:\n  lead:\n    agents:\n      a: b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, hodyerrors.ErrMalformedTeam)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Len(t, cfg.Roles, 4)
}

func TestConfig_Check(t *testing.T) {
	cfg := Default()
	cfg.Members = []Member{{Name: "alice", Role: RoleLead}, {Name: "eve", Role: "ghost"}}

	tests := []struct {
		name    string
		user    string
		action  Action
		allowed bool
	}{
		{"lead skips", "alice", ActionSkipAgent, true},
		{"lead aborts", "alice", ActionAbortWorkflow, true},
		{"lead modifies contracts", "alice", ActionModifyContract, true},
		{"developer cannot skip", "bob", ActionSkipAgent, false},
		{"developer cannot abort", "bob", ActionAbortWorkflow, false},
		{"unknown role acts as developer", "eve", ActionSkipAgent, false},
		{"unknown action denied", "alice", Action("deploy"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, reason := cfg.Check(tt.user, tt.action)
			assert.Equal(t, tt.allowed, allowed)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestConfig_CanUseAgent(t *testing.T) {
	cfg := Default()
	cfg.Members = []Member{{Name: "alice", Role: RoleLead}, {Name: "jim", Role: RoleJunior}}

	ok, _ := cfg.CanUseAgent("alice", "devops")
	assert.True(t, ok)

	ok, _ = cfg.CanUseAgent("jim", "backend")
	assert.True(t, ok)

	ok, reason := cfg.CanUseAgent("jim", "architect")
	assert.False(t, ok)
	assert.Contains(t, reason, "Role 'junior' does not have access to agent 'architect'")
}

func TestGate(t *testing.T) {
	ctx := context.Background()
	cfg := Default()
	cfg.Members = []Member{{Name: "alice", Role: RoleLead}}
	gate := NewGate(cfg)

	require.NoError(t, gate.Allow(ctx, "alice", ActionSkipAgent))

	err := gate.Allow(ctx, "bob", ActionAbortWorkflow)
	require.Error(t, err)
	assert.ErrorIs(t, err, hodyerrors.ErrPermissionDenied)
	assert.Contains(t, err.Error(), "cannot abort workflows")

	assert.NoError(t, AllowAll{}.Allow(ctx, "bob", ActionAbortWorkflow))
	assert.Error(t, NewGate(nil).Allow(ctx, "", ActionSkipAgent))
}

func TestCurrentUser(t *testing.T) {
	orig := gitUserName
	t.Cleanup(func() { gitUserName = orig })

	t.Run("env wins", func(t *testing.T) {
		t.Setenv("HODY_USER", "alice")
		gitUserName = func(context.Context, string) (string, error) { return "git-user", nil }
		assert.Equal(t, "alice", CurrentUser(context.Background(), t.TempDir()))
	})

	t.Run("falls back to git", func(t *testing.T) {
		t.Setenv("HODY_USER", "")
		gitUserName = func(context.Context, string) (string, error) { return "git-user", nil }
		assert.Equal(t, "git-user", CurrentUser(context.Background(), t.TempDir()))
	})

	t.Run("empty when git fails", func(t *testing.T) {
		t.Setenv("HODY_USER", "")
		gitUserName = func(context.Context, string) (string, error) { return "", errors.New("no git") }
		assert.Empty(t, CurrentUser(context.Background(), t.TempDir()))
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".hody", "team.yaml")

	require.NoError(t, WriteDefault(path, false))
	data, err := os.ReadFile(path) //#nosec G304 -- test path
	require.NoError(t, err)
	assert.Equal(t, DefaultFileContent, string(data))

	err = WriteDefault(path, false)
	require.ErrorIs(t, err, hodyerrors.ErrTeamFileExists)

	require.NoError(t, WriteDefault(path, true))
}

func TestSummarize(t *testing.T) {
	cfg := Default()
	cfg.Members = []Member{{Name: "alice", Role: RoleReviewer}}

	s := cfg.Summarize("alice")
	assert.Equal(t, 1, s.MemberCount)
	assert.Equal(t, RoleReviewer, s.CurrentRole)
	assert.Equal(t, "alice", s.CurrentUser)
	assert.Len(t, s.Roles, 4)
}
