package team

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	hodyerrors "github.com/hodynguyen/Claude-Workflow/internal/errors"
)

// Member assigns a role to a user name.
type Member struct {
	Name string `yaml:"name" json:"name"`
	Role string `yaml:"role" json:"role"`
}

// Config is the merged team configuration.
type Config struct {
	Roles   map[string]Role
	Members []Member
}

// teamFile is the on-disk shape of team.yaml.
type teamFile struct {
	Roles   map[string]roleOverride `yaml:"roles"`
	Members []Member                `yaml:"members"`
}

// Default returns a Config containing only the built-in roles.
func Default() *Config {
	return &Config{Roles: DefaultRoles(), Members: []Member{}}
}

// Load reads team.yaml and merges it over the built-in roles.
// A missing file yields Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read team config: %w", err)
	}
	return Parse(data)
}

// Parse decodes team.yaml content and merges it over the built-in roles.
func Parse(data []byte) (*Config, error) {
	var file teamFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", hodyerrors.ErrMalformedTeam, err)
	}

	cfg := Default()
	for name, override := range file.Roles {
		base, ok := cfg.Roles[name]
		if !ok {
			base = newCustomRole(name)
		}
		cfg.Roles[name] = override.apply(base)
	}
	if file.Members != nil {
		cfg.Members = file.Members
	}
	return cfg, nil
}

// RoleNames returns the configured role names, sorted.
func (c *Config) RoleNames() []string {
	names := make([]string, 0, len(c.Roles))
	for name := range c.Roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RoleOf returns the role name assigned to user.
// Unknown or empty users are developers.
func (c *Config) RoleOf(user string) string {
	if user == "" {
		return RoleDeveloper
	}
	for _, m := range c.Members {
		if m.Name == user {
			if m.Role == "" {
				return RoleDeveloper
			}
			return m.Role
		}
	}
	return RoleDeveloper
}

// Permissions returns the effective role for roleName.
// A role that is not configured gets developer permissions.
func (c *Config) Permissions(roleName string) Role {
	if role, ok := c.Roles[roleName]; ok {
		return role
	}
	role := DefaultRoles()[RoleDeveloper]
	role.Name = roleName
	return role
}

// CanUseAgent reports whether user's role grants access to agent, with a reason.
func (c *Config) CanUseAgent(user, agent string) (bool, string) {
	roleName := c.RoleOf(user)
	role := c.Permissions(roleName)
	if role.Agents.All {
		return true, fmt.Sprintf("Role '%s' has access to all agents.", roleName)
	}
	if role.Agents.Allows(agent) {
		return true, fmt.Sprintf("Role '%s' has access to agent '%s'.", roleName, agent)
	}
	return false, fmt.Sprintf("Role '%s' does not have access to agent '%s'. Allowed agents: %s", roleName, agent, role.Agents)
}

// Check reports whether user may perform action, with a reason.
func (c *Config) Check(user string, action Action) (bool, string) {
	roleName := c.RoleOf(user)
	role := c.Permissions(roleName)

	switch action {
	case ActionSkipAgent:
		if role.CanSkipAgents {
			return true, fmt.Sprintf("Role '%s' can skip agents.", roleName)
		}
		return false, fmt.Sprintf("Role '%s' cannot skip agents.", roleName)
	case ActionModifyContract:
		if role.CanModifyContracts {
			return true, fmt.Sprintf("Role '%s' can modify contracts.", roleName)
		}
		return false, fmt.Sprintf("Role '%s' cannot modify contracts.", roleName)
	case ActionAbortWorkflow:
		// Abort shares the skip capability.
		if role.CanSkipAgents {
			return true, fmt.Sprintf("Role '%s' can abort workflows.", roleName)
		}
		return false, fmt.Sprintf("Role '%s' cannot abort workflows.", roleName)
	default:
		return false, fmt.Sprintf("Unknown action: %s", action)
	}
}

// DefaultFileContent is the team.yaml written by WriteDefault.
const DefaultFileContent = `# Team roles and permissions for hody workflows.

roles:
  lead:
    can_skip_agents: true
    can_modify_contracts: true
    agents: all
    requires_review: false
  developer:
    can_skip_agents: false
    can_modify_contracts: false
    agents:
      - researcher
      - architect
      - frontend
      - backend
      - unit-tester
    requires_review: true
  reviewer:
    can_skip_agents: false
    can_modify_contracts: false
    agents:
      - code-reviewer
      - spec-verifier
      - integration-tester
    requires_review: false
    can_approve_merge: true
  junior:
    can_skip_agents: false
    can_modify_contracts: false
    agents:
      - frontend
      - backend
      - unit-tester
    requires_review: true
    requires_architect_approval: true

members:
  # - name: alice
  #   role: lead
  # - name: bob
  #   role: developer
`

// WriteDefault writes DefaultFileContent to path, creating parent directories.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", hodyerrors.ErrTeamFileExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create team config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultFileContent), 0o600); err != nil {
		return fmt.Errorf("failed to write team config: %w", err)
	}
	return nil
}
