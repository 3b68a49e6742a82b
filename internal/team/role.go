// Package team provides role-based permission checks for hody workflows.
//
// Roles and members are declared in .hody/team.yaml. Built-in roles
// (lead, developer, reviewer, junior) are always present; roles declared in
// the file override the built-in definition field by field.
package team

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Built-in role names.
const (
	RoleLead      = "lead"
	RoleDeveloper = "developer"
	RoleReviewer  = "reviewer"
	RoleJunior    = "junior"
)

// allAgentsKeyword grants a role access to every agent.
const allAgentsKeyword = "all"

// AgentAccess lists the agents a role may use.
// In YAML it is either the scalar "all" or a sequence of agent names.
type AgentAccess struct {
	All    bool
	Agents []string
}

// Allows reports whether agent is covered.
func (a AgentAccess) Allows(agent string) bool {
	return a.All || slices.Contains(a.Agents, agent)
}

// String renders the access list for messages.
func (a AgentAccess) String() string {
	if a.All {
		return allAgentsKeyword
	}
	return fmt.Sprintf("%v", a.Agents)
}

// UnmarshalYAML accepts "all" or a list of names.
func (a *AgentAccess) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == allAgentsKeyword {
			*a = AgentAccess{All: true}
			return nil
		}
		if node.Value == "" {
			*a = AgentAccess{Agents: []string{}}
			return nil
		}
		*a = AgentAccess{Agents: []string{node.Value}}
		return nil
	case yaml.SequenceNode:
		var agents []string
		if err := node.Decode(&agents); err != nil {
			return err
		}
		if agents == nil {
			agents = []string{}
		}
		*a = AgentAccess{Agents: agents}
		return nil
	default:
		return fmt.Errorf("line %d: agents must be %q or a list", node.Line, allAgentsKeyword)
	}
}

// MarshalYAML writes "all" or the list.
func (a AgentAccess) MarshalYAML() (any, error) {
	if a.All {
		return allAgentsKeyword, nil
	}
	return a.Agents, nil
}

// Role is the effective permission set of a role.
type Role struct {
	Name                      string      `json:"name"`
	CanSkipAgents             bool        `json:"can_skip_agents"`
	CanModifyContracts        bool        `json:"can_modify_contracts"`
	Agents                    AgentAccess `json:"-"`
	RequiresReview            bool        `json:"requires_review"`
	CanApproveMerge           bool        `json:"can_approve_merge"`
	RequiresArchitectApproval bool        `json:"requires_architect_approval"`
}

// roleOverride is a role as declared in team.yaml. Nil fields keep the base value.
type roleOverride struct {
	CanSkipAgents             *bool        `yaml:"can_skip_agents"`
	CanModifyContracts        *bool        `yaml:"can_modify_contracts"`
	Agents                    *AgentAccess `yaml:"agents"`
	RequiresReview            *bool        `yaml:"requires_review"`
	CanApproveMerge           *bool        `yaml:"can_approve_merge"`
	RequiresArchitectApproval *bool        `yaml:"requires_architect_approval"`
}

// apply overlays the declared fields on base.
func (o roleOverride) apply(base Role) Role {
	if o.CanSkipAgents != nil {
		base.CanSkipAgents = *o.CanSkipAgents
	}
	if o.CanModifyContracts != nil {
		base.CanModifyContracts = *o.CanModifyContracts
	}
	if o.Agents != nil {
		base.Agents = *o.Agents
	}
	if o.RequiresReview != nil {
		base.RequiresReview = *o.RequiresReview
	}
	if o.CanApproveMerge != nil {
		base.CanApproveMerge = *o.CanApproveMerge
	}
	if o.RequiresArchitectApproval != nil {
		base.RequiresArchitectApproval = *o.RequiresArchitectApproval
	}
	return base
}

// DefaultRoles returns the built-in role definitions.
func DefaultRoles() map[string]Role {
	return map[string]Role{
		RoleLead: {
			Name:               RoleLead,
			CanSkipAgents:      true,
			CanModifyContracts: true,
			Agents:             AgentAccess{All: true},
		},
		RoleDeveloper: {
			Name:           RoleDeveloper,
			Agents:         AgentAccess{Agents: []string{"researcher", "architect", "frontend", "backend", "unit-tester"}},
			RequiresReview: true,
		},
		RoleReviewer: {
			Name:            RoleReviewer,
			Agents:          AgentAccess{Agents: []string{"code-reviewer", "spec-verifier", "integration-tester"}},
			CanApproveMerge: true,
		},
		RoleJunior: {
			Name:                      RoleJunior,
			Agents:                    AgentAccess{Agents: []string{"frontend", "backend", "unit-tester"}},
			RequiresReview:            true,
			RequiresArchitectApproval: true,
		},
	}
}

// newCustomRole is the base for a role that only exists in team.yaml.
func newCustomRole(name string) Role {
	return Role{
		Name:           name,
		Agents:         AgentAccess{Agents: []string{}},
		RequiresReview: true,
	}
}
