// Package contract loads agent handoff contracts and validates them against
// the knowledge base.
//
// A contract declares what one agent should leave in the knowledge base
// before the next agent starts. Contracts live in one directory, one file per
// ordered agent pair, named "<from>-to-<to>.yaml". Validation is advisory:
// every problem is reported as a warning and nothing is blocked.
package contract

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
)

// CheckKind names a validation rule type.
type CheckKind string

// Supported checks.
const (
	// CheckKBFileModified requires a knowledge-base file to exist with more
	// than template content.
	CheckKBFileModified CheckKind = "kb_file_modified"
)

// DefaultRuleMessage is used when a rule declares no message.
const DefaultRuleMessage = "Validation check failed"

// Contract is a parsed handoff contract.
type Contract struct {
	Name             string    `yaml:"contract" json:"contract"`
	Version          Version   `yaml:"version" json:"version"`
	From             string    `yaml:"from,omitempty" json:"from,omitempty"`
	To               string    `yaml:"to,omitempty" json:"to,omitempty"`
	Description      string    `yaml:"description,omitempty" json:"description,omitempty"`
	Validation       []Rule    `yaml:"validation" json:"validation"`
	RequiredSections []Section `yaml:"required_sections" json:"required_sections"`
}

// Rule is one validation rule.
type Rule struct {
	Check   CheckKind `yaml:"check" json:"check"`
	File    string    `yaml:"file,omitempty" json:"file,omitempty"`
	Message string    `yaml:"message,omitempty" json:"message,omitempty"`
}

// MessageOrDefault returns the rule message or DefaultRuleMessage.
func (r Rule) MessageOrDefault() string {
	if r.Message == "" {
		return DefaultRuleMessage
	}
	return r.Message
}

// Section is a heading expected somewhere in the knowledge base.
type Section struct {
	Name   string `yaml:"name" json:"name"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// Version is a contract version. YAML integers and strings are both accepted.
type Version string

// UnmarshalYAML accepts any scalar.
func (v *Version) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: version must be a scalar", node.Line)
	}
	*v = Version(node.Value)
	return nil
}

// Sender returns the handing-off agent: From if declared, otherwise the part
// of Name before "-to-".
func (c *Contract) Sender() string {
	if c.From != "" {
		return c.From
	}
	from, _, ok := SplitName(c.Name)
	if !ok {
		return ""
	}
	return from
}

// FileName returns the contract file name for an agent pair.
func FileName(from, to string) string {
	return from + constants.ContractSeparator + to + constants.ContractExtension
}

// SplitName splits "<from>-to-<to>" on the first separator.
// Both sides must be non-empty.
func SplitName(name string) (from, to string, ok bool) {
	from, to, ok = strings.Cut(name, constants.ContractSeparator)
	if !ok || from == "" || to == "" {
		return "", "", false
	}
	return from, to, true
}
