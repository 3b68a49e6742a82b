// Package config provides configuration management for hody with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. Environment variables (HODY_* prefix, e.g. HODY_PATHS_STATE_FILE)
//  2. Project config (.hody/config.yaml)
//  3. Global config (~/.hody/config.yaml, or $HODY_HOME/config.yaml)
//  4. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import (
	"path/filepath"
	"time"
)

// Config is the root configuration structure for hody.
type Config struct {
	// Paths locates the files hody reads and writes, relative to the project root.
	Paths PathsConfig `yaml:"paths" mapstructure:"paths"`

	// Knowledge contains settings for knowledge-base writes.
	Knowledge KnowledgeConfig `yaml:"knowledge" mapstructure:"knowledge"`

	// Lock contains settings for the state file lock.
	Lock LockConfig `yaml:"lock" mapstructure:"lock"`

	// Team contains settings for permission checks.
	Team TeamConfig `yaml:"team" mapstructure:"team"`
}

// PathsConfig holds project-relative paths. Absolute paths are used as-is.
type PathsConfig struct {
	// StateFile is the workflow record. Default: .hody/state.json
	StateFile string `yaml:"state_file" mapstructure:"state_file"`

	// HistoryFile archives replaced workflow records. Default: .hody/state_history.json
	HistoryFile string `yaml:"history_file" mapstructure:"history_file"`

	// ContractsDir holds <from>-to-<to>.yaml handoff contracts. Default: .hody/contracts
	ContractsDir string `yaml:"contracts_dir" mapstructure:"contracts_dir"`

	// KnowledgeDir is the knowledge base. Default: .hody/knowledge
	KnowledgeDir string `yaml:"knowledge_dir" mapstructure:"knowledge_dir"`

	// TeamFile declares roles and members. Default: .hody/team.yaml
	TeamFile string `yaml:"team_file" mapstructure:"team_file"`
}

// KnowledgeConfig contains settings for knowledge-base writes.
type KnowledgeConfig struct {
	// Journal appends an entry to JournalFile whenever an agent completes.
	// Default: true
	Journal bool `yaml:"journal" mapstructure:"journal"`

	// JournalFile is the journal document name inside the knowledge base.
	// Default: workflow-log.md
	JournalFile string `yaml:"journal_file" mapstructure:"journal_file"`
}

// LockConfig contains settings for the state file lock.
type LockConfig struct {
	// Timeout bounds lock acquisition. Default: 5s
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TeamConfig contains settings for permission checks.
type TeamConfig struct {
	// User overrides the detected identity. HODY_USER takes precedence.
	User string `yaml:"user" mapstructure:"user"`
}

// Resolve joins a configured path onto root unless it is absolute.
func Resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// StatePath returns the resolved state file path.
func (c *Config) StatePath(root string) string {
	return Resolve(root, c.Paths.StateFile)
}

// HistoryPath returns the resolved history file path.
func (c *Config) HistoryPath(root string) string {
	return Resolve(root, c.Paths.HistoryFile)
}

// ContractsPath returns the resolved contracts directory.
func (c *Config) ContractsPath(root string) string {
	return Resolve(root, c.Paths.ContractsDir)
}

// KnowledgePath returns the resolved knowledge-base directory.
func (c *Config) KnowledgePath(root string) string {
	return Resolve(root, c.Paths.KnowledgeDir)
}

// TeamPath returns the resolved team file path.
func (c *Config) TeamPath(root string) string {
	return Resolve(root, c.Paths.TeamFile)
}

// JournalPath returns the resolved journal document path.
func (c *Config) JournalPath(root string) string {
	return filepath.Join(c.KnowledgePath(root), c.Knowledge.JournalFile)
}
