package config

import (
	"time"

	"github.com/hodynguyen/Claude-Workflow/internal/errors"
)

// Lock timeout bounds.
const (
	minLockTimeout = 100 * time.Millisecond
	maxLockTimeout = 5 * time.Minute
)

// Validate checks the configuration for invalid values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - every paths.* entry must be set
//   - knowledge.journal_file must be set when knowledge.journal is on
//   - lock.timeout must be between 100ms and 5m
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		return err
	}

	if cfg.Knowledge.Journal && cfg.Knowledge.JournalFile == "" {
		return errors.Wrap(errors.ErrEmptyValue, "knowledge.journal_file must be set when knowledge.journal is enabled")
	}

	if cfg.Lock.Timeout < minLockTimeout || cfg.Lock.Timeout > maxLockTimeout {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"lock.timeout must be between %s and %s, got %s", minLockTimeout, maxLockTimeout, cfg.Lock.Timeout)
	}

	return nil
}

func validatePaths(p *PathsConfig) error {
	required := []struct {
		key   string
		value string
	}{
		{"paths.state_file", p.StateFile},
		{"paths.history_file", p.HistoryFile},
		{"paths.contracts_dir", p.ContractsDir},
		{"paths.knowledge_dir", p.KnowledgeDir},
		{"paths.team_file", p.TeamFile},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.Wrapf(errors.ErrEmptyValue, "%s must be set", r.key)
		}
	}
	return nil
}
