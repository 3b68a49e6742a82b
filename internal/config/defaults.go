package config

import (
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
)

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			StateFile:    filepath.Join(constants.HodyDir, constants.StateFileName),
			HistoryFile:  filepath.Join(constants.HodyDir, constants.HistoryFileName),
			ContractsDir: filepath.Join(constants.HodyDir, constants.ContractsDir),
			KnowledgeDir: filepath.Join(constants.HodyDir, constants.KnowledgeDir),
			TeamFile:     filepath.Join(constants.HodyDir, constants.TeamFileName),
		},
		Knowledge: KnowledgeConfig{
			Journal:     true,
			JournalFile: constants.JournalFileName,
		},
		Lock: LockConfig{
			Timeout: constants.DefaultLockTimeout,
		},
	}
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("paths.state_file", d.Paths.StateFile)
	v.SetDefault("paths.history_file", d.Paths.HistoryFile)
	v.SetDefault("paths.contracts_dir", d.Paths.ContractsDir)
	v.SetDefault("paths.knowledge_dir", d.Paths.KnowledgeDir)
	v.SetDefault("paths.team_file", d.Paths.TeamFile)

	v.SetDefault("knowledge.journal", d.Knowledge.Journal)
	v.SetDefault("knowledge.journal_file", d.Knowledge.JournalFile)

	v.SetDefault("lock.timeout", d.Lock.Timeout.String())

	v.SetDefault("team.user", "")
}
