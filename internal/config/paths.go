package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
	"github.com/hodynguyen/Claude-Workflow/internal/errors"
)

// GlobalConfigDir returns the global hody directory.
// HODY_HOME wins; otherwise ~/.hody.
func GlobalConfigDir() (string, error) {
	if home := os.Getenv(constants.EnvHome); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.HodyDir), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the project configuration file relative to the project root.
func ProjectConfigPath() string {
	return filepath.Join(constants.HodyDir, constants.ProjectConfigName)
}

// LogDir returns the directory for the CLI log file.
func LogDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}
