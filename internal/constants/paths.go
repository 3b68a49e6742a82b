package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.hody/logs/hody.log
	CLILogFileName = "hody.log"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global hody configuration file.
	// This file is located in the hody home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigName is the name of the project-specific configuration file.
	// This file is located in the project's .hody directory.
	ProjectConfigName = "config.yaml"
)

// Environment variables read by hody.
const (
	// EnvPrefix is the prefix viper uses for configuration overrides (HODY_PATHS_STATE_FILE, ...).
	EnvPrefix = "HODY"

	// EnvUser overrides the identity used for permission checks.
	EnvUser = "HODY_USER"

	// EnvHome overrides the global hody home directory (default ~/.hody).
	EnvHome = "HODY_HOME"
)
