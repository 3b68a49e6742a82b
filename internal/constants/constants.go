// Package constants provides centralized constant values used throughout hody.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names used by hody for state persistence.
const (
	// StateFileName is the name of the JSON file that stores the active workflow record.
	StateFileName = "state.json"

	// HistoryFileName is the name of the JSON file that archives replaced workflow records.
	HistoryFileName = "state_history.json"

	// TeamFileName is the name of the YAML file that declares roles and members.
	TeamFileName = "team.yaml"

	// JournalFileName is the knowledge-base document that receives agent completion entries.
	JournalFileName = "workflow-log.md"

	// LockSuffix is appended to a state file path to form its advisory lock file.
	LockSuffix = ".lock"
)

// Directory names and paths used by hody for organizing data.
const (
	// HodyDir is the hidden directory name where hody stores its data.
	// It exists both in the project root and in the user's home directory.
	HodyDir = ".hody"

	// ContractsDir is the directory, relative to HodyDir, that holds handoff contracts.
	ContractsDir = "contracts"

	// KnowledgeDir is the directory, relative to HodyDir, that holds the knowledge base.
	KnowledgeDir = "knowledge"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Contract file conventions.
const (
	// ContractExtension is the file extension of contract files.
	ContractExtension = ".yaml"

	// ContractSeparator joins the sending and receiving agent in a contract name.
	ContractSeparator = "-to-"
)

// Knowledge-base validation thresholds.
const (
	// MinSubstantiveLines is the number of non-trivial lines a knowledge-base
	// document needs before it stops counting as an untouched template.
	MinSubstantiveLines = 3
)

// Workflow identifier settings.
const (
	// WorkflowIDPrefix prefixes every generated workflow identifier.
	WorkflowIDPrefix = "feat-"

	// MaxSlugLength bounds the feature slug embedded in a workflow identifier.
	MaxSlugLength = 40
)

// Timeout configurations for various operations.
const (
	// DefaultLockTimeout is the maximum duration to wait for the state file lock.
	DefaultLockTimeout = 5 * time.Second

	// LockPollInterval is the delay between lock acquisition attempts.
	LockPollInterval = 50 * time.Millisecond

	// GitUserTimeout bounds the `git config user.name` lookup.
	GitUserTimeout = 5 * time.Second
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before the log is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to keep.
	LogMaxBackups = 3

	// LogMaxAgeDays is the number of days to retain rotated log files.
	LogMaxAgeDays = 14

	// LogCompress controls gzip compression of rotated log files.
	LogCompress = true
)
