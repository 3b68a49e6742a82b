// Package workflow provides the phase-gated workflow state machine for hody.
// This package implements the persisted workflow record, its storage layer
// with atomic writes and file locking, and the agent lifecycle on top of it.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
	"github.com/hodynguyen/Claude-Workflow/internal/ctxutil"
	"github.com/hodynguyen/Claude-Workflow/internal/domain"
	hodyerrors "github.com/hodynguyen/Claude-Workflow/internal/errors"
	"github.com/hodynguyen/Claude-Workflow/internal/flock"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Store defines the interface for workflow record persistence.
// There is at most one record per project, so no lookup key is needed.
type Store interface {
	// Load reads the persisted record.
	// Returns ErrNoActiveWorkflow if no record has been written.
	Load(ctx context.Context) (*domain.WorkflowRecord, error)

	// Save replaces the persisted record (atomic write).
	Save(ctx context.Context, record *domain.WorkflowRecord) error
}

// Archiver is implemented by stores that keep replaced records.
type Archiver interface {
	// Archive appends a record to the history.
	Archive(ctx context.Context, record *domain.WorkflowRecord) error

	// History returns archived records, oldest first.
	History(ctx context.Context) ([]*domain.WorkflowRecord, error)
}

// FileStore implements Store and Archiver on the local filesystem.
// Each Load, Save, and Archive call holds an advisory lock on the state
// file's companion lock file for its duration.
type FileStore struct {
	statePath   string
	historyPath string
	lockTimeout time.Duration
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithHistoryPath overrides the history file location.
func WithHistoryPath(path string) FileStoreOption {
	return func(s *FileStore) {
		s.historyPath = path
	}
}

// WithLockTimeout overrides the lock acquisition timeout.
func WithLockTimeout(d time.Duration) FileStoreOption {
	return func(s *FileStore) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// NewFileStore creates a FileStore for the given state file path.
// The history file defaults to a sibling of the state file.
func NewFileStore(statePath string, opts ...FileStoreOption) (*FileStore, error) {
	if statePath == "" {
		return nil, fmt.Errorf("failed to create workflow store: state path %w", hodyerrors.ErrEmptyValue)
	}
	s := &FileStore{
		statePath:   statePath,
		historyPath: filepath.Join(filepath.Dir(statePath), constants.HistoryFileName),
		lockTimeout: constants.DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StatePath returns the state file path.
func (s *FileStore) StatePath() string {
	return s.statePath
}

// HistoryPath returns the history file path.
func (s *FileStore) HistoryPath() string {
	return s.historyPath
}

// Load reads the workflow record from disk.
func (s *FileStore) Load(ctx context.Context) (*domain.WorkflowRecord, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if _, err := os.Stat(s.statePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load workflow: %s not found: %w", s.statePath, hodyerrors.ErrNoActiveWorkflow)
	}

	lock, err := s.acquireLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	defer func() { _ = lock.Release() }()

	data, err := os.ReadFile(s.statePath) //#nosec G304 -- path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load workflow: %w", hodyerrors.ErrNoActiveWorkflow)
		}
		return nil, fmt.Errorf("failed to read workflow state: %w", err)
	}

	var record domain.WorkflowRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w: %w", s.statePath, hodyerrors.ErrStateCorrupted, err)
	}
	if err := checkPhases(&record); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.statePath, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "workflow_store").
		Str("workflow_id", record.WorkflowID).
		Str("status", record.Status.String()).
		Msg("workflow state loaded")

	return &record, nil
}

// Save writes the workflow record to disk atomically.
func (s *FileStore) Save(ctx context.Context, record *domain.WorkflowRecord) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if record == nil {
		return fmt.Errorf("failed to save workflow: record %w", hodyerrors.ErrEmptyValue)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to save workflow '%s': %w", record.WorkflowID, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.statePath), dirPerm); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	lock, err := s.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to save workflow '%s': %w", record.WorkflowID, err)
	}
	defer func() { _ = lock.Release() }()

	if err := atomicWrite(s.statePath, data); err != nil {
		return fmt.Errorf("failed to save workflow '%s': %w", record.WorkflowID, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "workflow_store").
		Str("workflow_id", record.WorkflowID).
		Str("path", s.statePath).
		Msg("workflow state saved")

	return nil
}

// Archive appends a record to the history file.
func (s *FileStore) Archive(ctx context.Context, record *domain.WorkflowRecord) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if record == nil {
		return fmt.Errorf("failed to archive workflow: record %w", hodyerrors.ErrEmptyValue)
	}

	if err := os.MkdirAll(filepath.Dir(s.historyPath), dirPerm); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	lock, err := s.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to archive workflow '%s': %w", record.WorkflowID, err)
	}
	defer func() { _ = lock.Release() }()

	history, err := s.readHistory()
	if err != nil {
		return err
	}
	history = append(history, record)

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to archive workflow '%s': %w", record.WorkflowID, err)
	}

	if err := atomicWrite(s.historyPath, data); err != nil {
		return fmt.Errorf("failed to archive workflow '%s': %w", record.WorkflowID, err)
	}
	return nil
}

// History returns archived records, oldest first. A missing history file yields nil.
func (s *FileStore) History(ctx context.Context) ([]*domain.WorkflowRecord, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if _, err := os.Stat(s.historyPath); os.IsNotExist(err) {
		return nil, nil
	}

	lock, err := s.acquireLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow history: %w", err)
	}
	defer func() { _ = lock.Release() }()

	return s.readHistory()
}

// readHistory must be called with the lock held.
func (s *FileStore) readHistory() ([]*domain.WorkflowRecord, error) {
	data, err := os.ReadFile(s.historyPath) //#nosec G304 -- path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read workflow history: %w", err)
	}

	var history []*domain.WorkflowRecord
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w: %w", s.historyPath, hodyerrors.ErrStateCorrupted, err)
	}
	return history, nil
}

func (s *FileStore) acquireLock(ctx context.Context) (*flock.Lock, error) {
	if err := os.MkdirAll(filepath.Dir(s.statePath), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	lock := flock.New(s.statePath + constants.LockSuffix)
	if err := lock.Acquire(ctx, s.lockTimeout); err != nil {
		return nil, err
	}
	return lock, nil
}

// atomicWrite writes data to a temp file, syncs it, and renames it over path.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// checkPhases rejects records whose phase map has null entries or lacks a
// phase named in PhaseOrder. Both would otherwise surface as nil dereferences.
func checkPhases(record *domain.WorkflowRecord) error {
	for phase, p := range record.Phases {
		if p == nil {
			return fmt.Errorf("%w: phase %s is null", hodyerrors.ErrStateCorrupted, phase)
		}
	}
	for _, phase := range record.PhaseOrder {
		if _, ok := record.Phases[phase]; !ok {
			return fmt.Errorf("%w: phase %s is in phase_order but has no state", hodyerrors.ErrStateCorrupted, phase)
		}
	}
	return nil
}

// MemoryStore implements Store and Archiver in memory.
// Records are held in encoded form so callers never share memory with the store.
type MemoryStore struct {
	mu      sync.Mutex
	state   []byte
	history [][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the stored record.
func (s *MemoryStore) Load(_ context.Context) (*domain.WorkflowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return nil, hodyerrors.ErrNoActiveWorkflow
	}
	var record domain.WorkflowRecord
	if err := json.Unmarshal(s.state, &record); err != nil {
		return nil, errors.Join(hodyerrors.ErrStateCorrupted, err)
	}
	return &record, nil
}

// Save encodes and stores the record.
func (s *MemoryStore) Save(_ context.Context, record *domain.WorkflowRecord) error {
	if record == nil {
		return fmt.Errorf("failed to save workflow: record %w", hodyerrors.ErrEmptyValue)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = data
	return nil
}

// Archive appends the record to the in-memory history.
func (s *MemoryStore) Archive(_ context.Context, record *domain.WorkflowRecord) error {
	if record == nil {
		return fmt.Errorf("failed to archive workflow: record %w", hodyerrors.ErrEmptyValue)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, data)
	return nil
}

// History decodes the archived records, oldest first.
func (s *MemoryStore) History(_ context.Context) ([]*domain.WorkflowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.WorkflowRecord, 0, len(s.history))
	for _, data := range s.history {
		var record domain.WorkflowRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, errors.Join(hodyerrors.ErrStateCorrupted, err)
		}
		out = append(out, &record)
	}
	return out, nil
}

// Ensure implementations satisfy the interfaces.
var (
	_ Store    = (*FileStore)(nil)
	_ Archiver = (*FileStore)(nil)
	_ Store    = (*MemoryStore)(nil)
	_ Archiver = (*MemoryStore)(nil)
)
