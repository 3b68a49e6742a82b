package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hodynguyen/Claude-Workflow/internal/ctxutil"
)

// JournalEntry describes one agent completion.
type JournalEntry struct {
	WorkflowID string
	Agent      string
	Phase      string
	Summary    string
	Files      []string
	At         time.Time
}

// Journal appends completion entries to a markdown document.
type Journal struct {
	path string
}

// NewJournal returns a Journal writing to path. The file is created on first append.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Append writes entry at the end of the journal and returns the entry ID.
func (j *Journal) Append(ctx context.Context, entry JournalEntry) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create journal directory: %w", err)
	}

	id := "log-" + uuid.New().String()[:8]

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //#nosec G304 -- path comes from configuration
	if err != nil {
		return "", fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat journal: %w", err)
	}

	var b strings.Builder
	if info.Size() == 0 {
		b.WriteString("# Workflow Log\n")
	}
	b.WriteString(formatEntry(id, entry))

	if _, err := f.WriteString(b.String()); err != nil {
		return "", fmt.Errorf("failed to write journal entry: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "journal").
		Str("entry_id", id).
		Str("agent", entry.Agent).
		Msg("journal entry appended")

	return id, nil
}

func formatEntry(id string, entry JournalEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n### %s: %s (%s)\n", entry.At.UTC().Format(time.RFC3339), entry.Agent, entry.Phase)
	fmt.Fprintf(&b, "<!-- %s -->\n", id)
	fmt.Fprintf(&b, "- Workflow: %s\n", entry.WorkflowID)
	if entry.Summary != "" {
		fmt.Fprintf(&b, "- Summary: %s\n", entry.Summary)
	}
	if len(entry.Files) > 0 {
		fmt.Fprintf(&b, "- KB files: %s\n", strings.Join(entry.Files, ", "))
	}
	return b.String()
}
