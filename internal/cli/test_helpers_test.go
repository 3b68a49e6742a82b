package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
)

// mockFormRunner implements formRunner so tests can answer huh forms.
type mockFormRunner struct {
	// runErr is returned from Run.
	runErr error

	// onRun simulates user input by modifying form values.
	onRun func()
}

// Run calls onRun, then returns runErr.
func (m *mockFormRunner) Run() error {
	if m.onRun != nil {
		m.onRun()
	}
	return m.runErr
}

// mockTerminalCheckFunc replaces terminalCheck. Defer the returned cleanup.
func mockTerminalCheckFunc(isTerminal bool) func() {
	original := terminalCheck
	terminalCheck = func() bool { return isTerminal }
	return func() { terminalCheck = original }
}

// mockConfirmAnswer makes every confirmation form answer answer.
func mockConfirmAnswer(answer bool) func() {
	original := createConfirmForm
	createConfirmForm = func(_, _, _ string, value *bool) formRunner {
		return &mockFormRunner{onRun: func() { *value = answer }}
	}
	return func() { createConfirmForm = original }
}

// setupProject isolates HODY_HOME and the identity and returns an empty
// project directory.
func setupProject(t *testing.T, user string) string {
	t.Helper()

	tmp := t.TempDir()
	t.Setenv(constants.EnvHome, filepath.Join(tmp, "home"))
	t.Setenv(constants.EnvUser, user)
	t.Setenv("HODY_OUTPUT", "")

	project := filepath.Join(tmp, "project")
	require.NoError(t, os.MkdirAll(project, 0o750))
	return project
}

// runHody executes the root command against project and returns stdout.
func runHody(t *testing.T, project string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "test"})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--dir", project}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// runHodyJSON runs a command with -o json and decodes its single document.
func runHodyJSON(t *testing.T, project string, v any, args ...string) {
	t.Helper()

	out, err := runHody(t, project, append([]string{"-o", "json"}, args...)...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

// writeProjectFile writes content under project/.hody.
func writeProjectFile(t *testing.T, project, rel, content string) {
	t.Helper()

	path := filepath.Join(project, constants.HodyDir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

const leadTeam = `members:
  - name: lead-user
    role: lead
`
