package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hodynguyen/Claude-Workflow/internal/clock"
	"github.com/hodynguyen/Claude-Workflow/internal/constants"
	"github.com/hodynguyen/Claude-Workflow/internal/domain"
	hodyerrors "github.com/hodynguyen/Claude-Workflow/internal/errors"
	"github.com/hodynguyen/Claude-Workflow/internal/team"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func loginPhases() map[string][]string {
	return map[string][]string{
		"THINK": {"researcher", "architect"},
		"BUILD": {"backend"},
	}
}

func newTestMachine(t *testing.T, opts ...MachineOption) (*Machine, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	opts = append([]MachineOption{WithClock(clock.Fixed(testNow))}, opts...)
	return NewMachine(store, opts...), store
}

func initLogin(t *testing.T, m *Machine) *domain.WorkflowRecord {
	t.Helper()
	record, err := m.Init(context.Background(), "Add login", "new-feature", loginPhases())
	require.NoError(t, err)
	return record
}

func requireNext(t *testing.T, record *domain.WorkflowRecord, phase constants.Phase, agent string) {
	t.Helper()
	next, ok := NextAgent(record)
	require.True(t, ok, "expected a next agent")
	assert.Equal(t, Next{Phase: phase, Agent: agent}, next)
}

func assertDisjoint(t *testing.T, record *domain.WorkflowRecord) {
	t.Helper()
	for phase, p := range record.Phases {
		for _, agent := range p.Completed {
			assert.NotContains(t, p.Skipped, agent, "phase %s: completed and skipped overlap", phase)
		}
	}
}

func TestMachine_Init(t *testing.T) {
	m, _ := newTestMachine(t)
	record := initLogin(t, m)

	assert.Equal(t, "feat-add-login-20260314", record.WorkflowID)
	assert.Equal(t, "Add login", record.Feature)
	assert.Equal(t, "new-feature", record.Type)
	assert.Equal(t, constants.WorkflowStatusInProgress, record.Status)
	assert.Equal(t, testNow, record.CreatedAt)
	assert.Equal(t, testNow, record.UpdatedAt)
	assert.Equal(t, []constants.Phase{constants.PhaseThink, constants.PhaseBuild}, record.PhaseOrder)
	assert.Len(t, record.Phases, 2)
	assert.Empty(t, record.AgentLog)
	assert.NotNil(t, record.AgentLog)

	think := record.Phases[constants.PhaseThink]
	assert.Equal(t, []string{"researcher", "architect"}, think.Agents)
	assert.Empty(t, think.Completed)
	assert.Empty(t, think.Skipped)
	assert.Nil(t, think.Active)

	requireNext(t, record, constants.PhaseThink, "researcher")
}

func TestMachine_InitPhaseOrderIsCanonical(t *testing.T) {
	m, _ := newTestMachine(t)

	record, err := m.Init(context.Background(), "Ship it", "bug-fix", map[string][]string{
		"ship":   {"devops"},
		"Verify": {"unit-tester"},
		"THINK":  {"researcher"},
	})
	require.NoError(t, err)
	assert.Equal(t, []constants.Phase{constants.PhaseThink, constants.PhaseVerify, constants.PhaseShip}, record.PhaseOrder)
	assert.Contains(t, record.Phases, constants.PhaseShip)
}

func TestMachine_InitRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		feature string
		phases  map[string][]string
		wantErr error
	}{
		{"empty feature", "   ", loginPhases(), hodyerrors.ErrEmptyValue},
		{"no phases", "x", map[string][]string{}, hodyerrors.ErrNoPhases},
		{"unknown phase", "x", map[string][]string{"DEPLOY": {"devops"}}, hodyerrors.ErrUnknownPhase},
		{"empty phase", "x", map[string][]string{"THINK": {}}, hodyerrors.ErrEmptyPhase},
		{"blank agent", "x", map[string][]string{"THINK": {" "}}, hodyerrors.ErrEmptyValue},
		{"duplicate within phase", "x", map[string][]string{"THINK": {"a", "a"}}, hodyerrors.ErrDuplicateAgent},
		{"duplicate across phases", "x", map[string][]string{"THINK": {"a"}, "BUILD": {"a"}}, hodyerrors.ErrDuplicateAgent},
		{"phase twice by case", "x", map[string][]string{"THINK": {"a"}, "think": {"b"}}, hodyerrors.ErrInvalidPhaseSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store := newTestMachine(t)
			_, err := m.Init(context.Background(), tt.feature, "new-feature", tt.phases)
			require.ErrorIs(t, err, tt.wantErr)

			_, loadErr := store.Load(context.Background())
			require.ErrorIs(t, loadErr, hodyerrors.ErrNoActiveWorkflow, "failed init must not write")
		})
	}
}

func TestMachine_InitReplacesAndArchives(t *testing.T) {
	ctx := context.Background()
	m, store := newTestMachine(t)
	first := initLogin(t, m)

	_, err := m.Start(ctx, "researcher")
	require.NoError(t, err)

	second, err := m.Init(ctx, "Fix bug", "bug-fix", map[string][]string{"BUILD": {"backend"}})
	require.NoError(t, err)
	assert.Equal(t, "feat-fix-bug-20260314", second.WorkflowID)

	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.WorkflowID, loaded.WorkflowID)

	history, err := store.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.WorkflowID, history[0].WorkflowID)
	assert.Len(t, history[0].AgentLog, 1)
}

func TestMachine_Scenario(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	record := initLogin(t, m)
	requireNext(t, record, constants.PhaseThink, "researcher")

	started, err := m.Start(ctx, "researcher")
	require.NoError(t, err)
	assert.Empty(t, started.Warnings)
	assert.Equal(t, constants.PhaseThink, started.Phase)
	require.NotNil(t, started.Record.Phases[constants.PhaseThink].Active)
	assert.Equal(t, "researcher", *started.Record.Phases[constants.PhaseThink].Active)

	record, err = m.Complete(ctx, "researcher", "found prior art", []string{"architecture.md"})
	require.NoError(t, err)
	requireNext(t, record, constants.PhaseThink, "architect")

	record, err = m.Skip(ctx, "alice", "architect")
	require.NoError(t, err)
	requireNext(t, record, constants.PhaseBuild, "backend")

	record, err = m.Complete(ctx, "backend", "", nil)
	require.NoError(t, err)
	_, ok := NextAgent(record)
	assert.False(t, ok)
	assert.Equal(t, constants.WorkflowStatusInProgress, record.Status, "status changes only on explicit completion")

	record, err = m.CompleteWorkflow(ctx)
	require.NoError(t, err)
	assert.Equal(t, constants.WorkflowStatusCompleted, record.Status)
	assertDisjoint(t, record)
}

func TestMachine_StartWarnsOnEarlierPhaseWithoutProgress(t *testing.T) {
	ctx := context.Background()
	m, store := newTestMachine(t)
	_, err := m.Init(ctx, "Add login", "new-feature", map[string][]string{
		"THINK":  {"researcher", "architect"},
		"BUILD":  {"backend"},
		"VERIFY": {"unit-tester"},
	})
	require.NoError(t, err)

	result, err := m.Start(ctx, "unit-tester")
	require.NoError(t, err, "ordering is advisory")
	assert.Equal(t, []string{
		"Starting 'unit-tester' in VERIFY before THINK phase has any progress",
		"Starting 'unit-tester' in VERIFY before BUILD phase has any progress",
	}, result.Warnings)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded.Phases[constants.PhaseVerify].Active)

	// One skip of two is not progress; skipping every agent is.
	_, err = m.Skip(ctx, "", "researcher")
	require.NoError(t, err)
	result, err = m.Start(ctx, "backend")
	require.NoError(t, err)
	assert.Len(t, result.Warnings, 1)

	_, err = m.Skip(ctx, "", "architect")
	require.NoError(t, err)
	result, err = m.Start(ctx, "backend")
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
}

func TestMachine_StartAppendsOpenLogEntry(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	initLogin(t, m)

	result, err := m.Start(ctx, "researcher")
	require.NoError(t, err)
	require.Len(t, result.Record.AgentLog, 1)

	entry := result.Record.AgentLog[0]
	assert.Equal(t, "researcher", entry.Agent)
	assert.Equal(t, constants.PhaseThink, entry.Phase)
	assert.Equal(t, testNow, entry.StartedAt)
	assert.Nil(t, entry.CompletedAt)
	assert.Empty(t, entry.OutputSummary)
	assert.NotNil(t, entry.KBFilesModified)
}

func TestMachine_RestartIsPermitted(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	initLogin(t, m)

	_, err := m.Start(ctx, "researcher")
	require.NoError(t, err)
	_, err = m.Start(ctx, "researcher")
	require.NoError(t, err, "restarting an active agent")

	_, err = m.Complete(ctx, "researcher", "first", nil)
	require.NoError(t, err)
	result, err := m.Start(ctx, "researcher")
	require.NoError(t, err, "restarting a completed agent")

	think := result.Record.Phases[constants.PhaseThink]
	assert.True(t, think.IsActive("researcher"))
	assert.True(t, think.IsCompleted("researcher"))
	assert.Len(t, result.Record.AgentLog, 3)
}

func TestMachine_CompleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	initLogin(t, m)

	_, err := m.Start(ctx, "researcher")
	require.NoError(t, err)

	_, err = m.Complete(ctx, "researcher", "one", []string{"a.md"})
	require.NoError(t, err)
	record, err := m.Complete(ctx, "researcher", "two", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"researcher"}, record.Phases[constants.PhaseThink].Completed)
	require.Len(t, record.AgentLog, 1)
	assert.Equal(t, "one", record.AgentLog[0].OutputSummary, "closed entries are never rewritten")
	assert.Equal(t, []string{"a.md"}, record.AgentLog[0].KBFilesModified)
	require.NotNil(t, record.AgentLog[0].CompletedAt)
	assert.Equal(t, testNow, *record.AgentLog[0].CompletedAt)
}

func TestMachine_CompleteBackfillsMostRecentOpenEntry(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	initLogin(t, m)

	_, err := m.Start(ctx, "researcher")
	require.NoError(t, err)
	_, err = m.Start(ctx, "researcher")
	require.NoError(t, err)

	record, err := m.Complete(ctx, "researcher", "done", nil)
	require.NoError(t, err)
	require.Len(t, record.AgentLog, 2)
	assert.Nil(t, record.AgentLog[0].CompletedAt)
	assert.NotNil(t, record.AgentLog[1].CompletedAt)
	assert.Equal(t, "done", record.AgentLog[1].OutputSummary)
	assert.Equal(t, []string{}, record.AgentLog[1].KBFilesModified)
}

func TestMachine_CompleteWithoutStart(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	initLogin(t, m)

	record, err := m.Complete(ctx, "architect", "drive-by", nil)
	require.NoError(t, err)
	assert.True(t, record.Phases[constants.PhaseThink].IsCompleted("architect"))
	assert.Empty(t, record.AgentLog, "no entry is created for an agent that never started")
}

func TestMachine_CompleteClearsOnlyMatchingActive(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	initLogin(t, m)

	_, err := m.Start(ctx, "researcher")
	require.NoError(t, err)

	record, err := m.Complete(ctx, "architect", "", nil)
	require.NoError(t, err)
	assert.True(t, record.Phases[constants.PhaseThink].IsActive("researcher"))

	record, err = m.Complete(ctx, "researcher", "", nil)
	require.NoError(t, err)
	assert.Nil(t, record.Phases[constants.PhaseThink].Active)
}

func TestMachine_SkipAndCompleteStayDisjoint(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	initLogin(t, m)

	record, err := m.Skip(ctx, "", "researcher")
	require.NoError(t, err)
	assert.Equal(t, []string{"researcher"}, record.Phases[constants.PhaseThink].Skipped)

	record, err = m.Complete(ctx, "researcher", "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"researcher"}, record.Phases[constants.PhaseThink].Completed)
	assert.Empty(t, record.Phases[constants.PhaseThink].Skipped)
	assertDisjoint(t, record)

	record, err = m.Skip(ctx, "", "researcher")
	require.NoError(t, err)
	assert.Empty(t, record.Phases[constants.PhaseThink].Completed)
	assert.Equal(t, []string{"researcher"}, record.Phases[constants.PhaseThink].Skipped)
	assertDisjoint(t, record)

	record, err = m.Skip(ctx, "", "researcher")
	require.NoError(t, err)
	assert.Equal(t, []string{"researcher"}, record.Phases[constants.PhaseThink].Skipped, "skip is idempotent")
}

func TestMachine_SkipClearsActive(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	initLogin(t, m)

	_, err := m.Start(ctx, "architect")
	require.NoError(t, err)
	record, err := m.Skip(ctx, "", "architect")
	require.NoError(t, err)
	assert.Nil(t, record.Phases[constants.PhaseThink].Active)
}

func TestMachine_GatedOperations(t *testing.T) {
	ctx := context.Background()
	cfg := team.Default()
	cfg.Members = []team.Member{{Name: "alice", Role: team.RoleLead}}
	m, store := newTestMachine(t, WithGate(team.NewGate(cfg)))
	initLogin(t, m)

	_, err := m.Skip(ctx, "bob", "architect")
	require.ErrorIs(t, err, hodyerrors.ErrPermissionDenied)

	_, err = m.AbortWorkflow(ctx, "bob")
	require.ErrorIs(t, err, hodyerrors.ErrPermissionDenied)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Phases[constants.PhaseThink].Skipped)
	assert.Equal(t, constants.WorkflowStatusInProgress, loaded.Status)

	_, err = m.Skip(ctx, "alice", "architect")
	require.NoError(t, err)
	record, err := m.AbortWorkflow(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, constants.WorkflowStatusAborted, record.Status)
}

func TestMachine_UnknownAgent(t *testing.T) {
	ctx := context.Background()
	m, store := newTestMachine(t)
	initLogin(t, m)
	before, err := store.Load(ctx)
	require.NoError(t, err)

	_, err = m.Start(ctx, "devops")
	require.ErrorIs(t, err, hodyerrors.ErrUnknownAgent)
	_, err = m.Complete(ctx, "devops", "", nil)
	require.ErrorIs(t, err, hodyerrors.ErrUnknownAgent)
	_, err = m.Skip(ctx, "", "devops")
	require.ErrorIs(t, err, hodyerrors.ErrUnknownAgent)

	after, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed mutations write nothing")
}

func TestMachine_NoActiveWorkflow(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)

	_, err := m.Load(ctx)
	require.ErrorIs(t, err, hodyerrors.ErrNoActiveWorkflow)

	ops := map[string]func() error{
		"start":    func() error { _, err := m.Start(ctx, "researcher"); return err },
		"complete": func() error { _, err := m.Complete(ctx, "researcher", "", nil); return err },
		"skip":     func() error { _, err := m.Skip(ctx, "", "researcher"); return err },
		"done":     func() error { _, err := m.CompleteWorkflow(ctx); return err },
		"abort":    func() error { _, err := m.AbortWorkflow(ctx, ""); return err },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, op(), hodyerrors.ErrNoActiveWorkflow)
		})
	}
}

func TestMachine_TerminalRecordRejectsMutation(t *testing.T) {
	for _, finish := range []string{"completed", "aborted"} {
		t.Run(finish, func(t *testing.T) {
			ctx := context.Background()
			m, store := newTestMachine(t)
			initLogin(t, m)

			var err error
			if finish == "completed" {
				_, err = m.CompleteWorkflow(ctx)
			} else {
				_, err = m.AbortWorkflow(ctx, "")
			}
			require.NoError(t, err)

			_, err = m.Start(ctx, "researcher")
			require.ErrorIs(t, err, hodyerrors.ErrNoActiveWorkflow)
			_, err = m.CompleteWorkflow(ctx)
			require.ErrorIs(t, err, hodyerrors.ErrNoActiveWorkflow)

			loaded, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, finish, loaded.Status.String())
			_, ok := NextAgent(loaded)
			assert.False(t, ok, "terminal records have no next agent")
		})
	}
}

func TestMachine_CompleteWorkflowEarly(t *testing.T) {
	m, _ := newTestMachine(t)
	initLogin(t, m)

	record, err := m.CompleteWorkflow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, constants.WorkflowStatusCompleted, record.Status)
	assert.Equal(t, []string{"researcher", "architect"}, record.Phases[constants.PhaseThink].Remaining())
}

func TestMachine_UpdatedAtAdvances(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewMachine(store, WithClock(clock.Fixed(testNow)))
	initLogin(t, m)

	later := testNow.Add(90 * time.Minute)
	m = NewMachine(store, WithClock(clock.Fixed(later)))
	record, err := m.Complete(ctx, "researcher", "", nil)
	require.NoError(t, err)
	assert.Equal(t, testNow, record.CreatedAt)
	assert.Equal(t, later, record.UpdatedAt)
}

type failingStore struct {
	*MemoryStore
	saveErr error
}

func (f *failingStore) Save(ctx context.Context, record *domain.WorkflowRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryStore.Save(ctx, record)
}

func TestMachine_SaveFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: NewMemoryStore()}
	m := NewMachine(store, WithClock(clock.Fixed(testNow)))
	initLogin(t, m)

	diskFull := errors.New("no space left on device")
	store.saveErr = diskFull

	_, err := m.Start(ctx, "researcher")
	require.ErrorIs(t, err, diskFull)

	store.saveErr = nil
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.AgentLog)
}

func TestMachine_InitSaveFailureLeavesHistory(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: NewMemoryStore()}
	m := NewMachine(store, WithClock(clock.Fixed(testNow)))
	first := initLogin(t, m)

	diskFull := errors.New("disk full")
	store.saveErr = diskFull
	_, err := m.Init(ctx, "Fix bug", "bug-fix", map[string][]string{"BUILD": {"backend"}})
	require.ErrorIs(t, err, diskFull)

	history, err := store.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history, "a failed init archives nothing")

	store.saveErr = nil
	second, err := m.Init(ctx, "Fix bug", "bug-fix", map[string][]string{"BUILD": {"backend"}})
	require.NoError(t, err)

	history, err = store.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.WorkflowID, history[0].WorkflowID)

	current, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.WorkflowID, current.WorkflowID)
	assert.Equal(t, 2, ComputeStats(current, history).TotalStarted)
}

func TestMachine_FileStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)
	m := NewMachine(store, WithClock(clock.Fixed(testNow)))
	initLogin(t, m)

	_, err := m.Start(ctx, "researcher")
	require.NoError(t, err)
	_, err = m.Complete(ctx, "researcher", "notes", []string{"architecture.md"})
	require.NoError(t, err)

	reloaded := NewMachine(store)
	record, err := reloaded.Load(ctx)
	require.NoError(t, err)
	requireNext(t, record, constants.PhaseThink, "architect")
	assert.Equal(t, "notes", record.AgentLog[0].OutputSummary)
}

func TestParsePhaseSpecs(t *testing.T) {
	got, err := ParsePhaseSpecs([]string{"think=researcher, architect", "BUILD=backend", "THINK=designer"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"THINK": {"researcher", "architect", "designer"},
		"BUILD": {"backend"},
	}, got)

	_, err = ParsePhaseSpecs([]string{"THINK"})
	require.ErrorIs(t, err, hodyerrors.ErrInvalidPhaseSpec)
	_, err = ParsePhaseSpecs([]string{"=a"})
	require.ErrorIs(t, err, hodyerrors.ErrInvalidPhaseSpec)
}

func TestParsePhase(t *testing.T) {
	phase, ok := ParsePhase(" verify ")
	require.True(t, ok)
	assert.Equal(t, constants.PhaseVerify, phase)

	_, ok = ParsePhase("deploy")
	assert.False(t, ok)
}
