package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hodynguyen/Claude-Workflow/internal/clock"
	"github.com/hodynguyen/Claude-Workflow/internal/constants"
	"github.com/hodynguyen/Claude-Workflow/internal/domain"
	hodyerrors "github.com/hodynguyen/Claude-Workflow/internal/errors"
	"github.com/hodynguyen/Claude-Workflow/internal/team"
)

// Machine owns the phase and agent lifecycle of a workflow record.
//
// Every mutator is a complete load-modify-save cycle against the Store.
// A failed mutation saves nothing. Machine assumes it is the only writer in
// flight: FileStore locks each individual Load and Save, but two processes
// interleaving whole mutations is undefined behavior.
type Machine struct {
	store Store
	clock clock.Clock
	gate  team.Gate
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithClock sets the clock used for timestamps and workflow IDs.
func WithClock(c clock.Clock) MachineOption {
	return func(m *Machine) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithGate sets the permission gate consulted by Skip and AbortWorkflow.
func WithGate(g team.Gate) MachineOption {
	return func(m *Machine) {
		if g != nil {
			m.gate = g
		}
	}
}

// NewMachine creates a Machine over store.
// Without options it uses the real clock and permits every gated action.
func NewMachine(store Store, opts ...MachineOption) *Machine {
	m := &Machine{
		store: store,
		clock: clock.RealClock{},
		gate:  team.AllowAll{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartResult is returned by Start.
// Warnings are ordering advisories; they never prevent the start.
type StartResult struct {
	Record   *domain.WorkflowRecord `json:"record"`
	Phase    constants.Phase        `json:"phase"`
	Warnings []string               `json:"warnings"`
}

// Init creates a new workflow record and replaces any existing one without
// confirmation. The replaced record is archived when the store keeps history.
//
// Phase names are matched case-insensitively against THINK, BUILD, VERIFY,
// and SHIP; any other name is rejected with ErrUnknownPhase.
func (m *Machine) Init(ctx context.Context, feature, workflowType string, phaseMap map[string][]string) (*domain.WorkflowRecord, error) {
	feature = strings.TrimSpace(feature)
	if feature == "" {
		return nil, fmt.Errorf("failed to init workflow: feature %w", hodyerrors.ErrEmptyValue)
	}

	phases, err := normalizePhases(phaseMap)
	if err != nil {
		return nil, hodyerrors.Wrap(err, "failed to init workflow")
	}

	now := m.now()
	record := &domain.WorkflowRecord{
		WorkflowID: GenerateWorkflowID(feature, now),
		Feature:    feature,
		Type:       strings.TrimSpace(workflowType),
		Status:     constants.WorkflowStatusInProgress,
		CreatedAt:  now,
		UpdatedAt:  now,
		Phases:     make(map[constants.Phase]*domain.PhaseState, len(phases)),
		PhaseOrder: make([]constants.Phase, 0, len(phases)),
		AgentLog:   []domain.LogEntry{},
	}
	for _, phase := range constants.PhaseOrder() {
		if agents, ok := phases[phase]; ok {
			record.PhaseOrder = append(record.PhaseOrder, phase)
			record.Phases[phase] = domain.NewPhaseState(agents)
		}
	}

	previous := m.loadPrevious(ctx)
	if err := m.store.Save(ctx, record); err != nil {
		return nil, hodyerrors.Wrap(err, "failed to init workflow")
	}
	m.archive(ctx, previous)

	zerolog.Ctx(ctx).Info().
		Str("component", "workflow").
		Str("workflow_id", record.WorkflowID).
		Strs("phases", phaseNames(record.PhaseOrder)).
		Msg("workflow initialized")

	return record, nil
}

// Load returns the persisted record in any status.
// Returns ErrNoActiveWorkflow when nothing has been initialized.
func (m *Machine) Load(ctx context.Context) (*domain.WorkflowRecord, error) {
	return m.store.Load(ctx)
}

// Start marks agent active in its phase and opens a log entry.
// Starting an agent that is already active, completed, or skipped is permitted.
func (m *Machine) Start(ctx context.Context, agent string) (*StartResult, error) {
	result := &StartResult{Warnings: []string{}}

	record, err := m.mutate(ctx, "start agent", func(record *domain.WorkflowRecord, now time.Time) error {
		phase, p, err := resolveAgent(record, agent)
		if err != nil {
			return err
		}

		for _, earlier := range record.PhaseOrder {
			if earlier == phase {
				break
			}
			if ep, ok := record.Phases[earlier]; ok && !ep.HasProgress() {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"Starting '%s' in %s before %s phase has any progress", agent, phase, earlier))
			}
		}

		active := agent
		p.Active = &active
		record.AgentLog = append(record.AgentLog, domain.LogEntry{
			Agent:           agent,
			Phase:           phase,
			StartedAt:       now,
			KBFilesModified: []string{},
		})
		result.Phase = phase
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Record = record

	logger := zerolog.Ctx(ctx)
	for _, w := range result.Warnings {
		logger.Warn().Str("component", "workflow").Str("agent", agent).Msg(w)
	}
	logger.Info().
		Str("component", "workflow").
		Str("agent", agent).
		Str("phase", result.Phase.String()).
		Msg("agent started")

	return result, nil
}

// Complete adds agent to its phase's completed set and fills in the most
// recent open log entry for agent. Completing twice is a no-op insertion.
// An agent that was never started is completed without a log entry.
func (m *Machine) Complete(ctx context.Context, agent, summary string, kbFiles []string) (*domain.WorkflowRecord, error) {
	record, err := m.mutate(ctx, "complete agent", func(record *domain.WorkflowRecord, now time.Time) error {
		_, p, err := resolveAgent(record, agent)
		if err != nil {
			return err
		}

		if !p.IsCompleted(agent) {
			p.Completed = append(p.Completed, agent)
		}
		p.Skipped = removeName(p.Skipped, agent)
		if p.IsActive(agent) {
			p.Active = nil
		}

		if i := record.LastOpenEntry(agent); i >= 0 {
			completedAt := now
			entry := &record.AgentLog[i]
			entry.CompletedAt = &completedAt
			entry.OutputSummary = summary
			entry.KBFilesModified = slices.Clone(kbFiles)
			if entry.KBFilesModified == nil {
				entry.KBFilesModified = []string{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("component", "workflow").
		Str("agent", agent).
		Int("kb_files", len(kbFiles)).
		Msg("agent completed")

	return record, nil
}

// Skip adds agent to its phase's skipped set after the gate approves
// team.ActionSkipAgent for user. Skipping does not require a prior start.
func (m *Machine) Skip(ctx context.Context, user, agent string) (*domain.WorkflowRecord, error) {
	if err := m.gate.Allow(ctx, user, team.ActionSkipAgent); err != nil {
		return nil, hodyerrors.Wrapf(err, "failed to skip agent '%s'", agent)
	}

	record, err := m.mutate(ctx, "skip agent", func(record *domain.WorkflowRecord, _ time.Time) error {
		_, p, err := resolveAgent(record, agent)
		if err != nil {
			return err
		}

		if !p.IsSkipped(agent) {
			p.Skipped = append(p.Skipped, agent)
		}
		p.Completed = removeName(p.Completed, agent)
		if p.IsActive(agent) {
			p.Active = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("component", "workflow").
		Str("agent", agent).
		Str("user", user).
		Msg("agent skipped")

	return record, nil
}

// CompleteWorkflow marks the workflow completed.
// Unresolved agents do not prevent it.
func (m *Machine) CompleteWorkflow(ctx context.Context) (*domain.WorkflowRecord, error) {
	return m.terminate(ctx, constants.WorkflowStatusCompleted)
}

// AbortWorkflow marks the workflow aborted after the gate approves
// team.ActionAbortWorkflow for user.
func (m *Machine) AbortWorkflow(ctx context.Context, user string) (*domain.WorkflowRecord, error) {
	if err := m.gate.Allow(ctx, user, team.ActionAbortWorkflow); err != nil {
		return nil, hodyerrors.Wrap(err, "failed to abort workflow")
	}
	return m.terminate(ctx, constants.WorkflowStatusAborted)
}

func (m *Machine) terminate(ctx context.Context, status constants.WorkflowStatus) (*domain.WorkflowRecord, error) {
	record, err := m.mutate(ctx, "finish workflow", func(record *domain.WorkflowRecord, _ time.Time) error {
		record.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("component", "workflow").
		Str("workflow_id", record.WorkflowID).
		Str("status", status.String()).
		Msg("workflow finished")

	return record, nil
}

// mutate loads the in-progress record, applies fn, stamps UpdatedAt, and saves.
// Nothing is saved when fn fails.
func (m *Machine) mutate(ctx context.Context, op string, fn func(*domain.WorkflowRecord, time.Time) error) (*domain.WorkflowRecord, error) {
	record, err := m.loadActive(ctx)
	if err != nil {
		return nil, hodyerrors.Wrapf(err, "failed to %s", op)
	}

	now := m.now()
	if err := fn(record, now); err != nil {
		return nil, hodyerrors.Wrapf(err, "failed to %s", op)
	}
	record.UpdatedAt = now

	if err := m.store.Save(ctx, record); err != nil {
		return nil, hodyerrors.Wrapf(err, "failed to %s", op)
	}
	return record, nil
}

// loadActive treats a terminal record exactly like a missing one.
func (m *Machine) loadActive(ctx context.Context) (*domain.WorkflowRecord, error) {
	record, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !record.IsInProgress() {
		return nil, fmt.Errorf("workflow '%s' is %s: %w", record.WorkflowID, record.Status, hodyerrors.ErrNoActiveWorkflow)
	}
	return record, nil
}

// loadPrevious returns the record Init is about to replace, or nil when the
// store keeps no history or holds nothing readable.
func (m *Machine) loadPrevious(ctx context.Context) *domain.WorkflowRecord {
	if _, ok := m.store.(Archiver); !ok {
		return nil
	}

	previous, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, hodyerrors.ErrNoActiveWorkflow) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("component", "workflow").Msg("previous workflow not archived")
		}
		return nil
	}
	return previous
}

// archive appends the replaced record to history. It runs only after the new
// record is saved, so a failed Init leaves history untouched.
func (m *Machine) archive(ctx context.Context, previous *domain.WorkflowRecord) {
	archiver, ok := m.store.(Archiver)
	if !ok || previous == nil {
		return
	}

	logger := zerolog.Ctx(ctx)
	if err := archiver.Archive(ctx, previous); err != nil {
		logger.Warn().Err(err).Str("component", "workflow").Msg("previous workflow not archived")
		return
	}
	logger.Debug().
		Str("component", "workflow").
		Str("workflow_id", previous.WorkflowID).
		Msg("previous workflow archived")
}

func (m *Machine) now() time.Time {
	return m.clock.Now().UTC().Truncate(time.Second)
}

// resolveAgent finds agent's phase.
func resolveAgent(record *domain.WorkflowRecord, agent string) (constants.Phase, *domain.PhaseState, error) {
	phase, ok := record.PhaseOf(agent)
	if !ok {
		return "", nil, fmt.Errorf("%w: '%s'", hodyerrors.ErrUnknownAgent, agent)
	}
	return phase, record.Phases[phase], nil
}

// normalizePhases validates a phase map and keys it by canonical phase.
// Keys are visited in sorted order so the reported error is deterministic.
func normalizePhases(phaseMap map[string][]string) (map[constants.Phase][]string, error) {
	if len(phaseMap) == 0 {
		return nil, hodyerrors.ErrNoPhases
	}

	names := make([]string, 0, len(phaseMap))
	for name := range phaseMap {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[constants.Phase][]string, len(phaseMap))
	seen := make(map[string]constants.Phase)
	for _, name := range names {
		phase, ok := ParsePhase(name)
		if !ok {
			return nil, fmt.Errorf("%w: '%s'", hodyerrors.ErrUnknownPhase, name)
		}
		if _, dup := out[phase]; dup {
			return nil, fmt.Errorf("%w: phase %s given more than once", hodyerrors.ErrInvalidPhaseSpec, phase)
		}

		agents := make([]string, 0, len(phaseMap[name]))
		for _, agent := range phaseMap[name] {
			agent = strings.TrimSpace(agent)
			if agent == "" {
				return nil, fmt.Errorf("phase %s: agent name %w", phase, hodyerrors.ErrEmptyValue)
			}
			if owner, dup := seen[agent]; dup {
				return nil, fmt.Errorf("%w: '%s' in %s and %s", hodyerrors.ErrDuplicateAgent, agent, owner, phase)
			}
			seen[agent] = phase
			agents = append(agents, agent)
		}
		if len(agents) == 0 {
			return nil, fmt.Errorf("%w: %s", hodyerrors.ErrEmptyPhase, phase)
		}
		out[phase] = agents
	}
	return out, nil
}

// ParsePhase matches name case-insensitively against the canonical phases.
func ParsePhase(name string) (constants.Phase, bool) {
	candidate := constants.Phase(strings.ToUpper(strings.TrimSpace(name)))
	if slices.Contains(constants.PhaseOrder(), candidate) {
		return candidate, true
	}
	return "", false
}

// ParsePhaseSpecs turns "PHASE=agent,agent" strings into a phase map.
// Repeating a phase appends to its roster.
func ParsePhaseSpecs(specs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: '%s' (want PHASE=agent[,agent])", hodyerrors.ErrInvalidPhaseSpec, spec)
		}
		key := strings.ToUpper(name)
		agents := out[key]
		for _, agent := range strings.Split(list, ",") {
			if agent = strings.TrimSpace(agent); agent != "" {
				agents = append(agents, agent)
			}
		}
		out[key] = agents
	}
	return out, nil
}

func removeName(list []string, name string) []string {
	return slices.DeleteFunc(list, func(s string) bool { return s == name })
}

func phaseNames(phases []constants.Phase) []string {
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = p.String()
	}
	return names
}
