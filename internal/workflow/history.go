package workflow

import (
	"math"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
	"github.com/hodynguyen/Claude-Workflow/internal/domain"
)

// Stats summarizes workflow outcomes across the current record and history.
type Stats struct {
	TotalStarted         int            `json:"total_started"`
	TotalCompleted       int            `json:"total_completed"`
	TotalAborted         int            `json:"total_aborted"`
	CompletionRate       int            `json:"completion_rate"`
	AvgAgentsPerWorkflow float64        `json:"avg_agents_per_workflow"`
	AgentUsage           map[string]int `json:"agent_usage"`
}

// ComputeStats aggregates history plus current, which may be nil.
// Agent usage counts one per log entry; the per-workflow average counts
// distinct agents that appear in a workflow's log.
func ComputeStats(current *domain.WorkflowRecord, history []*domain.WorkflowRecord) Stats {
	stats := Stats{AgentUsage: map[string]int{}}

	all := make([]*domain.WorkflowRecord, 0, len(history)+1)
	all = append(all, history...)
	if current != nil {
		all = append(all, current)
	}

	distinctTotal := 0
	for _, record := range all {
		if record == nil {
			continue
		}
		stats.TotalStarted++
		switch record.Status {
		case constants.WorkflowStatusCompleted:
			stats.TotalCompleted++
		case constants.WorkflowStatusAborted:
			stats.TotalAborted++
		case constants.WorkflowStatusInProgress:
		}

		seen := make(map[string]struct{})
		for _, entry := range record.AgentLog {
			if entry.Agent == "" {
				continue
			}
			stats.AgentUsage[entry.Agent]++
			seen[entry.Agent] = struct{}{}
		}
		distinctTotal += len(seen)
	}

	if stats.TotalStarted > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.TotalCompleted) / float64(stats.TotalStarted) * 100))
		stats.AvgAgentsPerWorkflow = math.Round(float64(distinctTotal)/float64(stats.TotalStarted)*10) / 10
	}
	return stats
}
