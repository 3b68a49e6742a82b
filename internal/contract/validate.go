package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hodynguyen/Claude-Workflow/internal/domain"
	"github.com/hodynguyen/Claude-Workflow/internal/knowledge"
)

// Result is the outcome of validating one contract.
// Errors is reserved for enforced checks; advisory validation only warns.
type Result struct {
	Passed   bool     `json:"passed"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// IncomingResult pairs a contract with its validation result.
type IncomingResult struct {
	Entry  Entry  `json:"entry"`
	Result Result `json:"result"`
}

// Validate checks c against the knowledge base in kbDir.
// When record is non-nil and the sending agent belongs to it, a warning is
// added if that agent is neither completed nor skipped. A nil contract passes.
func Validate(c *Contract, kbDir string, record *domain.WorkflowRecord) Result {
	result := Result{Passed: true, Warnings: []string{}, Errors: []string{}}
	if c == nil {
		return result
	}

	for _, rule := range c.Validation {
		if rule.Check != CheckKBFileModified {
			continue
		}
		message := rule.MessageOrDefault()
		content, ok := readRegular(filepath.Join(kbDir, rule.File))
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("[Missing] %s: %s", rule.File, message))
			continue
		}
		if knowledge.IsTemplateOnly(content) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("[Template only] %s: %s", rule.File, message))
		}
	}

	for _, section := range c.RequiredSections {
		if section.Name == "" {
			continue
		}
		if _, found, err := knowledge.FindSection(kbDir, section.Name); err == nil && found {
			continue
		}
		warning := fmt.Sprintf("[Missing section] '%s' not found in KB", section.Name)
		if section.Format != "" {
			warning += fmt.Sprintf(" (expected: %s)", section.Format)
		}
		result.Warnings = append(result.Warnings, warning)
	}

	if record != nil {
		if from := c.Sender(); from != "" {
			if _, inWorkflow := record.PhaseOf(from); inWorkflow && !record.IsResolved(from) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("[Handoff] '%s' has not completed in the current workflow", from))
			}
		}
	}

	result.Passed = len(result.Warnings) == 0 && len(result.Errors) == 0
	return result
}

// ValidateIncoming validates every contract that hands off to agent.
// Contracts are checked concurrently; results keep ForAgent order.
// Malformed contracts addressed to agent come back as the joined parse
// errors next to the results for the well-formed ones.
func ValidateIncoming(ctx context.Context, dir, kbDir, agent string, record *domain.WorkflowRecord) ([]IncomingResult, error) {
	entries, listErr := ForAgent(dir, agent)
	if listErr != nil && len(Malformed(listErr)) == 0 {
		return nil, listErr
	}

	results := make([]IncomingResult, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = IncomingResult{Entry: entry, Result: Validate(entry.Contract, kbDir, record)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "contract").
		Str("agent", agent).
		Int("contracts", len(results)).
		Int("malformed", len(Malformed(listErr))).
		Msg("incoming contracts validated")

	return results, listErr
}

// readRegular returns the content of a regular file.
func readRegular(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	data, err := os.ReadFile(path) //#nosec G304 -- path is inside the knowledge base directory
	if err != nil {
		return "", false
	}
	return string(data), true
}
