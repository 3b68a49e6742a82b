package workflow

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
)

// Slugify lowercases text, folds accented letters to ASCII, and collapses
// every run of characters outside [a-z0-9] into a single "-".
// The result is truncated to constants.MaxSlugLength.
func Slugify(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	pendingDash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	slug := b.String()
	if len(slug) > constants.MaxSlugLength {
		slug = strings.TrimRight(slug[:constants.MaxSlugLength], "-")
	}
	return slug
}

// GenerateWorkflowID builds "feat-<slug>-<YYYYMMDD>" from the feature text
// and the UTC creation date. Collisions are not checked.
func GenerateWorkflowID(feature string, now time.Time) string {
	return constants.WorkflowIDPrefix + Slugify(feature) + "-" + now.UTC().Format("20060102")
}
