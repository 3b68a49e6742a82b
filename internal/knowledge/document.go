// Package knowledge provides read access to the project knowledge base and
// the workflow journal appended to it.
//
// The knowledge base is a flat directory of markdown documents owned by other
// tools. This package only inspects presence, substantive size, and level-2
// headings, and appends completion entries to one journal document.
package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
)

// documentPattern selects markdown documents directly inside the KB directory.
const documentPattern = "*.md"

// Documents returns the markdown documents directly inside dir, sorted.
// A missing directory yields no documents.
func Documents(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to read knowledge base: %s is not a directory", dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), documentPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge base documents: %w", err)
	}

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	sort.Strings(paths)
	return paths, nil
}

// SubstantiveLines counts lines that carry content. Blank lines, HTML
// comment openers, markdown headings, and frontmatter delimiters do not count.
func SubstantiveLines(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" ||
			strings.HasPrefix(line, "<!--") ||
			strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "---") {
			continue
		}
		count++
	}
	return count
}

// IsTemplateOnly reports whether content has fewer than
// constants.MinSubstantiveLines substantive lines.
func IsTemplateOnly(content string) bool {
	return SubstantiveLines(content) < constants.MinSubstantiveLines
}

// HasSection reports whether content has a level-2 heading whose text
// contains name, ignoring case. The heading may be indented by up to three
// spaces.
func HasSection(content, name string) bool {
	return sectionPattern(name).MatchString(content)
}

func sectionPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^ {0,3}##[ \t]+.*` + regexp.QuoteMeta(name))
}

// FindSection returns the first document in dir that has a level-2 heading
// containing name. Unreadable documents are ignored.
func FindSection(dir, name string) (string, bool, error) {
	docs, err := Documents(dir)
	if err != nil {
		return "", false, err
	}
	pattern := sectionPattern(name)
	for _, doc := range docs {
		data, err := os.ReadFile(doc) //#nosec G304 -- path is inside the knowledge base directory
		if err != nil {
			continue
		}
		if pattern.Match(data) {
			return doc, true, nil
		}
	}
	return "", false, nil
}
