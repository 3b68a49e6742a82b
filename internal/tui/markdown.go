package tui

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownWidth is the wrap width used for rendered markdown.
const MarkdownWidth = 80

var (
	mdRenderer     *glamour.TermRenderer //nolint:gochecknoglobals // built once
	mdRendererOnce sync.Once             //nolint:gochecknoglobals // guards mdRenderer
)

func markdownRenderer() *glamour.TermRenderer {
	mdRendererOnce.Do(func() {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(MarkdownWidth)}
		if HasColorSupport() {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle("notty"))
		}
		if r, err := glamour.NewTermRenderer(opts...); err == nil {
			mdRenderer = r
		}
	})
	return mdRenderer
}

// RenderMarkdown renders md for the terminal. The source is returned as-is
// if the renderer is unavailable or fails.
func RenderMarkdown(md string) string {
	r := markdownRenderer()
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
