// Package main provides the entry point for the hody CLI.
package main

import (
	"context"
	"os"

	"github.com/hodynguyen/Claude-Workflow/internal/cli"
	"github.com/hodynguyen/Claude-Workflow/internal/signal"
)

// Set via ldflags at build time.
//
//nolint:gochecknoglobals // build metadata
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	os.Exit(run())
}

func run() int {
	h := signal.NewHandler(context.Background())
	defer h.Stop()

	err := cli.Execute(h.Context(), cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if code := h.ExitCode(); code != 0 {
		return code
	}
	return cli.ExitCodeForError(err)
}
