package contract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
	"github.com/hodynguyen/Claude-Workflow/internal/errors"
)

//nolint:gochecknoglobals // parsed once
var scaffoldTemplate = template.Must(template.New("contract").Parse(`# Handoff from {{.From}} to {{.To}}.
# Rules are advisory: failures are reported when '{{.To}}' starts.
contract: {{.Name}}
version: "1"
from: {{.From}}
to: {{.To}}
description: What {{.From}} leaves in the knowledge base for {{.To}}

validation:
  - check: kb_file_modified
    file: architecture.md
    message: Document the design {{.To}} builds on

required_sections: []
`))

// agentNameRegex is the shape an agent name must have to be used in a
// contract file name and as a bare YAML scalar.
var agentNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateAgentName rejects names that cannot appear in a contract file name.
// A name may not contain the "-to-" separator, or the pair would not split back.
func ValidateAgentName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: agent name", errors.ErrEmptyValue)
	}
	if !agentNameRegex.MatchString(name) || strings.Contains(name, constants.ContractSeparator) {
		return fmt.Errorf("%w: agent name %q (want lowercase letters, digits, '-' or '_', without %q)",
			errors.ErrValueOutOfRange, name, constants.ContractSeparator)
	}
	return nil
}

// Scaffold returns a starter contract for the pair. The result parses.
func Scaffold(from, to string) ([]byte, error) {
	for _, name := range []string{from, to} {
		if err := ValidateAgentName(name); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	err := scaffoldTemplate.Execute(&buf, struct{ Name, From, To string }{
		Name: from + constants.ContractSeparator + to,
		From: from,
		To:   to,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render contract")
	}
	return buf.Bytes(), nil
}

// WriteScaffold writes a starter contract into dir and returns its path.
// An existing contract is only replaced when force is set.
func WriteScaffold(dir, from, to string, force bool) (string, error) {
	data, err := Scaffold(from, to)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(from, to))
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w: %s", errors.ErrContractExists, path)
		}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.Wrap(err, "failed to create contracts directory")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write contract")
	}
	return path, nil
}
