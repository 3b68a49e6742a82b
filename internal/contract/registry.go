package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hodynguyen/Claude-Workflow/internal/constants"
)

// Entry is a contract found in a contracts directory.
type Entry struct {
	From     string    `json:"from"`
	To       string    `json:"to"`
	Path     string    `json:"path"`
	Contract *Contract `json:"contract"`
}

// Find loads the contract for an agent pair.
// Returns (nil, nil) when no such contract exists.
func Find(dir, from, to string) (*Contract, error) {
	return Load(filepath.Join(dir, FileName(from, to)))
}

// List returns every contract in dir, sorted by file name.
// Files without the .yaml extension or without the "<from>-to-<to>" shape
// are skipped. A missing directory yields no entries.
//
// Malformed contracts do not stop the listing: the well-formed entries are
// returned together with the errors.Join of every *ParseError. Use
// Malformed to take that error apart. Any other failure returns no entries.
func List(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), constants.ContractExtension) {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	var malformed []error
	for _, name := range names {
		from, to, ok := SplitName(strings.TrimSuffix(name, constants.ContractExtension))
		if !ok {
			continue
		}
		path := filepath.Join(dir, name)
		c, err := Load(path)
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				return nil, err
			}
			malformed = append(malformed, pe)
			continue
		}
		if c == nil {
			continue
		}
		entries = append(entries, Entry{From: from, To: to, Path: path, Contract: c})
	}
	return entries, errors.Join(malformed...)
}

// Malformed returns the parse errors carried by an error from List,
// ForAgent, or ValidateIncoming. It is empty when err holds none.
func Malformed(err error) []*ParseError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*ParseError); ok { //nolint:errorlint // ParseError itself unwraps to its sentinel
		return []*ParseError{pe}
	}
	var out []*ParseError
	switch u := err.(type) { //nolint:errorlint // walking the join tree
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			out = append(out, Malformed(e)...)
		}
	case interface{ Unwrap() error }:
		out = Malformed(u.Unwrap())
	}
	return out
}

// ForAgent returns the contracts that hand off to agent, plus the parse
// errors of malformed contract files addressed to agent.
func ForAgent(dir, agent string) ([]Entry, error) {
	all, err := List(dir)
	malformed := Malformed(err)
	if err != nil && len(malformed) == 0 {
		return nil, err
	}

	incoming := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.To == agent {
			incoming = append(incoming, e)
		}
	}

	var own []error
	for _, pe := range malformed {
		if _, to, ok := SplitName(strings.TrimSuffix(filepath.Base(pe.Path), constants.ContractExtension)); ok && to == agent {
			own = append(own, pe)
		}
	}
	return incoming, errors.Join(own...)
}
