package contract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	hodyerrors "github.com/hodynguyen/Claude-Workflow/internal/errors"
)

// ParseError describes why a contract file was rejected.
// It matches errors.ErrMalformedContract with errors.Is.
type ParseError struct {
	Path  string
	Line  int
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<contract>"
	}
	if e.Line > 0 {
		loc += ":" + strconv.Itoa(e.Line)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s: %v", hodyerrors.ErrMalformedContract, loc, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", hodyerrors.ErrMalformedContract, loc, e.Err)
}

// Unwrap returns both the malformed-contract sentinel and the cause.
func (e *ParseError) Unwrap() []error {
	return []error{hodyerrors.ErrMalformedContract, e.Err}
}

// yamlLineRegex extracts the line number from yaml.v3 error text.
var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Load reads and parses the contract at path.
// A missing file returns (nil, nil).
func Load(path string) (*Contract, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is inside the contracts directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil //nolint:nilnil // absent contract is not an error
		}
		return nil, fmt.Errorf("failed to read contract: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes contract content. Unknown keys, wrong value types, and
// missing required fields are rejected with a *ParseError.
func Parse(path string, data []byte) (*Contract, error) {
	var c Contract
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Path: path, Field: "contract", Err: hodyerrors.ErrEmptyValue}
		}
		return nil, yamlParseError(path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, yamlParseError(path, err)
	}

	if err := validateSchema(path, &c, &root); err != nil {
		return nil, err
	}
	return &c, nil
}

func yamlParseError(path string, err error) *ParseError {
	pe := &ParseError{Path: path, Err: err}
	var typeErr *yaml.TypeError
	msg := err.Error()
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		msg = typeErr.Errors[0]
	}
	if m := yamlLineRegex.FindStringSubmatch(msg); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}

func validateSchema(path string, c *Contract, root *yaml.Node) error {
	if c.Name == "" {
		return &ParseError{Path: path, Line: keyLine(root, "contract"), Field: "contract", Err: hodyerrors.ErrEmptyValue}
	}
	if c.Version == "" {
		return &ParseError{Path: path, Line: keyLine(root, "version"), Field: "version", Err: hodyerrors.ErrEmptyValue}
	}

	for i, rule := range c.Validation {
		field := fmt.Sprintf("validation[%d]", i)
		line := itemLine(root, "validation", i)
		switch rule.Check {
		case CheckKBFileModified:
			if rule.File == "" {
				return &ParseError{Path: path, Line: line, Field: field + ".file", Err: hodyerrors.ErrEmptyValue}
			}
		case "":
			return &ParseError{Path: path, Line: line, Field: field + ".check", Err: hodyerrors.ErrEmptyValue}
		default:
			return &ParseError{Path: path, Line: line, Field: field + ".check", Err: fmt.Errorf("%w: unsupported check %q", hodyerrors.ErrValueOutOfRange, rule.Check)}
		}
	}

	for i, section := range c.RequiredSections {
		if section.Name == "" {
			return &ParseError{
				Path:  path,
				Line:  itemLine(root, "required_sections", i),
				Field: fmt.Sprintf("required_sections[%d].name", i),
				Err:   hodyerrors.ErrEmptyValue,
			}
		}
	}
	return nil
}

// topMapping returns the document's top-level mapping node.
func topMapping(root *yaml.Node) *yaml.Node {
	if root == nil || root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	if m := root.Content[0]; m.Kind == yaml.MappingNode {
		return m
	}
	return nil
}

// keyLine returns the line of a top-level key, or 0.
func keyLine(root *yaml.Node, key string) int {
	m := topMapping(root)
	if m == nil {
		return 0
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i].Line
		}
	}
	return 0
}

// itemLine returns the line of the index-th item under a top-level sequence key, or 0.
func itemLine(root *yaml.Node, key string, index int) int {
	m := topMapping(root)
	if m == nil {
		return 0
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != key {
			continue
		}
		seq := m.Content[i+1]
		if seq.Kind == yaml.SequenceNode && index < len(seq.Content) {
			return seq.Content[index].Line
		}
		return m.Content[i].Line
	}
	return 0
}
