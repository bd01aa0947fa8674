package jsondiff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/Gitoffthelawn/jsonwatch/internal/jsonvalue"
)

// Supported output formats.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatUnified = "unified"
)

// Formats lists the names accepted by NewFormatter.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatUnified}

// Formatter renders the changes between two documents as output lines.
// An empty change set always renders as no lines.
type Formatter interface {
	Format(prev, curr jsonvalue.Value, changes []Change) ([]string, error)
}

// NewFormatter returns a formatter for the given format name.
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return TextFormatter{}, nil
	case FormatJSON:
		return JSONFormatter{}, nil
	case FormatYAML:
		return YAMLFormatter{}, nil
	case FormatUnified:
		return UnifiedFormatter{Context: 3}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q: use %s", format, strings.Join(Formats, ", "))
	}
}

// --- Text Formatter ---

// TextFormatter writes one line per change.
type TextFormatter struct{}

// Format implements Formatter.
func (TextFormatter) Format(_, _ jsonvalue.Value, changes []Change) ([]string, error) {
	return Format(changes), nil
}

// Format renders each change as a single line:
//
//	+ .path: new
//	- .path: old
//	~ .path: old -> new
//	! .path: old -> new
func Format(changes []Change) []string {
	if len(changes) == 0 {
		return nil
	}

	lines := make([]string, 0, len(changes))
	for _, c := range changes {
		lines = append(lines, FormatChange(c))
	}

	return lines
}

// FormatChange renders a single change.
func FormatChange(c Change) string {
	prefix := c.Type.Symbol() + " " + c.Path.String() + ": "

	switch {
	case c.Old != nil && c.New != nil:
		return prefix + jsonvalue.Compact(*c.Old) + " -> " + jsonvalue.Compact(*c.New)
	case c.New != nil:
		return prefix + jsonvalue.Compact(*c.New)
	case c.Old != nil:
		return prefix + jsonvalue.Compact(*c.Old)
	default:
		return strings.TrimSuffix(prefix, " ")
	}
}

// --- JSON Formatter ---

// JSONFormatter writes one JSON object per change.
type JSONFormatter struct{}

type record struct {
	Path Path             `json:"path" yaml:"path"`
	Op   ChangeType       `json:"op" yaml:"op"`
	Old  *jsonvalue.Value `json:"old,omitempty" yaml:"old,omitempty"`
	New  *jsonvalue.Value `json:"new,omitempty" yaml:"new,omitempty"`
}

func toRecords(changes []Change) []record {
	records := make([]record, 0, len(changes))
	for _, c := range changes {
		records = append(records, record{Path: c.Path, Op: c.Type, Old: c.Old, New: c.New})
	}

	return records
}

// Format implements Formatter.
func (JSONFormatter) Format(_, _ jsonvalue.Value, changes []Change) ([]string, error) {
	lines := make([]string, 0, len(changes))

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for _, r := range toRecords(changes) {
		buf.Reset()

		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("encoding change at %s: %w", r.Path, err)
		}

		lines = append(lines, strings.TrimSuffix(buf.String(), "\n"))
	}

	return lines, nil
}

// --- YAML Formatter ---

// YAMLFormatter writes the changes of a cycle as a YAML sequence. Values
// keep document key order and number literals.
type YAMLFormatter struct{}

// Format implements Formatter.
func (YAMLFormatter) Format(_, _ jsonvalue.Value, changes []Change) ([]string, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(toRecords(changes)); err != nil {
		return nil, fmt.Errorf("encoding changes as YAML: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding changes as YAML: %w", err)
	}

	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"), nil
}

// --- Unified Formatter ---

// UnifiedFormatter writes a unified diff of the pretty-printed documents.
type UnifiedFormatter struct {
	Context int
}

// Format implements Formatter.
func (f UnifiedFormatter) Format(prev, curr jsonvalue.Value, changes []Change) ([]string, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(jsonvalue.Pretty(prev)),
		B:        difflib.SplitLines(jsonvalue.Pretty(curr)),
		FromFile: "previous",
		ToFile:   "current",
		Context:  f.Context,
	}

	unified, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return nil, fmt.Errorf("computing unified diff: %w", err)
	}

	return strings.Split(strings.TrimRight(unified, "\n"), "\n"), nil
}
