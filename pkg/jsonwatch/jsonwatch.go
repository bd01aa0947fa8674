// Package jsonwatch provides a public Go API for diffing JSON documents and
// polling a source for changes.
//
// This package exposes the jsonwatch diff engine and poll loop as a library,
// allowing programmatic use without the CLI.
//
// One-shot comparison:
//
//	result, err := jsonwatch.Diff(before, after)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, c := range result.Changes {
//	    fmt.Println(c)
//	}
//
// Polling:
//
//	err := jsonwatch.Watch(ctx, jsonwatch.URL("https://example.com/status"),
//	    jsonwatch.WithInterval(10*time.Second),
//	    jsonwatch.WithOnChange(func(changes []jsonwatch.Change) {
//	        log.Println(changes)
//	    }),
//	)
package jsonwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Gitoffthelawn/jsonwatch/internal/jsondiff"
	"github.com/Gitoffthelawn/jsonwatch/internal/jsonvalue"
	"github.com/Gitoffthelawn/jsonwatch/internal/logging"
	"github.com/Gitoffthelawn/jsonwatch/internal/source"
	"github.com/Gitoffthelawn/jsonwatch/internal/watch"
)

// Source produces one raw document per poll. Implement it to watch anything
// that is not a command, URL or file.
type Source = source.Source

// ParseError reports input that is not exactly one well-formed document.
type ParseError = jsonvalue.ParseError

// SinkError reports a failed write of watch output.
type SinkError = watch.SinkError

// Input formats.
const (
	InputJSON = "json"
	InputYAML = "yaml"
)

// Option configures Diff and Watch. Use the With* functions to create
// Options.
type Option func(*options)

type options struct {
	format     string
	input      string
	interval   time.Duration
	out        io.Writer
	logger     *slog.Logger
	noDate     bool
	noInitial  bool
	maxChanges int
	trigger    <-chan struct{}
	onChange   func([]Change)
	onError    func(error)
}

// WithFormat selects how changes are rendered: "text" (default), "json",
// "yaml" or "unified".
func WithFormat(format string) Option { return func(o *options) { o.format = format } }

// WithInput selects the document syntax: InputJSON (default) or InputYAML.
func WithInput(input string) Option { return func(o *options) { o.input = input } }

// WithInterval sets the period between polls (default: 2s).
func WithInterval(d time.Duration) Option { return func(o *options) { o.interval = d } }

// WithOutput makes Watch print reports to w, the way the CLI does. Without
// it nothing is printed.
func WithOutput(w io.Writer) Option { return func(o *options) { o.out = w } }

// WithLogger sets the logger used by Watch. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithoutDate omits timestamps from printed reports.
func WithoutDate() Option { return func(o *options) { o.noDate = true } }

// WithoutInitialValue does not print the first document.
func WithoutInitialValue() Option { return func(o *options) { o.noInitial = true } }

// WithMaxChanges stops Watch after n polls that found changes.
func WithMaxChanges(n int) Option { return func(o *options) { o.maxChanges = n } }

// WithTrigger wakes Watch for an extra poll whenever c receives.
func WithTrigger(c <-chan struct{}) Option { return func(o *options) { o.trigger = c } }

// WithOnChange registers a callback for every poll that found changes.
func WithOnChange(fn func([]Change)) Option { return func(o *options) { o.onChange = fn } }

// WithOnError registers a callback for polls that failed to fetch or parse.
func WithOnError(fn func(error)) Option { return func(o *options) { o.onError = fn } }

func newOptions(opts []Option) *options {
	o := &options{
		format:   jsondiff.FormatText,
		input:    InputJSON,
		interval: 2 * time.Second,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logging.Discard()
	}

	if o.out == nil {
		o.out = io.Discard
	}

	return o
}

func (o *options) parser() (watch.ParseFunc, error) {
	switch o.input {
	case "", InputJSON:
		return jsonvalue.Parse, nil
	case InputYAML:
		return jsonvalue.ParseYAML, nil
	default:
		return nil, fmt.Errorf("unsupported input format %q: use json, yaml", o.input)
	}
}

// Change is one difference between two documents. Old and New hold compact
// JSON and are empty when the value is absent.
type Change struct {
	// Path locates the value, e.g. ".items[2].name"; "." is the root.
	Path string `json:"path"`

	// Op is "added", "removed", "changed" or "type-changed".
	Op string `json:"op"`

	Old string `json:"old,omitempty"`
	New string `json:"new,omitempty"`

	line string
}

// String renders the change as a single text line.
func (c Change) String() string { return c.line }

func toChanges(in []jsondiff.Change) []Change {
	out := make([]Change, 0, len(in))

	for _, c := range in {
		pc := Change{
			Path: c.Path.String(),
			Op:   string(c.Type),
			line: jsondiff.FormatChange(c),
		}

		if c.Old != nil {
			pc.Old = jsonvalue.Compact(*c.Old)
		}

		if c.New != nil {
			pc.New = jsonvalue.Compact(*c.New)
		}

		out = append(out, pc)
	}

	return out
}

// Result holds the output of a comparison.
type Result struct {
	// Changes lists the differences in document order.
	Changes []Change

	// Lines is the rendering selected by WithFormat.
	Lines []string

	// Summary counts the changes by kind, e.g. "+1 added, ~2 changed".
	Summary string
}

// Changed reports whether the documents differ.
func (r *Result) Changed() bool { return len(r.Changes) > 0 }

// Diff compares two documents.
//
// Pass no options to compare JSON and render text lines:
//
//	result, err := jsonwatch.Diff(before, after)
func Diff(prev, curr []byte, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	parse, err := o.parser()
	if err != nil {
		return nil, err
	}

	formatter, err := jsondiff.NewFormatter(o.format)
	if err != nil {
		return nil, err
	}

	a, err := parse(prev)
	if err != nil {
		return nil, fmt.Errorf("parsing previous document: %w", err)
	}

	b, err := parse(curr)
	if err != nil {
		return nil, fmt.Errorf("parsing current document: %w", err)
	}

	changes := jsondiff.Diff(a, b)

	lines, err := formatter.Format(a, b, changes)
	if err != nil {
		return nil, fmt.Errorf("formatting changes: %w", err)
	}

	return &Result{
		Changes: toChanges(changes),
		Lines:   lines,
		Summary: jsondiff.Summary(changes),
	}, nil
}

// Command returns a Source that runs name with args on every poll.
func Command(name string, args ...string) Source {
	return &source.Command{Name: name, Args: args}
}

// Shell returns a Source that runs script through the system shell.
func Shell(script string) Source {
	return &source.Command{Name: script, Shell: true}
}

// URL returns a Source that fetches rawURL with HTTP GET. Headers use the
// "Name: value" form.
func URL(rawURL string, headers ...string) Source {
	return &source.URL{URL: rawURL, Headers: headers}
}

// File returns a Source that reads path on every poll.
func File(path string) Source {
	return &source.File{Path: path}
}

// Watch polls src until ctx is cancelled, SIGINT or SIGTERM arrives, or the
// WithMaxChanges limit is reached. Failed polls are reported through
// WithOnError and never stop the loop; only a failing WithOutput writer does.
func Watch(ctx context.Context, src Source, opts ...Option) error {
	if src == nil {
		return errors.New("source must not be nil")
	}

	o := newOptions(opts)

	parse, err := o.parser()
	if err != nil {
		return err
	}

	formatter, err := jsondiff.NewFormatter(o.format)
	if err != nil {
		return err
	}

	wo := watch.DefaultOptions()
	wo.Interval = o.interval
	wo.Formatter = formatter
	wo.Parse = parse
	wo.Out = o.out
	wo.Logger = o.logger
	wo.Trigger = o.trigger
	wo.MaxChanges = o.maxChanges
	wo.PrintDate = !o.noDate
	wo.PrintInitial = !o.noInitial
	wo.OnCycle = func(c watch.Cycle) {
		switch {
		case c.Err != nil && o.onError != nil:
			o.onError(c.Err)
		case len(c.Changes) > 0 && o.onChange != nil:
			o.onChange(toChanges(c.Changes))
		}
	}

	if _, err := watch.Run(ctx, src, wo); err != nil {
		return fmt.Errorf("watching %s: %w", src, err)
	}

	return nil
}
