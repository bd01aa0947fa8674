package watch

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/Gitoffthelawn/jsonwatch/internal/jsonvalue"
)

// TimestampFormat is the layout of report timestamps.
const TimestampFormat = "2006-01-02T15:04:05-0700"

// SinkError reports that the output sink rejected a write.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("writing output: %v", e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// reporter writes change reports, initial values and diagnostics to the
// sink. Every report is assembled first and written with a single call.
type reporter struct {
	w    io.Writer
	now  func() time.Time
	date bool
}

// changes writes the lines of one cycle. A single line shares the line with
// the timestamp; several lines follow it, indented by four spaces.
func (r *reporter) changes(lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	var b strings.Builder

	if len(lines) == 1 {
		if r.date {
			b.WriteString(r.timestamp())
			b.WriteByte(' ')
		}

		b.WriteString(lines[0])
		b.WriteByte('\n')

		return r.write(b.String())
	}

	if r.date {
		b.WriteString(r.timestamp())
		b.WriteByte('\n')
	}

	for _, l := range lines {
		b.WriteString("    ")
		b.WriteString(l)
		b.WriteByte('\n')
	}

	return r.write(b.String())
}

func (r *reporter) initial(v jsonvalue.Value) error {
	return r.write(jsonvalue.Pretty(v) + "\n")
}

// diagnostic writes one line describing a failed cycle.
func (r *reporter) diagnostic(err error) error {
	msg := escapeForTerminal(strings.ReplaceAll(strings.TrimSpace(err.Error()), "\n", " "))

	if r.date {
		return r.write(fmt.Sprintf("[ERROR %s] %s\n", r.timestamp(), msg))
	}

	return r.write(fmt.Sprintf("[ERROR] %s\n", msg))
}

func (r *reporter) timestamp() string {
	return r.now().Format(TimestampFormat)
}

func (r *reporter) write(s string) error {
	if _, err := io.WriteString(r.w, s); err != nil {
		return &SinkError{Err: err}
	}

	return nil
}

// escapeForTerminal escapes control characters other than newline and tab
// so raw input cannot drive the terminal.
func escapeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case unicode.IsControl(r):
			fmt.Fprintf(&b, "\\u{%x}", r)
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
