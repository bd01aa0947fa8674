package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// maxStderr bounds the stderr excerpt kept in a CommandError.
const maxStderr = 512

// CommandError reports a command that could not be started or that exited
// with a non-zero status.
type CommandError struct {
	Command  string
	ExitCode int // -1 when the process did not run to completion
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "command %q", e.Command)

	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " exited with status %d", e.ExitCode)
	} else {
		fmt.Fprintf(&b, " failed: %v", e.Err)
	}

	if e.Stderr != "" {
		fmt.Fprintf(&b, ": %s", e.Stderr)
	}

	return b.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// Command runs an external program and captures its standard output.
type Command struct {
	// Name is the program to execute, or the script when Shell is set.
	Name string

	// Args are passed to the program unchanged.
	Args []string

	// Shell runs Name through the system shell (sh -c, or cmd /C on Windows).
	Shell bool

	// Timeout bounds a single execution. Zero means no limit: a command that
	// never exits stalls the poll loop until it is cancelled.
	Timeout time.Duration

	// Dir is the working directory; empty means the current one.
	Dir string

	// Env, when non-nil, replaces the environment of the process.
	Env []string
}

// String describes the command for diagnostics.
func (c *Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}

	return c.Name + " " + strings.Join(c.Args, " ")
}

// Validate checks that the command can be attempted.
func (c *Command) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("command must not be empty")
	}

	return nil
}

// Fetch runs the command once and returns its standard output.
func (c *Command) Fetch(ctx context.Context) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, fetchError(c, err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := c.build(ctx)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Command:  c.String(),
			ExitCode: -1,
			Stderr:   excerpt(stderr.String()),
			Err:      err,
		}

		// A killed process also reports an ExitError; prefer the context
		// error so cancellation and timeouts are recognisable.
		var exitErr *exec.ExitError

		switch {
		case ctx.Err() != nil:
			cmdErr.Err = ctx.Err()
		case errors.As(err, &exitErr):
			cmdErr.ExitCode = exitErr.ExitCode()
		}

		return nil, fetchError(c, cmdErr)
	}

	return stdout.Bytes(), nil
}

func (c *Command) build(ctx context.Context) *exec.Cmd {
	var cmd *exec.Cmd

	switch {
	case c.Shell && runtime.GOOS == "windows":
		cmd = exec.CommandContext(ctx, "cmd", append([]string{"/C", c.Name}, c.Args...)...) //nolint:gosec
	case c.Shell:
		cmd = exec.CommandContext(ctx, "sh", append([]string{"-c", c.Name, "sh"}, c.Args...)...) //nolint:gosec
	default:
		cmd = exec.CommandContext(ctx, c.Name, c.Args...) //nolint:gosec
	}

	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.WaitDelay = time.Second

	return cmd
}

// excerpt trims s to a single bounded line for diagnostics.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[i+1:])
	}

	if len(s) > maxStderr {
		s = s[:maxStderr] + "..."
	}

	return s
}
