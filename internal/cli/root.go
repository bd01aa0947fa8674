// Package cli implements the cobra command tree for jsonwatch.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Gitoffthelawn/jsonwatch/internal/config"
	"github.com/Gitoffthelawn/jsonwatch/internal/logging"
)

// ExitError wraps an error with a specific process exit code. A nil Err
// exits silently.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, "Error:", exitErr.Err)
		}

		return exitErr.Code
	}

	fmt.Fprintln(os.Stderr, "Error:", err)

	return 1
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "jsonwatch",
		Short: "Track changes in JSON data from a command, URL or file",
		Long: `jsonwatch repeatedly fetches a JSON document and prints what changed
between successive versions of it.

The first document is printed as is. After that, each poll compares the
new document with the previous one, key by key and index by index, and
prints one line per added, removed or changed value:

  2026-10-19T12:00:02+0000 ~ .status: "starting" -> "running"

A failed poll prints an [ERROR] line and the next poll compares against
the last good document.`,
		Example: `  jsonwatch cmd -- curl -s https://api.example.com/status
  jsonwatch -n 10 url https://api.example.com/status
  jsonwatch file --watch-events state.json
  jsonwatch diff before.json after.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.SetupWithWriter(cfg, cmd.ErrOrStderr())

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("configFile", cfg.ConfigFile),
				slog.String("logLevel", cfg.EffectiveLogLevel()),
				slog.Float64("interval", cfg.Interval),
				slog.String("format", cfg.Format),
				slog.String("input", cfg.Input),
			)

			return nil
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .jsonwatch.yaml)")
	pf.String("log-level", config.LogLevelWarn, "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text, json")
	pf.BoolP("quiet", "q", false, "only log errors")
	pf.CountP("verbose", "v", "more logging: -v for info, -vv for debug and raw input")

	// Poll flags shared by cmd, url and file.
	pf.Float64P("interval", "n", config.DefaultInterval, "seconds between polls")
	pf.BoolP("no-date", "D", false, "don't print timestamps")
	pf.BoolP("no-initial-values", "I", false, "don't print the first document")
	pf.IntP("changes", "c", 0, "exit after this many changes (0: never)")
	pf.String("format", config.OutputText, "change format: text, json, yaml, unified")
	pf.String("input", config.InputJSON, "input format: json, yaml")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	cmd.AddCommand(
		newCmdCommand(),
		newURLCommand(),
		newFileCommand(),
		newDiffCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}
