package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Gitoffthelawn/jsonwatch/internal/source"
)

type cmdOptions struct {
	shell   bool
	timeout time.Duration
}

func newCmdCommand() *cobra.Command {
	opts := &cmdOptions{}

	cmd := &cobra.Command{
		Use:     "cmd <command> [args...]",
		Aliases: []string{"command"},
		Short:   "Poll the output of a command",
		Long: `Cmd runs a command on every poll and diffs its standard output.

Everything after the command name is passed to it unchanged, flags
included. With --shell the first argument is a shell script run by
sh -c (cmd /C on Windows) and further arguments become its positional
parameters.

A command that exits with a non-zero status or prints invalid JSON is
reported as an [ERROR] line; polling continues. Without --timeout a
command that never exits stalls polling until jsonwatch is interrupted.`,
		Example: `  jsonwatch cmd -- curl -s https://example.com/api
  jsonwatch -n 5 cmd --shell 'kubectl get pods -o json | jq ".items | length"'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := &source.Command{
				Name:    args[0],
				Args:    args[1:],
				Shell:   opts.shell,
				Timeout: opts.timeout,
			}

			if err := src.Validate(); err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			return runPoll(cmd, src, nil)
		},
	}

	// Arguments after the command name belong to the command.
	cmd.Flags().SetInterspersed(false)

	f := cmd.Flags()
	f.BoolVar(&opts.shell, "shell", false, "run the command through the system shell")
	f.DurationVar(&opts.timeout, "timeout", 0, "kill the command after this long (0: no limit)")

	return cmd
}
