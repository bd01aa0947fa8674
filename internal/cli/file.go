package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Gitoffthelawn/jsonwatch/internal/logging"
	"github.com/Gitoffthelawn/jsonwatch/internal/source"
	"github.com/Gitoffthelawn/jsonwatch/internal/watch"
)

type fileOptions struct {
	watchEvents bool
	debounce    time.Duration
}

func newFileCommand() *cobra.Command {
	opts := &fileOptions{}

	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Poll a JSON file",
		Long: `File reads a document from disk on every poll.

With --watch-events the file is also watched for writes, creates and
renames, and a poll runs as soon as changes settle instead of waiting
for the next interval. Regular polls continue either way.`,
		Example: `  jsonwatch file status.json
  jsonwatch -n 60 file --watch-events state.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := &source.File{Path: args[0]}

			if err := src.Validate(); err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			if !opts.watchEvents {
				return runPoll(cmd, src, nil)
			}

			trigger, err := watch.NewFileTrigger(src.Path, opts.debounce, logging.FromContext(cmd.Context()))
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			defer trigger.Close()

			return runPoll(cmd, src, trigger.C())
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.watchEvents, "watch-events", false, "poll as soon as the file changes")
	f.DurationVar(&opts.debounce, "debounce", 100*time.Millisecond, "quiet period before an event-triggered poll")

	return cmd
}
