package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Gitoffthelawn/jsonwatch/internal/config"
	"github.com/Gitoffthelawn/jsonwatch/internal/jsondiff"
	"github.com/Gitoffthelawn/jsonwatch/internal/jsonvalue"
	"github.com/Gitoffthelawn/jsonwatch/internal/logging"
	"github.com/Gitoffthelawn/jsonwatch/internal/source"
	"github.com/Gitoffthelawn/jsonwatch/internal/watch"
)

// parserFor returns the document parser for the configured input format.
func parserFor(input string) watch.ParseFunc {
	if input == config.InputYAML {
		return jsonvalue.ParseYAML
	}

	return jsonvalue.Parse
}

// pollOptions builds the poll loop options from the loaded configuration.
func pollOptions(cmd *cobra.Command) (watch.Options, error) {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	formatter, err := jsondiff.NewFormatter(cfg.Format)
	if err != nil {
		return watch.Options{}, &ExitError{Code: 2, Err: err}
	}

	opts := watch.DefaultOptions()
	opts.Interval = cfg.IntervalDuration()
	opts.Formatter = formatter
	opts.Parse = parserFor(cfg.Input)
	opts.Out = cmd.OutOrStdout()
	opts.Logger = logging.FromContext(ctx)
	opts.MaxChanges = cfg.Changes
	opts.PrintDate = !cfg.NoDate
	opts.PrintInitial = !cfg.NoInitialValues

	return opts, nil
}

// runPoll runs the poll loop for src until it is interrupted or the change
// limit is reached. Only a fatal outcome is an error.
func runPoll(cmd *cobra.Command, src source.Source, trigger <-chan struct{}) error {
	opts, err := pollOptions(cmd)
	if err != nil {
		return err
	}

	opts.Trigger = trigger

	outcome, err := watch.Run(cmd.Context(), src, opts)
	if outcome == watch.OutcomeFatal {
		if err == nil {
			err = errors.New("poll loop failed")
		}

		return &ExitError{Code: 1, Err: err}
	}

	opts.Logger.Debug("poll loop finished", slog.String("outcome", outcome.String()))

	return nil
}
