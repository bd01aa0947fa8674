package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Gitoffthelawn/jsonwatch/internal/config"
	"github.com/Gitoffthelawn/jsonwatch/internal/jsondiff"
	"github.com/Gitoffthelawn/jsonwatch/internal/jsonvalue"
	"github.com/Gitoffthelawn/jsonwatch/internal/watch"
)

type diffOptions struct {
	summary bool
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two JSON files once",
		Long: `Diff prints the changes between two documents in the same format
polling uses, without timestamps.

Exit codes:
  0  No differences
  1  Differences found
  2  Invalid arguments or unreadable input`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a one-line count of changes to stderr")

	return cmd
}

func runDiff(cmd *cobra.Command, oldPath, newPath string, opts *diffOptions) error {
	cfg := config.FromContext(cmd.Context())
	parse := parserFor(cfg.Input)

	prev, err := readDocument(parse, oldPath)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	curr, err := readDocument(parse, newPath)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	formatter, err := jsondiff.NewFormatter(cfg.Format)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	changes := jsondiff.Diff(prev, curr)

	lines, err := formatter.Format(prev, curr, changes)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return &watch.SinkError{Err: err}
		}
	}

	if opts.summary {
		fmt.Fprintln(cmd.ErrOrStderr(), jsondiff.Summary(changes))
	}

	if len(changes) > 0 {
		return &ExitError{Code: 1}
	}

	return nil
}

func readDocument(parse watch.ParseFunc, path string) (jsonvalue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("reading %s: %w", path, err)
	}

	v, err := parse(data)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	return v, nil
}
