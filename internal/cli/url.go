package cli

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gitoffthelawn/jsonwatch/internal/source"
)

type urlOptions struct {
	userAgent  string
	headers    []string
	timeout    time.Duration
	compressed bool
}

func newURLCommand() *cobra.Command {
	opts := &urlOptions{}

	cmd := &cobra.Command{
		Use:   "url <url>",
		Short: "Poll a JSON document over HTTP",
		Long: `URL fetches a document with an HTTP GET request on every poll.

Responses with a status outside 2xx, bodies over 128 MiB and network
failures are reported as [ERROR] lines; polling continues.`,
		Example: `  jsonwatch url https://api.example.com/status
  jsonwatch url -H "Authorization: Bearer $TOKEN" https://api.example.com/me`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := &source.URL{
				URL:        args[0],
				UserAgent:  opts.userAgent,
				Headers:    opts.headers,
				Compressed: opts.compressed,
				Client:     &http.Client{Timeout: opts.timeout},
			}

			if err := src.Validate(); err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			return runPoll(cmd, src, nil)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.userAgent, "user-agent", "A", source.DefaultUserAgent, "User-Agent header")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, `extra request header ("Name: value"), repeatable`)
	f.BoolVar(&opts.compressed, "compressed", false, "request a zstd or gzip encoded response")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout (0: no limit)")

	return cmd
}
