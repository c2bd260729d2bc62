package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teenjuna/again/lookup"
)

func newRootCmd(app *app) *cobra.Command {
	opts := new(options)

	cmd := &cobra.Command{
		Use:           "scouter",
		Short:         "measure fighters' power levels",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configure(cmd.Flags(), flagNames(cmd.Root()), os.Environ()); err != nil {
				return err
			}
			return app.setup(opts)
		},
	}
	cmd.SetOut(app.out)
	cmd.SetErr(app.errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.config, "config", "", "YAML file with flag values")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.StringVar(&opts.journal, "journal", "", "archive finished sequences in this SQLite file")
	flags.IntVar(&opts.journalLimit, "journal-limit", 1000, "maximum number of archived sequences, 0 keeps all")
	flags.StringVar(&opts.baseURL, "base-url", lookup.DefaultBaseURL, "base URL of the character API")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout of a single remote lookup")

	cmd.AddCommand(
		newRetryCmd(app),
		newFanOutCmd(app),
		newHistoryCmd(app),
	)

	return cmd
}
