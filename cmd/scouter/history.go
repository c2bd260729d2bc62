package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "print archived sequences, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.journal == nil {
				return errors.New("history needs --journal")
			}

			sequences, err := app.journal.Recent(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range sequences {
				_, _ = fmt.Fprintf(out, "%s scan=%s name=%s status=%s attempts=%d\n",
					s.PushedAt.Format(time.RFC3339), s.ScanID, s.Name, s.Status, s.Attempts)
				for _, line := range s.Lines() {
					_, _ = fmt.Fprintf(out, "  %s\n", line)
				}
			}

			stats, err := app.journal.Stats()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "%d sequences, %d events archived\n", stats.Sequences, stats.Events)

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of sequences to print, 0 prints all")

	return cmd
}
