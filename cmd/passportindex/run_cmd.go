package main

import (
	"fmt"
	"io"

	"github.com/ngshiheng/passportindexdb/services/ingest"
	"github.com/ngshiheng/passportindexdb/services/jobs"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch the index once and record what changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			runner, err := a.newRunner()
			if err != nil {
				return err
			}

			summary, err := jobs.RunOnce(cmd.Context(), runner, a.log)
			if summary != nil {
				printSummary(cmd.OutOrStdout(), summary)
			}
			if err != nil {
				return err
			}
			if strict && len(summary.Skipped) > 0 {
				return withCode(exitPartial, fmt.Errorf("%d countries skipped", len(summary.Skipped)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any country was skipped")
	return cmd
}

func printSummary(w io.Writer, s *ingest.Summary) {
	fmt.Fprintf(w, "run %s\n", s.RunID)
	fmt.Fprintf(w, "  countries:        %d (%d processed)\n", s.CountriesSeen, s.CountriesProcessed)
	fmt.Fprintf(w, "  new rankings:     %d\n", s.NewRankings)
	fmt.Fprintf(w, "  new requirements: %d\n", s.NewRequirements)
	if len(s.Skipped) == 0 {
		return
	}
	fmt.Fprintf(w, "  skipped:          %d\n", len(s.Skipped))
	for _, sk := range s.Skipped {
		fmt.Fprintf(w, "    %-3s %s: %s\n", sk.Code, sk.Name, sk.Reason)
	}
}
