package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ngshiheng/passportindexdb/services"

	"github.com/spf13/cobra"
)

func newRankingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rankings <code>",
		Short: "Print the yearly rankings stored for a country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := services.RankingHistory(cmd.Context(), a.db, strings.ToUpper(args[0]))
			if err != nil {
				return withCode(exitDB, err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()
			fmt.Fprintln(tw, "YEAR\tRANK\tVISA FREE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Year, optional(r.Rank), optional(r.VisaFreeCount))
			}
			return nil
		},
	}
}

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List the latest ingestion runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := services.RecentRuns(cmd.Context(), a.db, limit)
			if err != nil {
				return withCode(exitDB, err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()
			fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tPROCESSED\tRANKINGS\tREQUIREMENTS\tSKIPPED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					r.ID, r.StartedAt.In(a.loc).Format("2006-01-02 15:04"), r.Status,
					r.CountriesProcessed, r.NewRankings, r.NewRequirements, len(r.Skipped))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", services.DefaultRunsLimit, "Number of runs to show")
	return cmd
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
