package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ngshiheng/passportindexdb/models"
	"github.com/ngshiheng/passportindexdb/services"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "history <from> [to]",
		Short: "Print the visa requirement ledger of a pair, or an origin's requirements as of a date",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			from := strings.ToUpper(args[0])

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()

			if len(args) == 2 {
				rows, err := services.PairLedger(ctx, a.db, from, strings.ToUpper(args[1]))
				if err != nil {
					return withCode(exitDB, err)
				}
				fmt.Fprintln(tw, "EFFECTIVE\tREQUIREMENT\tRUN")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.EffectiveDate, r.RequirementType, r.RunID)
				}
				return nil
			}

			if asOf == "" {
				return withCode(exitConfig, fmt.Errorf("either a destination or --as-of is required"))
			}
			if _, err := time.Parse(models.DateLayout, asOf); err != nil {
				return withCode(exitConfig, fmt.Errorf("invalid --as-of: %w", err))
			}
			rows, err := services.RequirementsAsOf(ctx, a.db, from, asOf)
			if err != nil {
				return withCode(exitDB, err)
			}
			fmt.Fprintln(tw, "TO\tREQUIREMENT\tSINCE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ToCountry, r.RequirementType, r.EffectiveDate)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "Date (YYYY-MM-DD) to reconstruct an origin's requirements at")
	return cmd
}
