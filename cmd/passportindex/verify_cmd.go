package main

import (
	"fmt"

	"github.com/ngshiheng/passportindexdb/services/ingest"

	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the stored history for ledger and ranking inconsistencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			ledger, err := ingest.VerifyLedger(ctx, a.db)
			if err != nil {
				return withCode(exitDB, err)
			}
			rankings, err := ingest.VerifyRankings(ctx, a.db)
			if err != nil {
				return withCode(exitDB, err)
			}

			violations := append(ledger, rankings...)
			out := cmd.OutOrStdout()
			for _, v := range violations {
				fmt.Fprintln(out, v.String())
			}
			if len(violations) > 0 {
				return withCode(exitViolation, fmt.Errorf("%d violations found", len(violations)))
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}
