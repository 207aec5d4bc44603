package main

import (
	"os/signal"
	"syscall"

	"github.com/ngshiheng/passportindexdb/services/jobs"

	"github.com/spf13/cobra"
)

func newScheduleCmd() *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the ingestion on the configured cron schedule until interrupted",
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

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if runNow {
				if _, err := jobs.RunOnce(ctx, runner, a.log); err != nil {
					a.log.Error("initial ingestion failed", "error", err)
				}
			}

			c, err := jobs.StartScheduler(ctx, runner, a.cfg.Schedule, a.loc, a.log)
			if err != nil {
				return withCode(exitConfig, err)
			}

			<-ctx.Done()
			a.log.Info("shutting down scheduler")
			// wait for a run in progress to observe cancellation and finish
			<-c.Stop().Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&runNow, "now", false, "Run once immediately before waiting for the schedule")
	return cmd
}
