package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/ngshiheng/passportindexdb/logger"
	"github.com/ngshiheng/passportindexdb/services/ingest"

	"github.com/robfig/cron/v3"
)

// Ingester runs one ingestion
type Ingester interface {
	Run(ctx context.Context) (*ingest.Summary, error)
}

// StartScheduler registers the ingestion on a cron schedule in loc and starts
// it. A run still in progress when the next tick fires makes that tick a
// no-op, so runs never overlap. Stop the returned cron to end scheduling.
func StartScheduler(ctx context.Context, ingester Ingester, spec string, loc *time.Location, log *logger.Logger) (*cron.Cron, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	_, err := c.AddFunc(spec, func() {
		log.Info("scheduled ingestion starting", "schedule", spec)
		if _, err := RunOnce(ctx, ingester, log); err != nil {
			log.Error("scheduled ingestion failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info("scheduler started", "schedule", spec, "timezone", loc.String())
	return c, nil
}

// RunOnce performs a single ingestion and logs its summary
func RunOnce(ctx context.Context, ingester Ingester, log *logger.Logger) (*ingest.Summary, error) {
	summary, err := ingester.Run(ctx)
	if summary != nil {
		LogSummary(log, summary)
	}
	return summary, err
}

// LogSummary writes the run totals and one line per skipped country
func LogSummary(log *logger.Logger, summary *ingest.Summary) {
	log.Info("ingestion summary",
		"run_id", summary.RunID,
		"duration", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond).String(),
		"countries", summary.CountriesSeen,
		"processed", summary.CountriesProcessed,
		"new_rankings", summary.NewRankings,
		"new_requirements", summary.NewRequirements,
		"skipped", len(summary.Skipped),
	)
	for _, s := range summary.Skipped {
		log.Warn("skipped country", "country", s.Code, "name", s.Name, "reason", s.Reason)
	}
}
