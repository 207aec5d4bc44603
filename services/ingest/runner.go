package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ngshiheng/passportindexdb/logger"
	"github.com/ngshiheng/passportindexdb/models"
	"github.com/ngshiheng/passportindexdb/services/passportindex"

	"gorm.io/gorm"
)

// Summary reports what one run wrote and which countries it had to skip
type Summary struct {
	RunID              string
	StartedAt          time.Time
	FinishedAt         time.Time
	CountriesSeen      int
	CountriesProcessed int
	NewRankings        int
	NewRequirements    int
	Skipped            []models.SkippedCountry
}

func (s *Summary) skip(c passportindex.CountryPayload, stage string, err error) {
	s.Skipped = append(s.Skipped, models.SkippedCountry{
		Code:   c.Code,
		Name:   c.Name,
		Reason: fmt.Sprintf("%s: %v", stage, err),
	})
}

// Runner drives a full ingestion: the country list, then every country one
// at a time, rankings first and requirements second.
type Runner struct {
	db       *gorm.DB
	provider passportindex.Provider
	engine   *Engine
	delay    time.Duration
	log      *logger.Logger
}

// NewRunner creates a runner. delay is waited between two countries.
func NewRunner(database *gorm.DB, provider passportindex.Provider, engine *Engine, delay time.Duration, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		db:       database,
		provider: provider,
		engine:   engine,
		delay:    delay,
		log:      log,
	}
}

// Run performs one ingestion. A failure to list countries (or to record the
// run itself) is returned as an error; per-country failures are collected in
// Summary.Skipped and the run carries on with the next country.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	run := models.IngestionRun{
		StartedAt: r.engine.now(),
		Status:    models.RunStatusRunning,
	}
	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, &StorageError{Op: "create run", Err: err}
	}

	summary := &Summary{RunID: run.ID, StartedAt: run.StartedAt}
	engine := r.engine.forRun(run.ID)
	log := r.log.With("run_id", run.ID)

	countries, err := r.provider.ListCountries(ctx)
	if err != nil {
		err = fmt.Errorf("list countries: %w", err)
		r.finish(&run, summary, err)
		return summary, err
	}
	summary.CountriesSeen = len(countries)
	log.Info("fetched countries", "count", len(countries), "policy", engine.policy)

	for i, c := range countries {
		if i > 0 && r.delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.delay):
			}
		}
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("run interrupted after %d of %d countries: %w", i, len(countries), err)
			r.finish(&run, summary, err)
			return summary, err
		}

		rankings, err := engine.IngestCountry(ctx, c)
		if err != nil {
			log.Error("rankings failed", "country", c.Code, "error", err)
			summary.skip(c, "rankings", err)
			continue
		}
		summary.NewRankings += rankings

		reqs, err := r.provider.FetchRequirements(ctx, c.Code)
		if err != nil {
			log.Warn("failed to fetch visa requirements", "country", c.Code, "error", err)
			summary.skip(c, "requirements", err)
			continue
		}

		appended, err := engine.IngestRequirements(ctx, c.Code, reqs)
		if err != nil {
			log.Error("requirements failed", "country", c.Code, "error", err)
			summary.skip(c, "requirements", err)
			continue
		}
		summary.NewRequirements += appended
		summary.CountriesProcessed++

		log.Info("ingested country",
			"country", c.Code,
			"new_rankings", rankings,
			"destinations", reqs.DestinationCount(),
			"new_requirements", appended,
		)
	}

	r.finish(&run, summary, nil)
	return summary, nil
}

// finish stores the outcome on the run row. A failure here is logged only:
// the ingested data is already committed.
func (r *Runner) finish(run *models.IngestionRun, summary *Summary, runErr error) {
	summary.FinishedAt = r.engine.now()

	run.FinishedAt = &summary.FinishedAt
	run.CountriesProcessed = summary.CountriesProcessed
	run.NewRankings = summary.NewRankings
	run.NewRequirements = summary.NewRequirements
	run.Skipped = models.SkipList(summary.Skipped)
	run.Status = models.RunStatusCompleted
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
	}

	if err := r.db.Save(run).Error; err != nil {
		r.log.Error("failed to record run outcome", "run_id", run.ID, "error", err)
	}
}
