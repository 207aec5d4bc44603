package main

import (
	"fmt"
	"time"

	"github.com/ngshiheng/passportindexdb/config"
	"github.com/ngshiheng/passportindexdb/db"
	"github.com/ngshiheng/passportindexdb/logger"
	"github.com/ngshiheng/passportindexdb/services/ingest"
	"github.com/ngshiheng/passportindexdb/services/passportindex"

	"gorm.io/gorm"
)

// app bundles what every command needs: config, logger and a migrated store
type app struct {
	cfg *config.Config
	log *logger.Logger
	db  *gorm.DB
	loc *time.Location
}

func openApp() (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, withCode(exitConfig, err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, withCode(exitConfig, err)
	}

	log, err := logger.New(cfg.Environment, cfg.Verbose)
	if err != nil {
		return nil, withCode(exitConfig, fmt.Errorf("failed to create logger: %w", err))
	}

	database, err := db.Initialize(cfg)
	if err != nil {
		return nil, withCode(exitDB, err)
	}
	if err := db.AutoMigrate(database); err != nil {
		db.Close(database)
		return nil, withCode(exitDB, err)
	}

	return &app{cfg: cfg, log: log, db: database, loc: loc}, nil
}

func (a *app) Close() {
	if err := db.Close(a.db); err != nil {
		a.log.Warn("failed to close database", "error", err)
	}
	a.log.Sync()
}

// newRunner wires the Henley client and the ingestion engine from config
func (a *app) newRunner() (*ingest.Runner, error) {
	policy, err := ingest.ParseRankingPolicy(a.cfg.RankingPolicy)
	if err != nil {
		return nil, withCode(exitConfig, err)
	}

	provider := passportindex.NewHenleyService(passportindex.Options{
		BaseURL: a.cfg.APIBaseURL,
		Timeout: a.cfg.HTTPTimeout,
		Retries: a.cfg.FetchRetries,
	})
	engine := ingest.NewEngine(a.db, ingest.Options{
		Policy:   policy,
		Location: a.loc,
		Logger:   a.log,
	})
	return ingest.NewRunner(a.db, provider, engine, a.cfg.RequestDelay, a.log), nil
}
