// Package ingest turns fetched passport index snapshots into history: yearly
// rankings keyed by (country, year) and an append-only visa requirement ledger
// per (origin, destination) pair.
package ingest

import (
	"fmt"
	"time"

	"github.com/ngshiheng/passportindexdb/config"
	"github.com/ngshiheng/passportindexdb/logger"

	"gorm.io/gorm"
)

// RankingPolicy decides what happens when a stored (country, year) ranking is observed again
type RankingPolicy string

const (
	// AppendOnce never touches a stored year
	AppendOnce RankingPolicy = config.RankingPolicyAppendOnce
	// Overwrite refreshes a stored year with the latest observation
	Overwrite RankingPolicy = config.RankingPolicyOverwrite
)

// ParseRankingPolicy validates a policy name; empty means AppendOnce
func ParseRankingPolicy(s string) (RankingPolicy, error) {
	switch RankingPolicy(s) {
	case "", AppendOnce:
		return AppendOnce, nil
	case Overwrite:
		return Overwrite, nil
	default:
		return "", fmt.Errorf("unknown ranking policy %q", s)
	}
}

// StorageError wraps a persistence failure. The unit of work it belongs to
// (one country's rankings or one origin's requirements) has been rolled back.
type StorageError struct {
	Op      string
	Country string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Country, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Options configure an Engine
type Options struct {
	Policy RankingPolicy
	// Now is the clock used for effective dates
	Now func() time.Time
	// Location decides which calendar day Now falls on
	Location *time.Location
	Logger   *logger.Logger
}

// Engine holds the Snapshot Upserter and the Temporal Fact Tracker
type Engine struct {
	db     *gorm.DB
	policy RankingPolicy
	now    func() time.Time
	loc    *time.Location
	log    *logger.Logger
	runID  string
}

// NewEngine creates an engine writing to database
func NewEngine(database *gorm.DB, opts Options) *Engine {
	if opts.Policy == "" {
		opts.Policy = AppendOnce
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Engine{
		db:     database,
		policy: opts.Policy,
		now:    opts.Now,
		loc:    opts.Location,
		log:    opts.Logger,
	}
}

// Policy returns the ranking policy in effect
func (e *Engine) Policy() RankingPolicy {
	return e.policy
}

// forRun returns a copy that tags appended ledger rows with runID
func (e *Engine) forRun(runID string) *Engine {
	copied := *e
	copied.runID = runID
	copied.log = e.log.With("run_id", runID)
	return &copied
}
