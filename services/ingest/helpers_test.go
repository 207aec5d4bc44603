package ingest

import (
	"testing"
	"time"

	"github.com/ngshiheng/passportindexdb/models"
	"github.com/ngshiheng/passportindexdb/services/passportindex"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupIngestTestDB(t *testing.T) *gorm.DB {
	// Use unique DSN for isolation
	dsn := "file:ingest_" + uuid.New().String() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Country{}, &models.CountryRanking{}, &models.VisaRequirement{}, &models.IngestionRun{}))
	return db
}

// fakeClock is a settable clock for effective dates
type fakeClock struct {
	now time.Time
}

func newFakeClock(day string) *fakeClock {
	t, err := time.Parse(models.DateLayout, day)
	if err != nil {
		panic(err)
	}
	return &fakeClock{now: t.Add(9 * time.Hour)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) NextDay() {
	c.now = c.now.Add(24 * time.Hour)
}

func newTestEngine(db *gorm.DB, clock *fakeClock, policy RankingPolicy) *Engine {
	return NewEngine(db, Options{Policy: policy, Now: clock.Now, Location: time.UTC})
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func ledger(t *testing.T, db *gorm.DB, from, to string) []models.VisaRequirement {
	var rows []models.VisaRequirement
	require.NoError(t, db.Where("from_country = ? AND to_country = ?", from, to).Order("effective_date").Order("id").Find(&rows).Error)
	return rows
}

func single(category string, codes ...string) passportindex.Requirements {
	dests := make([]passportindex.Destination, 0, len(codes))
	for _, code := range codes {
		dests = append(dests, passportindex.Destination{Code: code})
	}
	return passportindex.Requirements{category: dests}
}
