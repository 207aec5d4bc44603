package services

import (
	"testing"

	"github.com/ngshiheng/passportindexdb/db"
	"github.com/ngshiheng/passportindexdb/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database))
	return database
}

func seedLedger(t *testing.T, database *gorm.DB) {
	t.Helper()
	region := "Asia"
	rank, vfc := 1, 195
	require.NoError(t, database.Create([]models.Country{
		{Code: "SG", Name: "Singapore", Region: &region},
		{Code: "JP", Name: "Japan", Region: &region},
		{Code: "AF", Name: "Afghanistan"},
	}).Error)
	require.NoError(t, database.Create([]models.CountryRanking{
		{CountryCode: "SG", Year: 2024, Rank: &rank, VisaFreeCount: &vfc},
		{CountryCode: "SG", Year: 2023, Rank: &rank},
	}).Error)
	require.NoError(t, database.Create([]models.VisaRequirement{
		{FromCountry: "SG", ToCountry: "JP", EffectiveDate: "2024-06-01", RequirementType: models.RequirementVisaFreeAccess, RunID: "r1"},
		{FromCountry: "SG", ToCountry: "AF", EffectiveDate: "2024-06-01", RequirementType: models.RequirementVisaRequired, RunID: "r1"},
		{FromCountry: "SG", ToCountry: "JP", EffectiveDate: "2024-06-10", RequirementType: models.RequirementVisaOnArrival, RunID: "r2"},
		{FromCountry: "SG", ToCountry: "JP", EffectiveDate: "2024-06-10", RequirementType: models.RequirementVisaRequired, RunID: "r3"},
		{FromCountry: "JP", ToCountry: "SG", EffectiveDate: "2024-06-01", RequirementType: models.RequirementVisaFreeAccess, RunID: "r1"},
	}).Error)
}
