package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupModelsTestDB(t *testing.T) *gorm.DB {
	dsn := "file:models_" + uuid.New().String() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Country{}, &CountryRanking{}, &VisaRequirement{}, &IngestionRun{}))
	return db
}

func intPtr(i int) *int { return &i }

func TestCountryRankingSameValues(t *testing.T) {
	r := CountryRanking{Rank: intPtr(4), VisaFreeCount: intPtr(190)}

	assert.True(t, r.SameValues(intPtr(4), intPtr(190)))
	assert.False(t, r.SameValues(intPtr(3), intPtr(190)))
	assert.False(t, r.SameValues(intPtr(4), nil))

	empty := CountryRanking{}
	assert.True(t, empty.SameValues(nil, nil))
	assert.False(t, empty.SameValues(nil, intPtr(1)))
}

func TestEffectiveOn(t *testing.T) {
	sgt, err := time.LoadLocation("Asia/Singapore")
	require.NoError(t, err)

	// 20:30 UTC is already the next day in Singapore
	ts := time.Date(2024, 3, 9, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-09", EffectiveOn(ts, nil))
	assert.Equal(t, "2024-03-10", EffectiveOn(ts, sgt))
}

func TestReservedKeys(t *testing.T) {
	assert.True(t, IsReservedKey("code"))
	assert.True(t, IsReservedKey("country"))
	assert.False(t, IsReservedKey(RequirementVisaRequired))

	for _, rt := range KnownRequirementTypes {
		assert.True(t, IsKnownRequirementType(rt))
		assert.False(t, IsReservedKey(rt))
	}
	assert.False(t, IsKnownRequirementType("visa_maybe"))
}

func TestIngestionRunPersistsSkipList(t *testing.T) {
	db := setupModelsTestDB(t)

	run := IngestionRun{StartedAt: time.Now(), Status: RunStatusRunning}
	require.NoError(t, db.Create(&run).Error)
	assert.NotEmpty(t, run.ID)
	_, err := uuid.Parse(run.ID)
	assert.NoError(t, err)

	run.Skipped = SkipList{{Code: "KP", Name: "North Korea", Reason: "requirements: HTTP 500"}}
	require.NoError(t, db.Save(&run).Error)

	var loaded IngestionRun
	require.NoError(t, db.First(&loaded, "id = ?", run.ID).Error)
	assert.Len(t, loaded.Skipped, 1)
	assert.Equal(t, "KP", loaded.Skipped[0].Code)
	assert.Equal(t, "requirements: HTTP 500", loaded.Skipped[0].Reason)
}

func TestVisaRequirementSameDayRowsDoNotCollide(t *testing.T) {
	db := setupModelsTestDB(t)
	require.NoError(t, db.Create(&[]Country{{Code: "SG", Name: "Singapore"}, {Code: "JP", Name: "Japan"}}).Error)

	first := VisaRequirement{FromCountry: "SG", ToCountry: "JP", EffectiveDate: "2024-01-01", RequirementType: RequirementVisaFreeAccess}
	second := VisaRequirement{FromCountry: "SG", ToCountry: "JP", EffectiveDate: "2024-01-01", RequirementType: RequirementVisaRequired}
	require.NoError(t, db.Omit("From", "To").Create(&first).Error)
	require.NoError(t, db.Omit("From", "To").Create(&second).Error)

	assert.Greater(t, second.ID, first.ID)
}

func TestVisaRequirementForeignKeys(t *testing.T) {
	db := setupModelsTestDB(t)

	orphan := VisaRequirement{FromCountry: "XX", ToCountry: "YY", EffectiveDate: "2024-01-01", RequirementType: RequirementVisaRequired}
	assert.Error(t, db.Omit("From", "To").Create(&orphan).Error)
}
