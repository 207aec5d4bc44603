package services

import (
	"context"
	"fmt"

	"github.com/ngshiheng/passportindexdb/models"

	"gorm.io/gorm"
)

// PairLedger returns the full history of from -> to, oldest first
func PairLedger(ctx context.Context, database *gorm.DB, from, to string) ([]models.VisaRequirement, error) {
	var rows []models.VisaRequirement
	err := database.WithContext(ctx).
		Where("from_country = ? AND to_country = ?", from, to).
		Order("effective_date").
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger %s->%s: %w", from, to, err)
	}
	return rows, nil
}

// RequirementsAsOf reconstructs what from's requirements looked like on date
// (YYYY-MM-DD): the latest row of every destination dated on or before it.
func RequirementsAsOf(ctx context.Context, database *gorm.DB, from, date string) ([]models.VisaRequirement, error) {
	var rows []models.VisaRequirement
	err := database.WithContext(ctx).
		Where("from_country = ? AND effective_date <= ?", from, date).
		Order("to_country").
		Order("effective_date").
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load requirements of %s: %w", from, err)
	}

	// rows are ordered so the last one seen per destination is its head
	heads := make([]models.VisaRequirement, 0)
	for i, row := range rows {
		if i+1 < len(rows) && rows[i+1].ToCountry == row.ToCountry {
			continue
		}
		heads = append(heads, row)
	}
	return heads, nil
}

// RankingHistory returns every stored ranking of a country, oldest year first
func RankingHistory(ctx context.Context, database *gorm.DB, code string) ([]models.CountryRanking, error) {
	var rows []models.CountryRanking
	if err := database.WithContext(ctx).Where("country_code = ?", code).Order("year").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load rankings of %s: %w", code, err)
	}
	return rows, nil
}

// DefaultRunsLimit is used by RecentRuns for a non-positive limit
const DefaultRunsLimit = 10

// RecentRuns returns the latest ingestion runs, newest first
func RecentRuns(ctx context.Context, database *gorm.DB, limit int) ([]models.IngestionRun, error) {
	if limit <= 0 {
		limit = DefaultRunsLimit
	}
	var runs []models.IngestionRun
	if err := database.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	return runs, nil
}
