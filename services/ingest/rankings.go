package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/ngshiheng/passportindexdb/models"
	"github.com/ngshiheng/passportindexdb/services/passportindex"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngestCountry saves the country row and its yearly rankings in one
// transaction and returns the number of ranking rows written. The country row
// is always replaced; ranking rows follow the engine's RankingPolicy.
func (e *Engine) IngestCountry(ctx context.Context, c passportindex.CountryPayload) (int, error) {
	code := strings.TrimSpace(c.Code)
	if code == "" {
		return 0, fmt.Errorf("%w: country without code", passportindex.ErrMalformedPayload)
	}

	written := 0
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		country := models.Country{Code: code, Name: c.Name, Region: c.Region}
		if country.Name == "" {
			country.Name = code
		}
		if err := upsertCountry(tx, &country); err != nil {
			return &StorageError{Op: "upsert country", Country: code, Err: err}
		}

		// No ranking data for this country
		if len(c.Data) == 0 {
			return nil
		}

		for _, year := range c.Data.Years() {
			obs := c.Data[year]

			var existing []models.CountryRanking
			if err := tx.Where("country_code = ? AND year = ?", code, year).Limit(1).Find(&existing).Error; err != nil {
				return &StorageError{Op: "lookup ranking", Country: code, Err: err}
			}

			if len(existing) == 0 {
				row := models.CountryRanking{
					CountryCode:   code,
					Year:          year,
					Rank:          obs.Rank,
					VisaFreeCount: obs.VisaFreeCount,
				}
				if err := tx.Create(&row).Error; err != nil {
					return &StorageError{Op: "insert ranking", Country: code, Err: err}
				}
				written++
				e.log.Debug("inserted ranking", "country", code, "year", year)
				continue
			}

			if e.policy != Overwrite || existing[0].SameValues(obs.Rank, obs.VisaFreeCount) {
				continue
			}

			err := tx.Model(&existing[0]).
				Select("rank", "visa_free_count").
				Updates(models.CountryRanking{Rank: obs.Rank, VisaFreeCount: obs.VisaFreeCount}).Error
			if err != nil {
				return &StorageError{Op: "update ranking", Country: code, Err: err}
			}
			written++
			e.log.Debug("refreshed ranking", "country", code, "year", year)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func upsertCountry(tx *gorm.DB, country *models.Country) error {
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "region", "updated_at"}),
	}).Create(country).Error
}

// ensureCountry inserts a placeholder for a code the country list never
// mentioned, leaving an existing row untouched
func ensureCountry(tx *gorm.DB, code, name string) error {
	if name == "" {
		name = code
	}
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&models.Country{Code: code, Name: name}).Error
}
