package ingest

import (
	"context"
	"fmt"

	"github.com/ngshiheng/passportindexdb/models"

	"gorm.io/gorm"
)

// Violation kinds reported by the verifiers
const (
	ViolationConsecutiveDuplicate = "consecutive_duplicate"
	ViolationOutOfOrder           = "out_of_order"
	ViolationOrphanRanking        = "orphan_ranking"
)

// Violation is a stored row breaking a ledger or ranking invariant
type Violation struct {
	Kind   string
	From   string
	To     string
	RowID  uint
	Date   string
	Detail string
}

func (v Violation) String() string {
	if v.To == "" {
		return fmt.Sprintf("%s %s: %s", v.Kind, v.From, v.Detail)
	}
	return fmt.Sprintf("%s %s->%s row %d (%s): %s", v.Kind, v.From, v.To, v.RowID, v.Date, v.Detail)
}

// VerifyLedger walks every pair ledger in (effective_date, id) order. Two
// consecutive rows with the same requirement type, or a row inserted before
// an earlier-dated one, mean the ingestion logic is broken.
func VerifyLedger(ctx context.Context, database *gorm.DB) ([]Violation, error) {
	rows, err := database.WithContext(ctx).
		Model(&models.VisaRequirement{}).
		Order("from_country").
		Order("to_country").
		Order("effective_date").
		Order("id").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	defer rows.Close()

	var (
		violations []Violation
		prev       models.VisaRequirement
		havePrev   bool
	)
	for rows.Next() {
		var cur models.VisaRequirement
		if err := database.ScanRows(rows, &cur); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}

		samePair := havePrev && prev.FromCountry == cur.FromCountry && prev.ToCountry == cur.ToCountry
		if samePair {
			if prev.RequirementType == cur.RequirementType {
				violations = append(violations, Violation{
					Kind:   ViolationConsecutiveDuplicate,
					From:   cur.FromCountry,
					To:     cur.ToCountry,
					RowID:  cur.ID,
					Date:   cur.EffectiveDate,
					Detail: fmt.Sprintf("repeats %q of row %d", cur.RequirementType, prev.ID),
				})
			}
			if cur.ID < prev.ID {
				violations = append(violations, Violation{
					Kind:   ViolationOutOfOrder,
					From:   cur.FromCountry,
					To:     cur.ToCountry,
					RowID:  cur.ID,
					Date:   cur.EffectiveDate,
					Detail: fmt.Sprintf("inserted before row %d dated %s", prev.ID, prev.EffectiveDate),
				})
			}
		}
		prev, havePrev = cur, true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	return violations, nil
}

// VerifyRankings reports ranking rows whose country is missing. Foreign keys
// prevent this on local SQLite; remote backends may not enforce them.
func VerifyRankings(ctx context.Context, database *gorm.DB) ([]Violation, error) {
	var orphans []models.CountryRanking
	err := database.WithContext(ctx).
		Select("country_rankings.*").
		Joins("LEFT JOIN countries ON countries.code = country_rankings.country_code").
		Where("countries.code IS NULL").
		Order("country_rankings.country_code").
		Order("country_rankings.year").
		Find(&orphans).Error
	if err != nil {
		return nil, fmt.Errorf("scan rankings: %w", err)
	}

	violations := make([]Violation, 0, len(orphans))
	for _, o := range orphans {
		violations = append(violations, Violation{
			Kind:   ViolationOrphanRanking,
			From:   o.CountryCode,
			Detail: fmt.Sprintf("ranking for %d references an unknown country", o.Year),
		})
	}
	return violations, nil
}
