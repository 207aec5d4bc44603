package ingest

import (
	"context"
	"strings"

	"github.com/ngshiheng/passportindexdb/models"
	"github.com/ngshiheng/passportindexdb/services/passportindex"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngestRequirements reconciles one origin's requirement snapshot against the
// latest ledger row of every destination and appends a row only where the
// requirement type changed (or the pair has no row yet). All rows appended by
// one call share the same effective date. Returns the number of rows appended.
func (e *Engine) IngestRequirements(ctx context.Context, origin string, reqs passportindex.Requirements) (int, error) {
	origin = strings.TrimSpace(origin)
	effective := models.EffectiveOn(e.now(), e.loc)
	observed := e.collapse(origin, reqs)

	appended := 0
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		originChecked := false

		for _, obs := range observed {
			head, err := LatestRequirement(tx, origin, obs.to)
			if err != nil {
				return &StorageError{Op: "lookup requirement", Country: origin, Err: err}
			}
			if head != nil && head.RequirementType == obs.category {
				continue
			}

			date := effective
			if head != nil && head.EffectiveDate > date {
				// clock went backwards; keep the ledger ordered
				e.log.Warn("effective date before ledger head", "origin", origin, "destination", obs.to, "date", date, "head", head.EffectiveDate)
				date = head.EffectiveDate
			}

			if !originChecked {
				if err := ensureCountry(tx, origin, ""); err != nil {
					return &StorageError{Op: "ensure origin", Country: origin, Err: err}
				}
				originChecked = true
			}
			if err := ensureCountry(tx, obs.to, obs.name); err != nil {
				return &StorageError{Op: "ensure destination", Country: origin, Err: err}
			}

			row := models.VisaRequirement{
				FromCountry:     origin,
				ToCountry:       obs.to,
				EffectiveDate:   date,
				RequirementType: obs.category,
				RunID:           e.runID,
			}
			if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
				return &StorageError{Op: "append requirement", Country: origin, Err: err}
			}
			appended++

			if head != nil {
				e.log.Debug("requirement changed", "origin", origin, "destination", obs.to, "from", head.RequirementType, "to", obs.category)
			} else {
				e.log.Debug("requirement recorded", "origin", origin, "destination", obs.to, "type", obs.category)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return appended, nil
}

// observation is the single requirement a snapshot reports for one destination
type observation struct {
	to       string
	name     string
	category string
}

// collapse reduces a snapshot to one category per destination. Categories are
// visited in sorted order and the first one listing a destination wins, so a
// destination reported under several categories resolves the same way on
// every run.
func (e *Engine) collapse(origin string, reqs passportindex.Requirements) []observation {
	seen := make(map[string]int)
	var observed []observation

	for _, category := range reqs.Categories() {
		if !models.IsKnownRequirementType(category) {
			e.log.Warn("unknown requirement category", "origin", origin, "category", category)
		}

		for _, dest := range reqs[category] {
			to := strings.TrimSpace(dest.Code)
			if to == "" {
				continue
			}
			if i, dup := seen[to]; dup {
				if observed[i].category != category {
					e.log.Warn("destination listed under several categories",
						"origin", origin, "destination", to, "kept", observed[i].category, "ignored", category)
				}
				continue
			}
			seen[to] = len(observed)
			observed = append(observed, observation{to: to, name: dest.Name, category: category})
		}
	}
	return observed
}

// LatestRequirement returns the most recent ledger row of a pair, by effective
// date and then insertion order, or nil when the pair has no history.
func LatestRequirement(tx *gorm.DB, from, to string) (*models.VisaRequirement, error) {
	var rows []models.VisaRequirement
	err := tx.Where("from_country = ? AND to_country = ?", from, to).
		Order("effective_date DESC").
		Order("id DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
