package models

import "time"

// DateLayout is the storage format of VisaRequirement.EffectiveDate
const DateLayout = "2006-01-02"

// VisaRequirement is one entry of the append-only ledger for a (FromCountry,
// ToCountry) pair: "as of EffectiveDate, travelling From -> To requires
// RequirementType". EffectiveDate is the day the fact was observed, stored as
// YYYY-MM-DD text so it sorts and compares as a date.
//
// ID is a surrogate key so that a second change observed on the same day does
// not collide; ordering within a day follows ID.
type VisaRequirement struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FromCountry     string    `gorm:"size:3;not null;index:idx_visa_pair_date,priority:1" json:"from_country"`
	ToCountry       string    `gorm:"size:3;not null;index:idx_visa_pair_date,priority:2" json:"to_country"`
	EffectiveDate   string    `gorm:"size:10;not null;index:idx_visa_pair_date,priority:3" json:"effective_date"`
	RequirementType string    `gorm:"size:64;not null" json:"requirement_type"`
	RunID           string    `gorm:"size:36;index" json:"run_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	From Country `gorm:"foreignKey:FromCountry;references:Code" json:"-"`
	To   Country `gorm:"foreignKey:ToCountry;references:Code" json:"-"`
}

// TableName specifies the table name
func (VisaRequirement) TableName() string {
	return "visa_requirements"
}

// EffectiveOn formats t as a ledger date in loc
func EffectiveOn(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}
