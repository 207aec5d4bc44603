package models

import "time"

// CountryRanking is the yearly passport ranking of a country. (CountryCode, Year)
// is the natural key; Rank and VisaFreeCount stay NULL when the source omits them.
type CountryRanking struct {
	CountryCode   string    `gorm:"size:3;primarykey" json:"country_code"`
	Year          int       `gorm:"primarykey;autoIncrement:false" json:"year"`
	Rank          *int      `json:"rank"`
	VisaFreeCount *int      `json:"visa_free_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (CountryRanking) TableName() string {
	return "country_rankings"
}

// SameValues reports whether r already holds rank and visaFreeCount
func (r CountryRanking) SameValues(rank, visaFreeCount *int) bool {
	return equalIntPtr(r.Rank, rank) && equalIntPtr(r.VisaFreeCount, visaFreeCount)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
