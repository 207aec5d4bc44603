package models

import (
	"time"
)

// Country is reference data keyed by the Henley passport code. It carries no
// history: every fetch overwrites name and region.
type Country struct {
	Code      string    `gorm:"size:3;primarykey" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Region    *string   `gorm:"size:50" json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Rankings []CountryRanking `gorm:"foreignKey:CountryCode;references:Code" json:"rankings,omitempty"`
}

// TableName specifies the table name
func (Country) TableName() string {
	return "countries"
}
