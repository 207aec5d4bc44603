package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingestion run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// SkippedCountry records a country whose work was not (fully) committed during a run
type SkippedCountry struct {
	Code   string `json:"code"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// SkipList is stored as JSON text
type SkipList []SkippedCountry

func (s SkipList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SkipList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = SkipList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(raw, s)
}

// IngestionRun is the persisted summary of one ingestion run
type IngestionRun struct {
	ID         string     `gorm:"type:uuid;primarykey" json:"id"`
	StartedAt  time.Time  `gorm:"not null;index" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     string     `gorm:"size:20;not null;default:running" json:"status"`

	CountriesProcessed int `json:"countries_processed"`
	NewRankings        int `json:"new_rankings"`
	NewRequirements    int `json:"new_requirements"`

	Skipped SkipList `gorm:"type:text" json:"skipped"`
	Error   string   `gorm:"type:text" json:"error,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *IngestionRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (IngestionRun) TableName() string {
	return "ingestion_runs"
}
