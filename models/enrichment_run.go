package models

import (
	"time"

	"gorm.io/datatypes"
)

// EnrichmentRun records one batch execution of the enrichment pipeline.
// Failures are isolated per researcher; the Details payload keeps the
// per-researcher error messages for operator diagnosis.
type EnrichmentRun struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StartedAt time.Time `json:"started_at"`

	FinishedAt *time.Time `json:"finished_at,omitempty"`

	ResearchersProcessed int `json:"researchers_processed"`
	ResearchersFailed    int `json:"researchers_failed"`
	PublicationsCreated  int `json:"publications_created"`

	Details datatypes.JSON `json:"details,omitempty" gorm:"type:jsonb"`
}

func (EnrichmentRun) TableName() string {
	return "enrichment_runs"
}
