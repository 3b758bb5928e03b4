package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingClientProfile aggregates a not-yet-approved client candidate
// extracted from calendar event history. Rejected profiles stay in the
// matching pool so dismissed suggestions are never re-surfaced.
type PendingClientProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index" json:"workspace_id"`
	TrainerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"trainer_id"`

	Source         string   `gorm:"size:30;not null;default:'google_calendar'" json:"source"`
	SourceEventIDs []string `gorm:"serializer:json" json:"source_event_ids"`

	ExtractedName        string  `gorm:"size:255;not null" json:"extracted_name"`
	ExtractedEmail       *string `gorm:"size:255" json:"extracted_email"`
	ExtractionConfidence string  `gorm:"size:10;not null" json:"extraction_confidence"`
	OccurrenceCount      int     `gorm:"not null;default:1" json:"occurrence_count"`
	Status               string  `gorm:"size:10;not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PendingClientProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
