package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PendingStatusPending  = "pending"
	PendingStatusApproved = "approved"
	PendingStatusRejected = "rejected"
)

// PendingAppointment is a medium/low confidence inbound calendar match that
// needs trainer approval before it becomes a real appointment.
type PendingAppointment struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index" json:"workspace_id"`
	TrainerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"trainer_id"`

	ExternalEventID    string    `gorm:"size:1024;not null;index" json:"external_event_id"`
	ExternalEventTitle string    `gorm:"size:1024" json:"external_event_title"`
	StartTime          time.Time `gorm:"not null" json:"start_time"`
	EndTime            time.Time `gorm:"not null" json:"end_time"`

	SuggestedClientID *uuid.UUID `gorm:"type:uuid" json:"suggested_client_id"`
	MatchConfidence   string     `gorm:"size:10" json:"match_confidence"`
	MatchReason       string     `gorm:"size:512" json:"match_reason"`
	Status            string     `gorm:"size:10;not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PendingAppointment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
