package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AppointmentScheduled   = "SCHEDULED"
	AppointmentCompleted   = "COMPLETED"
	AppointmentCancelled   = "CANCELLED"
	AppointmentRescheduled = "RESCHEDULED"

	OverrideAllowAll      = "ALLOW_ALL"
	OverrideAllowSpecific = "ALLOW_SPECIFIC"
	OverrideNoGroup       = "NO_GROUP"
)

type Appointment struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index" json:"workspace_id"`
	TrainerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"trainer_id"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Status    string    `gorm:"size:20;not null;default:'SCHEDULED'" json:"status"`

	// Per-appointment override of the client's stored group permission.
	GroupSessionOverride *string `gorm:"size:20" json:"group_session_override"`

	Client  User `gorm:"foreignkey:ClientID" json:"client,omitempty"`
	Trainer User `gorm:"foreignkey:TrainerID" json:"trainer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ActiveAppointmentStatuses are the statuses that occupy a time slot.
var ActiveAppointmentStatuses = []string{AppointmentScheduled, AppointmentRescheduled}

// IsActive reports whether the appointment participates in overlap and
// booking-conflict checks. Completed and cancelled sessions never block.
func (a *Appointment) IsActive() bool {
	for _, status := range ActiveAppointmentStatuses {
		if a.Status == status {
			return true
		}
	}
	return false
}
