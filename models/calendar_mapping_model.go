package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SyncDirectionInbound  = "inbound"
	SyncDirectionOutbound = "outbound"

	ProviderGoogle = "google"
)

// CalendarEventMapping links an external calendar event to exactly one local
// entity: an appointment or a blocked time. A blocked-time mapping may be
// re-pointed at an appointment on manual re-classification, never the reverse.
type CalendarEventMapping struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index" json:"workspace_id"`

	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"appointment_id"`
	BlockedTimeID *uuid.UUID `gorm:"type:uuid;index" json:"blocked_time_id"`

	Provider           string    `gorm:"size:20;not null;default:'google';uniqueIndex:idx_provider_event" json:"provider"`
	ExternalEventID    string    `gorm:"size:1024;not null;uniqueIndex:idx_provider_event" json:"external_event_id"`
	ExternalCalendarID string    `gorm:"size:255" json:"external_calendar_id"`
	SyncDirection      string    `gorm:"size:10;not null" json:"sync_direction"`
	LastSyncedAt       time.Time `json:"last_synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *CalendarEventMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MappingRef is the tagged view over the appointment/blocked-time XOR.
type MappingRef struct {
	Kind string // "appointment" | "blocked_time" | "orphan"
	ID   uuid.UUID
}

// Ref centralizes the XOR invariant: an appointment reference always wins if
// both columns are somehow set, and a mapping with neither is an orphan.
func (m *CalendarEventMapping) Ref() MappingRef {
	if m.AppointmentID != nil {
		return MappingRef{Kind: "appointment", ID: *m.AppointmentID}
	}
	if m.BlockedTimeID != nil {
		return MappingRef{Kind: "blocked_time", ID: *m.BlockedTimeID}
	}
	return MappingRef{Kind: "orphan"}
}

// AttachAppointment points the mapping at an appointment, clearing any
// blocked-time reference so the XOR holds.
func (m *CalendarEventMapping) AttachAppointment(id uuid.UUID) {
	m.AppointmentID = &id
	m.BlockedTimeID = nil
}

func (m *CalendarEventMapping) AttachBlockedTime(id uuid.UUID) {
	if m.AppointmentID != nil {
		return
	}
	m.BlockedTimeID = &id
}
