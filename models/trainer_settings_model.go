package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MatchExact      = "EXACT_MATCH"
	MatchStart      = "START_MATCH"
	MatchEnd        = "END_MATCH"
	MatchAnyOverlap = "ANY_OVERLAP"
)

type TrainerSettings struct {
	TrainerID   uuid.UUID `gorm:"type:uuid;primary_key" json:"trainer_id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index" json:"workspace_id"`

	Timezone                  string     `gorm:"size:100;not null;default:'UTC'" json:"timezone"`
	AutoSyncEnabled           bool       `gorm:"default:false" json:"auto_sync_enabled"`
	GoogleCalendarConnected   bool       `gorm:"default:false" json:"google_calendar_connected"`
	AutoClientSyncEnabled     bool       `gorm:"default:false" json:"auto_client_sync_enabled"`
	GroupSessionMatchingLogic string     `gorm:"size:20;not null;default:'ANY_OVERLAP'" json:"group_session_matching_logic"`
	DefaultGroupSessionRate   *float64   `gorm:"type:numeric(10,2)" json:"default_group_session_rate"`
	DefaultIndividualRate     *float64   `gorm:"type:numeric(10,2)" json:"default_individual_session_rate"`
	DefaultInvoiceDueDays     int        `gorm:"not null;default:30" json:"default_invoice_due_days"`
	MonthlyInvoiceDay         int        `gorm:"not null;default:1" json:"monthly_invoice_day"`
	LastSyncedAt              *time.Time `json:"last_synced_at"`

	GoogleAccessToken  *string    `gorm:"size:2048" json:"-"`
	GoogleRefreshToken *string    `gorm:"size:2048" json:"-"`
	GoogleTokenExpiry  *time.Time `json:"-"`
	GoogleCalendarID   string     `gorm:"size:255;default:'primary'" json:"google_calendar_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
