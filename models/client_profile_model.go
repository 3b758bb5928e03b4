package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PermissionAllowAllGroup        = "ALLOW_ALL_GROUP"
	PermissionAllowSpecificClients = "ALLOW_SPECIFIC_CLIENTS"
	PermissionNoGroupSessions      = "NO_GROUP_SESSIONS"

	BillingPerSession = "PER_SESSION"
	BillingMonthly    = "MONTHLY"
)

type ClientProfile struct {
	UserID      uuid.UUID `gorm:"type:uuid;primary_key" json:"user_id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index" json:"workspace_id"`
	TrainerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"trainer_id"`

	SessionRate      float64  `gorm:"type:numeric(10,2);not null;default:0" json:"session_rate"`
	GroupSessionRate *float64 `gorm:"type:numeric(10,2)" json:"group_session_rate"`

	GroupSessionPermission string `gorm:"size:30;not null;default:'NO_GROUP_SESSIONS'" json:"group_session_permission"`
	BillingFrequency       string `gorm:"size:20;not null;default:'PER_SESSION'" json:"billing_frequency"`
	AutoInvoiceEnabled     bool   `gorm:"default:false" json:"auto_invoice_enabled"`

	// Clients this client may share a group session with, only consulted
	// when GroupSessionPermission is ALLOW_SPECIFIC_CLIENTS.
	AllowedGroupClients []*ClientProfile `gorm:"many2many:client_allowed_group_clients;joinForeignKey:ClientProfileUserID;joinReferences:AllowedUserID" json:"allowed_group_clients,omitempty"`

	User User `gorm:"foreignkey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
