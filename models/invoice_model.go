package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvoiceDraft = "DRAFT"
	InvoiceSent  = "SENT"
	InvoicePaid  = "PAID"
)

type Invoice struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index" json:"workspace_id"`
	TrainerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"trainer_id"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	Number  string    `gorm:"size:20;unique" json:"number"`
	Amount  float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	DueDate time.Time `gorm:"not null" json:"due_date"`
	Status  string    `gorm:"size:10;not null;default:'DRAFT'" json:"status"`
	PdfURL  *string   `gorm:"size:512" json:"pdf_url"`

	LineItems []InvoiceLineItem `gorm:"foreignkey:InvoiceID" json:"line_items"`

	Client  User `gorm:"foreignkey:ClientID" json:"client,omitempty"`
	Trainer User `gorm:"foreignkey:TrainerID" json:"trainer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type InvoiceLineItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`

	// Set for per-session billing; the at-most-once guarantee is one line
	// item per appointment system-wide, enforced by a pre-check.
	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"appointment_id"`

	Description string  `gorm:"size:512;not null" json:"description"`
	UnitPrice   float64 `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Total       float64 `gorm:"type:numeric(10,2);not null" json:"total"`

	CreatedAt time.Time `json:"created_at"`
}

func (li *InvoiceLineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}
