package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
	"github.com/wanjiru2468/fitness_trainer/notifications"
	"github.com/wanjiru2468/fitness_trainer/utils"
	"gorm.io/gorm"
)

// invoiceEmailSender is swapped out in tests to exercise the DRAFT fallback.
var invoiceEmailSender = notifications.SendInvoiceEmail

var invoicePDFGenerator = GenerateInvoicePDF

// GeneratePerSessionInvoice invoices one completed appointment. It is a
// silent no-op when there is nothing to do: missing appointment, wrong
// status, no client profile, auto-invoicing off, or monthly billing. A line
// item already referencing the appointment makes the call idempotent.
func GeneratePerSessionInvoice(appointmentID uuid.UUID) error {
	var appt models.Appointment
	if err := database.DB.First(&appt, "id = ?", appointmentID).Error; err != nil {
		return nil
	}
	if appt.Status != models.AppointmentCompleted {
		return nil
	}

	var profile models.ClientProfile
	if err := database.DB.First(&profile, "user_id = ? AND workspace_id = ?", appt.ClientID, appt.WorkspaceID).Error; err != nil {
		return nil
	}
	if !profile.AutoInvoiceEnabled || profile.BillingFrequency == models.BillingMonthly {
		return nil
	}

	var existingItems int64
	if err := database.DB.Model(&models.InvoiceLineItem{}).
		Where("appointment_id = ?", appointmentID).
		Count(&existingItems).Error; err != nil {
		return err
	}
	if existingItems > 0 {
		return nil
	}

	settings := trainerSettingsOrDefaults(appt.TrainerID, appt.WorkspaceID)

	classification, err := ClassifyGroupSession(appt, settings.GroupSessionMatchingLogic)
	if err != nil {
		return err
	}
	rate := ResolveSessionRate(profile, settings, classification.IsGroupSession)

	invoice := models.Invoice{
		WorkspaceID: appt.WorkspaceID,
		TrainerID:   appt.TrainerID,
		ClientID:    appt.ClientID,
		Amount:      rate,
		DueDate:     time.Now().AddDate(0, 0, settings.DefaultInvoiceDueDays),
		Status:      models.InvoiceSent,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		number, err := utils.GenerateUniqueInvoiceNumber(tx)
		if err != nil {
			return err
		}
		invoice.Number = number

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		apptID := appt.ID
		item := models.InvoiceLineItem{
			InvoiceID:     invoice.ID,
			AppointmentID: &apptID,
			Description:   sessionDescription(appt, classification.IsGroupSession),
			UnitPrice:     rate,
			Total:         rate,
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return err
	}

	deliverInvoice(&invoice)
	return nil
}

// GenerateMonthlyInvoice aggregates the previous calendar month's completed
// appointments into one invoice. Idempotency is period-based: any invoice
// already created this calendar month for the client+trainer pair means the
// period is settled.
func GenerateMonthlyInvoice(clientID, trainerID uuid.UUID) error {
	var profile models.ClientProfile
	if err := database.DB.First(&profile, "user_id = ? AND trainer_id = ?", clientID, trainerID).Error; err != nil {
		return nil
	}
	if !profile.AutoInvoiceEnabled || profile.BillingFrequency != models.BillingMonthly {
		return nil
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	periodStart := monthStart.AddDate(0, -1, 0)
	periodEnd := monthStart

	var alreadyInvoiced int64
	err := database.DB.Model(&models.Invoice{}).
		Where("client_id = ? AND trainer_id = ? AND created_at >= ?", clientID, trainerID, monthStart).
		Count(&alreadyInvoiced).Error
	if err != nil {
		return err
	}
	if alreadyInvoiced > 0 {
		return nil
	}

	var completed []models.Appointment
	err = database.DB.
		Where("client_id = ? AND trainer_id = ? AND status = ? AND start_time >= ? AND start_time < ?",
			clientID, trainerID, models.AppointmentCompleted, periodStart, periodEnd).
		Order("start_time asc").
		Find(&completed).Error
	if err != nil {
		return err
	}
	if len(completed) == 0 {
		return nil
	}

	settings := trainerSettingsOrDefaults(trainerID, profile.WorkspaceID)

	// Each appointment is classified and rated on its own; a month can mix
	// group and individual rates.
	var items []models.InvoiceLineItem
	total := 0.0
	for _, appt := range completed {
		classification, err := ClassifyGroupSession(appt, settings.GroupSessionMatchingLogic)
		if err != nil {
			return err
		}
		rate := ResolveSessionRate(profile, settings, classification.IsGroupSession)
		apptID := appt.ID
		items = append(items, models.InvoiceLineItem{
			AppointmentID: &apptID,
			Description:   sessionDescription(appt, classification.IsGroupSession),
			UnitPrice:     rate,
			Total:         rate,
		})
		total += rate
	}

	invoice := models.Invoice{
		WorkspaceID: profile.WorkspaceID,
		TrainerID:   trainerID,
		ClientID:    clientID,
		Amount:      total,
		DueDate:     time.Now().AddDate(0, 0, settings.DefaultInvoiceDueDays),
		Status:      models.InvoiceSent,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		number, err := utils.GenerateUniqueInvoiceNumber(tx)
		if err != nil {
			return err
		}
		invoice.Number = number

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	invoice.LineItems = items
	deliverInvoice(&invoice)
	return nil
}

// ProcessMonthlyInvoices runs the monthly billing for every trainer whose
// invoice day is today. One client's failure never stops the rest.
func ProcessMonthlyInvoices() {
	today := time.Now().Day()

	var allSettings []models.TrainerSettings
	if err := database.DB.Where("monthly_invoice_day = ?", today).Find(&allSettings).Error; err != nil {
		log.Printf("🔥 Failed to load trainer settings for monthly invoicing: %v", err)
		return
	}

	for _, settings := range allSettings {
		var clients []models.ClientProfile
		err := database.DB.
			Where("trainer_id = ? AND billing_frequency = ? AND auto_invoice_enabled = ?",
				settings.TrainerID, models.BillingMonthly, true).
			Find(&clients).Error
		if err != nil {
			log.Printf("🔥 Failed to load clients for trainer %s: %v", settings.TrainerID, err)
			continue
		}

		for _, client := range clients {
			if err := GenerateMonthlyInvoice(client.UserID, settings.TrainerID); err != nil {
				log.Printf("🔥 Monthly invoice failed for client %s: %v", client.UserID, err)
			}
		}
	}
}

// deliverInvoice attempts delivery of a freshly created SENT invoice. On
// failure the invoice stays on the books as a DRAFT for manual resend; the
// row is never deleted.
func deliverInvoice(invoice *models.Invoice) {
	if err := database.DB.First(&invoice.Client, "id = ?", invoice.ClientID).Error; err != nil {
		log.Printf("🔥 Failed to load client for invoice %s: %v", invoice.ID, err)
	}

	if err := invoiceEmailSender(invoice); err != nil {
		log.Printf("🔥 Failed to email invoice %s, reverting to draft: %v", invoice.Number, err)
		invoice.Status = models.InvoiceDraft
		if err := database.DB.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Update("status", models.InvoiceDraft).Error; err != nil {
			log.Printf("🔥 Failed to mark invoice %s as draft: %v", invoice.Number, err)
		}
		return
	}

	generate := invoicePDFGenerator
	DispatchBackground("invoice-pdf", func() error {
		return generate(invoice.ID)
	})
}

// ResendInvoiceEmail retries delivery of a draft invoice and promotes it to
// SENT on success.
func ResendInvoiceEmail(invoiceID uuid.UUID) error {
	var invoice models.Invoice
	err := database.DB.Preload("LineItems").Preload("Client").First(&invoice, "id = ?", invoiceID).Error
	if err != nil {
		return err
	}
	if invoice.Status == models.InvoicePaid {
		return errors.New("invoice is already paid")
	}

	if err := invoiceEmailSender(&invoice); err != nil {
		return fmt.Errorf("failed to send invoice email: %w", err)
	}

	return database.DB.Model(&invoice).Update("status", models.InvoiceSent).Error
}

func trainerSettingsOrDefaults(trainerID, workspaceID uuid.UUID) models.TrainerSettings {
	var settings models.TrainerSettings
	if err := database.DB.First(&settings, "trainer_id = ?", trainerID).Error; err != nil {
		return models.TrainerSettings{
			TrainerID:                 trainerID,
			WorkspaceID:               workspaceID,
			Timezone:                  "UTC",
			GroupSessionMatchingLogic: models.MatchAnyOverlap,
			DefaultInvoiceDueDays:     30,
			MonthlyInvoiceDay:         1,
		}
	}
	if settings.DefaultInvoiceDueDays <= 0 {
		settings.DefaultInvoiceDueDays = 30
	}
	return settings
}

func sessionDescription(appt models.Appointment, isGroup bool) string {
	kind := "Individual"
	if isGroup {
		kind = "Group"
	}
	return fmt.Sprintf("%s session on %s", kind, appt.StartTime.Format("Jan 2, 2006 3:04 PM"))
}
