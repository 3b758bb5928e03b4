package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
	"github.com/wanjiru2468/fitness_trainer/services"
)

func GetMyInvoices(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)

	var invoices []models.Invoice
	database.DB.
		Preload("LineItems").
		Preload("Client").
		Where("trainer_id = ? AND workspace_id = ?", trainerID, workspaceID).
		Order("created_at desc").
		Find(&invoices)

	return c.JSON(invoices)
}

func GetClientInvoices(c *fiber.Ctx) error {
	clientID, workspaceID, _ := claimsFromCtx(c)

	var invoices []models.Invoice
	database.DB.
		Preload("LineItems").
		Where("client_id = ? AND workspace_id = ?", clientID, workspaceID).
		Order("created_at desc").
		Find(&invoices)

	return c.JSON(invoices)
}

// GenerateInvoiceForAppointment lets a trainer trigger per-session invoicing
// manually. The service no-ops on anything already invoiced.
func GenerateInvoiceForAppointment(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)
	appointmentID, err := uuid.Parse(c.Params("appointmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	var appt models.Appointment
	if err := database.DB.First(&appt, "id = ? AND workspace_id = ?", appointmentID, workspaceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Appointment not found"})
	}
	if appt.TrainerID != trainerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the trainer for this appointment"})
	}

	if err := services.GeneratePerSessionInvoice(appointmentID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate invoice"})
	}

	return c.JSON(fiber.Map{"message": "Invoice generation triggered"})
}

// ResendInvoice retries email delivery for a draft invoice.
func ResendInvoice(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)
	invoiceID, err := uuid.Parse(c.Params("invoiceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid invoice id"})
	}

	var invoice models.Invoice
	if err := database.DB.First(&invoice, "id = ? AND workspace_id = ?", invoiceID, workspaceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invoice not found"})
	}
	if invoice.TrainerID != trainerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your invoice"})
	}

	if err := services.ResendInvoiceEmail(invoiceID); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to resend invoice email"})
	}

	return c.JSON(fiber.Map{"message": "Invoice email sent"})
}

func MarkInvoicePaid(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)
	invoiceID := c.Params("invoiceId")

	var invoice models.Invoice
	if err := database.DB.First(&invoice, "id = ? AND workspace_id = ?", invoiceID, workspaceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invoice not found"})
	}
	if invoice.TrainerID != trainerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your invoice"})
	}

	invoice.Status = models.InvoicePaid
	if err := database.DB.Save(&invoice).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update invoice"})
	}

	return c.JSON(invoice)
}

// RunMonthlyInvoices is the manual trigger for the monthly billing run,
// normally handled by the cron job.
func RunMonthlyInvoices(c *fiber.Ctx) error {
	go services.ProcessMonthlyInvoices()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Monthly invoice processing started"})
}
