package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
	"github.com/wanjiru2468/fitness_trainer/services"
)

type CreateAppointmentRequest struct {
	ClientID             string  `json:"client_id" validate:"required,uuid"`
	StartTime            string  `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime              string  `json:"end_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	GroupSessionOverride *string `json:"group_session_override,omitempty" validate:"omitempty,oneof=ALLOW_ALL ALLOW_SPECIFIC NO_GROUP"`
}

// CreateAppointment books a session on behalf of a client. Trainers bypass
// the group-permission validator entirely.
func CreateAppointment(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)

	var req CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	clientID, _ := uuid.Parse(req.ClientID)
	startTime, _ := time.Parse(time.RFC3339, req.StartTime)
	endTime, _ := time.Parse(time.RFC3339, req.EndTime)
	if !endTime.After(startTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "End time must be after start time"})
	}

	var client models.User
	if err := database.DB.First(&client, "id = ? AND workspace_id = ?", clientID, workspaceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	appt := models.Appointment{
		WorkspaceID:          workspaceID,
		TrainerID:            trainerID,
		ClientID:             clientID,
		StartTime:            startTime,
		EndTime:              endTime,
		Status:               models.AppointmentScheduled,
		GroupSessionOverride: req.GroupSessionOverride,
	}
	if err := database.DB.Create(&appt).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create appointment"})
	}

	dispatchOutboundSync(appt)

	return c.Status(fiber.StatusCreated).JSON(appt)
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SCHEDULED COMPLETED CANCELLED RESCHEDULED"`
}

// UpdateAppointmentStatus transitions an appointment. A COMPLETED transition
// generates the per-session invoice inline so the caller observes invoicing
// failures; calendar sync is always dispatched in the background.
func UpdateAppointmentStatus(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)
	appointmentID := c.Params("appointmentId")

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var appt models.Appointment
	if err := database.DB.First(&appt, "id = ? AND workspace_id = ?", appointmentID, workspaceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Appointment not found"})
	}
	if appt.TrainerID != trainerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the trainer for this appointment"})
	}

	appt.Status = req.Status
	if err := database.DB.Save(&appt).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update appointment"})
	}

	dispatchOutboundSync(appt)

	if req.Status == models.AppointmentCompleted {
		if err := services.GeneratePerSessionInvoice(appt.ID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Appointment completed but invoicing failed"})
		}
	}

	return c.JSON(appt)
}

type RescheduleAppointmentRequest struct {
	StartTime string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime   string `json:"end_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func RescheduleAppointment(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)
	appointmentID := c.Params("appointmentId")

	var req RescheduleAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	startTime, _ := time.Parse(time.RFC3339, req.StartTime)
	endTime, _ := time.Parse(time.RFC3339, req.EndTime)
	if !endTime.After(startTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "End time must be after start time"})
	}

	var appt models.Appointment
	if err := database.DB.First(&appt, "id = ? AND workspace_id = ?", appointmentID, workspaceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Appointment not found"})
	}
	if appt.TrainerID != trainerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the trainer for this appointment"})
	}

	appt.StartTime = startTime
	appt.EndTime = endTime
	appt.Status = models.AppointmentRescheduled
	if err := database.DB.Save(&appt).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reschedule appointment"})
	}

	dispatchOutboundSync(appt)

	return c.JSON(appt)
}

func DeleteAppointment(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)
	appointmentID := c.Params("appointmentId")

	var appt models.Appointment
	if err := database.DB.First(&appt, "id = ? AND workspace_id = ?", appointmentID, workspaceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Appointment not found"})
	}
	if appt.TrainerID != trainerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the trainer for this appointment"})
	}

	var settings models.TrainerSettings
	settingsErr := database.DB.First(&settings, "trainer_id = ?", appt.TrainerID).Error

	if err := database.DB.Delete(&appt).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete appointment"})
	}

	if settingsErr == nil {
		deleted := appt
		services.DispatchBackground(fmt.Sprintf("calendar-delete-%s", deleted.ID), func() error {
			return services.DeleteAppointmentFromGoogle(deleted, settings)
		})
	}

	return c.JSON(fiber.Map{"message": "Appointment deleted"})
}

func GetMyAppointments(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)

	var appointments []models.Appointment
	database.DB.
		Preload("Client").
		Where("trainer_id = ? AND workspace_id = ?", trainerID, workspaceID).
		Order("start_time desc").
		Find(&appointments)

	return c.JSON(appointments)
}

// dispatchOutboundSync pushes the appointment to the trainer's calendar in
// the background. Sync failures are logged, never surfaced to the request.
func dispatchOutboundSync(appt models.Appointment) {
	var settings models.TrainerSettings
	if err := database.DB.First(&settings, "trainer_id = ?", appt.TrainerID).Error; err != nil {
		return
	}
	services.DispatchBackground(fmt.Sprintf("calendar-sync-%s", appt.ID), func() error {
		return services.SyncAppointmentToGoogle(appt, settings)
	})
}
