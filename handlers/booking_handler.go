package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
	"github.com/wanjiru2468/fitness_trainer/services"
)

type CreateBookingRequest struct {
	TrainerID string `json:"trainer_id" validate:"required,uuid"`
	StartTime string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime   string `json:"end_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// CreateBooking is the client self-booking path. Unlike a trainer booking on
// a client's behalf, it runs the group-permission validator against every
// active appointment touching the requested window.
func CreateBooking(c *fiber.Ctx) error {
	clientID, workspaceID, _ := claimsFromCtx(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	trainerID, _ := uuid.Parse(req.TrainerID)
	startTime, _ := time.Parse(time.RFC3339, req.StartTime)
	endTime, _ := time.Parse(time.RFC3339, req.EndTime)

	if startTime.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot book a session in the past"})
	}

	var profile models.ClientProfile
	if err := database.DB.First(&profile, "user_id = ? AND workspace_id = ?", clientID, workspaceID).Error; err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No client profile found for this workspace"})
	}

	if err := services.ValidateClientBooking(workspaceID, trainerID, clientID, startTime, endTime); err != nil {
		if errors.Is(err, services.ErrSlotUnavailable) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	appt := models.Appointment{
		WorkspaceID: workspaceID,
		TrainerID:   trainerID,
		ClientID:    clientID,
		StartTime:   startTime,
		EndTime:     endTime,
		Status:      models.AppointmentScheduled,
	}
	if err := database.DB.Create(&appt).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create booking"})
	}

	dispatchOutboundSync(appt)

	return c.Status(fiber.StatusCreated).JSON(appt)
}

func GetMyBookings(c *fiber.Ctx) error {
	clientID, workspaceID, _ := claimsFromCtx(c)

	var appointments []models.Appointment
	database.DB.
		Preload("Trainer").
		Where("client_id = ? AND workspace_id = ?", clientID, workspaceID).
		Order("start_time desc").
		Find(&appointments)

	return c.JSON(appointments)
}
