package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
	"github.com/wanjiru2468/fitness_trainer/services"
	"gorm.io/gorm"
)

// TriggerCalendarSync runs the inbound pull inline so the trainer sees the
// result counts immediately.
func TriggerCalendarSync(c *fiber.Ctx) error {
	trainerID, _, _ := claimsFromCtx(c)

	result, err := services.PullGoogleCalendarEvents(trainerID)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Calendar sync failed, please try again later"})
	}

	return c.JSON(result)
}

type ConnectCalendarRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
	TokenExpiry  string `json:"token_expiry" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	CalendarID   string `json:"calendar_id"`
}

// ConnectGoogleCalendar stores the OAuth tokens obtained by the web flow.
func ConnectGoogleCalendar(c *fiber.Ctx) error {
	trainerID, _, _ := claimsFromCtx(c)

	var req ConnectCalendarRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var settings models.TrainerSettings
	if err := database.DB.First(&settings, "trainer_id = ?", trainerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainer settings not found"})
	}

	settings.GoogleAccessToken = &req.AccessToken
	settings.GoogleRefreshToken = &req.RefreshToken
	if req.TokenExpiry != "" {
		expiry, _ := time.Parse(time.RFC3339, req.TokenExpiry)
		settings.GoogleTokenExpiry = &expiry
	}
	if req.CalendarID != "" {
		settings.GoogleCalendarID = req.CalendarID
	}
	settings.GoogleCalendarConnected = true

	if err := database.DB.Save(&settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save calendar connection"})
	}

	return c.JSON(fiber.Map{"message": "Google Calendar connected"})
}

func DisconnectGoogleCalendar(c *fiber.Ctx) error {
	trainerID, _, _ := claimsFromCtx(c)

	var settings models.TrainerSettings
	if err := database.DB.First(&settings, "trainer_id = ?", trainerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainer settings not found"})
	}

	settings.GoogleAccessToken = nil
	settings.GoogleRefreshToken = nil
	settings.GoogleTokenExpiry = nil
	settings.GoogleCalendarConnected = false
	settings.AutoSyncEnabled = false

	if err := database.DB.Save(&settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to disconnect calendar"})
	}

	return c.JSON(fiber.Map{"message": "Google Calendar disconnected"})
}

func ListPendingAppointments(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)

	var pending []models.PendingAppointment
	database.DB.
		Where("trainer_id = ? AND workspace_id = ? AND status = ?", trainerID, workspaceID, models.PendingStatusPending).
		Order("start_time asc").
		Find(&pending)

	return c.JSON(pending)
}

type ApprovePendingAppointmentRequest struct {
	ClientID string `json:"client_id" validate:"required,uuid"`
}

// ApprovePendingAppointment turns a medium/low confidence inbound match into
// a real appointment. The trainer can accept the suggested client or pick
// another one.
func ApprovePendingAppointment(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)
	pendingID := c.Params("pendingId")

	var req ApprovePendingAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	clientID, _ := uuid.Parse(req.ClientID)

	var pending models.PendingAppointment
	if err := database.DB.First(&pending, "id = ? AND trainer_id = ?", pendingID, trainerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pending appointment not found"})
	}
	if pending.Status != models.PendingStatusPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Pending appointment already resolved"})
	}

	var appt models.Appointment
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		appt = models.Appointment{
			WorkspaceID: workspaceID,
			TrainerID:   trainerID,
			ClientID:    clientID,
			StartTime:   pending.StartTime,
			EndTime:     pending.EndTime,
			Status:      models.AppointmentScheduled,
		}
		if err := tx.Create(&appt).Error; err != nil {
			return err
		}

		pending.Status = models.PendingStatusApproved
		if err := tx.Save(&pending).Error; err != nil {
			return err
		}

		// Link the originating external event so the pull never re-imports it.
		var mapping models.CalendarEventMapping
		err := tx.Where("provider = ? AND external_event_id = ? AND workspace_id = ?",
			models.ProviderGoogle, pending.ExternalEventID, workspaceID).
			First(&mapping).Error
		if err == nil {
			mapping.AttachAppointment(appt.ID)
			mapping.LastSyncedAt = time.Now()
			return tx.Save(&mapping).Error
		}

		mapping = models.CalendarEventMapping{
			WorkspaceID:     workspaceID,
			AppointmentID:   &appt.ID,
			Provider:        models.ProviderGoogle,
			ExternalEventID: pending.ExternalEventID,
			SyncDirection:   models.SyncDirectionInbound,
			LastSyncedAt:    time.Now(),
		}
		return tx.Create(&mapping).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to approve pending appointment"})
	}

	return c.Status(fiber.StatusCreated).JSON(appt)
}

func RejectPendingAppointment(c *fiber.Ctx) error {
	trainerID, _, _ := claimsFromCtx(c)
	pendingID := c.Params("pendingId")

	var pending models.PendingAppointment
	if err := database.DB.First(&pending, "id = ? AND trainer_id = ?", pendingID, trainerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pending appointment not found"})
	}

	pending.Status = models.PendingStatusRejected
	if err := database.DB.Save(&pending).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reject pending appointment"})
	}

	return c.JSON(fiber.Map{"message": "Pending appointment rejected"})
}

// TriggerBackgroundSync starts a pull without waiting for it, for the
// dashboard refresh button.
func TriggerBackgroundSync(c *fiber.Ctx) error {
	trainerID, _, _ := claimsFromCtx(c)

	services.DispatchBackground(fmt.Sprintf("calendar-pull-%s", trainerID), func() error {
		_, err := services.PullGoogleCalendarEvents(trainerID)
		return err
	})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Calendar sync started"})
}
