package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UpsertClientProfileRequest struct {
	ClientID               string   `json:"client_id" validate:"required,uuid"`
	SessionRate            float64  `json:"session_rate" validate:"required,gt=0"`
	GroupSessionRate       *float64 `json:"group_session_rate,omitempty" validate:"omitempty,gt=0"`
	GroupSessionPermission string   `json:"group_session_permission" validate:"required,oneof=ALLOW_ALL_GROUP ALLOW_SPECIFIC_CLIENTS NO_GROUP_SESSIONS"`
	BillingFrequency       string   `json:"billing_frequency" validate:"required,oneof=PER_SESSION MONTHLY"`
	AutoInvoiceEnabled     bool     `json:"auto_invoice_enabled"`
}

func UpsertClientProfile(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)

	var req UpsertClientProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	clientID, _ := uuid.Parse(req.ClientID)

	var client models.User
	if err := database.DB.First(&client, "id = ? AND workspace_id = ?", clientID, workspaceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	var profile models.ClientProfile
	err := database.DB.First(&profile, "user_id = ? AND workspace_id = ?", clientID, workspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.ClientProfile{
			UserID:      clientID,
			WorkspaceID: workspaceID,
			TrainerID:   trainerID,
		}
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load client profile"})
	}

	profile.SessionRate = req.SessionRate
	profile.GroupSessionRate = req.GroupSessionRate
	profile.GroupSessionPermission = req.GroupSessionPermission
	profile.BillingFrequency = req.BillingFrequency
	profile.AutoInvoiceEnabled = req.AutoInvoiceEnabled

	if err := database.DB.Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save client profile"})
	}

	return c.JSON(profile)
}

type SetAllowedClientsRequest struct {
	AllowedClientIDs []string `json:"allowed_client_ids" validate:"required,dive,uuid"`
}

// SetAllowedGroupClients replaces the client's allow-list, consulted when
// the permission is ALLOW_SPECIFIC_CLIENTS.
func SetAllowedGroupClients(c *fiber.Ctx) error {
	_, workspaceID, _ := claimsFromCtx(c)
	clientID, err := uuid.Parse(c.Params("clientId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client id"})
	}

	var req SetAllowedClientsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var profile models.ClientProfile
	if err := database.DB.First(&profile, "user_id = ? AND workspace_id = ?", clientID, workspaceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client profile not found"})
	}

	var allowed []*models.ClientProfile
	for _, idStr := range req.AllowedClientIDs {
		id, _ := uuid.Parse(idStr)
		var other models.ClientProfile
		if err := database.DB.First(&other, "user_id = ? AND workspace_id = ?", id, workspaceID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Allowed client not found: " + idStr})
		}
		allowed = append(allowed, &other)
	}

	if err := database.DB.Model(&profile).Association("AllowedGroupClients").Replace(allowed); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update allowed clients"})
	}

	return c.JSON(fiber.Map{"message": "Allowed group clients updated"})
}

type UpdateTrainerSettingsRequest struct {
	Timezone                  *string  `json:"timezone,omitempty"`
	AutoSyncEnabled           *bool    `json:"auto_sync_enabled,omitempty"`
	AutoClientSyncEnabled     *bool    `json:"auto_client_sync_enabled,omitempty"`
	GroupSessionMatchingLogic *string  `json:"group_session_matching_logic,omitempty" validate:"omitempty,oneof=EXACT_MATCH START_MATCH END_MATCH ANY_OVERLAP"`
	DefaultGroupSessionRate   *float64 `json:"default_group_session_rate,omitempty" validate:"omitempty,gt=0"`
	DefaultIndividualRate     *float64 `json:"default_individual_session_rate,omitempty" validate:"omitempty,gt=0"`
	DefaultInvoiceDueDays     *int     `json:"default_invoice_due_days,omitempty" validate:"omitempty,gt=0"`
	MonthlyInvoiceDay         *int     `json:"monthly_invoice_day,omitempty" validate:"omitempty,min=1,max=28"`
}

func UpdateTrainerSettings(c *fiber.Ctx) error {
	trainerID, _, _ := claimsFromCtx(c)

	var req UpdateTrainerSettingsRequest
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

	if req.Timezone != nil {
		settings.Timezone = *req.Timezone
	}
	if req.AutoSyncEnabled != nil {
		settings.AutoSyncEnabled = *req.AutoSyncEnabled
	}
	if req.AutoClientSyncEnabled != nil {
		settings.AutoClientSyncEnabled = *req.AutoClientSyncEnabled
	}
	if req.GroupSessionMatchingLogic != nil {
		settings.GroupSessionMatchingLogic = *req.GroupSessionMatchingLogic
	}
	if req.DefaultGroupSessionRate != nil {
		settings.DefaultGroupSessionRate = req.DefaultGroupSessionRate
	}
	if req.DefaultIndividualRate != nil {
		settings.DefaultIndividualRate = req.DefaultIndividualRate
	}
	if req.DefaultInvoiceDueDays != nil {
		settings.DefaultInvoiceDueDays = *req.DefaultInvoiceDueDays
	}
	if req.MonthlyInvoiceDay != nil {
		settings.MonthlyInvoiceDay = *req.MonthlyInvoiceDay
	}

	if err := database.DB.Save(&settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update settings"})
	}

	return c.JSON(settings)
}

func ListPendingClients(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)

	var pending []models.PendingClientProfile
	database.DB.
		Where("trainer_id = ? AND workspace_id = ? AND status = ?", trainerID, workspaceID, models.PendingStatusPending).
		Order("occurrence_count desc").
		Find(&pending)

	return c.JSON(pending)
}

type ApprovePendingClientRequest struct {
	Email       string  `json:"email" validate:"omitempty,email"`
	SessionRate float64 `json:"session_rate" validate:"required,gt=0"`
}

// ApprovePendingClient promotes an extracted calendar candidate into a real
// client account with a skeleton profile.
func ApprovePendingClient(c *fiber.Ctx) error {
	trainerID, workspaceID, _ := claimsFromCtx(c)
	pendingID := c.Params("pendingId")

	var req ApprovePendingClientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var pending models.PendingClientProfile
	if err := database.DB.First(&pending, "id = ? AND trainer_id = ?", pendingID, trainerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pending client not found"})
	}
	if pending.Status != models.PendingStatusPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Pending client already resolved"})
	}

	email := req.Email
	if email == "" && pending.ExtractedEmail != nil {
		email = *pending.ExtractedEmail
	}
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "An email address is required to create the client"})
	}

	tempPassword, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create client account"})
	}

	var user models.User
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		user = models.User{
			WorkspaceID: workspaceID,
			FullName:    pending.ExtractedName,
			Email:       email,
			Password:    string(tempPassword),
			Role:        "client",
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		profile := models.ClientProfile{
			UserID:      user.ID,
			WorkspaceID: workspaceID,
			TrainerID:   trainerID,
			SessionRate: req.SessionRate,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		pending.Status = models.PendingStatusApproved
		return tx.Save(&pending).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to approve pending client"})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// RejectPendingClient keeps the record around: rejected profiles stay in the
// matching pool so the same person is never suggested again.
func RejectPendingClient(c *fiber.Ctx) error {
	trainerID, _, _ := claimsFromCtx(c)
	pendingID := c.Params("pendingId")

	var pending models.PendingClientProfile
	if err := database.DB.First(&pending, "id = ? AND trainer_id = ?", pendingID, trainerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pending client not found"})
	}

	pending.Status = models.PendingStatusRejected
	if err := database.DB.Save(&pending).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reject pending client"})
	}

	return c.JSON(fiber.Map{"message": "Pending client rejected"})
}
