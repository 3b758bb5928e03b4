package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package-level database handle at a fresh in-memory
// sqlite database. MaxOpenConns(1) keeps the pool on the single connection
// that owns the in-memory schema.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Workspace{},
		&models.User{},
		&models.ClientProfile{},
		&models.TrainerSettings{},
		&models.Appointment{},
		&models.BlockedTime{},
		&models.CalendarEventMapping{},
		&models.PendingAppointment{},
		&models.PendingClientProfile{},
		&models.Invoice{},
		&models.InvoiceLineItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.DB = db
}

func createWorkspace(t *testing.T) models.Workspace {
	t.Helper()
	ws := models.Workspace{Name: "Test Gym"}
	if err := database.DB.Create(&ws).Error; err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	return ws
}

func createTrainer(t *testing.T, workspaceID uuid.UUID, email string) models.User {
	t.Helper()
	trainer := models.User{
		WorkspaceID: workspaceID,
		FullName:    "Test Trainer",
		Email:       email,
		Password:    "hashed",
		Role:        "trainer",
		IsActive:    true,
	}
	if err := database.DB.Create(&trainer).Error; err != nil {
		t.Fatalf("failed to create trainer: %v", err)
	}
	return trainer
}

func createClient(t *testing.T, workspaceID, trainerID uuid.UUID, name, email string, profile models.ClientProfile) (models.User, models.ClientProfile) {
	t.Helper()
	user := models.User{
		WorkspaceID: workspaceID,
		FullName:    name,
		Email:       email,
		Password:    "hashed",
		Role:        "client",
		IsActive:    true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create client %s: %v", name, err)
	}

	profile.UserID = user.ID
	profile.WorkspaceID = workspaceID
	profile.TrainerID = trainerID
	if err := database.DB.Create(&profile).Error; err != nil {
		t.Fatalf("failed to create client profile for %s: %v", name, err)
	}
	return user, profile
}

func createAppointment(t *testing.T, workspaceID, trainerID, clientID uuid.UUID, start, end time.Time, status string) models.Appointment {
	t.Helper()
	appt := models.Appointment{
		WorkspaceID: workspaceID,
		TrainerID:   trainerID,
		ClientID:    clientID,
		StartTime:   start,
		EndTime:     end,
		Status:      status,
	}
	if err := database.DB.Create(&appt).Error; err != nil {
		t.Fatalf("failed to create appointment: %v", err)
	}
	return appt
}

func createTrainerSettings(t *testing.T, workspaceID, trainerID uuid.UUID, settings models.TrainerSettings) models.TrainerSettings {
	t.Helper()
	settings.TrainerID = trainerID
	settings.WorkspaceID = workspaceID
	if settings.Timezone == "" {
		settings.Timezone = "UTC"
	}
	if settings.GroupSessionMatchingLogic == "" {
		settings.GroupSessionMatchingLogic = models.MatchAnyOverlap
	}
	if settings.DefaultInvoiceDueDays == 0 {
		settings.DefaultInvoiceDueDays = 30
	}
	if settings.MonthlyInvoiceDay == 0 {
		settings.MonthlyInvoiceDay = 1
	}
	if err := database.DB.Create(&settings).Error; err != nil {
		t.Fatalf("failed to create trainer settings: %v", err)
	}
	return settings
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

// at builds a fixed-date timestamp so tests never straddle midnight.
func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 10, hour, minute, 0, 0, time.UTC)
}
