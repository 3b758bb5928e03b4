package database

import (
	"fmt"
	"log"

	config "github.com/wanjiru2468/fitness_trainer/configs"
	"github.com/wanjiru2468/fitness_trainer/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
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
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	workspace := models.Workspace{Name: "Default Workspace"}
	if err := DB.FirstOrCreate(&workspace, models.Workspace{Name: "Default Workspace"}).Error; err != nil {
		log.Fatalf("🔥 Failed to seed default workspace: %v", err)
		return
	}

	adminUser := models.User{
		WorkspaceID: workspace.ID,
		FullName:    config.Config("ADMIN_FULL_NAME"),
		Email:       adminEmail,
		Password:    string(hashedPassword),
		Role:        "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}
