package jobs

import (
	"log"

	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
	"github.com/wanjiru2468/fitness_trainer/services"
)

// PullTrainerCalendars runs the inbound pull for every trainer who has
// auto-sync switched on. Each trainer's pull failure is isolated.
func PullTrainerCalendars() {
	log.Println("Running job: PullTrainerCalendars...")

	var settingsList []models.TrainerSettings
	err := database.DB.
		Where("auto_sync_enabled = ? AND google_calendar_connected = ?", true, true).
		Find(&settingsList).Error
	if err != nil {
		log.Printf("Error loading trainers for calendar pull: %v", err)
		return
	}

	for _, settings := range settingsList {
		result, err := services.PullGoogleCalendarEvents(settings.TrainerID)
		if err != nil {
			log.Printf("🔥 Calendar pull failed for trainer %s: %v", settings.TrainerID, err)
			continue
		}
		if result.Imported+result.Updated+result.Pending+result.Blocked > 0 {
			log.Printf("✅ Calendar pull for trainer %s: %d imported, %d updated, %d pending, %d blocked",
				settings.TrainerID, result.Imported, result.Updated, result.Pending, result.Blocked)
		}
	}
}
