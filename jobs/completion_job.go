package jobs

import (
	"log"
	"time"

	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
	"github.com/wanjiru2468/fitness_trainer/services"
)

// CompletePastAppointments marks sessions whose end time has passed as
// COMPLETED and kicks off per-session invoicing for each.
func CompletePastAppointments() {
	log.Println("Running job: CompletePastAppointments...")

	cutoff := time.Now().Add(-1 * time.Hour)

	var pastAppointments []models.Appointment
	err := database.DB.
		Where("status IN ? AND end_time < ?", models.ActiveAppointmentStatuses, cutoff).
		Find(&pastAppointments).Error
	if err != nil {
		log.Printf("Error checking for past appointments: %v", err)
		return
	}

	if len(pastAppointments) == 0 {
		return
	}

	for _, appt := range pastAppointments {
		appt.Status = models.AppointmentCompleted
		if err := database.DB.Save(&appt).Error; err != nil {
			log.Printf("Error completing appointment %s: %v", appt.ID, err)
			continue
		}
		apptID := appt.ID
		services.DispatchBackground("auto-complete-invoice", func() error {
			return services.GeneratePerSessionInvoice(apptID)
		})
	}

	log.Printf("Marked %d appointment(s) as completed.", len(pastAppointments))
}
