package services

import (
	"errors"
	"testing"

	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
)

func TestValidateClientBookingAllowAll(t *testing.T) {
	setupTestDB(t)
	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	occupant, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{
		SessionRate:            80,
		GroupSessionPermission: models.PermissionAllowAllGroup,
	})
	booker, _ := createClient(t, ws.ID, trainer.ID, "Bob Brown", "bob@gym.test", models.ClientProfile{
		SessionRate:            90,
		GroupSessionPermission: models.PermissionAllowAllGroup,
	})

	createAppointment(t, ws.ID, trainer.ID, occupant.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)

	if err := ValidateClientBooking(ws.ID, trainer.ID, booker.ID, at(10, 0), at(11, 0)); err != nil {
		t.Errorf("booking alongside an ALLOW_ALL_GROUP occupant should succeed, got: %v", err)
	}
}

func TestValidateClientBookingNoGroupOccupant(t *testing.T) {
	setupTestDB(t)
	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	occupant, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{
		SessionRate:            80,
		GroupSessionPermission: models.PermissionNoGroupSessions,
	})
	booker, _ := createClient(t, ws.ID, trainer.ID, "Bob Brown", "bob@gym.test", models.ClientProfile{
		SessionRate:            90,
		GroupSessionPermission: models.PermissionAllowAllGroup,
	})

	createAppointment(t, ws.ID, trainer.ID, occupant.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)

	err := ValidateClientBooking(ws.ID, trainer.ID, booker.ID, at(10, 30), at(11, 30))
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("booking over a NO_GROUP_SESSIONS occupant should be rejected, got: %v", err)
	}
}

func TestValidateClientBookingAllowSpecific(t *testing.T) {
	setupTestDB(t)
	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	occupant, occupantProfile := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{
		SessionRate:            80,
		GroupSessionPermission: models.PermissionAllowSpecificClients,
	})
	allowed, allowedProfile := createClient(t, ws.ID, trainer.ID, "Bob Brown", "bob@gym.test", models.ClientProfile{
		SessionRate:            90,
		GroupSessionPermission: models.PermissionAllowAllGroup,
	})
	stranger, _ := createClient(t, ws.ID, trainer.ID, "Carol Clark", "carol@gym.test", models.ClientProfile{
		SessionRate:            85,
		GroupSessionPermission: models.PermissionAllowAllGroup,
	})

	if err := database.DB.Model(&occupantProfile).Association("AllowedGroupClients").Append(&allowedProfile); err != nil {
		t.Fatalf("failed to append allowed client: %v", err)
	}

	createAppointment(t, ws.ID, trainer.ID, occupant.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)

	if err := ValidateClientBooking(ws.ID, trainer.ID, allowed.ID, at(10, 0), at(11, 0)); err != nil {
		t.Errorf("an allow-listed client should be able to book, got: %v", err)
	}

	err := ValidateClientBooking(ws.ID, trainer.ID, stranger.ID, at(10, 0), at(11, 0))
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("a client outside the allow-list should be rejected, got: %v", err)
	}
	if err != nil && err.Error() != "This time slot is not available for booking" {
		t.Errorf("rejection message = %q", err.Error())
	}
}

func TestValidateClientBookingEveryOccupantMustAllow(t *testing.T) {
	setupTestDB(t)
	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	permissive, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{
		SessionRate:            80,
		GroupSessionPermission: models.PermissionAllowAllGroup,
	})
	restrictive, _ := createClient(t, ws.ID, trainer.ID, "Bob Brown", "bob@gym.test", models.ClientProfile{
		SessionRate:            90,
		GroupSessionPermission: models.PermissionNoGroupSessions,
	})
	booker, _ := createClient(t, ws.ID, trainer.ID, "Carol Clark", "carol@gym.test", models.ClientProfile{
		SessionRate:            85,
		GroupSessionPermission: models.PermissionAllowAllGroup,
	})

	createAppointment(t, ws.ID, trainer.ID, permissive.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)
	createAppointment(t, ws.ID, trainer.ID, restrictive.ID, at(10, 30), at(11, 30), models.AppointmentScheduled)

	err := ValidateClientBooking(ws.ID, trainer.ID, booker.ID, at(10, 0), at(11, 0))
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("one disallowing occupant must reject the whole booking, got: %v", err)
	}
}

func TestValidateClientBookingOverrideBeatsProfile(t *testing.T) {
	setupTestDB(t)
	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	occupant, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{
		SessionRate:            80,
		GroupSessionPermission: models.PermissionNoGroupSessions,
	})
	booker, _ := createClient(t, ws.ID, trainer.ID, "Bob Brown", "bob@gym.test", models.ClientProfile{
		SessionRate:            90,
		GroupSessionPermission: models.PermissionAllowAllGroup,
	})

	appt := createAppointment(t, ws.ID, trainer.ID, occupant.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)
	appt.GroupSessionOverride = strPtr(models.OverrideAllowAll)
	if err := database.DB.Save(&appt).Error; err != nil {
		t.Fatalf("failed to set override: %v", err)
	}

	if err := ValidateClientBooking(ws.ID, trainer.ID, booker.ID, at(10, 0), at(11, 0)); err != nil {
		t.Errorf("an ALLOW_ALL override should beat the NO_GROUP_SESSIONS profile, got: %v", err)
	}
}

func TestValidateClientBookingTouchingAppointmentsCount(t *testing.T) {
	setupTestDB(t)
	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	occupant, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{
		SessionRate:            80,
		GroupSessionPermission: models.PermissionNoGroupSessions,
	})
	booker, _ := createClient(t, ws.ID, trainer.ID, "Bob Brown", "bob@gym.test", models.ClientProfile{
		SessionRate:            90,
		GroupSessionPermission: models.PermissionAllowAllGroup,
	})

	createAppointment(t, ws.ID, trainer.ID, occupant.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)

	// Request starts exactly where the occupant's session ends.
	err := ValidateClientBooking(ws.ID, trainer.ID, booker.ID, at(11, 0), at(12, 0))
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("touching endpoints must count as conflicts for booking, got: %v", err)
	}
}

func TestValidateClientBookingIgnoresInactiveAppointments(t *testing.T) {
	setupTestDB(t)
	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	occupant, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{
		SessionRate:            80,
		GroupSessionPermission: models.PermissionNoGroupSessions,
	})
	booker, _ := createClient(t, ws.ID, trainer.ID, "Bob Brown", "bob@gym.test", models.ClientProfile{
		SessionRate:            90,
		GroupSessionPermission: models.PermissionAllowAllGroup,
	})

	createAppointment(t, ws.ID, trainer.ID, occupant.ID, at(10, 0), at(11, 0), models.AppointmentCompleted)
	createAppointment(t, ws.ID, trainer.ID, occupant.ID, at(10, 0), at(11, 0), models.AppointmentCancelled)

	if err := ValidateClientBooking(ws.ID, trainer.ID, booker.ID, at(10, 0), at(11, 0)); err != nil {
		t.Errorf("completed and cancelled sessions must never block a booking, got: %v", err)
	}
}

// Every status either occupies the slot or it does not; the validator and
// Appointment.IsActive must agree on which is which.
func TestValidateClientBookingAgreesWithIsActive(t *testing.T) {
	statuses := []string{
		models.AppointmentScheduled,
		models.AppointmentRescheduled,
		models.AppointmentCompleted,
		models.AppointmentCancelled,
	}

	for _, status := range statuses {
		t.Run(status, func(t *testing.T) {
			setupTestDB(t)
			ws := createWorkspace(t)
			trainer := createTrainer(t, ws.ID, "trainer@gym.test")
			occupant, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{
				SessionRate:            80,
				GroupSessionPermission: models.PermissionNoGroupSessions,
			})
			booker, _ := createClient(t, ws.ID, trainer.ID, "Bob Brown", "bob@gym.test", models.ClientProfile{
				SessionRate:            90,
				GroupSessionPermission: models.PermissionAllowAllGroup,
			})

			appt := createAppointment(t, ws.ID, trainer.ID, occupant.ID, at(10, 0), at(11, 0), status)

			err := ValidateClientBooking(ws.ID, trainer.ID, booker.ID, at(10, 0), at(11, 0))
			if appt.IsActive() && !errors.Is(err, ErrSlotUnavailable) {
				t.Errorf("active status %s must block the slot, got: %v", status, err)
			}
			if !appt.IsActive() && err != nil {
				t.Errorf("inactive status %s must never block the slot, got: %v", status, err)
			}
		})
	}
}

func TestValidateClientBookingRejectsOwnDoubleBooking(t *testing.T) {
	setupTestDB(t)
	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	booker, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{
		SessionRate:            80,
		GroupSessionPermission: models.PermissionAllowAllGroup,
	})

	createAppointment(t, ws.ID, trainer.ID, booker.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)

	err := ValidateClientBooking(ws.ID, trainer.ID, booker.ID, at(10, 0), at(11, 0))
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("a client cannot join a slot they already occupy, got: %v", err)
	}
}
