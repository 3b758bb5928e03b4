package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
)

// ErrSlotUnavailable is the client-facing rejection for a booking that any
// concurrent occupant disallows.
var ErrSlotUnavailable = errors.New("This time slot is not available for booking")

// ValidateClientBooking enforces group-session permissions for a client
// self-booking. Every active appointment touching the requested window must
// allow the booking client; a single disallowing occupant rejects the whole
// booking. Trainers booking on a client's behalf bypass this entirely.
func ValidateClientBooking(workspaceID, trainerID, clientID uuid.UUID, start, end time.Time) error {
	if !end.After(start) {
		return errors.New("end time must be after start time")
	}

	// The SQL narrows the candidate set; IsActive and BookingConflict are
	// the authoritative occupancy predicates.
	var occupants []models.Appointment
	err := database.DB.
		Where("workspace_id = ? AND trainer_id = ? AND status IN ? AND start_time <= ? AND end_time >= ?",
			workspaceID, trainerID, models.ActiveAppointmentStatuses, end, start).
		Find(&occupants).Error
	if err != nil {
		return err
	}

	for _, occupant := range occupants {
		if !occupant.IsActive() || !BookingConflict(occupant.StartTime, occupant.EndTime, start, end) {
			continue
		}
		allowed, err := occupantAllows(occupant, clientID)
		if err != nil {
			return err
		}
		if !allowed {
			return ErrSlotUnavailable
		}
	}

	return nil
}

// occupantAllows resolves the occupant's effective permission: a
// per-appointment override beats the stored profile permission.
func occupantAllows(occupant models.Appointment, bookingClientID uuid.UUID) (bool, error) {
	if occupant.ClientID == bookingClientID {
		return false, nil
	}

	var profile models.ClientProfile
	err := database.DB.
		Preload("AllowedGroupClients").
		First(&profile, "user_id = ? AND workspace_id = ?", occupant.ClientID, occupant.WorkspaceID).Error
	if err != nil {
		return false, nil
	}

	permission := profile.GroupSessionPermission
	if occupant.GroupSessionOverride != nil {
		switch *occupant.GroupSessionOverride {
		case models.OverrideAllowAll:
			permission = models.PermissionAllowAllGroup
		case models.OverrideAllowSpecific:
			permission = models.PermissionAllowSpecificClients
		case models.OverrideNoGroup:
			permission = models.PermissionNoGroupSessions
		}
	}

	switch permission {
	case models.PermissionAllowAllGroup:
		return true, nil
	case models.PermissionAllowSpecificClients:
		for _, allowed := range profile.AllowedGroupClients {
			if allowed.UserID == bookingClientID {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}
