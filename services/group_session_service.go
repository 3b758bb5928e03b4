package services

import (
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
)

// GroupClassification is the result of group-session detection for one
// appointment.
type GroupClassification struct {
	IsGroupSession   bool `json:"is_group_session"`
	ParticipantCount int  `json:"participant_count"`
}

// ClassifyGroupSession counts the trainer's other scheduled or completed
// appointments that match this one under the configured policy. One or more
// matches makes it a group session. Cancelled and rescheduled-away sessions
// never count.
func ClassifyGroupSession(appt models.Appointment, matchingLogic string) (GroupClassification, error) {
	var others []models.Appointment
	err := database.DB.
		Where("workspace_id = ? AND trainer_id = ? AND id <> ? AND status IN ?",
			appt.WorkspaceID, appt.TrainerID, appt.ID,
			[]string{models.AppointmentScheduled, models.AppointmentCompleted}).
		Find(&others).Error
	if err != nil {
		return GroupClassification{}, err
	}

	count := 0
	for _, other := range others {
		if MatchesPolicy(appt.StartTime, appt.EndTime, other.StartTime, other.EndTime, matchingLogic) {
			count++
		}
	}

	return GroupClassification{
		IsGroupSession:   count >= 1,
		ParticipantCount: count + 1,
	}, nil
}

// ResolveSessionRate picks the billing rate for a session. For group
// sessions the chain is: client's own group rate, then the trainer's default
// group rate, then the client's individual rate. The order is load-bearing.
func ResolveSessionRate(profile models.ClientProfile, settings models.TrainerSettings, isGroupSession bool) float64 {
	if !isGroupSession {
		return profile.SessionRate
	}
	if profile.GroupSessionRate != nil {
		return *profile.GroupSessionRate
	}
	if settings.DefaultGroupSessionRate != nil {
		return *settings.DefaultGroupSessionRate
	}
	return profile.SessionRate
}
