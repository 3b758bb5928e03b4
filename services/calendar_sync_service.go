package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wanjiru2468/fitness_trainer/calendar"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
	"github.com/wanjiru2468/fitness_trainer/websocket"
	"gorm.io/gorm"
)

// Status glyphs prefix the event title on the trainer's calendar so the
// session state is visible at a glance.
var statusGlyphs = map[string]string{
	models.AppointmentCompleted:   "✓ ",
	models.AppointmentCancelled:   "✗ ",
	models.AppointmentRescheduled: "↻ ",
}

// Google Calendar color ids keyed by appointment status.
var statusColors = map[string]string{
	models.AppointmentCompleted:   "2",
	models.AppointmentCancelled:   "11",
	models.AppointmentRescheduled: "5",
}

// SyncResult summarizes one inbound pull.
type SyncResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Pending  int `json:"pending"`
	Blocked  int `json:"blocked"`
	Skipped  int `json:"skipped"`
}

// SyncAppointmentToGoogle pushes one appointment to the trainer's calendar.
// If a mapping already exists the remote event is updated in place,
// otherwise a new event is created and recorded with an outbound mapping.
// Errors propagate so the dispatcher can log them; the appointment mutation
// that triggered the sync is never rolled back.
func SyncAppointmentToGoogle(appt models.Appointment, settings models.TrainerSettings) error {
	if !settings.AutoSyncEnabled || !settings.GoogleCalendarConnected {
		return nil
	}

	var client models.User
	if err := database.DB.First(&client, "id = ?", appt.ClientID).Error; err != nil {
		return fmt.Errorf("client for appointment %s not found: %w", appt.ID, err)
	}

	payload := calendar.EventPayload{
		Summary:  statusGlyphs[appt.Status] + client.FullName,
		Start:    appt.StartTime,
		End:      appt.EndTime,
		Timezone: settings.Timezone,
		ColorID:  statusColors[appt.Status],
	}

	now := time.Now()

	var mapping models.CalendarEventMapping
	err := database.DB.
		Where("appointment_id = ? AND provider = ?", appt.ID, models.ProviderGoogle).
		First(&mapping).Error

	if err == nil && mapping.ExternalEventID != "" {
		if err := calendar.Client.UpdateEvent(&settings, mapping.ExternalEventID, payload); err != nil {
			return err
		}
		mapping.LastSyncedAt = now
		return database.DB.Save(&mapping).Error
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	externalID, err := calendar.Client.CreateEvent(&settings, payload)
	if err != nil {
		return err
	}

	apptID := appt.ID
	mapping = models.CalendarEventMapping{
		WorkspaceID:        appt.WorkspaceID,
		AppointmentID:      &apptID,
		Provider:           models.ProviderGoogle,
		ExternalEventID:    externalID,
		ExternalCalendarID: settings.GoogleCalendarID,
		SyncDirection:      models.SyncDirectionOutbound,
		LastSyncedAt:       now,
	}
	return database.DB.Create(&mapping).Error
}

// DeleteAppointmentFromGoogle removes the remote event for an appointment.
// Remote failures are swallowed so local deletion is never blocked; the
// mapping row is removed either way.
func DeleteAppointmentFromGoogle(appt models.Appointment, settings models.TrainerSettings) error {
	var mapping models.CalendarEventMapping
	err := database.DB.
		Where("appointment_id = ? AND provider = ?", appt.ID, models.ProviderGoogle).
		First(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if !settings.GoogleCalendarConnected {
		return nil
	}

	if err := calendar.Client.DeleteEvent(&settings, mapping.ExternalEventID); err != nil {
		log.Printf("⚠️ Failed to delete remote event %s: %v", mapping.ExternalEventID, err)
	}

	return database.DB.Delete(&mapping).Error
}

// PullGoogleCalendarEvents imports the trainer's calendar for the next three
// months, classifying each remote event into an appointment, a pending
// approval, or blocked time. Events this system authored (outbound mappings)
// are never reabsorbed.
func PullGoogleCalendarEvents(trainerID uuid.UUID) (*SyncResult, error) {
	result := &SyncResult{}

	var settings models.TrainerSettings
	if err := database.DB.First(&settings, "trainer_id = ?", trainerID).Error; err != nil {
		return result, nil
	}
	if !settings.AutoSyncEnabled || !settings.GoogleCalendarConnected {
		return result, nil
	}

	now := time.Now()
	events, err := calendar.Client.ListEvents(&settings, now, now.AddDate(0, 3, 0))
	if err != nil {
		return result, err
	}

	for _, event := range events {
		outcome, err := processInboundEvent(&settings, event)
		if err != nil {
			log.Printf("🔥 Failed to process calendar event %s: %v", event.ID, err)
			continue
		}
		switch outcome {
		case "imported":
			result.Imported++
		case "updated":
			result.Updated++
		case "pending":
			result.Pending++
		case "blocked":
			result.Blocked++
		default:
			result.Skipped++
		}
	}

	syncedAt := time.Now()
	settings.LastSyncedAt = &syncedAt
	if err := database.DB.Save(&settings).Error; err != nil {
		log.Printf("🔥 Failed to stamp last_synced_at for trainer %s: %v", trainerID, err)
	}

	if settings.AutoClientSyncEnabled {
		ExtractPendingClients(settings.WorkspaceID, settings.TrainerID, events)
	}

	return result, nil
}

func processInboundEvent(settings *models.TrainerSettings, event calendar.Event) (string, error) {
	if event.Start.DateTime == nil || event.End.DateTime == nil {
		return "skipped", nil
	}
	start, end := *event.Start.DateTime, *event.End.DateTime

	var existing *models.CalendarEventMapping
	var mapping models.CalendarEventMapping
	err := database.DB.
		Where("provider = ? AND external_event_id = ? AND workspace_id = ?",
			models.ProviderGoogle, event.ID, settings.WorkspaceID).
		First(&mapping).Error
	if err == nil {
		existing = &mapping
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	if existing != nil {
		// Self-authored events are never re-imported or overwritten.
		if existing.SyncDirection == models.SyncDirectionOutbound {
			return "skipped", nil
		}

		switch ref := existing.Ref(); ref.Kind {
		case "appointment":
			return refreshImportedAppointment(existing, ref.ID, start, end)
		case "blocked_time":
			// Once established, blocked time stays blocked time; stability
			// beats re-classification on later pulls.
			return refreshImportedBlockedTime(existing, ref.ID, event.Summary, start, end)
		}
		// Orphan mapping: fall through to classification and attach.
	}

	title := StripStatusGlyphs(event.Summary)
	strippedEvent := event
	strippedEvent.Summary = title

	extracted := ExtractClientFromEvent(strippedEvent)
	if extracted == nil {
		return importBlockedTime(settings, existing, event, start, end)
	}

	clientID, matched := FindMatchingClient(settings.WorkspaceID, settings.TrainerID, extracted)
	if matched && extracted.Confidence == ConfidenceHigh {
		return importAppointment(settings, existing, event, clientID, start, end)
	}

	return createPendingAppointment(settings, event, extracted, clientID, matched, start, end)
}

func refreshImportedAppointment(mapping *models.CalendarEventMapping, apptID uuid.UUID, start, end time.Time) (string, error) {
	var appt models.Appointment
	if err := database.DB.First(&appt, "id = ?", apptID).Error; err != nil {
		return "", err
	}

	appt.StartTime = start
	appt.EndTime = end
	if err := database.DB.Save(&appt).Error; err != nil {
		return "", err
	}

	mapping.LastSyncedAt = time.Now()
	return "updated", database.DB.Save(mapping).Error
}

func refreshImportedBlockedTime(mapping *models.CalendarEventMapping, blockedID uuid.UUID, reason string, start, end time.Time) (string, error) {
	var blocked models.BlockedTime
	if err := database.DB.First(&blocked, "id = ?", blockedID).Error; err != nil {
		return "", err
	}

	blocked.StartTime = start
	blocked.EndTime = end
	if reason != "" {
		blocked.Reason = reason
	}
	if err := database.DB.Save(&blocked).Error; err != nil {
		return "", err
	}

	mapping.LastSyncedAt = time.Now()
	return "updated", database.DB.Save(mapping).Error
}

func importAppointment(settings *models.TrainerSettings, existing *models.CalendarEventMapping, event calendar.Event, clientID uuid.UUID, start, end time.Time) (string, error) {
	// Duplicate guard: an appointment for the same client and window may
	// already exist locally; link it instead of creating a twin.
	var duplicate models.Appointment
	err := database.DB.
		Where("workspace_id = ? AND trainer_id = ? AND client_id = ? AND start_time = ? AND end_time = ? AND status <> ?",
			settings.WorkspaceID, settings.TrainerID, clientID, start, end, models.AppointmentCancelled).
		First(&duplicate).Error
	if err == nil {
		return "imported", linkMapping(settings, existing, event, duplicate.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	appt := models.Appointment{
		WorkspaceID: settings.WorkspaceID,
		TrainerID:   settings.TrainerID,
		ClientID:    clientID,
		StartTime:   start,
		EndTime:     end,
		Status:      models.AppointmentScheduled,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&appt).Error; err != nil {
			return err
		}
		return linkMappingTx(tx, settings, existing, event, appt.ID)
	})
	if err != nil {
		return "", err
	}
	return "imported", nil
}

func linkMapping(settings *models.TrainerSettings, existing *models.CalendarEventMapping, event calendar.Event, apptID uuid.UUID) error {
	return linkMappingTx(database.DB, settings, existing, event, apptID)
}

func linkMappingTx(tx *gorm.DB, settings *models.TrainerSettings, existing *models.CalendarEventMapping, event calendar.Event, apptID uuid.UUID) error {
	now := time.Now()
	if existing != nil {
		existing.AttachAppointment(apptID)
		existing.LastSyncedAt = now
		return tx.Save(existing).Error
	}

	mapping := models.CalendarEventMapping{
		WorkspaceID:        settings.WorkspaceID,
		AppointmentID:      &apptID,
		Provider:           models.ProviderGoogle,
		ExternalEventID:    event.ID,
		ExternalCalendarID: settings.GoogleCalendarID,
		SyncDirection:      models.SyncDirectionInbound,
		LastSyncedAt:       now,
	}
	return tx.Create(&mapping).Error
}

func createPendingAppointment(settings *models.TrainerSettings, event calendar.Event, extracted *ExtractedClient, clientID uuid.UUID, matched bool, start, end time.Time) (string, error) {
	// Idempotent: one pending record per external event.
	var count int64
	err := database.DB.Model(&models.PendingAppointment{}).
		Where("trainer_id = ? AND external_event_id = ?", settings.TrainerID, event.ID).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	if count > 0 {
		return "skipped", nil
	}

	pending := models.PendingAppointment{
		WorkspaceID:        settings.WorkspaceID,
		TrainerID:          settings.TrainerID,
		ExternalEventID:    event.ID,
		ExternalEventTitle: event.Summary,
		StartTime:          start,
		EndTime:            end,
		MatchConfidence:    extracted.Confidence,
		MatchReason:        describeConfidence(extracted),
		Status:             models.PendingStatusPending,
	}
	if matched {
		pending.SuggestedClientID = &clientID
	}

	if err := database.DB.Create(&pending).Error; err != nil {
		return "", err
	}

	websocket.Notify(settings.TrainerID, websocket.NotifyPendingAppointment, pending)
	return "pending", nil
}

func importBlockedTime(settings *models.TrainerSettings, existing *models.CalendarEventMapping, event calendar.Event, start, end time.Time) (string, error) {
	reason := event.Summary
	if reason == "" {
		reason = "Imported from Google Calendar"
	}

	blocked := models.BlockedTime{
		WorkspaceID: settings.WorkspaceID,
		TrainerID:   settings.TrainerID,
		StartTime:   start,
		EndTime:     end,
		Reason:      reason,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&blocked).Error; err != nil {
			return err
		}

		now := time.Now()
		if existing != nil {
			existing.AttachBlockedTime(blocked.ID)
			existing.LastSyncedAt = now
			return tx.Save(existing).Error
		}

		mapping := models.CalendarEventMapping{
			WorkspaceID:        settings.WorkspaceID,
			BlockedTimeID:      &blocked.ID,
			Provider:           models.ProviderGoogle,
			ExternalEventID:    event.ID,
			ExternalCalendarID: settings.GoogleCalendarID,
			SyncDirection:      models.SyncDirectionInbound,
			LastSyncedAt:       now,
		}
		return tx.Create(&mapping).Error
	})
	if err != nil {
		return "", err
	}
	return "blocked", nil
}

// StripStatusGlyphs removes the status prefixes this system writes to
// outbound event titles, so a previously-synced title still resolves to the
// same client if it comes back around.
func StripStatusGlyphs(title string) string {
	t := strings.TrimSpace(title)
	for _, glyph := range []string{"✓", "✗", "↻"} {
		t = strings.TrimPrefix(t, glyph)
	}
	return strings.TrimSpace(t)
}
