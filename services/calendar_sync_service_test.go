package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wanjiru2468/fitness_trainer/calendar"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
)

type fakeCalendarAPI struct {
	events    []calendar.Event
	created   []calendar.EventPayload
	updated   map[string]calendar.EventPayload
	deleted   []string
	nextID    string
	deleteErr error
	listCalls int
}

func (f *fakeCalendarAPI) ListEvents(settings *models.TrainerSettings, from, to time.Time) ([]calendar.Event, error) {
	f.listCalls++
	return f.events, nil
}

func (f *fakeCalendarAPI) CreateEvent(settings *models.TrainerSettings, payload calendar.EventPayload) (string, error) {
	f.created = append(f.created, payload)
	if f.nextID == "" {
		f.nextID = "remote-evt-1"
	}
	return f.nextID, nil
}

func (f *fakeCalendarAPI) UpdateEvent(settings *models.TrainerSettings, eventID string, payload calendar.EventPayload) error {
	if f.updated == nil {
		f.updated = make(map[string]calendar.EventPayload)
	}
	f.updated[eventID] = payload
	return nil
}

func (f *fakeCalendarAPI) DeleteEvent(settings *models.TrainerSettings, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return f.deleteErr
}

func setupFakeCalendar(t *testing.T) *fakeCalendarAPI {
	t.Helper()
	fake := &fakeCalendarAPI{}
	orig := calendar.Client
	calendar.Client = fake
	t.Cleanup(func() { calendar.Client = orig })
	return fake
}

func connectedSettings(t *testing.T, workspaceID, trainerID uuid.UUID) models.TrainerSettings {
	t.Helper()
	return createTrainerSettings(t, workspaceID, trainerID, models.TrainerSettings{
		AutoSyncEnabled:         true,
		GoogleCalendarConnected: true,
		GoogleCalendarID:        "primary",
	})
}

func TestSyncAppointmentToGoogleCreatesOutboundMapping(t *testing.T) {
	setupTestDB(t)
	fake := setupFakeCalendar(t)

	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	settings := connectedSettings(t, ws.ID, trainer.ID)
	client, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{SessionRate: 80})
	appt := createAppointment(t, ws.ID, trainer.ID, client.ID, at(10, 0), at(11, 0), models.AppointmentCompleted)

	if err := SyncAppointmentToGoogle(appt, settings); err != nil {
		t.Fatalf("SyncAppointmentToGoogle failed: %v", err)
	}

	if len(fake.created) != 1 {
		t.Fatalf("created events = %d, want 1", len(fake.created))
	}
	payload := fake.created[0]
	if payload.Summary != "✓ Alice Adams" {
		t.Errorf("summary = %q, want glyph-prefixed client name", payload.Summary)
	}
	if payload.ColorID != "2" {
		t.Errorf("color id = %q, want 2 for completed", payload.ColorID)
	}

	var mapping models.CalendarEventMapping
	if err := database.DB.First(&mapping, "appointment_id = ?", appt.ID).Error; err != nil {
		t.Fatalf("outbound mapping not created: %v", err)
	}
	if mapping.SyncDirection != models.SyncDirectionOutbound {
		t.Errorf("sync direction = %s, want outbound", mapping.SyncDirection)
	}
	if mapping.ExternalEventID != "remote-evt-1" {
		t.Errorf("external event id = %s, want remote-evt-1", mapping.ExternalEventID)
	}
}

func TestSyncAppointmentToGoogleUpdatesInPlace(t *testing.T) {
	setupTestDB(t)
	fake := setupFakeCalendar(t)

	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	settings := connectedSettings(t, ws.ID, trainer.ID)
	client, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{SessionRate: 80})
	appt := createAppointment(t, ws.ID, trainer.ID, client.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)

	if err := SyncAppointmentToGoogle(appt, settings); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	appt.Status = models.AppointmentRescheduled
	if err := SyncAppointmentToGoogle(appt, settings); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	if len(fake.created) != 1 {
		t.Errorf("created events = %d, want 1 (second sync must update)", len(fake.created))
	}
	payload, ok := fake.updated["remote-evt-1"]
	if !ok {
		t.Fatal("second sync should update the existing remote event")
	}
	if payload.Summary != "↻ Alice Adams" {
		t.Errorf("updated summary = %q, want rescheduled glyph", payload.Summary)
	}

	var count int64
	database.DB.Model(&models.CalendarEventMapping{}).Count(&count)
	if count != 1 {
		t.Errorf("mapping count = %d, want 1", count)
	}
}

func TestSyncAppointmentToGoogleNoOpWhenDisabled(t *testing.T) {
	setupTestDB(t)
	fake := setupFakeCalendar(t)

	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	settings := createTrainerSettings(t, ws.ID, trainer.ID, models.TrainerSettings{AutoSyncEnabled: false})
	client, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{SessionRate: 80})
	appt := createAppointment(t, ws.ID, trainer.ID, client.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)

	if err := SyncAppointmentToGoogle(appt, settings); err != nil {
		t.Fatalf("disabled sync must be a silent no-op, got: %v", err)
	}
	if len(fake.created) != 0 {
		t.Error("disabled sync must never call the provider")
	}
}

func TestDeleteAppointmentFromGoogleSwallowsRemoteErrors(t *testing.T) {
	setupTestDB(t)
	fake := setupFakeCalendar(t)
	fake.deleteErr = errors.New("remote event already gone")

	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	settings := connectedSettings(t, ws.ID, trainer.ID)
	client, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{SessionRate: 80})
	appt := createAppointment(t, ws.ID, trainer.ID, client.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)

	apptID := appt.ID
	mapping := models.CalendarEventMapping{
		WorkspaceID:     ws.ID,
		AppointmentID:   &apptID,
		Provider:        models.ProviderGoogle,
		ExternalEventID: "remote-evt-9",
		SyncDirection:   models.SyncDirectionOutbound,
		LastSyncedAt:    time.Now(),
	}
	if err := database.DB.Create(&mapping).Error; err != nil {
		t.Fatalf("failed to create mapping: %v", err)
	}

	if err := DeleteAppointmentFromGoogle(appt, settings); err != nil {
		t.Fatalf("remote delete failure must not propagate, got: %v", err)
	}
	if len(fake.deleted) != 1 {
		t.Errorf("delete calls = %d, want 1", len(fake.deleted))
	}

	var count int64
	database.DB.Model(&models.CalendarEventMapping{}).Count(&count)
	if count != 0 {
		t.Error("mapping must be removed even when the remote delete fails")
	}
}

func TestDeleteAppointmentFromGoogleWithoutMapping(t *testing.T) {
	setupTestDB(t)
	fake := setupFakeCalendar(t)

	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	settings := connectedSettings(t, ws.ID, trainer.ID)
	client, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{SessionRate: 80})
	appt := createAppointment(t, ws.ID, trainer.ID, client.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)

	if err := DeleteAppointmentFromGoogle(appt, settings); err != nil {
		t.Fatalf("unmapped appointment delete must be a no-op, got: %v", err)
	}
	if len(fake.deleted) != 0 {
		t.Error("no remote call expected for an unmapped appointment")
	}
}

func TestPullNeverReabsorbsOutboundEvents(t *testing.T) {
	setupTestDB(t)
	fake := setupFakeCalendar(t)

	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	connectedSettings(t, ws.ID, trainer.ID)
	client, _ := createClient(t, ws.ID, trainer.ID, "Alice Adams", "alice@gym.test", models.ClientProfile{SessionRate: 80})
	appt := createAppointment(t, ws.ID, trainer.ID, client.ID, at(10, 0), at(11, 0), models.AppointmentScheduled)

	apptID := appt.ID
	mapping := models.CalendarEventMapping{
		WorkspaceID:     ws.ID,
		AppointmentID:   &apptID,
		Provider:        models.ProviderGoogle,
		ExternalEventID: "remote-evt-1",
		SyncDirection:   models.SyncDirectionOutbound,
		LastSyncedAt:    time.Now(),
	}
	if err := database.DB.Create(&mapping).Error; err != nil {
		t.Fatalf("failed to create mapping: %v", err)
	}

	// The remote copy of our own event comes back with a glyph prefix.
	fake.events = []calendar.Event{timedEvent("remote-evt-1", "✓ Alice Adams")}

	result, err := PullGoogleCalendarEvents(trainer.ID)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}

	var count int64
	database.DB.Model(&models.Appointment{}).Count(&count)
	if count != 1 {
		t.Errorf("appointment count = %d, want 1 (no echo import)", count)
	}
}

func TestPullImportsHighConfidenceMatch(t *testing.T) {
	setupTestDB(t)
	fake := setupFakeCalendar(t)

	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	connectedSettings(t, ws.ID, trainer.ID)
	client, _ := createClient(t, ws.ID, trainer.ID, "John Smith", "john@clients.test", models.ClientProfile{SessionRate: 80})

	event := timedEvent("remote-evt-2", "Training: John Smith")
	event.Description = "Strength work"
	event.Attendees = []calendar.Attendee{
		{Email: "trainer@gym.test", Organizer: true},
		{Email: "john@clients.test"},
	}
	fake.events = []calendar.Event{event}

	result, err := PullGoogleCalendarEvents(trainer.ID)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("imported = %d, want 1", result.Imported)
	}

	var appt models.Appointment
	if err := database.DB.First(&appt, "client_id = ?", client.ID).Error; err != nil {
		t.Fatalf("appointment not imported: %v", err)
	}
	if appt.Status != models.AppointmentScheduled {
		t.Errorf("imported status = %s, want SCHEDULED", appt.Status)
	}

	var mapping models.CalendarEventMapping
	if err := database.DB.First(&mapping, "external_event_id = ?", "remote-evt-2").Error; err != nil {
		t.Fatalf("inbound mapping not created: %v", err)
	}
	if mapping.SyncDirection != models.SyncDirectionInbound {
		t.Errorf("sync direction = %s, want inbound", mapping.SyncDirection)
	}
	if mapping.AppointmentID == nil || *mapping.AppointmentID != appt.ID {
		t.Error("mapping must reference the imported appointment")
	}

	// A second pull refreshes rather than duplicating.
	result, err = PullGoogleCalendarEvents(trainer.ID)
	if err != nil {
		t.Fatalf("second pull failed: %v", err)
	}
	if result.Updated != 1 {
		t.Errorf("second pull updated = %d, want 1", result.Updated)
	}
	var count int64
	database.DB.Model(&models.Appointment{}).Count(&count)
	if count != 1 {
		t.Errorf("appointment count = %d, want 1", count)
	}
}

func TestPullCreatesPendingForUncertainMatch(t *testing.T) {
	setupTestDB(t)
	fake := setupFakeCalendar(t)

	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	connectedSettings(t, ws.ID, trainer.ID)
	client, _ := createClient(t, ws.ID, trainer.ID, "Sarah Connor", "sarah@clients.test", models.ClientProfile{SessionRate: 80})

	// Name matches a client but the extraction signals are too weak for a
	// silent import.
	fake.events = []calendar.Event{timedEvent("remote-evt-3", "Sarah Connor")}

	result, err := PullGoogleCalendarEvents(trainer.ID)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if result.Pending != 1 {
		t.Fatalf("pending = %d, want 1", result.Pending)
	}

	var pending models.PendingAppointment
	if err := database.DB.First(&pending, "trainer_id = ?", trainer.ID).Error; err != nil {
		t.Fatalf("pending appointment not created: %v", err)
	}
	if pending.SuggestedClientID == nil || *pending.SuggestedClientID != client.ID {
		t.Error("pending appointment should carry the suggested client")
	}
	if pending.ExternalEventID != "remote-evt-3" {
		t.Errorf("external event id = %s, want remote-evt-3", pending.ExternalEventID)
	}

	var apptCount int64
	database.DB.Model(&models.Appointment{}).Count(&apptCount)
	if apptCount != 0 {
		t.Error("uncertain matches must never create appointments directly")
	}

	// The same event on the next pull does not duplicate the pending record.
	if _, err := PullGoogleCalendarEvents(trainer.ID); err != nil {
		t.Fatalf("second pull failed: %v", err)
	}
	var pendingCount int64
	database.DB.Model(&models.PendingAppointment{}).Count(&pendingCount)
	if pendingCount != 1 {
		t.Errorf("pending count = %d, want 1", pendingCount)
	}
}

func TestPullImportsBlockedTime(t *testing.T) {
	setupTestDB(t)
	fake := setupFakeCalendar(t)

	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	connectedSettings(t, ws.ID, trainer.ID)

	fake.events = []calendar.Event{timedEvent("remote-evt-4", "Team meeting")}

	result, err := PullGoogleCalendarEvents(trainer.ID)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if result.Blocked != 1 {
		t.Fatalf("blocked = %d, want 1", result.Blocked)
	}

	var blocked models.BlockedTime
	if err := database.DB.First(&blocked, "trainer_id = ?", trainer.ID).Error; err != nil {
		t.Fatalf("blocked time not created: %v", err)
	}
	if blocked.Reason != "Team meeting" {
		t.Errorf("blocked reason = %q, want the event title", blocked.Reason)
	}

	var mapping models.CalendarEventMapping
	if err := database.DB.First(&mapping, "external_event_id = ?", "remote-evt-4").Error; err != nil {
		t.Fatalf("blocked-time mapping not created: %v", err)
	}
	if mapping.BlockedTimeID == nil || *mapping.BlockedTimeID != blocked.ID {
		t.Error("mapping must reference the blocked time")
	}

	// Subsequent pulls refresh the window, they never re-classify.
	moved := timedEvent("remote-evt-4", "Team meeting")
	start, end := at(14, 0), at(15, 0)
	moved.Start.DateTime = &start
	moved.End.DateTime = &end
	fake.events = []calendar.Event{moved}

	result, err = PullGoogleCalendarEvents(trainer.ID)
	if err != nil {
		t.Fatalf("second pull failed: %v", err)
	}
	if result.Updated != 1 {
		t.Errorf("second pull updated = %d, want 1", result.Updated)
	}
	database.DB.First(&blocked, "id = ?", blocked.ID)
	if !blocked.StartTime.Equal(start) {
		t.Errorf("blocked start = %v, want %v", blocked.StartTime, start)
	}
}

func TestPullSkipsAllDayEvents(t *testing.T) {
	setupTestDB(t)
	fake := setupFakeCalendar(t)

	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	connectedSettings(t, ws.ID, trainer.ID)

	fake.events = []calendar.Event{{
		ID:      "remote-evt-5",
		Summary: "John Smith",
		Start:   calendar.EventTime{Date: "2026-03-10"},
		End:     calendar.EventTime{Date: "2026-03-11"},
	}}

	result, err := PullGoogleCalendarEvents(trainer.ID)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
}

func TestPullNoOpWhenDisconnected(t *testing.T) {
	setupTestDB(t)
	fake := setupFakeCalendar(t)

	ws := createWorkspace(t)
	trainer := createTrainer(t, ws.ID, "trainer@gym.test")
	createTrainerSettings(t, ws.ID, trainer.ID, models.TrainerSettings{
		AutoSyncEnabled:         true,
		GoogleCalendarConnected: false,
	})

	result, err := PullGoogleCalendarEvents(trainer.ID)
	if err != nil {
		t.Fatalf("disconnected pull must be a silent no-op, got: %v", err)
	}
	if fake.listCalls != 0 {
		t.Error("disconnected pull must never call the provider")
	}
	if result.Imported+result.Updated+result.Pending+result.Blocked+result.Skipped != 0 {
		t.Errorf("expected an empty result, got %+v", result)
	}
}

func TestStripStatusGlyphs(t *testing.T) {
	cases := map[string]string{
		"✓ John Smith": "John Smith",
		"✗ John Smith": "John Smith",
		"↻ John Smith": "John Smith",
		"John Smith":   "John Smith",
	}
	for in, want := range cases {
		if got := StripStatusGlyphs(in); got != want {
			t.Errorf("StripStatusGlyphs(%q) = %q, want %q", in, got, want)
		}
	}
}
