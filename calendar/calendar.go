package calendar

import (
	"time"

	"github.com/wanjiru2468/fitness_trainer/models"
)

// Event is the provider-neutral shape of a remote calendar event. All-day
// events carry a Date and no DateTime.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       EventTime
	End         EventTime
	Attendees   []Attendee
}

type EventTime struct {
	DateTime *time.Time
	Date     string
}

type Attendee struct {
	Email          string
	Organizer      bool
	ResponseStatus string
}

// EventPayload is what the platform writes to the remote calendar.
type EventPayload struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Timezone    string
	ColorID     string
}

// API is the narrow surface the sync engine needs from a calendar provider.
// Credentials travel on the trainer's settings row.
type API interface {
	ListEvents(settings *models.TrainerSettings, from, to time.Time) ([]Event, error)
	CreateEvent(settings *models.TrainerSettings, payload EventPayload) (string, error)
	UpdateEvent(settings *models.TrainerSettings, eventID string, payload EventPayload) error
	DeleteEvent(settings *models.TrainerSettings, eventID string) error
}

// Client is the provider used by the sync engine. main wires the Google
// implementation; tests substitute a fake.
var Client API
