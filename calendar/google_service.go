package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	config "github.com/wanjiru2468/fitness_trainer/configs"
	"github.com/wanjiru2468/fitness_trainer/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleService talks to the Google Calendar API with the trainer's stored
// OAuth tokens. The token source refreshes expired access tokens through the
// stored refresh token.
type GoogleService struct{}

func oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.Config("GOOGLE_OAUTH_CLIENT_ID"),
		ClientSecret: config.Config("GOOGLE_OAUTH_CLIENT_SECRET"),
		RedirectURL:  config.Config("GOOGLE_OAUTH_REDIRECT_URL"),
		Scopes:       []string{gcal.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
}

func (g *GoogleService) service(ctx context.Context, settings *models.TrainerSettings) (*gcal.Service, error) {
	if settings.GoogleAccessToken == nil || settings.GoogleRefreshToken == nil {
		return nil, errors.New("trainer has no Google Calendar credentials")
	}

	token := &oauth2.Token{
		AccessToken:  *settings.GoogleAccessToken,
		RefreshToken: *settings.GoogleRefreshToken,
	}
	if settings.GoogleTokenExpiry != nil {
		token.Expiry = *settings.GoogleTokenExpiry
	}

	srv, err := gcal.NewService(ctx, option.WithTokenSource(oauthConfig().TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return srv, nil
}

func calendarID(settings *models.TrainerSettings) string {
	if settings.GoogleCalendarID == "" {
		return "primary"
	}
	return settings.GoogleCalendarID
}

func (g *GoogleService) ListEvents(settings *models.TrainerSettings, from, to time.Time) ([]Event, error) {
	ctx := context.Background()
	srv, err := g.service(ctx, settings)
	if err != nil {
		return nil, err
	}

	var events []Event
	pageToken := ""
	for {
		call := srv.Events.List(calendarID(settings)).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(250)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list calendar events: %w", err)
		}

		for _, item := range resp.Items {
			events = append(events, fromGoogleEvent(item))
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return events, nil
}

func (g *GoogleService) CreateEvent(settings *models.TrainerSettings, payload EventPayload) (string, error) {
	ctx := context.Background()
	srv, err := g.service(ctx, settings)
	if err != nil {
		return "", err
	}

	created, err := srv.Events.Insert(calendarID(settings), toGoogleEvent(payload)).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	return created.Id, nil
}

func (g *GoogleService) UpdateEvent(settings *models.TrainerSettings, eventID string, payload EventPayload) error {
	ctx := context.Background()
	srv, err := g.service(ctx, settings)
	if err != nil {
		return err
	}

	if _, err := srv.Events.Update(calendarID(settings), eventID, toGoogleEvent(payload)).Do(); err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	return nil
}

func (g *GoogleService) DeleteEvent(settings *models.TrainerSettings, eventID string) error {
	ctx := context.Background()
	srv, err := g.service(ctx, settings)
	if err != nil {
		return err
	}

	if err := srv.Events.Delete(calendarID(settings), eventID).Do(); err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

func toGoogleEvent(payload EventPayload) *gcal.Event {
	return &gcal.Event{
		Summary:     payload.Summary,
		Description: payload.Description,
		ColorId:     payload.ColorID,
		Start: &gcal.EventDateTime{
			DateTime: payload.Start.Format(time.RFC3339),
			TimeZone: payload.Timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: payload.End.Format(time.RFC3339),
			TimeZone: payload.Timezone,
		},
	}
}

func fromGoogleEvent(item *gcal.Event) Event {
	ev := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
	}
	if item.Start != nil {
		ev.Start = parseEventTime(item.Start)
	}
	if item.End != nil {
		ev.End = parseEventTime(item.End)
	}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, Attendee{
			Email:          a.Email,
			Organizer:      a.Organizer,
			ResponseStatus: a.ResponseStatus,
		})
	}
	return ev
}

func parseEventTime(edt *gcal.EventDateTime) EventTime {
	et := EventTime{Date: edt.Date}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			et.DateTime = &t
		}
	}
	return et
}
