package services

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/wanjiru2468/fitness_trainer/calendar"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
	"github.com/wanjiru2468/fitness_trainer/websocket"
)

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ExtractedClient is a candidate client pulled out of a calendar event.
type ExtractedClient struct {
	Name            string
	Email           string
	Confidence      string
	ConfidenceScore int
	Reason          string
	SourceEventID   string
}

// Titles matching any of these are never client sessions.
var nonClientPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(meeting|standup|stand-up|sync|call|interview|1:1 review)\b`),
	regexp.MustCompile(`(?i)\b(lunch|dinner|breakfast|brunch|coffee)\b`),
	regexp.MustCompile(`(?i)\b(blocked|busy|unavailable|hold|dnd|do not disturb)\b`),
	regexp.MustCompile(`(?i)\b(workout|gym|cardio|legs|chest|back day|leg day|stretching|mobility|run|yoga)\b`),
	regexp.MustCompile(`(?i)\b(vacation|holiday|ooo|out of office|day off|travel)\b`),
}

// Vocabulary that disqualifies a stripped candidate from being a human name.
var nonNameVocabulary = regexp.MustCompile(`(?i)\b(session|training|class|appointment|event|reminder|meeting|workout|gym)\b`)

var titlePrefixes = []string{"training:", "client:", "with:", "session:", "pt:"}

// Confidence weights, kept in one table so they stay tunable independently
// of the extraction flow.
var confidenceWeights = map[string]int{
	"email_present":    30,
	"multi_word_name":  20,
	"has_attendees":    15,
	"one_on_one_event": 15,
	"has_description":  10,
}

const (
	confidenceHighThreshold   = 60
	confidenceMediumThreshold = 30
)

// ExtractClientFromEvent pulls a candidate client name (and, when
// unambiguous, an email) from a remote calendar event. Returns nil when the
// event does not look like a client session.
func ExtractClientFromEvent(event calendar.Event) *ExtractedClient {
	title := strings.TrimSpace(event.Summary)
	if title == "" {
		return nil
	}

	for _, pattern := range nonClientPatterns {
		if pattern.MatchString(title) {
			return nil
		}
	}

	name := stripTitlePrefixes(title)
	if !looksLikeHumanName(name) {
		return nil
	}

	email := extractAttendeeEmail(event.Attendees)

	score := 0
	var reasons []string
	if email != "" {
		score += confidenceWeights["email_present"]
		reasons = append(reasons, "attendee email found")
	}
	if len(strings.Fields(name)) >= 2 {
		score += confidenceWeights["multi_word_name"]
		reasons = append(reasons, "full name in title")
	}
	if len(event.Attendees) > 0 {
		score += confidenceWeights["has_attendees"]
		reasons = append(reasons, "event has attendees")
	}
	if len(event.Attendees) == 2 {
		score += confidenceWeights["one_on_one_event"]
		reasons = append(reasons, "1-on-1 event")
	}
	if strings.TrimSpace(event.Description) != "" {
		score += confidenceWeights["has_description"]
		reasons = append(reasons, "event has description")
	}

	confidence := ConfidenceLow
	if score >= confidenceHighThreshold {
		confidence = ConfidenceHigh
	} else if score >= confidenceMediumThreshold {
		confidence = ConfidenceMedium
	}

	return &ExtractedClient{
		Name:            name,
		Email:           email,
		Confidence:      confidence,
		ConfidenceScore: score,
		Reason:          strings.Join(reasons, ", "),
		SourceEventID:   event.ID,
	}
}

func stripTitlePrefixes(title string) string {
	name := strings.TrimSpace(title)
	for _, prefix := range titlePrefixes {
		if len(name) > len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			name = strings.TrimSpace(name[len(prefix):])
		}
	}
	return name
}

func looksLikeHumanName(name string) bool {
	if len(name) < 2 || len(name) > 50 {
		return false
	}

	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}

	if nonNameVocabulary.MatchString(name) {
		return false
	}

	words := strings.Fields(name)
	if len(words) >= 2 {
		if name == strings.ToUpper(name) || name == strings.ToLower(name) {
			return false
		}
	}

	return true
}

// extractAttendeeEmail returns an email only when exactly one non-organizer,
// non-declined attendee exists. Zero or several candidates is ambiguous.
func extractAttendeeEmail(attendees []calendar.Attendee) string {
	var candidates []string
	for _, a := range attendees {
		if a.Organizer || a.ResponseStatus == "declined" {
			continue
		}
		if a.Email != "" {
			candidates = append(candidates, a.Email)
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return ""
}

var punctuationStripper = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
var whitespaceCollapser = regexp.MustCompile(`\s+`)

// NormalizeName lowercases, trims, collapses whitespace and strips
// punctuation for comparison purposes.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = punctuationStripper.ReplaceAllString(n, "")
	n = whitespaceCollapser.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// NamesMatch reports whether two names refer to the same person. Exact
// normalized matches win; otherwise single-word names match when the word
// appears in the other name, and multi-word names match when at least 75% of
// the shorter name's words appear in the longer one (a single-letter word
// matches any word's initial, so "j smith" matches "john smith").
func NamesMatch(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	wordsA := strings.Fields(na)
	wordsB := strings.Fields(nb)

	if len(wordsA) == 1 {
		return wordInSet(wordsA[0], wordsB)
	}
	if len(wordsB) == 1 {
		return wordInSet(wordsB[0], wordsA)
	}

	shorter, longer := wordsA, wordsB
	if len(wordsB) < len(wordsA) {
		shorter, longer = wordsB, wordsA
	}

	matched := 0
	for _, w := range shorter {
		if wordInSet(w, longer) {
			matched++
		}
	}
	return float64(matched)/float64(len(shorter)) >= 0.75
}

func wordInSet(word string, set []string) bool {
	for _, candidate := range set {
		if word == candidate {
			return true
		}
		if len(word) == 1 && strings.HasPrefix(candidate, word) {
			return true
		}
		if len(candidate) == 1 && strings.HasPrefix(word, candidate) {
			return true
		}
	}
	return false
}

// FindMatchingClient resolves an extracted candidate against the trainer's
// active clients. Email match wins over name match.
func FindMatchingClient(workspaceID, trainerID uuid.UUID, extracted *ExtractedClient) (uuid.UUID, bool) {
	var clients []models.User
	err := database.DB.
		Joins("JOIN client_profiles ON client_profiles.user_id = users.id").
		Where("client_profiles.workspace_id = ? AND client_profiles.trainer_id = ? AND users.is_active = ?", workspaceID, trainerID, true).
		Find(&clients).Error
	if err != nil {
		log.Printf("🔥 Failed to load clients for matching: %v", err)
		return uuid.Nil, false
	}

	if extracted.Email != "" {
		for _, c := range clients {
			if strings.EqualFold(c.Email, extracted.Email) {
				return c.ID, true
			}
		}
	}

	for _, c := range clients {
		if NormalizeName(c.FullName) == NormalizeName(extracted.Name) {
			return c.ID, true
		}
	}

	for _, c := range clients {
		if NamesMatch(c.FullName, extracted.Name) {
			return c.ID, true
		}
	}

	return uuid.Nil, false
}

// findMatchingPendingProfile searches the pending pool, including rejected
// profiles, so previously dismissed suggestions are never re-surfaced.
func findMatchingPendingProfile(workspaceID, trainerID uuid.UUID, extracted *ExtractedClient) (*models.PendingClientProfile, bool) {
	var profiles []models.PendingClientProfile
	err := database.DB.
		Where("workspace_id = ? AND trainer_id = ?", workspaceID, trainerID).
		Find(&profiles).Error
	if err != nil {
		log.Printf("🔥 Failed to load pending client profiles: %v", err)
		return nil, false
	}

	if extracted.Email != "" {
		for i := range profiles {
			if profiles[i].ExtractedEmail != nil && strings.EqualFold(*profiles[i].ExtractedEmail, extracted.Email) {
				return &profiles[i], true
			}
		}
	}

	for i := range profiles {
		if NormalizeName(profiles[i].ExtractedName) == NormalizeName(extracted.Name) {
			return &profiles[i], true
		}
	}

	for i := range profiles {
		if NamesMatch(profiles[i].ExtractedName, extracted.Name) {
			return &profiles[i], true
		}
	}

	return nil, false
}

// AggregatePendingClient folds one extraction into the pending pool:
// existing active clients are skipped, matching pending rows accumulate
// occurrences (2 bumps confidence to medium, 3+ to high), and rejected rows
// swallow the candidate silently.
func AggregatePendingClient(workspaceID, trainerID uuid.UUID, extracted *ExtractedClient) error {
	if _, found := FindMatchingClient(workspaceID, trainerID, extracted); found {
		return nil
	}

	existing, found := findMatchingPendingProfile(workspaceID, trainerID, extracted)
	if found {
		if existing.Status == models.PendingStatusRejected {
			return nil
		}

		for _, id := range existing.SourceEventIDs {
			if id == extracted.SourceEventID {
				return nil
			}
		}

		existing.SourceEventIDs = append(existing.SourceEventIDs, extracted.SourceEventID)
		existing.OccurrenceCount++
		if existing.ExtractedEmail == nil && extracted.Email != "" {
			email := extracted.Email
			existing.ExtractedEmail = &email
		}
		existing.ExtractionConfidence = occurrenceConfidence(existing.OccurrenceCount, existing.ExtractionConfidence)
		return database.DB.Save(existing).Error
	}

	profile := models.PendingClientProfile{
		WorkspaceID:          workspaceID,
		TrainerID:            trainerID,
		Source:               "google_calendar",
		SourceEventIDs:       []string{extracted.SourceEventID},
		ExtractedName:        extracted.Name,
		ExtractionConfidence: extracted.Confidence,
		OccurrenceCount:      1,
		Status:               models.PendingStatusPending,
	}
	if extracted.Email != "" {
		email := extracted.Email
		profile.ExtractedEmail = &email
	}
	if err := database.DB.Create(&profile).Error; err != nil {
		return err
	}

	websocket.Notify(trainerID, websocket.NotifyPendingClient, profile)
	return nil
}

func occurrenceConfidence(occurrences int, current string) string {
	switch {
	case occurrences >= 3:
		return ConfidenceHigh
	case occurrences == 2 && current != ConfidenceHigh:
		return ConfidenceMedium
	default:
		return current
	}
}

// ExtractPendingClients runs extraction and aggregation over an event batch.
// Individual failures are logged and never abort the batch.
func ExtractPendingClients(workspaceID, trainerID uuid.UUID, events []calendar.Event) {
	for _, event := range events {
		if event.Start.DateTime == nil || event.End.DateTime == nil {
			continue
		}
		extracted := ExtractClientFromEvent(event)
		if extracted == nil {
			continue
		}
		if err := AggregatePendingClient(workspaceID, trainerID, extracted); err != nil {
			log.Printf("🔥 Failed to aggregate pending client %q: %v", extracted.Name, err)
		}
	}
}

// describeConfidence is used for pending appointment reasons.
func describeConfidence(extracted *ExtractedClient) string {
	return fmt.Sprintf("%s confidence (%d): %s", extracted.Confidence, extracted.ConfidenceScore, extracted.Reason)
}
