package recall

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/postmeetinghq/postmeeting/internal/calendar"
)

// CompletedBot is the result of a poll cycle finding a bot with a recording.
// Status carries the raw first-recording object from the Recall API so the
// route layer can pass it through untouched.
type CompletedBot struct {
	BotID      string          `json:"bot_id"`
	Status     json.RawMessage `json:"status"`
	MeetingURL string          `json:"meeting_url,omitempty"`
	StartTime  string          `json:"start_time,omitempty"`
	EndTime    string          `json:"end_time,omitempty"`
	Transcript string          `json:"transcript"`
}

// MeetingInfo is the joinable-meeting metadata extracted from a calendar
// event before a bot is dispatched.
type MeetingInfo struct {
	MeetingURL      string              `json:"meeting_url"`
	StartTime       time.Time           `json:"start_time"`
	DurationMinutes int                 `json:"duration_minutes"`
	Platform        string              `json:"platform"`
	Title           string              `json:"title"`
	Attendees       []calendar.Attendee `json:"attendees"`
}

// BotSchedule describes a successfully dispatched bot.
type BotSchedule struct {
	BotID        string      `json:"bot_id"`
	MeetingInfo  MeetingInfo `json:"meeting_info"`
	ScheduledFor time.Time   `json:"scheduled_for"`
	Status       string      `json:"status"`
}

// BotSummary is the condensed status shape returned by the bot listing
// endpoint.
type BotSummary struct {
	BotID      string `json:"bot_id"`
	Status     string `json:"status"`
	MeetingURL string `json:"meeting_url,omitempty"`
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
}

// Error wraps a failure in a Recall operation.
type Error struct {
	// Op is the operation that failed (e.g. "createBot", "transcript")
	Op string

	// BotID is the bot the operation concerned, when there is one
	BotID string

	// Err is the underlying error
	Err error
}

func (e *Error) Error() string {
	if e.BotID != "" {
		return fmt.Sprintf("recall %s (bot: %s): %v", e.Op, e.BotID, e.Err)
	}
	return fmt.Sprintf("recall %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
