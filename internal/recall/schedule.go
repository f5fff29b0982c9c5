package recall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/postmeetinghq/postmeeting/internal/calendar"
	"github.com/postmeetinghq/postmeeting/internal/logging"
)

// Reasons a bot cannot be dispatched for an event. Callers typically log
// these and move on rather than surfacing them as request failures.
var (
	ErrNoMeetingURL      = errors.New("no meeting URL found in event")
	ErrNotetakerDisabled = errors.New("notetaker disabled for event")
	ErrMeetingTooSoon    = errors.New("meeting start time is too soon")
)

// DetectPlatform identifies the conferencing platform from a meeting URL.
func DetectPlatform(meetingURL string) string {
	lower := strings.ToLower(meetingURL)
	switch {
	case strings.Contains(lower, "zoom.us") || strings.Contains(lower, "zoom.com"):
		return "zoom"
	case strings.Contains(lower, "teams.microsoft.com") || strings.Contains(lower, "teams.live.com"):
		return "teams"
	case strings.Contains(lower, "meet.google.com"):
		return "google_meet"
	case strings.Contains(lower, "webex.com"):
		return "webex"
	default:
		return "unknown"
	}
}

// ExtractMeetingInfo pulls the joinable-meeting metadata out of a calendar
// event. Events without a recognizable meeting URL yield ErrNoMeetingURL.
func ExtractMeetingInfo(event calendar.Event) (*MeetingInfo, error) {
	meetingURL := event.MeetingURL
	if meetingURL == "" {
		meetingURL = calendar.FindMeetingURL(event.Description, event.Location)
	}
	if meetingURL == "" {
		return nil, ErrNoMeetingURL
	}

	startTime, err := time.Parse(time.RFC3339, event.StartTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event start time: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, event.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event end time: %w", err)
	}

	title := event.Title
	if title == "" {
		title = "Untitled Meeting"
	}

	return &MeetingInfo{
		MeetingURL:      meetingURL,
		StartTime:       startTime,
		DurationMinutes: int(endTime.Sub(startTime).Minutes()),
		Platform:        DetectPlatform(meetingURL),
		Title:           title,
		Attendees:       event.Attendees,
	}, nil
}

// ScheduleBotForEvent dispatches a bot for a calendar event when the event
// has a meeting URL, the notetaker flag is on, and the meeting is still in
// the future.
func (c *Client) ScheduleBotForEvent(ctx context.Context, event calendar.Event, joinBeforeMinutes int) (*BotSchedule, error) {
	info, err := ExtractMeetingInfo(event)
	if err != nil {
		return nil, err
	}

	if !event.NotetakerEnabled {
		return nil, ErrNotetakerDisabled
	}

	if !info.StartTime.After(time.Now()) {
		c.logger.Warn("meeting start time is in the past, skipping bot creation",
			logging.MeetingID(event.ID),
			slog.Time("start_time", info.StartTime))
		return nil, ErrMeetingTooSoon
	}

	raw, err := c.CreateBot(ctx, info.MeetingURL, info.StartTime, joinBeforeMinutes)
	if err != nil {
		return nil, err
	}

	schedule := &BotSchedule{
		BotID:        gjson.GetBytes(raw, "id").String(),
		MeetingInfo:  *info,
		ScheduledFor: info.StartTime.Add(-time.Duration(joinBeforeMinutes) * time.Minute),
		Status:       "scheduled",
	}

	c.logger.Info("scheduled bot for event",
		logging.MeetingID(event.ID),
		logging.BotID(schedule.BotID),
		logging.Platform(info.Platform))
	return schedule, nil
}
