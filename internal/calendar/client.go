package calendar

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// How far ahead events are fetched and how many at most. Mirrors the
// window the frontend expects.
const (
	lookaheadDays    = 30
	defaultMaxEvents = 50
)

// conferencingHosts are the URL fragments that identify a joinable meeting.
var conferencingHosts = []string{
	"zoom.us",
	"zoom.com",
	"teams.microsoft.com",
	"teams.live.com",
	"meet.google.com",
	"webex.com",
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// Client wraps the Google Calendar service for one connected account.
type Client struct {
	svc     *calendar.Service
	account string
}

// NewClient creates a Calendar client backed by the given token source.
// The account identifier is only used for labeling, not authentication.
func NewClient(ctx context.Context, account string, ts oauth2.TokenSource) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc, account: account}, nil
}

// Account returns the account identifier this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// UpcomingEvents lists the next 30 days of the primary calendar, normalized
// to the backend's Event shape. Events without usable start and end times
// are skipped.
func (c *Client) UpcomingEvents(maxResults int64) ([]Event, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxEvents
	}

	now := time.Now().UTC()
	result, err := c.svc.Events.List("primary").
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, lookaheadDays).Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var events []Event
	for _, item := range result.Items {
		event, ok := toEvent(item)
		if !ok {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// toEvent normalizes a raw calendar event. All-day events are expanded to
// cover the whole day so downstream duration math stays sane.
func toEvent(item *calendar.Event) (Event, bool) {
	start := eventTime(item.Start, "T00:00:00Z")
	end := eventTime(item.End, "T23:59:59Z")
	if start == "" || end == "" {
		return Event{}, false
	}

	title := item.Summary
	if title == "" {
		title = "No Title"
	}

	var attendees []Attendee
	for _, a := range item.Attendees {
		status := a.ResponseStatus
		if status == "" {
			status = "needsAction"
		}
		attendees = append(attendees, Attendee{
			Email:          a.Email,
			Name:           a.DisplayName,
			ResponseStatus: status,
		})
	}

	event := Event{
		ID:            item.Id,
		Title:         title,
		Description:   item.Description,
		StartTime:     start,
		EndTime:       end,
		Location:      item.Location,
		Attendees:     attendees,
		MeetingURL:    FindMeetingURL(item.Description, item.Location),
		Status:        item.Status,
		HTMLLink:      item.HtmlLink,
		GoogleEventID: item.Id,
	}
	if item.Creator != nil {
		event.Creator = item.Creator.Email
	}
	if item.Organizer != nil {
		event.Organizer = item.Organizer.Email
	}
	return event, true
}

func eventTime(edt *calendar.EventDateTime, daySuffix string) string {
	if edt == nil {
		return ""
	}
	if edt.DateTime != "" {
		return edt.DateTime
	}
	if edt.Date != "" {
		return edt.Date + daySuffix
	}
	return ""
}

// FindMeetingURL returns the first URL in any of the given texts that
// points at a known conferencing host, or "" if none is present.
func FindMeetingURL(texts ...string) string {
	for _, text := range texts {
		if text == "" {
			continue
		}
		for _, url := range urlPattern.FindAllString(text, -1) {
			if IsConferencingURL(url) {
				return url
			}
		}
	}
	return ""
}

// IsConferencingURL reports whether a URL belongs to a supported meeting
// platform.
func IsConferencingURL(url string) bool {
	lower := strings.ToLower(url)
	for _, host := range conferencingHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}
