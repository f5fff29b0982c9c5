package calendar

// Attendee represents a single invitee on a calendar event.
type Attendee struct {
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	ResponseStatus string `json:"response_status"`
}

// Event is the normalized shape of a Google Calendar event as the rest of
// the backend consumes it. Times are kept as RFC3339 strings because they
// travel straight through the JSON API.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Location    string     `json:"location"`
	Attendees   []Attendee `json:"attendees"`
	MeetingURL  string     `json:"meeting_url,omitempty"`
	Creator     string     `json:"creator,omitempty"`
	Organizer   string     `json:"organizer,omitempty"`
	Status      string     `json:"status,omitempty"`
	HTMLLink    string     `json:"html_link,omitempty"`

	// NotetakerEnabled defaults to false; the route layer overlays the
	// persisted per-event flag before returning events.
	NotetakerEnabled bool `json:"notetaker_enabled"`

	GoogleEventID      string `json:"google_event_id"`
	GoogleAccountEmail string `json:"google_account_email"`
	GoogleAccountName  string `json:"google_account_name,omitempty"`
	CalendarName       string `json:"calendar_name,omitempty"`
}

// AttendeeEmails returns the plain email list for prompt construction.
func AttendeeEmails(attendees []Attendee) []string {
	emails := make([]string, 0, len(attendees))
	for _, a := range attendees {
		if a.Email != "" {
			emails = append(emails, a.Email)
		}
	}
	return emails
}
