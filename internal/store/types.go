package store

import (
	"github.com/postmeetinghq/postmeeting/internal/calendar"
	"github.com/postmeetinghq/postmeeting/internal/recall"
)

// Credential is a connected Google account's OAuth material plus the profile
// fields shown in account listings.
type Credential struct {
	AccountID    string `json:"account_id"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	TokenURI     string `json:"-"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture,omitempty"`
}

// ScheduledBot is a dispatched recording bot plus, after its meeting ends,
// the completion payload.
type ScheduledBot struct {
	recall.BotSchedule
	CompletedData *recall.CompletedBot `json:"completed_data,omitempty"`
}

// ScheduledBotEntry pairs a schedule with the event it belongs to, for
// ordered listings.
type ScheduledBotEntry struct {
	EventID string       `json:"event_id"`
	Bot     ScheduledBot `json:"bot"`
}

// CompletedMeeting is the permanent record written when a bot finishes. It
// joins the bot's output with the meeting info captured at scheduling time.
type CompletedMeeting struct {
	MeetingID   string              `json:"meeting_id"`
	BotID       string              `json:"bot_id"`
	Transcript  string              `json:"transcript"`
	MediaURL    string              `json:"media_url"`
	Status      string              `json:"status"`
	CompletedAt string              `json:"completed_at"`
	Duration    int                 `json:"duration"`
	Attendees   []calendar.Attendee `json:"attendees"`
	Platform    string              `json:"platform"`
	MeetingURL  string              `json:"meeting_url"`
	Title       string              `json:"title"`
}

// Settings is the single flat user-settings record.
type Settings struct {
	RecallJoinBeforeMinutes int    `json:"recallJoinBeforeMinutes"`
	EnableNotifications     bool   `json:"enableNotifications"`
	AutoGenerateContent     bool   `json:"autoGenerateContent"`
	DefaultPlatform         string `json:"defaultPlatform"`
	LinkedinPrompt          string `json:"linkedinPrompt"`
	FacebookPrompt          string `json:"facebookPrompt"`
}

// SettingsPatch is a partial settings update. Nil fields are not applied.
type SettingsPatch struct {
	RecallJoinBeforeMinutes *int    `json:"recallJoinBeforeMinutes"`
	EnableNotifications     *bool   `json:"enableNotifications"`
	AutoGenerateContent     *bool   `json:"autoGenerateContent"`
	DefaultPlatform         *string `json:"defaultPlatform"`
	LinkedinPrompt          *string `json:"linkedinPrompt"`
	FacebookPrompt          *string `json:"facebookPrompt"`
}

// DefaultSettings returns the settings a fresh deployment starts with.
func DefaultSettings() Settings {
	return Settings{
		RecallJoinBeforeMinutes: 5,
		EnableNotifications:     true,
		AutoGenerateContent:     true,
		DefaultPlatform:         "zoom",
		LinkedinPrompt:          "Draft a LinkedIn post (120-180 words) that summarizes the meeting value in first person. Use a warm, conversational tone consistent with an experienced financial advisor. End with up to three hashtags. Return only the post text.",
		FacebookPrompt:          "Write a Facebook post (100-150 words) that summarizes the meeting value in first person. Use a friendly, conversational tone that's engaging for Facebook. Include 2-3 relevant hashtags at the end. Make it shareable and engaging for Facebook audience. Return only the post text.",
	}
}
