package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postmeetinghq/postmeeting/internal/calendar"
)

// newTestClient builds a client against a stub API with an empty managed
// set so tests control exactly which bots are polled.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", srv.URL, nil)
	c.RemoveManagedBot(legacyBotID)
	return c, srv
}

func TestManagedSet(t *testing.T) {
	c := NewClient("k", "http://unused", nil)

	// The legacy bot is seeded on construction.
	assert.Equal(t, []string{legacyBotID}, c.ManagedBotIDs())

	c.AddManagedBot("bot-a")
	c.AddManagedBot("bot-b")
	c.RemoveManagedBot(legacyBotID)
	assert.Equal(t, []string{"bot-a", "bot-b"}, c.ManagedBotIDs())

	// Removal is idempotent.
	c.RemoveManagedBot("bot-a")
	c.RemoveManagedBot("bot-a")
	assert.Equal(t, []string{"bot-b"}, c.ManagedBotIDs())
}

func TestCreateBot(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("POST /bot", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"bot-123"}`)
	})

	c, _ := newTestClient(t, mux)

	start := time.Now().Add(time.Hour)
	raw, err := c.CreateBot(context.Background(), "https://zoom.us/j/1", start, 5)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "bot-123")

	assert.Equal(t, "Token test-key", gotAuth)
	assert.Equal(t, "https://zoom.us/j/1", gotPayload["meeting_url"])
	assert.Contains(t, gotPayload["bot_name"], "PostMeeting Bot - ")
	// Meeting captions are the transcript provider.
	cfg := gotPayload["recording_config"].(map[string]any)
	transcript := cfg["transcript"].(map[string]any)
	provider := transcript["provider"].(map[string]any)
	assert.Contains(t, provider, "meeting_captions")

	// The new bot joins the managed set.
	assert.Equal(t, []string{"bot-123"}, c.ManagedBotIDs())
}

func TestCreateBotTooSoon(t *testing.T) {
	c := NewClient("k", "http://unused", nil)

	// Join time (start minus lead) already passed.
	_, err := c.CreateBot(context.Background(), "https://zoom.us/j/1", time.Now().Add(2*time.Minute), 5)
	assert.ErrorIs(t, err, ErrMeetingTooSoon)
}

func TestCreateBotAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /bot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"invalid token"}`)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.CreateBot(context.Background(), "https://zoom.us/j/1", time.Now().Add(time.Hour), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
	assert.Empty(t, c.ManagedBotIDs())
}

func TestPollManagedBotsCompletion(t *testing.T) {
	transcriptPath := "/download/transcript.json"

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("GET /bot/bot-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"id": "bot-1",
			"meeting_url": "https://zoom.us/j/1",
			"start_time": "2026-08-30T10:00:00Z",
			"end_time": "2026-08-30T11:00:00Z",
			"recordings": [{
				"id": "rec-1",
				"media_shortcuts": {"transcript": {"data": {"download_url": "%s"}}}
			}]
		}`, srv.URL+transcriptPath)
	})
	mux.HandleFunc("GET "+transcriptPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"participant":{"name":"A"},"words":[{"text":"hi"}]}]`)
	})

	c, testSrv := newTestClient(t, mux)
	srv = testSrv
	c.AddManagedBot("bot-1")

	completed := c.PollManagedBots(context.Background())
	require.Len(t, completed, 1)
	assert.Equal(t, "bot-1", completed[0].BotID)
	assert.Equal(t, "A: hi", completed[0].Transcript)
	assert.Equal(t, "2026-08-30T11:00:00Z", completed[0].EndTime)
	assert.Contains(t, string(completed[0].Status), "rec-1")

	// The completed bot left the managed set; a second cycle is a no-op.
	assert.Empty(t, c.ManagedBotIDs())
	assert.Empty(t, c.PollManagedBots(context.Background()))
}

func TestPollManagedBotsPending(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /bot/bot-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"bot-1","status":{"code":"in_call_recording"},"recordings":[]}`)
	})

	c, _ := newTestClient(t, mux)
	c.AddManagedBot("bot-1")

	assert.Empty(t, c.PollManagedBots(context.Background()))
	// Still pending, still managed.
	assert.Equal(t, []string{"bot-1"}, c.ManagedBotIDs())
}

func TestPollManagedBotsFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /bot/bot-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"bot-1","status":{"code":"fatal"},"recordings":[]}`)
	})

	c, _ := newTestClient(t, mux)
	c.AddManagedBot("bot-1")

	assert.Empty(t, c.PollManagedBots(context.Background()))
	// Fatal bots are dropped so they are not re-polled forever.
	assert.Empty(t, c.ManagedBotIDs())
}

func TestPollManagedBotsErrorKeepsBot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /bot/bot-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c, _ := newTestClient(t, mux)
	c.AddManagedBot("bot-1")

	assert.Empty(t, c.PollManagedBots(context.Background()))
	// Transient errors keep the bot managed for the next cycle.
	assert.Equal(t, []string{"bot-1"}, c.ManagedBotIDs())
}

func TestBotSummaryFor(t *testing.T) {
	raw := json.RawMessage(`{"status":"in_call","meeting_url":"https://zoom.us/j/1","start_time":"s","end_time":"e"}`)
	summary := BotSummaryFor("bot-9", raw)
	assert.Equal(t, BotSummary{
		BotID:      "bot-9",
		Status:     "in_call",
		MeetingURL: "https://zoom.us/j/1",
		StartTime:  "s",
		EndTime:    "e",
	}, summary)

	// Missing status maps to unknown.
	assert.Equal(t, "unknown", BotSummaryFor("bot-9", json.RawMessage(`{}`)).Status)
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://us02web.zoom.us/j/1", "zoom"},
		{"https://teams.microsoft.com/l/meetup-join/x", "teams"},
		{"https://teams.live.com/meet/x", "teams"},
		{"https://meet.google.com/abc", "google_meet"},
		{"https://company.webex.com/meet/x", "webex"},
		{"https://example.com/call", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, DetectPlatform(tt.url), tt.url)
	}
}

func TestExtractMeetingInfo(t *testing.T) {
	event := calendar.Event{
		ID:          "acct_0",
		Title:       "Planning",
		Description: "join https://zoom.us/j/42",
		StartTime:   "2026-09-01T10:00:00Z",
		EndTime:     "2026-09-01T10:45:00Z",
		Attendees:   []calendar.Attendee{{Email: "a@example.com"}},
	}

	info, err := ExtractMeetingInfo(event)
	require.NoError(t, err)
	assert.Equal(t, "https://zoom.us/j/42", info.MeetingURL)
	assert.Equal(t, 45, info.DurationMinutes)
	assert.Equal(t, "zoom", info.Platform)
	assert.Equal(t, "Planning", info.Title)
	assert.Len(t, info.Attendees, 1)
}

func TestExtractMeetingInfoNoURL(t *testing.T) {
	_, err := ExtractMeetingInfo(calendar.Event{
		Title:     "Coffee",
		StartTime: "2026-09-01T10:00:00Z",
		EndTime:   "2026-09-01T10:30:00Z",
	})
	assert.ErrorIs(t, err, ErrNoMeetingURL)
}

func TestScheduleBotForEventNotetakerDisabled(t *testing.T) {
	c := NewClient("k", "http://unused", nil)

	_, err := c.ScheduleBotForEvent(context.Background(), calendar.Event{
		Title:            "Weekly sync",
		Description:      "https://zoom.us/j/1",
		StartTime:        time.Now().Add(time.Hour).Format(time.RFC3339),
		EndTime:          time.Now().Add(2 * time.Hour).Format(time.RFC3339),
		NotetakerEnabled: false,
	}, 5)
	assert.ErrorIs(t, err, ErrNotetakerDisabled)
}

func TestScheduleBotForEvent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /bot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"bot-7"}`)
	})
	c, _ := newTestClient(t, mux)

	start := time.Now().Add(time.Hour).Truncate(time.Second)
	schedule, err := c.ScheduleBotForEvent(context.Background(), calendar.Event{
		ID:               "acct_0",
		Title:            "Weekly sync",
		Description:      "https://zoom.us/j/1",
		StartTime:        start.UTC().Format(time.RFC3339),
		EndTime:          start.Add(30 * time.Minute).UTC().Format(time.RFC3339),
		NotetakerEnabled: true,
	}, 5)
	require.NoError(t, err)

	assert.Equal(t, "bot-7", schedule.BotID)
	assert.Equal(t, "scheduled", schedule.Status)
	assert.Equal(t, 30, schedule.MeetingInfo.DurationMinutes)
	assert.Equal(t, start.UTC().Add(-5*time.Minute), schedule.ScheduledFor)
}
