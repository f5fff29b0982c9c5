package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/postmeetinghq/postmeeting/internal/logging"
)

const (
	// requestTimeout caps every outbound Recall API call.
	requestTimeout = 30 * time.Second

	// legacyBotID is a bot created on the shared Recall account before the
	// managed set existed; it is seeded so its recording is still picked up.
	legacyBotID = "27308843-5c22-451d-9299-1e6152c93f41"
)

// Client wraps the Recall.ai bot-management REST API and tracks the set of
// bot identifiers that are still expected to complete.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu      sync.Mutex
	managed map[string]struct{}
}

// NewClient creates a Recall client. baseURL should not carry a trailing
// slash; pass config.DefaultRecallBaseURL for the hosted service.
func NewClient(apiKey, baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logging.WithService(logger, "recall"),
		managed:    make(map[string]struct{}),
	}
	c.managed[legacyBotID] = struct{}{}
	return c
}

// ManagedBotIDs returns the bot identifiers still awaiting completion,
// sorted for deterministic iteration.
func (c *Client) ManagedBotIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.managed))
	for id := range c.managed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddManagedBot adds a bot to the managed set.
func (c *Client) AddManagedBot(botID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.managed[botID] = struct{}{}
}

// RemoveManagedBot drops a bot from the managed set, typically after it
// completed or failed.
func (c *Client) RemoveManagedBot(botID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.managed, botID)
	c.logger.Info("removed bot from managed set", logging.BotID(botID))
}

// CreateBot dispatches a recording bot to a meeting. The bot joins
// joinBeforeMinutes ahead of startTime; meetings whose join time has
// already passed are rejected with ErrMeetingTooSoon.
func (c *Client) CreateBot(ctx context.Context, meetingURL string, startTime time.Time, joinBeforeMinutes int) (json.RawMessage, error) {
	joinAt := startTime.Add(-time.Duration(joinBeforeMinutes) * time.Minute)
	if !joinAt.After(time.Now()) {
		c.logger.Warn("meeting start time is too soon, skipping bot creation",
			slog.Time("start_time", startTime))
		return nil, ErrMeetingTooSoon
	}

	payload := map[string]any{
		"bot_name":    fmt.Sprintf("PostMeeting Bot - %s", startTime.Format("2006-01-02 15:04")),
		"meeting_url": meetingURL,
		"recording_config": map[string]any{
			"transcript": map[string]any{
				"provider": map[string]any{
					"meeting_captions": map[string]any{},
				},
			},
		},
	}

	raw, err := c.do(ctx, http.MethodPost, "/bot", payload, http.StatusCreated)
	if err != nil {
		return nil, &Error{Op: "createBot", Err: err}
	}

	botID := gjson.GetBytes(raw, "id").String()
	if botID == "" {
		c.logger.Warn("bot created but no id returned in response")
		return raw, nil
	}

	c.AddManagedBot(botID)
	c.logger.Info("created bot",
		logging.BotID(botID),
		slog.Time("join_at", joinAt))
	return raw, nil
}

// GetBot returns the raw status payload for one bot.
func (c *Client) GetBot(ctx context.Context, botID string) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, "/bot/"+botID, nil, http.StatusOK)
	if err != nil {
		return nil, &Error{Op: "getBot", BotID: botID, Err: err}
	}
	return raw, nil
}

// GetBotMedia returns the media listing for a completed bot session.
func (c *Client) GetBotMedia(ctx context.Context, botID string) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, "/bot/"+botID+"/media", nil, http.StatusOK)
	if err != nil {
		return nil, &Error{Op: "getBotMedia", BotID: botID, Err: err}
	}
	return raw, nil
}

// BotSummaryFor condenses a raw bot payload into the listing shape.
func BotSummaryFor(botID string, raw json.RawMessage) BotSummary {
	status := gjson.GetBytes(raw, "status").String()
	if status == "" {
		status = "unknown"
	}
	return BotSummary{
		BotID:      botID,
		Status:     status,
		MeetingURL: gjson.GetBytes(raw, "meeting_url").String(),
		StartTime:  gjson.GetBytes(raw, "start_time").String(),
		EndTime:    gjson.GetBytes(raw, "end_time").String(),
	}
}

// BotTranscript fetches and normalizes the transcript of a completed bot.
// It follows the download link in the bot payload's first recording.
func (c *Client) BotTranscript(ctx context.Context, botID string) (string, error) {
	raw, err := c.GetBot(ctx, botID)
	if err != nil {
		return "", err
	}

	recordings := gjson.GetBytes(raw, "recordings")
	if !recordings.Exists() || len(recordings.Array()) == 0 {
		return "", &Error{Op: "transcript", BotID: botID, Err: fmt.Errorf("no recordings found for this bot")}
	}

	downloadURL := recordings.Array()[0].Get("media_shortcuts.transcript.data.download_url").String()
	if downloadURL == "" {
		return "", &Error{Op: "transcript", BotID: botID, Err: fmt.Errorf("transcript download URL not available")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", &Error{Op: "transcript", BotID: botID, Err: err}
	}

	// Download links are pre-signed; no auth header.
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Op: "transcript", BotID: botID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{Op: "transcript", BotID: botID, Err: fmt.Errorf("failed to download transcript: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Op: "transcript", BotID: botID, Err: err}
	}

	transcript, err := ParseTranscript(body)
	if err != nil {
		return "", &Error{Op: "transcript", BotID: botID, Err: err}
	}
	return transcript, nil
}

// PollManagedBots checks every managed bot once. Bots that produced a
// recording are returned as completed and leave the managed set; bots whose
// status reports a fatal condition are dropped; per-bot errors are logged
// and the bot stays managed for the next cycle.
func (c *Client) PollManagedBots(ctx context.Context) []CompletedBot {
	var completed []CompletedBot

	for _, botID := range c.ManagedBotIDs() {
		raw, err := c.GetBot(ctx, botID)
		if err != nil {
			c.logger.Error("error polling bot", logging.BotID(botID), logging.Err(err))
			continue
		}

		recordings := gjson.GetBytes(raw, "recordings").Array()
		if len(recordings) == 0 {
			if code := gjson.GetBytes(raw, "status.code").String(); code == "fatal" || code == "failed" || code == "error" {
				c.logger.Warn("bot failed, dropping from managed set",
					logging.BotID(botID), slog.String("code", code))
				c.RemoveManagedBot(botID)
			}
			continue
		}

		transcript, err := c.BotTranscript(ctx, botID)
		if err != nil {
			c.logger.Error("error fetching transcript for completed bot",
				logging.BotID(botID), logging.Err(err))
		}

		completed = append(completed, CompletedBot{
			BotID:      botID,
			Status:     json.RawMessage(recordings[0].Raw),
			MeetingURL: gjson.GetBytes(raw, "meeting_url").String(),
			StartTime:  gjson.GetBytes(raw, "start_time").String(),
			EndTime:    gjson.GetBytes(raw, "end_time").String(),
			Transcript: transcript,
		})
		c.RemoveManagedBot(botID)
	}

	return completed
}

// do issues one authenticated API call and returns the response body when
// the status matches the expectation.
func (c *Client) do(ctx context.Context, method, path string, payload any, wantStatus int) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	return json.RawMessage(data), nil
}
