// Package store holds the in-memory registries shared by the HTTP API and
// the bot-completion poller. All access goes through the Store interface so
// the mutable state has one lock and a persistent backend can slot in later.
package store

import (
	"sort"
	"sync"

	"github.com/postmeetinghq/postmeeting/internal/recall"
)

// Store is the registry surface the server and poller work against.
type Store interface {
	// Credentials
	UpsertCredential(c Credential)
	Credential(accountID string) (Credential, bool)
	Credentials() []Credential
	DeleteCredential(accountID string) bool

	// Notetaker flags, keyed by event ID
	SetNotetaker(eventID string, enabled bool)
	Notetaker(eventID string) bool

	// Scheduled bots, keyed by event ID
	PutScheduledBot(eventID string, bot ScheduledBot)
	ScheduledBot(eventID string) (ScheduledBot, bool)
	ScheduledBots() []ScheduledBotEntry
	EventForBot(botID string) (string, bool)
	CompleteScheduledBot(eventID string, data *recall.CompletedBot) bool

	// Completed meetings, keyed by event ID
	AddCompletedMeeting(m CompletedMeeting) bool
	CompletedMeeting(eventID string) (CompletedMeeting, bool)
	CompletedMeetings() []CompletedMeeting

	// Generated social content, keyed by event ID
	SetSocialContent(eventID, content string)
	SocialContent(eventID string) (string, bool)

	// Settings
	Settings() Settings
	UpdateSettings(patch SettingsPatch) Settings

	Counts() Counts
}

// Counts summarizes registry sizes for health and status endpoints.
type Counts struct {
	Accounts          int `json:"connected_accounts"`
	ScheduledBots     int `json:"scheduled_bots"`
	CompletedMeetings int `json:"completed_meetings"`
}

// MemoryStore is the process-local Store. A single mutex guards every
// registry; individual operations are short so contention is not a concern.
type MemoryStore struct {
	mu sync.Mutex

	// credentialOrder preserves connection order so the first account a
	// user connected stays the primary one in listings.
	credentials     map[string]Credential
	credentialOrder []string

	notetaker map[string]bool

	// scheduledOrder preserves insertion order so bot lookups scan
	// deterministically, with the oldest schedule winning a bot ID tie.
	scheduled      map[string]ScheduledBot
	scheduledOrder []string

	completed map[string]CompletedMeeting
	content   map[string]string

	settings Settings
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store with default settings.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		credentials: make(map[string]Credential),
		notetaker:   make(map[string]bool),
		scheduled:   make(map[string]ScheduledBot),
		completed:   make(map[string]CompletedMeeting),
		content:     make(map[string]string),
		settings:    DefaultSettings(),
	}
}

// UpsertCredential creates or overwrites the credential for an account.
func (s *MemoryStore) UpsertCredential(c Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[c.AccountID]; !ok {
		s.credentialOrder = append(s.credentialOrder, c.AccountID)
	}
	s.credentials[c.AccountID] = c
}

// Credential returns the stored credential for an account.
func (s *MemoryStore) Credential(accountID string) (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credentials[accountID]
	return c, ok
}

// Credentials returns all stored credentials in connection order.
func (s *MemoryStore) Credentials() []Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Credential, 0, len(s.credentials))
	for _, id := range s.credentialOrder {
		out = append(out, s.credentials[id])
	}
	return out
}

// DeleteCredential removes an account's credential and reports whether it
// existed.
func (s *MemoryStore) DeleteCredential(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.credentials[accountID]
	if ok {
		delete(s.credentials, accountID)
		for i, id := range s.credentialOrder {
			if id == accountID {
				s.credentialOrder = append(s.credentialOrder[:i], s.credentialOrder[i+1:]...)
				break
			}
		}
	}
	return ok
}

// SetNotetaker records the notetaker toggle for an event.
func (s *MemoryStore) SetNotetaker(eventID string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notetaker[eventID] = enabled
}

// Notetaker reports whether the notetaker is enabled for an event. Events
// never toggled default to false.
func (s *MemoryStore) Notetaker(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notetaker[eventID]
}

// PutScheduledBot records a dispatched bot for an event, replacing any
// earlier schedule for the same event.
func (s *MemoryStore) PutScheduledBot(eventID string, bot ScheduledBot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.scheduled[eventID]; !exists {
		s.scheduledOrder = append(s.scheduledOrder, eventID)
	}
	s.scheduled[eventID] = bot
}

// ScheduledBot returns the schedule for an event.
func (s *MemoryStore) ScheduledBot(eventID string) (ScheduledBot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.scheduled[eventID]
	return b, ok
}

// ScheduledBots returns all schedules in insertion order.
func (s *MemoryStore) ScheduledBots() []ScheduledBotEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScheduledBotEntry, 0, len(s.scheduledOrder))
	for _, eventID := range s.scheduledOrder {
		out = append(out, ScheduledBotEntry{EventID: eventID, Bot: s.scheduled[eventID]})
	}
	return out
}

// EventForBot finds the event a bot was scheduled for by scanning schedules
// in insertion order. The first match wins.
func (s *MemoryStore) EventForBot(botID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, eventID := range s.scheduledOrder {
		if s.scheduled[eventID].BotID == botID {
			return eventID, true
		}
	}
	return "", false
}

// CompleteScheduledBot marks an event's schedule completed and attaches the
// completion payload. It reports whether the schedule existed.
func (s *MemoryStore) CompleteScheduledBot(eventID string, data *recall.CompletedBot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.scheduled[eventID]
	if !ok {
		return false
	}
	b.Status = "completed"
	b.CompletedData = data
	s.scheduled[eventID] = b
	return true
}

// AddCompletedMeeting records a completed meeting unless one already exists
// for the event. The first record is final.
func (s *MemoryStore) AddCompletedMeeting(m CompletedMeeting) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.completed[m.MeetingID]; exists {
		return false
	}
	s.completed[m.MeetingID] = m
	return true
}

// CompletedMeeting returns the completed-meeting record for an event.
func (s *MemoryStore) CompletedMeeting(eventID string) (CompletedMeeting, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.completed[eventID]
	return m, ok
}

// CompletedMeetings returns all completed meetings sorted by meeting ID.
func (s *MemoryStore) CompletedMeetings() []CompletedMeeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CompletedMeeting, 0, len(s.completed))
	for _, m := range s.completed {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MeetingID < out[j].MeetingID })
	return out
}

// SetSocialContent stores the last generated social content for an event.
func (s *MemoryStore) SetSocialContent(eventID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[eventID] = content
}

// SocialContent returns the last generated social content for an event.
func (s *MemoryStore) SocialContent(eventID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.content[eventID]
	return c, ok
}

// Settings returns a copy of the current settings.
func (s *MemoryStore) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings merges the provided fields into the current settings and
// returns the result. Absent fields are left untouched.
func (s *MemoryStore) UpdateSettings(patch SettingsPatch) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.RecallJoinBeforeMinutes != nil {
		s.settings.RecallJoinBeforeMinutes = *patch.RecallJoinBeforeMinutes
	}
	if patch.EnableNotifications != nil {
		s.settings.EnableNotifications = *patch.EnableNotifications
	}
	if patch.AutoGenerateContent != nil {
		s.settings.AutoGenerateContent = *patch.AutoGenerateContent
	}
	if patch.DefaultPlatform != nil {
		s.settings.DefaultPlatform = *patch.DefaultPlatform
	}
	if patch.LinkedinPrompt != nil {
		s.settings.LinkedinPrompt = *patch.LinkedinPrompt
	}
	if patch.FacebookPrompt != nil {
		s.settings.FacebookPrompt = *patch.FacebookPrompt
	}
	return s.settings
}

// Counts reports registry sizes.
func (s *MemoryStore) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Accounts:          len(s.credentials),
		ScheduledBots:     len(s.scheduled),
		CompletedMeetings: len(s.completed),
	}
}
