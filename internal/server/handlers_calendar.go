package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/postmeetinghq/postmeeting/internal/calendar"
	"github.com/postmeetinghq/postmeeting/internal/instrumentation"
	"github.com/postmeetinghq/postmeeting/internal/logging"
	"github.com/postmeetinghq/postmeeting/internal/recall"
	"github.com/postmeetinghq/postmeeting/internal/store"
)

// accountInfo summarizes one connected account in the events listing.
type accountInfo struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	EventsCount int    `json:"events_count"`
}

// annotateEvent stamps an event with its registry ID and the connected
// account it came from. Event IDs are "<accountID>_<index>" so they stay
// stable for a given account's event ordering.
func annotateEvent(event *calendar.Event, cred store.Credential, index int, notetaker bool) {
	event.ID = fmt.Sprintf("%s_%d", cred.AccountID, index)
	event.GoogleAccountEmail = cred.Email
	event.GoogleAccountName = cred.Name
	event.CalendarName = "Primary Calendar"
	event.NotetakerEnabled = notetaker
}

func (s *Server) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	creds := s.store.Credentials()
	if !s.caps.Google || len(creds) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"events":   []calendar.Event{},
			"accounts": []accountInfo{},
		})
		return
	}

	ctx := r.Context()
	allEvents := make([]calendar.Event, 0)
	accounts := make([]accountInfo, 0, len(creds))

	for _, cred := range creds {
		events, err := s.fetchEvents(ctx, cred)
		if err != nil {
			// One broken account must not hide the others.
			s.logger.Error("failed to fetch events",
				logging.Account(cred.Email), logging.Err(err))
			continue
		}

		for i := range events {
			eventID := fmt.Sprintf("%s_%d", cred.AccountID, i)
			annotateEvent(&events[i], cred, i, s.store.Notetaker(eventID))
			allEvents = append(allEvents, events[i])
		}
		accounts = append(accounts, accountInfo{
			Email:       cred.Email,
			Name:        cred.Name,
			EventsCount: len(events),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events":   allEvents,
		"accounts": accounts,
	})
}

// findEvent resolves a registry event ID back to the live calendar event
// and the account it belongs to.
func (s *Server) findEvent(ctx context.Context, eventID string) (calendar.Event, store.Credential, bool) {
	if !s.caps.Google {
		return calendar.Event{}, store.Credential{}, false
	}
	for _, cred := range s.store.Credentials() {
		events, err := s.fetchEvents(ctx, cred)
		if err != nil {
			s.logger.Error("failed to fetch events",
				logging.Account(cred.Email), logging.Err(err))
			continue
		}
		for i := range events {
			if fmt.Sprintf("%s_%d", cred.AccountID, i) == eventID {
				return events[i], cred, true
			}
		}
	}
	return calendar.Event{}, store.Credential{}, false
}

// resolvedEvent pairs a live calendar event with the account it came from.
type resolvedEvent struct {
	event calendar.Event
	cred  store.Credential
}

// snapshotEvents fetches each account's events once and indexes them by
// registry ID, so callers resolving many IDs make one round trip per
// account instead of one per ID.
func (s *Server) snapshotEvents(ctx context.Context) map[string]resolvedEvent {
	snapshot := make(map[string]resolvedEvent)
	if !s.caps.Google {
		return snapshot
	}
	for _, cred := range s.store.Credentials() {
		events, err := s.fetchEvents(ctx, cred)
		if err != nil {
			s.logger.Error("failed to fetch events",
				logging.Account(cred.Email), logging.Err(err))
			continue
		}
		for i := range events {
			id := fmt.Sprintf("%s_%d", cred.AccountID, i)
			snapshot[id] = resolvedEvent{event: events[i], cred: cred}
		}
	}
	return snapshot
}

func (s *Server) handleToggleNotetaker(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")

	var body struct {
		NotetakerEnabled bool `json:"notetaker_enabled"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.store.SetNotetaker(meetingID, body.NotetakerEnabled)
	s.logger.Info("notetaker setting updated",
		logging.MeetingID(meetingID),
		logging.Status(fmt.Sprintf("%t", body.NotetakerEnabled)))

	if body.NotetakerEnabled && s.caps.Recall {
		s.scheduleBotForMeeting(r.Context(), meetingID)
	}

	_, scheduled := s.store.ScheduledBot(meetingID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "Notetaker setting updated",
		"meeting_id":        meetingID,
		"notetaker_enabled": body.NotetakerEnabled,
		"bot_scheduled":     body.NotetakerEnabled && scheduled,
	})
}

// scheduleBotForMeeting locates the event behind a registry ID and
// dispatches a recording bot for it. Failures are logged, not surfaced;
// the toggle itself has already been persisted.
func (s *Server) scheduleBotForMeeting(ctx context.Context, meetingID string) {
	event, cred, found := s.findEvent(ctx, meetingID)
	if !found {
		s.logger.Warn("event not found for bot scheduling", logging.MeetingID(meetingID))
		return
	}

	event.ID = meetingID
	event.GoogleAccountEmail = cred.Email
	event.GoogleAccountName = cred.Name
	event.NotetakerEnabled = true

	joinBefore := s.store.Settings().RecallJoinBeforeMinutes
	var schedule *recall.BotSchedule
	err := s.observeVendor(ctx, instrumentation.ServiceRecall, instrumentation.OperationCreate, cred.Email, func(ctx context.Context) error {
		var err error
		schedule, err = s.recall.ScheduleBotForEvent(ctx, event, joinBefore)
		return err
	})
	if err != nil {
		s.logger.Warn("failed to schedule bot",
			logging.MeetingID(meetingID), logging.Err(err))
		return
	}

	s.store.PutScheduledBot(meetingID, store.ScheduledBot{BotSchedule: *schedule})
	if s.metrics != nil {
		s.metrics.AddManagedBots(ctx, 1)
	}
	if s.audit != nil {
		s.audit.LogEvent(instrumentation.NewAccountEvent("bot_scheduled").
			WithUser(cred.Email).
			WithService(instrumentation.ServiceRecall).
			WithMeeting(meetingID, schedule.BotID).
			WithSpanContext(ctx).
			CompleteSuccess())
	}
	s.logger.Info("scheduled bot for event",
		logging.MeetingID(meetingID), logging.BotID(schedule.BotID))
}
