package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/postmeetinghq/postmeeting/internal/instrumentation"
	"github.com/postmeetinghq/postmeeting/internal/logging"
	"github.com/postmeetinghq/postmeeting/internal/recall"
	"github.com/postmeetinghq/postmeeting/internal/store"
)

func (s *Server) handleSocialAccounts(w http.ResponseWriter, r *http.Request) {
	// Connected social accounts are not persisted; the frontend holds
	// platform tokens after the OAuth redirect.
	writeJSON(w, http.StatusOK, []map[string]any{
		{
			"id":           1,
			"platform":     "linkedin",
			"account_name": "John Doe",
			"is_active":    true,
		},
	})
}

func (s *Server) handleConnectSocial(w http.ResponseWriter, r *http.Request) {
	platform := r.PathValue("platform")
	if !s.requireSocial(w) {
		return
	}

	authURL, err := s.social.AuthURL(platform)
	if err != nil {
		s.logger.Error("failed to build auth URL",
			logging.Platform(platform), logging.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to get auth URL for "+platform)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

// fetchBot retrieves one bot's raw status from Recall.
func (s *Server) fetchBot(ctx context.Context, botID string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := s.observeVendor(ctx, instrumentation.ServiceRecall, instrumentation.OperationGet, "", func(ctx context.Context) error {
		var err error
		raw, err = s.recall.GetBot(ctx, botID)
		return err
	})
	return raw, err
}

func (s *Server) handleManagedBots(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecall(w) {
		return
	}

	ctx := r.Context()
	summaries := make([]recall.BotSummary, 0)
	for _, botID := range s.recall.ManagedBotIDs() {
		raw, err := s.fetchBot(ctx, botID)
		if err != nil {
			s.logger.Warn("failed to fetch bot", logging.BotID(botID), logging.Err(err))
			continue
		}
		summaries = append(summaries, recall.BotSummaryFor(botID, raw))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"managed_bots": summaries,
		"total_bots":   len(summaries),
	})
}

func (s *Server) handleBotStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecall(w) {
		return
	}

	botID := r.PathValue("id")
	raw, err := s.fetchBot(r.Context(), botID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Bot not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleBotTranscript(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecall(w) {
		return
	}

	botID := r.PathValue("id")
	var transcript string
	err := s.observeVendor(r.Context(), instrumentation.ServiceRecall, instrumentation.OperationGet, "", func(ctx context.Context) error {
		var err error
		transcript, err = s.recall.BotTranscript(ctx, botID)
		return err
	})
	if err != nil || transcript == "" {
		writeError(w, http.StatusNotFound, "Transcript not available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"transcript": transcript})
}

func (s *Server) handleScheduleBots(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecall(w) {
		return
	}

	var body struct {
		RecallJoinBeforeMinutes *int `json:"recallJoinBeforeMinutes"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	joinBefore := s.store.Settings().RecallJoinBeforeMinutes
	if body.RecallJoinBeforeMinutes != nil {
		joinBefore = *body.RecallJoinBeforeMinutes
	}

	ctx := r.Context()
	scheduled := 0
	errs := make([]string, 0)

	if s.caps.Google {
		for _, cred := range s.store.Credentials() {
			events, err := s.fetchEvents(ctx, cred)
			if err != nil {
				s.logger.Error("failed to fetch events",
					logging.Account(cred.Email), logging.Err(err))
				errs = append(errs, "Error processing events for user "+cred.AccountID)
				continue
			}

			for i := range events {
				eventID := fmt.Sprintf("%s_%d", cred.AccountID, i)
				if !s.store.Notetaker(eventID) {
					continue
				}
				if _, exists := s.store.ScheduledBot(eventID); exists {
					continue
				}

				annotateEvent(&events[i], cred, i, true)
				var schedule *recall.BotSchedule
				err := s.observeVendor(ctx, instrumentation.ServiceRecall, instrumentation.OperationCreate, cred.Email, func(ctx context.Context) error {
					var err error
					schedule, err = s.recall.ScheduleBotForEvent(ctx, events[i], joinBefore)
					return err
				})
				if err != nil {
					s.logger.Warn("failed to schedule bot",
						logging.MeetingID(eventID), logging.Err(err))
					errs = append(errs, "Failed to schedule bot for event "+eventID)
					continue
				}

				s.store.PutScheduledBot(eventID, store.ScheduledBot{BotSchedule: *schedule})
				scheduled++
				if s.metrics != nil {
					s.metrics.AddManagedBots(ctx, 1)
				}
				s.logger.Info("scheduled bot for event",
					logging.MeetingID(eventID), logging.BotID(schedule.BotID))
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         fmt.Sprintf("Scheduled %d bots", scheduled),
		"scheduled_count": scheduled,
		"errors":          errs,
	})
}

func (s *Server) handlePollBots(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecall(w) {
		return
	}
	if s.poller == nil {
		writeError(w, http.StatusServiceUnavailable, "Recall service not available")
		return
	}

	completed, err := s.poller.RunOnce(r.Context())
	if err != nil {
		s.logger.Error("inline poll failed", logging.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to poll bots")
		return
	}
	if completed == nil {
		completed = []recall.CompletedBot{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        fmt.Sprintf("Polled %d completed bots", len(completed)),
		"completed_bots": completed,
	})
}

func (s *Server) handleRecallStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireRecall(w) {
		return
	}

	scheduled := make(map[string]store.ScheduledBot)
	for _, entry := range s.store.ScheduledBots() {
		scheduled[entry.EventID] = entry.Bot
	}
	counts := s.store.Counts()

	writeJSON(w, http.StatusOK, map[string]any{
		"managed_bots":       s.recall.ManagedBotIDs(),
		"scheduled_bots":     scheduled,
		"completed_meetings": counts.CompletedMeetings,
		"total_meetings":     counts.ScheduledBots,
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Settings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch store.SettingsPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated := s.store.UpdateSettings(patch)
	s.logger.Info("settings updated")
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Settings updated successfully",
		"settings": updated,
	})
}
