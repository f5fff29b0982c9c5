package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/postmeetinghq/postmeeting/internal/ai"
	"github.com/postmeetinghq/postmeeting/internal/calendar"
	"github.com/postmeetinghq/postmeeting/internal/instrumentation"
	"github.com/postmeetinghq/postmeeting/internal/logging"
	"github.com/postmeetinghq/postmeeting/internal/social"
)

// pastMeeting joins a completed-meeting record with its original calendar
// event for the history view.
type pastMeeting struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	StartTime          string              `json:"start_time"`
	EndTime            string              `json:"end_time"`
	Attendees          []calendar.Attendee `json:"attendees"`
	Platform           string              `json:"platform"`
	Transcript         string              `json:"transcript"`
	Status             string              `json:"status"`
	CompletedAt        string              `json:"completed_at"`
	Duration           int                 `json:"duration"`
	MediaURL           string              `json:"media_url"`
	GoogleAccountEmail string              `json:"google_account_email"`
	GoogleAccountName  string              `json:"google_account_name"`
}

func (s *Server) handlePastMeetings(w http.ResponseWriter, r *http.Request) {
	// One calendar fetch per account resolves every meeting ID.
	snapshot := s.snapshotEvents(r.Context())
	meetings := make([]pastMeeting, 0)

	for _, m := range s.store.CompletedMeetings() {
		resolved, found := snapshot[m.MeetingID]
		if !found {
			s.logger.Warn("no original event for completed meeting",
				logging.MeetingID(m.MeetingID))
			continue
		}

		attendees := m.Attendees
		if len(attendees) == 0 {
			attendees = resolved.event.Attendees
		}
		title := m.Title
		if title == "" {
			title = resolved.event.Title
		}
		if title == "" {
			title = "Untitled Meeting"
		}

		meetings = append(meetings, pastMeeting{
			ID:                 m.MeetingID,
			Title:              title,
			StartTime:          resolved.event.StartTime,
			EndTime:            resolved.event.EndTime,
			Attendees:          attendees,
			Platform:           m.Platform,
			Transcript:         m.Transcript,
			Status:             m.Status,
			CompletedAt:        m.CompletedAt,
			Duration:           m.Duration,
			MediaURL:           m.MediaURL,
			GoogleAccountEmail: resolved.cred.Email,
			GoogleAccountName:  resolved.cred.Name,
		})
	}

	// Most recent first.
	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].StartTime > meetings[j].StartTime
	})

	writeJSON(w, http.StatusOK, map[string]any{"meetings": meetings})
}

func (s *Server) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")
	m, ok := s.store.CompletedMeeting(meetingID)
	if !ok {
		writeError(w, http.StatusNotFound, "Meeting not found or not completed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"meeting_id":   meetingID,
		"transcript":   m.Transcript,
		"status":       m.Status,
		"completed_at": m.CompletedAt,
		"duration":     m.Duration,
		"media_url":    m.MediaURL,
	})
}

func (s *Server) handleUpdateTranscript(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")
	var body struct {
		Transcript string `json:"transcript"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Transcript updated",
		"meeting_id": meetingID,
	})
}

func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Platform string `json:"platform"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Platform == "" {
		body.Platform = "linkedin"
	}

	content := fmt.Sprintf("Just had an amazing meeting! Key insights: 1) Great discussion on project goals 2) Clear next steps identified 3) Excited about the collaboration! #%s #meeting #collaboration", body.Platform)
	writeJSON(w, http.StatusOK, map[string]string{
		"content":  content,
		"platform": body.Platform,
	})
}

func (s *Server) handleSocialContent(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")
	var body struct {
		Transcript string `json:"transcript"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Transcript == "" {
		writeError(w, http.StatusBadRequest, "Transcript is required")
		return
	}

	var content string
	if s.caps.AI {
		var generated string
		err := s.observeVendor(r.Context(), instrumentation.ServiceOpenAI, instrumentation.OperationGenerate, "", func(ctx context.Context) error {
			var err error
			generated, err = s.ai.GenerateSocialContent(ctx, body.Transcript, "", "linkedin")
			return err
		})
		if err != nil {
			s.logger.Error("AI content generation failed",
				logging.MeetingID(meetingID), logging.Err(err))
			content = fallbackSocialContent(body.Transcript)
		} else {
			content = generated
		}
	} else {
		content = fallbackSocialContent(body.Transcript)
	}

	s.store.SetSocialContent(meetingID, content)
	writeJSON(w, http.StatusOK, map[string]string{
		"social_content": content,
		"meeting_id":     meetingID,
	})
}

func fallbackSocialContent(transcript string) string {
	// Truncate by runes so a multi-byte character is never split.
	if runes := []rune(transcript); len(runes) > 100 {
		transcript = string(runes[:100])
	}
	return fmt.Sprintf("Just had an amazing meeting! Key insights from our discussion: %s... #meeting #collaboration", transcript)
}

func (s *Server) handleMeetingContent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"transcript":           "Mock meeting transcript...",
		"social_media_content": "Just had an amazing meeting! Key insights: 1) Great discussion on project goals 2) Clear next steps identified 3) Excited about the collaboration! #linkedin #meeting #collaboration",
	})
}

func (s *Server) handleSocialPost(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")
	m, ok := s.store.CompletedMeeting(meetingID)
	if !ok {
		writeError(w, http.StatusNotFound, "Meeting not found or not completed")
		return
	}

	var body struct {
		Platform     string `json:"platform"`
		CustomPrompt string `json:"custom_prompt"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Platform == "" {
		body.Platform = "linkedin"
	}
	if m.Transcript == "" {
		writeError(w, http.StatusBadRequest, "No transcript available for this meeting")
		return
	}
	if !s.requireAI(w) {
		return
	}

	ctx := r.Context()
	title := "Meeting"
	if event, _, found := s.findEvent(ctx, meetingID); found && event.Title != "" {
		title = event.Title
	}

	var post ai.SocialPost
	err := s.observeVendor(ctx, instrumentation.ServiceOpenAI, instrumentation.OperationGenerate, "", func(ctx context.Context) error {
		var err error
		post, err = s.ai.GenerateSocialPostDetailed(ctx, m.Transcript, title, body.Platform, body.CustomPrompt)
		return err
	})
	if err != nil {
		s.logger.Error("failed to generate social media post",
			logging.MeetingID(meetingID), logging.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate social media post")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"meeting_id":    meetingID,
		"post":          post,
		"meeting_title": title,
	})
}

func (s *Server) handleFollowUpEmail(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")
	m, ok := s.store.CompletedMeeting(meetingID)
	if !ok {
		writeError(w, http.StatusNotFound, "Meeting not found or not completed")
		return
	}
	if m.Transcript == "" {
		writeError(w, http.StatusBadRequest, "No transcript available for this meeting")
		return
	}

	title := "Meeting"
	attendees := calendar.AttendeeEmails(m.Attendees)

	if !s.caps.AI {
		writeJSON(w, http.StatusOK, map[string]string{
			"meeting_id":    meetingID,
			"email_content": mockFollowUpEmail(title),
			"meeting_title": title,
			"note":          "AI service not available - mock email generated",
		})
		return
	}

	var email string
	err := s.observeVendor(r.Context(), instrumentation.ServiceOpenAI, instrumentation.OperationGenerate, "", func(ctx context.Context) error {
		var err error
		email, err = s.ai.GenerateFollowUpEmail(ctx, m.Transcript, title, attendees)
		return err
	})
	if err != nil {
		s.logger.Error("follow-up email generation failed",
			logging.MeetingID(meetingID), logging.Err(err))
		writeError(w, http.StatusInternalServerError, "AI service error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"meeting_id":    meetingID,
		"email_content": email,
		"meeting_title": title,
	})
}

func mockFollowUpEmail(title string) string {
	return fmt.Sprintf(`Subject: Follow-up on %[1]s

Dear Team,

Thank you for attending today's meeting. Here's a summary of our discussion:

Key Points Discussed:
- We covered the main agenda items for %[1]s
- Important decisions were made regarding our project direction
- Next steps were identified for moving forward

Action Items:
- Please review the meeting notes and provide feedback
- Follow up on assigned tasks by the agreed deadline
- Schedule the next meeting as discussed

Thank you for your time and valuable input.

Best regards,
Meeting Organizer`, title)
}

func (s *Server) handlePublishPost(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("id")
	platform := r.PathValue("platform")

	var body struct {
		AccessToken string `json:"access_token"`
		Content     string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "Access token is required")
		return
	}
	if body.Content == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}
	if !s.requireSocial(w) {
		return
	}

	ctx := r.Context()
	var result social.PostResult
	_ = s.observeVendor(ctx, platform, instrumentation.OperationPost, "", func(ctx context.Context) error {
		result = s.social.PostToPlatform(ctx, platform, body.AccessToken, body.Content)
		if !result.Success {
			message := result.Error
			if message == "" {
				message = "Failed to post"
			}
			return errors.New(message)
		}
		return nil
	})

	if s.metrics != nil {
		status := instrumentation.StatusError
		if result.Success {
			status = instrumentation.StatusSuccess
		}
		s.metrics.RecordSocialPost(ctx, platform, status)
	}

	if !result.Success {
		message := result.Error
		if message == "" {
			message = "Failed to post"
		}
		s.logger.Error("social post failed",
			logging.MeetingID(meetingID), logging.Platform(platform))
		writeError(w, http.StatusInternalServerError, message)
		return
	}

	if s.audit != nil {
		s.audit.LogEvent(instrumentation.NewAccountEvent("post_published").
			WithService(platform).
			WithMeeting(meetingID, "").
			WithPlatform(platform).
			WithSpanContext(ctx).
			CompleteSuccess())
	}

	message := result.Message
	if message == "" {
		message = "Successfully posted to " + platform
	}
	response := map[string]any{
		"message": message,
		"post_id": result.PostID,
	}
	if result.ShareURL != "" {
		response["share_url"] = result.ShareURL
	}
	if result.UserName != "" {
		response["user_name"] = result.UserName
	}
	if result.Note != "" {
		response["note"] = result.Note
	}
	writeJSON(w, http.StatusOK, response)
}
