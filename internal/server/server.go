// Package server exposes the JSON API consumed by the frontend: OAuth
// callbacks, calendar event listings, bot management, content generation
// and social publishing. Vendor integrations that were not configured at
// startup answer 503 instead of being probed per request.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/postmeetinghq/postmeeting/internal/ai"
	"github.com/postmeetinghq/postmeeting/internal/calendar"
	"github.com/postmeetinghq/postmeeting/internal/config"
	"github.com/postmeetinghq/postmeeting/internal/google"
	"github.com/postmeetinghq/postmeeting/internal/instrumentation"
	"github.com/postmeetinghq/postmeeting/internal/logging"
	"github.com/postmeetinghq/postmeeting/internal/poller"
	"github.com/postmeetinghq/postmeeting/internal/recall"
	"github.com/postmeetinghq/postmeeting/internal/social"
	"github.com/postmeetinghq/postmeeting/internal/store"
)

const (
	// DefaultReadTimeout is the read timeout for the API server.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is generous because content generation calls
	// block on the OpenAI API.
	DefaultWriteTimeout = 120 * time.Second

	// DefaultIdleTimeout is the idle timeout for keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
)

// Capabilities records which vendor integrations were configured at
// startup. It is computed once; handlers check it instead of probing
// clients per request.
type Capabilities struct {
	Google bool
	Recall bool
	AI     bool
	Social bool
}

// Options carries the dependencies of a Server. Vendor clients may be nil
// when the corresponding integration is not configured.
type Options struct {
	Config  config.Config
	Store   store.Store
	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger

	Google *google.OAuth
	Recall *recall.Client
	AI     *ai.Client
	Social *social.Client
	Poller *poller.Poller
}

// Server is the HTTP JSON API.
type Server struct {
	cfg     config.Config
	store   store.Store
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger

	google *google.OAuth
	recall *recall.Client
	ai     *ai.Client
	social *social.Client
	poller *poller.Poller

	caps   Capabilities
	health *HealthChecker

	// fetchEvents is swapped by tests that need calendar responses
	// without a Google backend.
	fetchEvents func(ctx context.Context, cred store.Credential) ([]calendar.Event, error)

	httpServer *http.Server
}

// New assembles a Server from its dependencies.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     opts.Config,
		store:   opts.Store,
		logger:  logging.WithService(logger, "api"),
		metrics: opts.Metrics,
		audit:   opts.Audit,
		google:  opts.Google,
		recall:  opts.Recall,
		ai:      opts.AI,
		social:  opts.Social,
		poller:  opts.Poller,
		caps: Capabilities{
			Google: opts.Google != nil,
			Recall: opts.Recall != nil,
			AI:     opts.AI != nil,
			Social: opts.Social != nil,
		},
	}
	s.health = NewHealthChecker(s)
	s.fetchEvents = s.eventsForCredential
	return s
}

// Capabilities returns the integrations available to this server.
func (s *Server) Capabilities() Capabilities {
	return s.caps
}

// Handler builds the full route table wrapped in the CORS and
// request-logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	s.health.Register(mux)

	mux.HandleFunc("GET /auth/google", s.handleGoogleAuth)
	mux.HandleFunc("GET /auth/google/callback", s.handleGoogleCallback)
	mux.HandleFunc("GET /auth/linkedin/callback", s.handleSocialCallback("linkedin"))
	mux.HandleFunc("GET /auth/facebook/callback", s.handleSocialCallback("facebook"))

	mux.HandleFunc("GET /user/profile", s.handleUserProfile)
	mux.HandleFunc("GET /user/google-accounts", s.handleGoogleAccounts)
	mux.HandleFunc("POST /user/google-accounts/connect", s.handleConnectGoogleAccount)
	mux.HandleFunc("DELETE /user/google-accounts/{id}/disconnect", s.handleDisconnectGoogleAccount)
	mux.HandleFunc("POST /user/google-accounts/{id}/sync", s.handleSyncGoogleAccount)

	mux.HandleFunc("GET /calendar/events", s.handleCalendarEvents)

	mux.HandleFunc("PATCH /meetings/{id}/notetaker", s.handleToggleNotetaker)
	mux.HandleFunc("GET /meetings/past", s.handlePastMeetings)
	mux.HandleFunc("GET /meetings/{id}/transcript", s.handleGetTranscript)
	mux.HandleFunc("POST /meetings/{id}/transcript", s.handleUpdateTranscript)
	mux.HandleFunc("POST /meetings/{id}/generate-content", s.handleGenerateContent)
	mux.HandleFunc("POST /meetings/{id}/social-content", s.handleSocialContent)
	mux.HandleFunc("GET /meetings/{id}/content", s.handleMeetingContent)
	mux.HandleFunc("POST /meetings/{id}/social-post", s.handleSocialPost)
	mux.HandleFunc("POST /meetings/{id}/follow-up-email", s.handleFollowUpEmail)
	mux.HandleFunc("POST /meetings/{id}/post/{platform}", s.handlePublishPost)

	mux.HandleFunc("GET /social-media/accounts", s.handleSocialAccounts)
	mux.HandleFunc("POST /social-media/connect/{platform}", s.handleConnectSocial)

	mux.HandleFunc("GET /recall/bots", s.handleManagedBots)
	mux.HandleFunc("GET /recall/bots/{id}/status", s.handleBotStatus)
	mux.HandleFunc("GET /recall/bots/{id}/transcript", s.handleBotTranscript)
	mux.HandleFunc("POST /recall/schedule", s.handleScheduleBots)
	mux.HandleFunc("POST /recall/poll", s.handlePollBots)
	mux.HandleFunc("GET /recall/status", s.handleRecallStatus)

	mux.HandleFunc("GET /settings", s.handleGetSettings)
	mux.HandleFunc("PUT /settings", s.handleUpdateSettings)

	return s.withCORS(s.withRequestLogging(mux))
}

// Start runs the API server until it is shut down. It blocks.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.HTTPAddr,
		Handler:      s.Handler(),
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}
	s.logger.Info("starting API server", slog.String("addr", s.cfg.HTTPAddr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Post-Meeting Social Media Generator API",
		"status":  "running",
	})
}

// calendarClient builds a Calendar client for a stored credential, backed
// by a refreshing token source that writes rotated tokens back to the
// credential registry.
func (s *Server) calendarClient(ctx context.Context, cred store.Credential) (*calendar.Client, error) {
	return calendar.NewClient(ctx, cred.Email, s.tokenSourceFor(ctx, cred))
}

// eventsForCredential fetches the upcoming events of one connected account.
func (s *Server) eventsForCredential(ctx context.Context, cred store.Credential) ([]calendar.Event, error) {
	client, err := s.calendarClient(ctx, cred)
	if err != nil {
		return nil, err
	}
	var events []calendar.Event
	err = s.observeVendor(ctx, instrumentation.ServiceGoogle, instrumentation.OperationList, cred.Email, func(ctx context.Context) error {
		var err error
		events, err = client.UpcomingEvents(0)
		return err
	})
	return events, err
}

// observeVendor wraps one external API call in a client span and records
// its outcome on the vendor metrics.
func (s *Server) observeVendor(ctx context.Context, service, operation, account string, fn func(context.Context) error) error {
	return instrumentation.ObserveVendorOperation(ctx, s.metrics, service, operation, account, fn)
}

// requireGoogle, requireRecall, requireAI and requireSocial write the 503
// short-circuit response when the integration is missing and report
// whether the handler may continue.

func (s *Server) requireGoogle(w http.ResponseWriter) bool {
	if !s.caps.Google {
		writeError(w, http.StatusServiceUnavailable, "Google Calendar service not available")
		return false
	}
	return true
}

func (s *Server) requireRecall(w http.ResponseWriter) bool {
	if !s.caps.Recall {
		writeError(w, http.StatusServiceUnavailable, "Recall service not available")
		return false
	}
	return true
}

func (s *Server) requireAI(w http.ResponseWriter) bool {
	if !s.caps.AI {
		writeError(w, http.StatusServiceUnavailable, "AI service not available")
		return false
	}
	return true
}

func (s *Server) requireSocial(w http.ResponseWriter) bool {
	if !s.caps.Social {
		writeError(w, http.StatusServiceUnavailable, "Social media service not available")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeBody decodes an optional JSON request body into dst. An empty body
// is not an error; handlers fall back to their defaults.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
