package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/postmeetinghq/postmeeting/internal/google"
	"github.com/postmeetinghq/postmeeting/internal/instrumentation"
	"github.com/postmeetinghq/postmeeting/internal/logging"
	"github.com/postmeetinghq/postmeeting/internal/social"
	"github.com/postmeetinghq/postmeeting/internal/store"
)

// googleTokenURI is stored with each credential for completeness; the
// refreshing token source derives it from the OAuth endpoint itself.
const googleTokenURI = "https://oauth2.googleapis.com/token"

func (s *Server) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	if !s.requireGoogle(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": s.google.AuthURL("test_state"),
		"state":    "test_state",
	})
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "No authorization code provided")
		return
	}

	ctx := r.Context()
	authData := url.Values{}

	if err := s.exchangeGoogleCode(ctx, code, authData); err != nil {
		// The frontend still gets a usable redirect so the demo flow
		// keeps working without real Google credentials.
		s.logger.Warn("google auth falling back to demo identity", logging.Err(err))
		authData = demoAuthData()
		if s.metrics != nil {
			s.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		}
	} else if s.metrics != nil {
		s.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	}

	http.Redirect(w, r, s.cfg.FrontendBaseURL+"/auth/success?"+authData.Encode(), http.StatusFound)
}

// exchangeGoogleCode runs the real code exchange, stores the credential and
// fills the redirect query parameters.
func (s *Server) exchangeGoogleCode(ctx context.Context, code string, authData url.Values) error {
	if !s.caps.Google {
		return errors.New("google calendar service not available")
	}

	var token *oauth2.Token
	err := s.observeVendor(ctx, instrumentation.ServiceGoogle, instrumentation.OperationExchange, "", func(ctx context.Context) error {
		var err error
		token, err = s.google.Exchange(ctx, code)
		return err
	})
	if err != nil {
		return err
	}

	var info *google.UserInfo
	err = s.observeVendor(ctx, instrumentation.ServiceGoogle, instrumentation.OperationGet, "", func(ctx context.Context) error {
		var err error
		info, err = s.google.FetchUserInfo(ctx, token)
		return err
	})
	if err != nil {
		return err
	}

	s.store.UpsertCredential(store.Credential{
		AccountID:    info.ID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenURI:     googleTokenURI,
		Email:        info.Email,
		Name:         info.Name,
		Picture:      info.Picture,
	})

	if s.audit != nil {
		s.audit.LogEvent(instrumentation.NewAccountEvent("account_connected").
			WithUser(info.Email).
			WithService(instrumentation.ServiceGoogle).
			WithSpanContext(ctx).
			CompleteSuccess())
	}

	authData.Set("access_token", token.AccessToken)
	authData.Set("token_type", "bearer")
	authData.Set("user_id", info.ID)
	authData.Set("user_email", info.Email)
	authData.Set("user_name", info.Name)
	authData.Set("user_picture", info.Picture)
	authData.Set("google_account_id", info.ID)
	authData.Set("google_account_email", info.Email)
	authData.Set("google_account_active", "true")
	return nil
}

func demoAuthData() url.Values {
	v := url.Values{}
	v.Set("access_token", "mock_access_token")
	v.Set("token_type", "bearer")
	v.Set("user_id", "1")
	v.Set("user_email", "test@example.com")
	v.Set("user_name", "Test User")
	v.Set("user_picture", "")
	v.Set("google_account_id", "1")
	v.Set("google_account_email", "test@example.com")
	v.Set("google_account_active", "true")
	return v
}

// handleSocialCallback handles the LinkedIn and Facebook OAuth callbacks.
// Both redirect to the frontend success page with the platform's access
// token in the query string.
func (s *Server) handleSocialCallback(platform string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			writeError(w, http.StatusBadRequest, "No authorization code provided")
			return
		}
		if !s.requireSocial(w) {
			return
		}

		ctx := r.Context()
		var result social.TokenResult
		_ = s.observeVendor(ctx, platform, instrumentation.OperationExchange, "", func(ctx context.Context) error {
			result = s.social.Exchange(ctx, platform, code)
			if !result.Success {
				return errors.New(platform + " token exchange failed")
			}
			return nil
		})
		if !result.Success {
			if s.metrics != nil {
				s.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
			}
			message := result.Error
			if message == "" {
				message = platform + " authentication failed"
			}
			writeError(w, http.StatusBadRequest, message)
			return
		}

		if s.metrics != nil {
			s.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
		}
		if s.audit != nil {
			s.audit.LogEvent(instrumentation.NewAccountEvent("account_connected").
				WithService(platform).
				WithPlatform(platform).
				WithSpanContext(ctx).
				CompleteSuccess())
		}

		authData := url.Values{}
		authData.Set("access_token", result.AccessToken)
		authData.Set("platform", platform)
		authData.Set("status", "success")
		http.Redirect(w, r, s.cfg.FrontendBaseURL+"/auth/success?"+authData.Encode(), http.StatusFound)
	}
}

func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	// A single-user demo deployment has no session layer.
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      1,
		"email":   "test@example.com",
		"name":    "Test User",
		"picture": nil,
	})
}

// googleAccount is the account listing shape the frontend renders.
type googleAccount struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Picture      string  `json:"picture,omitempty"`
	IsActive     bool    `json:"is_active"`
	IsPrimary    bool    `json:"is_primary"`
	Status       string  `json:"status"`
	EventsCount  int     `json:"events_count"`
	LastSync     string  `json:"last_sync"`
	ErrorMessage *string `json:"error_message"`
}

func (s *Server) handleGoogleAccounts(w http.ResponseWriter, r *http.Request) {
	creds := s.store.Credentials()
	if len(creds) == 0 {
		writeJSON(w, http.StatusOK, []googleAccount{})
		return
	}

	ctx := r.Context()
	accounts := make([]googleAccount, 0, len(creds))
	for i, cred := range creds {
		eventsCount := 0
		if s.caps.Google {
			events, err := s.fetchEvents(ctx, cred)
			if err != nil {
				s.logger.Error("failed to count events",
					logging.Account(cred.Email), logging.Err(err))
			} else {
				eventsCount = len(events)
			}
		}
		accounts = append(accounts, googleAccount{
			ID:          cred.AccountID,
			Email:       cred.Email,
			Name:        cred.Name,
			Picture:     cred.Picture,
			IsActive:    true,
			IsPrimary:   i == 0,
			Status:      "active",
			EventsCount: eventsCount,
			// Sync times are not tracked yet.
			LastSync: "2024-01-20T10:00:00Z",
		})
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleConnectGoogleAccount(w http.ResponseWriter, r *http.Request) {
	if !s.requireGoogle(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": s.google.AuthURL("connect_account"),
		"state":    "connect_account",
	})
}

func (s *Server) handleDisconnectGoogleAccount(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")
	cred, existed := s.store.Credential(accountID)
	if !existed || !s.store.DeleteCredential(accountID) {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	if s.audit != nil {
		s.audit.LogEvent(instrumentation.NewAccountEvent("account_disconnected").
			WithUser(cred.Email).
			WithService(instrumentation.ServiceGoogle).
			WithSpanContext(r.Context()).
			CompleteSuccess())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Google account disconnected successfully",
		"account_id": accountID,
	})
}

func (s *Server) handleSyncGoogleAccount(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")
	cred, ok := s.store.Credential(accountID)
	if !ok {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}
	if !s.requireGoogle(w) {
		return
	}

	events, err := s.fetchEvents(r.Context(), cred)
	if err != nil {
		s.logger.Error("sync failed", logging.Account(cred.Email), logging.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to sync events: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Account synced successfully",
		"account_id":    accountID,
		"events_synced": len(events),
	})
}
