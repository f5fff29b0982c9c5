package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/postmeetinghq/postmeeting/internal/config"
)

// OAuth wraps the Google OAuth2 flow used to connect calendar accounts.
type OAuth struct {
	conf *oauth2.Config
}

// UserInfo is the subset of the Google userinfo response the backend keeps.
type UserInfo struct {
	ID            string
	Email         string
	Name          string
	Picture       string
	VerifiedEmail bool
}

// NewOAuth builds the OAuth2 configuration for all Google services.
func NewOAuth(cfg config.Config) *OAuth {
	return &OAuth{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				calendar.CalendarReadonlyScope,
			},
		},
	}
}

// AuthURL returns the authorization URL for the consent screen. Offline
// access is requested so a refresh token is issued on first consent.
func (o *OAuth) AuthURL(state string) string {
	return o.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Exchange trades an authorization code for a token pair.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return token, nil
}

// TokenSource returns a refreshing token source for a stored token. Callers
// that persist tokens should read the source back after use to pick up a
// refreshed access token.
func (o *OAuth) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return o.conf.TokenSource(ctx, token)
}

// FetchUserInfo retrieves the profile of the account that granted the token.
func (o *OAuth) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	svc, err := goauth2.NewService(ctx, option.WithTokenSource(o.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	return &UserInfo{
		ID:            info.Id,
		Email:         info.Email,
		Name:          info.Name,
		Picture:       info.Picture,
		VerifiedEmail: info.VerifiedEmail != nil && *info.VerifiedEmail,
	}, nil
}
