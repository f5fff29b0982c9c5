package server

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/postmeetinghq/postmeeting/internal/instrumentation"
	"github.com/postmeetinghq/postmeeting/internal/logging"
	"github.com/postmeetinghq/postmeeting/internal/store"
)

// tokenSourceFor returns a refreshing token source for a stored credential.
// When Google rotates the access token mid-request, the new token is
// persisted so later requests skip the extra refresh round trip.
func (s *Server) tokenSourceFor(ctx context.Context, cred store.Credential) oauth2.TokenSource {
	token := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    "Bearer",
	}
	return &persistingTokenSource{
		ctx:    ctx,
		base:   s.google.TokenSource(ctx, token),
		server: s,
		cred:   cred,
		last:   cred.AccessToken,
	}
}

// persistingTokenSource refreshes through the wrapped source and writes a
// rotated access token back to the credential registry.
type persistingTokenSource struct {
	ctx    context.Context
	base   oauth2.TokenSource
	server *Server
	cred   store.Credential
	last   string
}

func (ts *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := ts.base.Token()
	if err != nil {
		if ts.server.metrics != nil {
			ts.server.metrics.RecordOAuthTokenRefresh(ts.ctx, instrumentation.OAuthResultFailure)
		}
		return nil, err
	}
	if token.AccessToken == ts.last {
		return token, nil
	}

	ts.last = token.AccessToken
	ts.cred.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		ts.cred.RefreshToken = token.RefreshToken
	}
	ts.server.store.UpsertCredential(ts.cred)
	if ts.server.metrics != nil {
		ts.server.metrics.RecordOAuthTokenRefresh(ts.ctx, instrumentation.OAuthResultSuccess)
	}
	ts.server.logger.Info("persisted refreshed access token",
		logging.Account(ts.cred.Email))
	return token, nil
}
