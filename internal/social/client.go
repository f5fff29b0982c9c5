// Package social publishes generated content to LinkedIn and Facebook and
// handles their OAuth flows.
package social

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/postmeetinghq/postmeeting/internal/logging"
)

const (
	defaultLinkedInAPIBase = "https://api.linkedin.com"
	defaultGraphAPIBase    = "https://graph.facebook.com/v22.0"
	facebookSharerURL      = "https://www.facebook.com/sharer/sharer.php"

	requestTimeout = 30 * time.Second
)

// facebookFallbackNote explains the sharer.php fallback to the frontend.
const facebookFallbackNote = "Due to Facebook's API restrictions, this opens a share dialog for you to manually post the content. To enable direct posting, the app would need to be submitted for Facebook review with publish_to_groups or pages_manage_posts permissions."

// PostResult is the outcome of a publish attempt. Success with a ShareURL
// means the content was not posted directly and needs a manual share.
type PostResult struct {
	Success  bool   `json:"success"`
	PostID   string `json:"post_id,omitempty"`
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
	ShareURL string `json:"share_url,omitempty"`
	UserName string `json:"user_name,omitempty"`
	Note     string `json:"note,omitempty"`
}

// TokenResult is the outcome of an OAuth code exchange.
type TokenResult struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Config carries the app registrations for both platforms.
type Config struct {
	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInRedirectURI  string
	FacebookAppID        string
	FacebookAppSecret    string
	FacebookRedirectURI  string
}

// Client talks to the LinkedIn and Facebook APIs.
type Client struct {
	linkedin   *oauth2.Config
	facebook   *oauth2.Config
	httpClient *http.Client
	logger     *slog.Logger

	linkedinAPIBase string
	graphAPIBase    string
}

// NewClient builds a social client from the platform app registrations.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		linkedin: &oauth2.Config{
			ClientID:     cfg.LinkedInClientID,
			ClientSecret: cfg.LinkedInClientSecret,
			RedirectURL:  cfg.LinkedInRedirectURI,
			Endpoint:     endpoints.LinkedIn,
			// LinkedIn expects the scopes comma-separated in one parameter.
			Scopes: []string{"w_member_social,openid,profile,email"},
		},
		facebook: &oauth2.Config{
			ClientID:     cfg.FacebookAppID,
			ClientSecret: cfg.FacebookAppSecret,
			RedirectURL:  cfg.FacebookRedirectURI,
			Endpoint:     endpoints.Facebook,
			Scopes:       []string{"public_profile,pages_show_list"},
		},
		httpClient:      &http.Client{Timeout: requestTimeout},
		logger:          logging.WithService(logger, "social"),
		linkedinAPIBase: defaultLinkedInAPIBase,
		graphAPIBase:    defaultGraphAPIBase,
	}
}

// AuthURL returns the authorization URL for a platform.
func (c *Client) AuthURL(platform string) (string, error) {
	switch platform {
	case "linkedin":
		return c.linkedin.AuthCodeURL("state"), nil
	case "facebook":
		return c.facebook.AuthCodeURL("state"), nil
	default:
		return "", fmt.Errorf("unsupported platform: %s", platform)
	}
}

// Exchange swaps an authorization code for an access token.
func (c *Client) Exchange(ctx context.Context, platform, code string) TokenResult {
	var conf *oauth2.Config
	switch platform {
	case "linkedin":
		conf = c.linkedin
	case "facebook":
		conf = c.facebook
	default:
		return TokenResult{Error: fmt.Sprintf("unsupported platform: %s", platform)}
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		c.logger.Error("token exchange failed", logging.Platform(platform), logging.Err(err))
		return TokenResult{Error: fmt.Sprintf("%s token exchange failed: %v", platform, err)}
	}
	return TokenResult{
		Success:     true,
		AccessToken: token.AccessToken,
		ExpiresIn:   token.ExpiresIn,
	}
}

// PostToPlatform publishes content to the named platform.
func (c *Client) PostToPlatform(ctx context.Context, platform, accessToken, content string) PostResult {
	switch platform {
	case "linkedin":
		return c.PostToLinkedIn(ctx, accessToken, content)
	case "facebook":
		return c.PostToFacebook(ctx, accessToken, content)
	default:
		return PostResult{Error: fmt.Sprintf("Unsupported platform: %s", platform)}
	}
}

// PostToLinkedIn publishes a UGC post on the authenticated member's profile.
func (c *Client) PostToLinkedIn(ctx context.Context, accessToken, content string) PostResult {
	author, errResult := c.linkedInAuthorURN(ctx, accessToken)
	if errResult != nil {
		return *errResult
	}

	body, _ := sjson.Set("", "author", author)
	body, _ = sjson.Set(body, "lifecycleState", "PUBLISHED")
	body, _ = sjson.Set(body, `specificContent.com\.linkedin\.ugc\.ShareContent.shareCommentary.text`, content)
	body, _ = sjson.Set(body, `specificContent.com\.linkedin\.ugc\.ShareContent.shareMediaCategory`, "NONE")
	body, _ = sjson.Set(body, `visibility.com\.linkedin\.ugc\.MemberNetworkVisibility`, "PUBLIC")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.linkedinAPIBase+"/v2/ugcPosts", strings.NewReader(body))
	if err != nil {
		return PostResult{Error: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	status, respBody, err := c.do(req)
	if err != nil {
		return PostResult{Error: err.Error()}
	}
	if status != http.StatusCreated {
		c.logger.Error("linkedin post rejected",
			logging.Status(fmt.Sprintf("%d", status)),
			slog.String("response", string(respBody)))
		return PostResult{Error: fmt.Sprintf("LinkedIn API error: %s", respBody)}
	}

	postID := gjson.GetBytes(respBody, "id").String()
	c.logger.Info("posted to linkedin", slog.String("post_id", postID))
	return PostResult{Success: true, PostID: postID}
}

// linkedInAuthorURN resolves the member URN for the token, preferring the
// OpenID userinfo endpoint and falling back to the legacy profile endpoint.
func (c *Client) linkedInAuthorURN(ctx context.Context, accessToken string) (string, *PostResult) {
	status, body, err := c.get(ctx, c.linkedinAPIBase+"/v2/userinfo", accessToken)
	if err != nil {
		return "", &PostResult{Error: err.Error()}
	}
	if status == http.StatusOK {
		// OpenID Connect puts the member ID in the sub claim, sometimes
		// as a URN path.
		sub := gjson.GetBytes(body, "sub").String()
		parts := strings.Split(sub, "/")
		return "urn:li:person:" + parts[len(parts)-1], nil
	}

	status, body, err = c.get(ctx, c.linkedinAPIBase+"/v2/people/~", accessToken)
	if err != nil {
		return "", &PostResult{Error: err.Error()}
	}
	if status != http.StatusOK {
		return "", &PostResult{Error: fmt.Sprintf("Failed to get LinkedIn profile: %s", body)}
	}
	return "urn:li:person:" + gjson.GetBytes(body, "id").String(), nil
}

// facebookPermissionError reports whether a Graph API error message denotes
// a missing posting permission rather than a hard failure.
func facebookPermissionError(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range []string{
		"permission",
		"scope",
		"publish_to_groups",
		"pages_read_engagement",
		"pages_manage_posts",
		"requires app being installed",
	} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// PostToFacebook publishes to the authenticated user's feed. Permission
// errors degrade to a sharer.php URL the frontend can open instead.
func (c *Client) PostToFacebook(ctx context.Context, accessToken, content string) PostResult {
	status, body, err := c.get(ctx, c.graphAPIBase+"/me", accessToken)
	if err != nil {
		return PostResult{Error: err.Error()}
	}
	if status != http.StatusOK {
		return PostResult{Error: fmt.Sprintf("Failed to get user info: %s", body)}
	}

	userID := gjson.GetBytes(body, "id").String()
	userName := gjson.GetBytes(body, "name").String()
	if userName == "" {
		userName = "User"
	}

	payload, _ := sjson.Set("", "message", content)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphAPIBase+"/"+userID+"/feed", strings.NewReader(payload))
	if err != nil {
		return PostResult{Error: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	status, respBody, err := c.do(req)
	if err != nil {
		return PostResult{Error: err.Error()}
	}
	if status == http.StatusOK {
		postID := gjson.GetBytes(respBody, "id").String()
		c.logger.Info("posted to facebook", slog.String("post_id", postID))
		return PostResult{
			Success:  true,
			PostID:   postID,
			Message:  fmt.Sprintf("Successfully posted to Facebook as %s", userName),
			UserName: userName,
		}
	}

	errorMessage := gjson.GetBytes(respBody, "error.message").String()
	if errorMessage == "" {
		errorMessage = "Unknown error"
	}

	if facebookPermissionError(errorMessage) {
		c.logger.Warn("facebook posting not permitted, falling back to share url",
			slog.String("graph_error", errorMessage))
		shareURL := facebookSharerURL + "?u=&quote=" + url.QueryEscape(content)
		return PostResult{
			Success:  true,
			PostID:   fmt.Sprintf("share_url_%d", contentHash(content)%10000),
			Message:  "Facebook share URL generated (direct posting requires additional permissions)",
			ShareURL: shareURL,
			UserName: userName,
			Note:     facebookFallbackNote,
		}
	}

	c.logger.Error("facebook post rejected", slog.String("graph_error", errorMessage))
	return PostResult{Error: fmt.Sprintf("Facebook API error: %s", errorMessage)}
}

func contentHash(content string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(content))
	return h.Sum32()
}

func (c *Client) get(ctx context.Context, url, accessToken string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
