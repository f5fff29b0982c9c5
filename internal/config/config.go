package config

import (
	"fmt"
	"os"
	"strings"
)

// Defaults for values that are not security sensitive.
const (
	DefaultHTTPAddr           = ":8000"
	DefaultGoogleRedirectURI  = "http://localhost:8000/auth/google/callback"
	DefaultFrontendBaseURL    = "http://localhost:3000"
	DefaultRecallBaseURL      = "https://us-west-2.recall.ai/api/v1"
	DefaultLinkedInRedirect   = "http://localhost:8000/auth/linkedin/callback"
	DefaultFacebookRedirect   = "http://localhost:8000/auth/facebook/callback"
	DefaultCORSAllowedOrigins = "http://localhost:3000"
)

// Config holds all environment-driven configuration for the backend.
// Vendor credentials are optional: a missing credential disables that
// integration rather than failing startup.
type Config struct {
	// HTTPAddr is the listen address of the JSON API server (e.g. ":8000").
	HTTPAddr string

	// FrontendBaseURL is where OAuth callbacks redirect after success.
	FrontendBaseURL string

	// CORSAllowedOrigins is the comma-separated list of allowed origins.
	CORSAllowedOrigins []string

	// Google OAuth + Calendar
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	// Recall.ai bot management
	RecallAPIKey  string
	RecallBaseURL string

	// OpenAI content generation
	OpenAIAPIKey string

	// LinkedIn OAuth + posting
	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInRedirectURI  string

	// Facebook OAuth + posting
	FacebookAppID       string
	FacebookAppSecret   string
	FacebookRedirectURI string
}

// FromEnv builds a Config from environment variables. Callers are expected
// to have loaded a .env file beforehand if one exists.
func FromEnv() Config {
	return Config{
		HTTPAddr:           getEnv("HTTP_ADDR", DefaultHTTPAddr),
		FrontendBaseURL:    getEnv("FRONTEND_BASE_URL", DefaultFrontendBaseURL),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", DefaultCORSAllowedOrigins)),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", DefaultGoogleRedirectURI),

		RecallAPIKey:  os.Getenv("RECALL_API_KEY"),
		RecallBaseURL: getEnv("RECALL_BASE_URL", DefaultRecallBaseURL),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),

		LinkedInClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
		LinkedInClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
		LinkedInRedirectURI:  getEnv("LINKEDIN_REDIRECT_URI", DefaultLinkedInRedirect),

		FacebookAppID:       os.Getenv("FACEBOOK_APP_ID"),
		FacebookAppSecret:   os.Getenv("FACEBOOK_APP_SECRET"),
		FacebookRedirectURI: getEnv("FACEBOOK_REDIRECT_URI", DefaultFacebookRedirect),
	}
}

// HasGoogle reports whether the Google Calendar integration is configured.
func (c Config) HasGoogle() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// HasRecall reports whether the Recall.ai integration is configured.
func (c Config) HasRecall() bool {
	return c.RecallAPIKey != ""
}

// HasAI reports whether the OpenAI integration is configured.
func (c Config) HasAI() bool {
	return strings.TrimSpace(c.OpenAIAPIKey) != ""
}

// HasSocial reports whether at least one social platform is configured.
func (c Config) HasSocial() bool {
	return c.LinkedInClientID != "" || c.FacebookAppID != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports configuration combinations that cannot work, such as a
// Google client ID without a secret. It does not require any integration
// to be present.
func (c Config) Validate() error {
	if (c.GoogleClientID == "") != (c.GoogleClientSecret == "") {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together")
	}
	if (c.LinkedInClientID == "") != (c.LinkedInClientSecret == "") {
		return fmt.Errorf("LINKEDIN_CLIENT_ID and LINKEDIN_CLIENT_SECRET must be set together")
	}
	if (c.FacebookAppID == "") != (c.FacebookAppSecret == "") {
		return fmt.Errorf("FACEBOOK_APP_ID and FACEBOOK_APP_SECRET must be set together")
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR cannot be empty")
	}
	return nil
}
