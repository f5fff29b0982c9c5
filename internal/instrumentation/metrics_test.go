package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "GET", "/calendar/events", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/recall/schedule", 500, 50*time.Millisecond)
}

func TestMetrics_RecordVendorAPIOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordVendorAPIOperation(ctx, ServiceGoogle, OperationList, StatusSuccess, 200*time.Millisecond)
	metrics.RecordVendorAPIOperation(ctx, ServiceRecall, OperationCreate, StatusError, 500*time.Millisecond)
	metrics.RecordVendorAPIOperation(ctx, ServiceOpenAI, OperationGenerate, StatusSuccess, time.Second)
}

func TestMetrics_RecordOAuthAuth(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordOAuthAuth(ctx, OAuthResultSuccess)
	metrics.RecordOAuthAuth(ctx, OAuthResultFailure)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultExpired)
}

func TestMetrics_PollerAndSocial(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordPollCycle(ctx, StatusSuccess, 2)
	metrics.RecordPollCycle(ctx, StatusError, 0)
	metrics.AddManagedBots(ctx, 1)
	metrics.AddManagedBots(ctx, -1)
	metrics.RecordSocialPost(ctx, ServiceLinkedIn, StatusSuccess)
	metrics.RecordSocialPost(ctx, ServiceFacebook, StatusError)
}

func TestMetrics_NoOpWhenUninitialized(t *testing.T) {
	ctx := context.Background()
	metrics := &Metrics{}

	// Uninitialized metrics must be safe to record against.
	metrics.RecordHTTPRequest(ctx, "GET", "/", 200, time.Millisecond)
	metrics.RecordVendorAPIOperation(ctx, ServiceGoogle, OperationList, StatusSuccess, time.Millisecond)
	metrics.RecordOAuthAuth(ctx, OAuthResultSuccess)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
	metrics.RecordPollCycle(ctx, StatusSuccess, 1)
	metrics.RecordSocialPost(ctx, ServiceLinkedIn, StatusSuccess)
	metrics.AddManagedBots(ctx, 1)
}

func TestMetrics_DetailedLabels(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
		DetailedLabels:  true,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	metrics := provider.Metrics()
	metrics.RecordVendorAPIOperationWithAccount(ctx, ServiceGoogle, OperationList, StatusSuccess, "jane@example.com", time.Millisecond)
}

func TestExtractUserDomain(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"jane@example.com", "example.com"},
		{"user@gmail.com", "gmail.com"},
		{"invalid", "unknown"},
		{"", "unknown"},
		{"trailing@", "unknown"},
	}
	for _, tt := range tests {
		if got := ExtractUserDomain(tt.email); got != tt.expected {
			t.Errorf("ExtractUserDomain(%q) = %q, want %q", tt.email, got, tt.expected)
		}
	}
}
