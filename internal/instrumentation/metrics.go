package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrPlatform  = "platform"
	attrAccount   = "account"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Vendor API metrics (Google, Recall, OpenAI, LinkedIn, Facebook)
	vendorAPIOperationsTotal   metric.Int64Counter
	vendorAPIOperationDuration metric.Float64Histogram

	// OAuth metrics
	oauthAuthTotal         metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter

	// Poller metrics
	pollCyclesTotal        metric.Int64Counter
	completedMeetingsTotal metric.Int64Counter
	managedBots            metric.Int64UpDownCounter

	// Social publishing metrics
	socialPostsTotal metric.Int64Counter

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.vendorAPIOperationsTotal, err = meter.Int64Counter(
		"vendor_api_operations_total",
		metric.WithDescription("Total number of external vendor API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vendor_api_operations_total counter: %w", err)
	}

	m.vendorAPIOperationDuration, err = meter.Float64Histogram(
		"vendor_api_operation_duration_seconds",
		metric.WithDescription("External vendor API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vendor_api_operation_duration_seconds histogram: %w", err)
	}

	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of OAuth authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}

	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	m.pollCyclesTotal, err = meter.Int64Counter(
		"bot_poll_cycles_total",
		metric.WithDescription("Total number of bot poll cycles"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot_poll_cycles_total counter: %w", err)
	}

	m.completedMeetingsTotal, err = meter.Int64Counter(
		"completed_meetings_total",
		metric.WithDescription("Total number of meetings completed with a transcript"),
		metric.WithUnit("{meeting}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create completed_meetings_total counter: %w", err)
	}

	m.managedBots, err = meter.Int64UpDownCounter(
		"managed_bots",
		metric.WithDescription("Number of recording bots awaiting completion"),
		metric.WithUnit("{bot}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create managed_bots gauge: %w", err)
	}

	m.socialPostsTotal, err = meter.Int64Counter(
		"social_posts_total",
		metric.WithDescription("Total number of social media publish attempts"),
		metric.WithUnit("{post}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create social_posts_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code,
// and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordVendorAPIOperation records an external API operation.
//
// Parameters:
//   - service: vendor name (google, recall, openai, linkedin, facebook)
//   - operation: operation type (list, get, create, post, generate, etc.)
//   - status: result status ("success" or "error")
//   - duration: time taken for the operation
func (m *Metrics) RecordVendorAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.vendorAPIOperationsTotal == nil || m.vendorAPIOperationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.vendorAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.vendorAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordOAuthAuth records an OAuth authentication attempt with result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m.oauthAuthTotal == nil {
		return
	}
	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordOAuthTokenRefresh records an OAuth token refresh attempt with
// result. Result should be one of: "success", "failure", "expired"
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m.oauthTokenRefreshTotal == nil {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordPollCycle records one poller cycle and how many meetings it
// completed.
func (m *Metrics) RecordPollCycle(ctx context.Context, status string, completed int) {
	if m.pollCyclesTotal == nil || m.completedMeetingsTotal == nil {
		return
	}
	m.pollCyclesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
	if completed > 0 {
		m.completedMeetingsTotal.Add(ctx, int64(completed))
	}
}

// RecordSocialPost records a publish attempt on a social platform.
func (m *Metrics) RecordSocialPost(ctx context.Context, platform, status string) {
	if m.socialPostsTotal == nil {
		return
	}
	m.socialPostsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrPlatform, platform),
		attribute.String(attrStatus, status),
	))
}

// AddManagedBots adjusts the managed-bot gauge by delta.
func (m *Metrics) AddManagedBots(ctx context.Context, delta int64) {
	if m.managedBots == nil {
		return
	}
	m.managedBots.Add(ctx, delta)
}

// RecordVendorAPIOperationWithAccount is the detailed variant that adds the
// account's domain when detailedLabels is enabled.
func (m *Metrics) RecordVendorAPIOperationWithAccount(ctx context.Context, service, operation, status, accountEmail string, duration time.Duration) {
	if m.vendorAPIOperationsTotal == nil || m.vendorAPIOperationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && accountEmail != "" {
		attrs = append(attrs, attribute.String(attrAccount, ExtractUserDomain(accountEmail)))
	}

	m.vendorAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.vendorAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
