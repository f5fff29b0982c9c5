// Package instrumentation provides OpenTelemetry instrumentation for the
// postmeeting backend.
//
// # Metrics
//
// Server/HTTP:
//   - http_requests_total: counter of HTTP requests by method, path, status
//   - http_request_duration_seconds: histogram of request durations
//
// Vendor APIs (Google, Recall, OpenAI, LinkedIn, Facebook):
//   - vendor_api_operations_total: counter by service, operation, status
//   - vendor_api_operation_duration_seconds: histogram of call durations
//
// OAuth:
//   - oauth_auth_total: counter of authentication events by result
//   - oauth_token_refresh_total: counter of token refresh attempts by result
//
// Bot lifecycle:
//   - bot_poll_cycles_total: counter of poll cycles by status
//   - completed_meetings_total: counter of meetings completed with transcript
//   - managed_bots: gauge of bots awaiting completion
//   - social_posts_total: counter of publish attempts by platform and status
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: sampling rate 0.0 to 1.0 (default: 0.1)
//   - OTEL_SERVICE_NAME: service name (default: postmeeting)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordHTTPRequest(ctx, "GET", "/calendar/events", 200, time.Since(start))
//	recorder.RecordVendorAPIOperation(ctx, "recall", "create", "success", time.Since(start))
package instrumentation
