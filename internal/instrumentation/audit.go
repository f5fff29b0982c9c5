package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// AccountEvent captures an action taken on behalf of a connected account for
// audit logging: OAuth connects and disconnects, bot scheduling, social
// publishing.
//
// The UserEmail field contains PII. When logging, consider:
//   - using UserDomain() for metrics and general logs
//   - only logging the full email in audit-specific log streams
type AccountEvent struct {
	// Action names the event (account_connected, account_disconnected,
	// bot_scheduled, meeting_completed, post_published).
	Action string

	// User identity (from OAuth)
	UserEmail string

	// Target information
	ServiceName string // Vendor (google, recall, openai, linkedin, facebook)
	MeetingID   string // Calendar event identifier, when applicable
	BotID       string // Recording bot identifier, when applicable
	Platform    string // Social or conferencing platform, when applicable

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// UserDomain returns the domain portion of the user's email for
// lower-cardinality logging.
func (e *AccountEvent) UserDomain() string {
	return ExtractUserDomain(e.UserEmail)
}

// Status returns "success" or "error" based on the Success field.
func (e *AccountEvent) Status() string {
	if e.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes with cardinality-controlled values
// (user_domain instead of the full email). For full audit logging use
// LogAuditAttrs.
func (e *AccountEvent) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("action", e.Action),
		slog.String("user_domain", e.UserDomain()),
		slog.Duration("duration", e.Duration),
		slog.Bool("success", e.Success),
	}
	return append(attrs, e.optionalAttrs()...)
}

// LogAuditAttrs returns slog attributes including the full user email for
// compliance purposes. Ensure audit logs are stored securely with
// appropriate access controls.
func (e *AccountEvent) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("action", e.Action),
		slog.String("user", e.UserEmail),
		slog.Duration("duration", e.Duration),
		slog.Bool("success", e.Success),
	}
	attrs = append(attrs, e.optionalAttrs()...)
	if e.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", e.SpanID))
	}
	return attrs
}

func (e *AccountEvent) optionalAttrs() []slog.Attr {
	var attrs []slog.Attr
	if e.ServiceName != "" {
		attrs = append(attrs, slog.String("service", e.ServiceName))
	}
	if e.MeetingID != "" {
		attrs = append(attrs, slog.String("meeting_id", e.MeetingID))
	}
	if e.BotID != "" {
		attrs = append(attrs, slog.String("bot_id", e.BotID))
	}
	if e.Platform != "" {
		attrs = append(attrs, slog.String("platform", e.Platform))
	}
	if e.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", e.TraceID))
	}
	if e.Error != "" {
		attrs = append(attrs, slog.String("error", e.Error))
	}
	return attrs
}

// NewAccountEvent creates an AccountEvent with timing started.
// Call Complete() when the action finishes.
func NewAccountEvent(action string) *AccountEvent {
	return &AccountEvent{
		Action:    action,
		StartTime: time.Now(),
	}
}

// WithUser sets the user identity.
func (e *AccountEvent) WithUser(email string) *AccountEvent {
	e.UserEmail = email
	return e
}

// WithService sets the vendor service.
func (e *AccountEvent) WithService(serviceName string) *AccountEvent {
	e.ServiceName = serviceName
	return e
}

// WithMeeting sets the meeting and bot identifiers.
func (e *AccountEvent) WithMeeting(meetingID, botID string) *AccountEvent {
	e.MeetingID = meetingID
	e.BotID = botID
	return e
}

// WithPlatform sets the platform.
func (e *AccountEvent) WithPlatform(platform string) *AccountEvent {
	e.Platform = platform
	return e
}

// WithSpanContext extracts trace context from the current span.
func (e *AccountEvent) WithSpanContext(ctx context.Context) *AccountEvent {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		e.TraceID = span.SpanContext().TraceID().String()
		e.SpanID = span.SpanContext().SpanID().String()
	}
	return e
}

// Complete marks the event as finished and calculates duration.
func (e *AccountEvent) Complete(success bool, err error) *AccountEvent {
	e.Duration = time.Since(e.StartTime)
	e.Success = success
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// CompleteWithError marks the event as failed with the given error.
func (e *AccountEvent) CompleteWithError(err error) *AccountEvent {
	return e.Complete(false, err)
}

// CompleteSuccess marks the event as successful.
func (e *AccountEvent) CompleteSuccess() *AccountEvent {
	return e.Complete(true, nil)
}

// AuditLogger provides structured audit logging for account events.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an AuditLogger. By default PII is not included in
// logs; anonymized identifiers are used instead.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: false,
		enabled:    true,
	}
}

// NewAuditLoggerWithConfig creates an AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// SetIncludePII sets whether to include full email addresses in audit logs.
func (al *AuditLogger) SetIncludePII(include bool) {
	al.includePII = include
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogEvent logs an account event. If the logger is configured with
// IncludePII, full user emails are logged; otherwise only domain-based
// identifiers are used.
func (al *AuditLogger) LogEvent(e *AccountEvent) {
	if !al.enabled {
		return
	}

	var attrs []slog.Attr
	if al.includePII {
		attrs = e.LogAuditAttrs()
	} else {
		attrs = e.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if e.Success {
		al.logger.Info("account_event", args...)
	} else {
		al.logger.Warn("account_event_failed", args...)
	}
}
