package instrumentation

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestAccountEventComplete(t *testing.T) {
	event := NewAccountEvent("bot_scheduled").
		WithUser("jane@example.com").
		WithService(ServiceRecall).
		WithMeeting("acct_0", "bot-1").
		WithPlatform("zoom")

	event.CompleteSuccess()

	if !event.Success {
		t.Error("expected event to be successful")
	}
	if event.Status() != StatusSuccess {
		t.Errorf("expected status 'success', got %q", event.Status())
	}
	if event.UserDomain() != "example.com" {
		t.Errorf("expected domain 'example.com', got %q", event.UserDomain())
	}
	if event.Duration < 0 {
		t.Error("expected a non-negative duration")
	}
}

func TestAccountEventCompleteWithError(t *testing.T) {
	event := NewAccountEvent("post_published").
		WithUser("jane@example.com").
		WithPlatform("linkedin").
		CompleteWithError(errors.New("token expired"))

	if event.Success {
		t.Error("expected event to be failed")
	}
	if event.Status() != StatusError {
		t.Errorf("expected status 'error', got %q", event.Status())
	}
	if event.Error != "token expired" {
		t.Errorf("expected error 'token expired', got %q", event.Error)
	}
}

func TestAuditLoggerHidesPIIByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLogger(logger)
	al.LogEvent(NewAccountEvent("account_connected").
		WithUser("jane@example.com").
		WithService(ServiceGoogle).
		CompleteSuccess())

	output := buf.String()
	if strings.Contains(output, "jane@example.com") {
		t.Errorf("expected full email to be hidden, got: %s", output)
	}
	if !strings.Contains(output, "example.com") {
		t.Errorf("expected domain in output, got: %s", output)
	}
	if !strings.Contains(output, "account_connected") {
		t.Errorf("expected action in output, got: %s", output)
	}
}

func TestAuditLoggerIncludesPIIWhenConfigured(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true, IncludePII: true})
	al.LogEvent(NewAccountEvent("account_disconnected").
		WithUser("jane@example.com").
		CompleteSuccess())

	if !strings.Contains(buf.String(), "jane@example.com") {
		t.Errorf("expected full email in audit output, got: %s", buf.String())
	}
}

func TestAuditLoggerDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: false})
	al.LogEvent(NewAccountEvent("account_connected").CompleteSuccess())

	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got: %s", buf.String())
	}
}

func TestAuditLoggerFailedEventLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLogger(logger)
	al.LogEvent(NewAccountEvent("post_published").
		WithPlatform("facebook").
		CompleteWithError(errors.New("permission denied")))

	output := buf.String()
	if !strings.Contains(output, "account_event_failed") {
		t.Errorf("expected failed event message, got: %s", output)
	}
	if !strings.Contains(output, "permission denied") {
		t.Errorf("expected error in output, got: %s", output)
	}
}
