package instrumentation

import (
	"context"
	"time"
)

// ObserveVendorOperation runs fn inside a client span for one external API
// call and records its duration and outcome. The span is produced even when
// m is nil so traces stay complete without metrics.
func ObserveVendorOperation(ctx context.Context, m *Metrics, service, operation, account string, fn func(context.Context) error) error {
	ctx, span := StartVendorAPISpan(ctx, service, operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	status := StatusSuccess
	if err != nil {
		status = StatusError
		SetSpanError(span, err)
	} else {
		SetSpanSuccess(span)
	}

	if m != nil {
		if account != "" {
			m.RecordVendorAPIOperationWithAccount(ctx, service, operation, status, account, duration)
		} else {
			m.RecordVendorAPIOperation(ctx, service, operation, status, duration)
		}
	}
	return err
}
