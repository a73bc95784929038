package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "quickfy/contact"

// Submission outcomes recorded on the contact.submissions counter.
const (
	outcomeAccepted    = "accepted"
	outcomeInvalid     = "invalid"
	outcomeRateLimited = "rate_limited"
	outcomeFailed      = "failed"
)

type gateMetrics struct {
	submissions metric.Int64Counter
}

// newGateMetrics registers instruments on the global MeterProvider. Instrument errors fall back to no-op instruments.
func newGateMetrics() gateMetrics {
	counter, err := otel.Meter(meterName).Int64Counter(
		"contact.submissions",
		metric.WithDescription("Contact form submissions by outcome."),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		otel.Handle(err)
	}
	return gateMetrics{submissions: counter}
}

func (m gateMetrics) record(ctx context.Context, outcome string) {
	if m.submissions == nil {
		return
	}
	m.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
