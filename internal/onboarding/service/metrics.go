package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "quickfy/onboarding"

type flowMetrics struct {
	transitions      metric.Int64Counter
	validationErrors metric.Int64Counter
	completions      metric.Int64Counter
}

func newFlowMetrics() flowMetrics {
	meter := otel.Meter(meterName)
	var m flowMetrics
	var err error
	if m.transitions, err = meter.Int64Counter("onboarding.transitions",
		metric.WithDescription("Wizard events that moved a session to a new state.")); err != nil {
		otel.Handle(err)
	}
	if m.validationErrors, err = meter.Int64Counter("onboarding.validation_errors",
		metric.WithDescription("Step submissions rejected by field validation.")); err != nil {
		otel.Handle(err)
	}
	if m.completions, err = meter.Int64Counter("onboarding.completions",
		metric.WithDescription("Onboardings that provisioned a workspace.")); err != nil {
		otel.Handle(err)
	}
	return m
}

func add(ctx context.Context, c metric.Int64Counter, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}
