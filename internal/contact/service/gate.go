// Package service implements the contact submission gate: rate limiting, sanitizing and downstream delivery.
package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"quickfy/backend/internal/audit"
	"quickfy/backend/internal/contact/domain"
	"quickfy/backend/internal/contact/notify"
	contactrepo "quickfy/backend/internal/contact/repository"
	"quickfy/backend/internal/ratelimit"
	"quickfy/backend/internal/telemetry"
	telemetrydomain "quickfy/backend/internal/telemetry/domain"
)

// ErrDownstream is returned when an accepted submission could not be stored or delivered.
// Its message is safe to show to clients.
var ErrDownstream = errors.New("failed to send message, please try again later")

// Status classifies a Submit outcome that is not a downstream failure.
type Status int

const (
	StatusAccepted Status = iota
	StatusInvalid
	StatusRateLimited
)

// Result is the outcome of Submit.
type Result struct {
	Status Status
	// ID is set when the submission was accepted.
	ID string
	// Error is the client-facing reason for StatusInvalid and StatusRateLimited.
	Error string
	// RetryAfterSeconds is set for StatusRateLimited.
	RetryAfterSeconds int
	// Field names the offending field for StatusInvalid.
	Field string
}

// Limiter admits requests per client key.
type Limiter interface {
	Admit(key string, now time.Time) ratelimit.Decision
}

// Gate guards contact delivery behind a per-client limiter and input sanitizing.
type Gate struct {
	limiter     Limiter
	repo        contactrepo.Repository
	notifier    notify.Notifier
	auditLogger audit.AuditLogger
	emitter     telemetry.EventEmitter
	maxLen      int
	nowF        func() time.Time
	metrics     gateMetrics
}

// Option configures a Gate.
type Option func(*Gate)

// WithRepository persists accepted submissions.
func WithRepository(r contactrepo.Repository) Option { return func(g *Gate) { g.repo = r } }

// WithNotifier delivers accepted submissions.
func WithNotifier(n notify.Notifier) Option { return func(g *Gate) { g.notifier = n } }

// WithAuditLogger records accepted and throttled submissions.
func WithAuditLogger(l audit.AuditLogger) Option { return func(g *Gate) { g.auditLogger = l } }

// WithEmitter sends telemetry events for accepted submissions.
func WithEmitter(e telemetry.EventEmitter) Option { return func(g *Gate) { g.emitter = e } }

// WithMaxFieldLength overrides domain.DefaultMaxFieldLength.
func WithMaxFieldLength(n int) Option { return func(g *Gate) { g.maxLen = n } }

// NewGate returns a gate using limiter. Without repository or notifier, accepted submissions are only logged.
func NewGate(limiter Limiter, opts ...Option) *Gate {
	g := &Gate{
		limiter: limiter,
		maxLen:  domain.DefaultMaxFieldLength,
		nowF:    time.Now,
		metrics: newGateMetrics(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Submit admits clientKey, validates in and delivers it downstream.
// Validation and throttling are reported in Result; the only error is ErrDownstream.
func (g *Gate) Submit(ctx context.Context, clientKey string, in domain.Input) (Result, error) {
	now := g.nowF()
	if d := g.limiter.Admit(clientKey, now); !d.Allowed {
		g.metrics.record(ctx, outcomeRateLimited)
		g.logAudit(ctx, audit.ActionContactRateLimited, "retry_after="+strconv.Itoa(d.RetryAfterSeconds))
		return Result{
			Status:            StatusRateLimited,
			Error:             "Too many requests. Please try again later.",
			RetryAfterSeconds: d.RetryAfterSeconds,
		}, nil
	}

	sub, err := domain.Validate(in, g.maxLen)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			g.metrics.record(ctx, outcomeInvalid)
			return Result{Status: StatusInvalid, Error: ve.Error(), Field: ve.Field}, nil
		}
		return Result{}, err
	}
	sub.ID = domain.NewID(now)
	sub.ClientKey = clientKey
	sub.CreatedAt = now.UTC()

	if g.repo != nil {
		if err := g.repo.Create(ctx, &sub); err != nil {
			log.Printf("contact: persist submission %s: %v", sub.ID, err)
			g.metrics.record(ctx, outcomeFailed)
			return Result{}, ErrDownstream
		}
	}
	if g.notifier != nil {
		if err := g.notifier.Notify(ctx, &sub); err != nil {
			log.Printf("contact: notify submission %s: %v", sub.ID, err)
			g.metrics.record(ctx, outcomeFailed)
			return Result{}, ErrDownstream
		}
	}
	if g.repo == nil && g.notifier == nil {
		log.Printf("contact: accepted submission %s from %s (no downstream configured)", sub.ID, sub.Email)
	}

	g.metrics.record(ctx, outcomeAccepted)
	g.logAudit(ctx, audit.ActionContactSubmitted, sub.ID)
	telemetry.EmitAsync(g.emitter, ctx, telemetrydomain.NewEvent(
		telemetrydomain.EventContactSubmitted, "contact",
		map[string]any{"id": sub.ID, "hasCompany": sub.Company != "", "hasPhone": sub.Phone != ""},
	))
	return Result{Status: StatusAccepted, ID: sub.ID}, nil
}

func (g *Gate) logAudit(ctx context.Context, action, metadata string) {
	if g.auditLogger == nil {
		return
	}
	g.auditLogger.LogEvent(ctx, "", "", action, "contact", metadata)
}
