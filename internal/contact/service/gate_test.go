package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"quickfy/backend/internal/contact/domain"
	"quickfy/backend/internal/contact/notify"
	"quickfy/backend/internal/ratelimit"
	telemetrydomain "quickfy/backend/internal/telemetry/domain"
)

type fakeRepo struct {
	saved []*domain.Submission
	err   error
}

func (f *fakeRepo) Create(ctx context.Context, s *domain.Submission) error {
	if f.err != nil {
		return f.err
	}
	cp := *s
	f.saved = append(f.saved, &cp)
	return nil
}

type auditEntry struct{ action, metadata string }

type fakeAudit struct {
	entries []auditEntry
}

func (f *fakeAudit) LogEvent(ctx context.Context, workspaceID, userID, action, resource, metadata string) {
	f.entries = append(f.entries, auditEntry{action, metadata})
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []*telemetrydomain.Event
}

func (f *fakeEmitter) Emit(ctx context.Context, e *telemetrydomain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

var t0 = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestGate(opts ...Option) (*Gate, *time.Time) {
	now := t0
	g := NewGate(ratelimit.NewFixedWindow(3, time.Minute), opts...)
	g.nowF = func() time.Time { return now }
	return g, &now
}

func validInput() domain.Input {
	return domain.Input{Name: "Ada", Email: "ADA@example.com", Message: "Please get in touch with me.", Consent: true}
}

func TestGate_Accepts(t *testing.T) {
	repo := &fakeRepo{}
	var notified []string
	aud := &fakeAudit{}
	em := &fakeEmitter{}
	g, _ := newTestGate(
		WithRepository(repo),
		WithNotifier(notify.Func(func(ctx context.Context, s *domain.Submission) error {
			notified = append(notified, s.ID)
			return nil
		})),
		WithAuditLogger(aud),
		WithEmitter(em),
	)

	res, err := g.Submit(context.Background(), "10.0.0.1", validInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Status != StatusAccepted || !strings.HasPrefix(res.ID, "contact_") {
		t.Fatalf("result = %+v", res)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(repo.saved))
	}
	s := repo.saved[0]
	if s.ID != res.ID || s.ClientKey != "10.0.0.1" || s.Email != "ada@example.com" || !s.CreatedAt.Equal(t0) {
		t.Errorf("saved = %+v", s)
	}
	if len(notified) != 1 || notified[0] != res.ID {
		t.Errorf("notified = %v", notified)
	}
	if len(aud.entries) != 1 || aud.entries[0].action != "contact.submitted" {
		t.Errorf("audit = %+v", aud.entries)
	}
	deadline := time.Now().Add(2 * time.Second)
	for em.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if em.count() != 1 {
		t.Errorf("telemetry events = %d, want 1", em.count())
	}
}

func TestGate_Invalid(t *testing.T) {
	repo := &fakeRepo{}
	g, _ := newTestGate(WithRepository(repo))
	in := validInput()
	in.Email = "not-an-email"

	res, err := g.Submit(context.Background(), "10.0.0.1", in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Status != StatusInvalid || res.Field != "email" || res.Error == "" {
		t.Errorf("result = %+v", res)
	}
	if len(repo.saved) != 0 {
		t.Error("invalid submission must not reach downstream")
	}
}

func TestGate_RateLimited(t *testing.T) {
	aud := &fakeAudit{}
	g, now := newTestGate(WithAuditLogger(aud))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		*now = t0.Add(time.Duration(i) * 10 * time.Second)
		if res, _ := g.Submit(ctx, "ip1", validInput()); res.Status != StatusAccepted {
			t.Fatalf("submission %d = %+v", i+1, res)
		}
	}
	*now = t0.Add(30 * time.Second)
	res, err := g.Submit(ctx, "ip1", validInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Status != StatusRateLimited || res.RetryAfterSeconds != 30 || res.Error == "" {
		t.Errorf("result = %+v", res)
	}
	last := aud.entries[len(aud.entries)-1]
	if last.action != "contact.rate_limited" || last.metadata != "retry_after=30" {
		t.Errorf("audit = %+v", last)
	}

	if res, _ := g.Submit(ctx, "ip2", validInput()); res.Status != StatusAccepted {
		t.Errorf("other key = %+v, want accepted", res)
	}
	*now = t0.Add(61 * time.Second)
	if res, _ := g.Submit(ctx, "ip1", validInput()); res.Status != StatusAccepted {
		t.Errorf("new window = %+v, want accepted", res)
	}
}

func TestGate_InvalidRequestsCountTowardsLimit(t *testing.T) {
	g, _ := newTestGate()
	bad := validInput()
	bad.Consent = false
	for i := 0; i < 3; i++ {
		g.Submit(context.Background(), "ip1", bad)
	}
	if res, _ := g.Submit(context.Background(), "ip1", validInput()); res.Status != StatusRateLimited {
		t.Errorf("result = %+v, want rate limited", res)
	}
}

func TestGate_DownstreamFailures(t *testing.T) {
	internal := errors.New("pq: connection refused to 10.1.2.3")
	tests := []struct {
		name string
		opts []Option
	}{
		{"repository", []Option{WithRepository(&fakeRepo{err: internal})}},
		{"notifier", []Option{WithNotifier(notify.Func(func(context.Context, *domain.Submission) error { return internal }))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aud := &fakeAudit{}
			g, _ := newTestGate(append(tt.opts, WithAuditLogger(aud))...)
			_, err := g.Submit(context.Background(), "ip1", validInput())
			if !errors.Is(err, ErrDownstream) {
				t.Fatalf("err = %v, want ErrDownstream", err)
			}
			if strings.Contains(err.Error(), "10.1.2.3") {
				t.Error("error leaks internal details")
			}
			if len(aud.entries) != 0 {
				t.Errorf("failed submission should not be audited as submitted: %+v", aud.entries)
			}
		})
	}
}

func TestGate_MaxFieldLength(t *testing.T) {
	repo := &fakeRepo{}
	g, _ := newTestGate(WithRepository(repo), WithMaxFieldLength(12))
	in := validInput()
	in.Email = "a@b.io"
	in.Message = "This message is far longer than twelve characters"
	if res, err := g.Submit(context.Background(), "ip1", in); err != nil || res.Status != StatusAccepted {
		t.Fatalf("Submit = %+v, %v", res, err)
	}
	if got := repo.saved[0].Message; got != "This message" {
		t.Errorf("message = %q", got)
	}
}
