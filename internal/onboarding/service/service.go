// Package service runs onboarding sessions: it validates raw step input, feeds the wizard state machine,
// and provisions the workspace when a session completes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"quickfy/backend/internal/audit"
	"quickfy/backend/internal/onboarding/domain"
	"quickfy/backend/internal/onboarding/store"
	"quickfy/backend/internal/onboarding/validation"
	"quickfy/backend/internal/provisioning"
	"quickfy/backend/internal/telemetry"
	telemetrydomain "quickfy/backend/internal/telemetry/domain"
	userdomain "quickfy/backend/internal/user/domain"
	"quickfy/backend/internal/workspace/slug"
)

// Sentinel errors; the handler maps them to HTTP statuses.
var (
	ErrSessionNotFound = errors.New("onboarding session not found")
	// ErrProvisioningFailed is safe to show to clients; the session stays in billing.
	ErrProvisioningFailed = errors.New("we could not create your workspace, please try again")
)

// Input is one raw wizard step. Only the payload matching Type is read.
type Input struct {
	Type          domain.EventType         `json:"type"`
	Plan          domain.Plan              `json:"plan,omitempty"`
	Signup        *validation.SignupInput  `json:"signup,omitempty"`
	WorkspaceName string                   `json:"workspaceName,omitempty"`
	Billing       *validation.BillingInput `json:"billing,omitempty"`
}

// View is a session snapshot returned to clients.
type View struct {
	SessionID     string                 `json:"sessionId"`
	State         domain.State           `json:"state"`
	Context       domain.Context         `json:"context"`
	AllowedEvents []domain.EventType     `json:"allowedEvents"`
	FieldErrors   validation.FieldErrors `json:"fieldErrors,omitempty"`
	ExpiresAt     time.Time              `json:"expiresAt"`
	// Workspace is set once the session completes.
	Workspace *provisioning.Result `json:"workspace,omitempty"`
}

// Provisioner creates the workspace for a completed context.
type Provisioner interface {
	Provision(ctx context.Context, c domain.Context) (*provisioning.Result, error)
}

// UserLookup finds existing accounts by email.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// SlugLister returns persisted slugs equal to base or of the form base-N.
type SlugLister interface {
	ListSlugs(ctx context.Context, base string) ([]string, error)
}

// PasswordHasher is implemented by *security.Hasher.
type PasswordHasher interface {
	Hash(password []byte) (string, error)
}

// Deps are the collaborators of Service. Store and Hasher are required.
type Deps struct {
	Store       store.Store
	Hasher      PasswordHasher
	Provisioner Provisioner
	Users       UserLookup
	Slugs       SlugLister
	Audit       audit.AuditLogger
	Emitter     telemetry.EventEmitter
	// LogIgnoredEvents logs events that have no transition from the session's state.
	LogIgnoredEvents bool
}

// Service drives onboarding sessions.
type Service struct {
	deps    Deps
	metrics flowMetrics
}

// NewService returns a Service using deps.
func NewService(deps Deps) *Service {
	return &Service{deps: deps, metrics: newFlowMetrics()}
}

// Start creates a session at welcome.
func (s *Service) Start(ctx context.Context) (View, error) {
	id := uuid.New().String()
	if err := s.deps.Store.Create(ctx, store.Session{ID: id, State: domain.StateWelcome}); err != nil {
		return View{}, fmt.Errorf("onboarding: create session: %w", err)
	}
	sess, err := s.deps.Store.Get(ctx, id)
	if err != nil {
		return View{}, s.mapStoreErr(err)
	}
	return viewOf(sess), nil
}

// Get returns the session snapshot.
func (s *Service) Get(ctx context.Context, sessionID string) (View, error) {
	sess, err := s.deps.Store.Get(ctx, sessionID)
	if err != nil {
		return View{}, s.mapStoreErr(err)
	}
	return viewOf(sess), nil
}

// Dispatch validates in and applies it to the session. Field errors are returned in View.FieldErrors with the
// state unchanged. Events the current state does not accept leave the session untouched.
// Reaching complete provisions the workspace first; the session is discarded afterwards.
func (s *Service) Dispatch(ctx context.Context, sessionID string, in Input) (View, error) {
	var (
		fieldErrs validation.FieldErrors
		result    *provisioning.Result
		from      domain.State
	)
	sess, err := s.deps.Store.Update(ctx, sessionID, func(sess *store.Session) error {
		from = sess.State
		flow := domain.RestoreFlow(sess.State, sess.Context, s.flowOptions(sessionID)...)

		var event domain.Event
		if domain.Accepts(flow.CurrentState(), in.Type) {
			var (
				errs validation.FieldErrors
				err  error
			)
			event, errs, err = s.buildEvent(ctx, in)
			if err != nil {
				return err
			}
			if !errs.Empty() {
				fieldErrs = errs
				flow.SetError(errs.Error())
				sess.Context = flow.CurrentContext()
				add(ctx, s.metrics.validationErrors, attribute.String("event", string(in.Type)))
				return nil
			}
		} else {
			event = domain.Event{Type: in.Type}
		}

		next, nextCtx, ok := domain.Transition(flow.CurrentState(), flow.CurrentContext(), event)
		if ok && next == domain.StateComplete {
			res, errs, err := s.provision(ctx, nextCtx)
			if err != nil {
				return err
			}
			if !errs.Empty() {
				fieldErrs = errs
				flow.SetError(errs.Error())
				sess.Context = flow.CurrentContext()
				return nil
			}
			result = res
		}
		sess.State, sess.Context = flow.Dispatch(event)
		return nil
	})
	if err != nil {
		return View{}, s.mapStoreErr(err)
	}

	view := viewOf(sess)
	view.FieldErrors = fieldErrs
	if sess.State != from {
		s.recordTransition(ctx, sessionID, from, sess.State, in.Type)
	}
	if sess.State == domain.StateComplete && from != domain.StateComplete {
		view.Workspace = result
		s.recordCompletion(ctx, sess.Context, result)
		if err := s.deps.Store.Delete(ctx, sessionID); err != nil {
			log.Printf("onboarding: discard completed session %s: %v", sessionID, err)
		}
	}
	return view, nil
}

// buildEvent validates the payload for in.Type and converts it to a machine event.
func (s *Service) buildEvent(ctx context.Context, in Input) (domain.Event, validation.FieldErrors, error) {
	switch in.Type {
	case domain.EventSelectPlan:
		if errs := validation.Plan(in.Plan); !errs.Empty() {
			return domain.Event{}, errs, nil
		}
		return domain.SelectPlan(in.Plan), nil, nil

	case domain.EventSubmitSignup:
		if in.Signup == nil {
			return domain.Event{}, validation.FieldErrors{"signup": "signup details are required"}, nil
		}
		form := in.Signup.Normalize()
		if errs := validation.Signup(form); !errs.Empty() {
			return domain.Event{}, errs, nil
		}
		if s.deps.Users != nil {
			existing, err := s.deps.Users.GetByEmail(ctx, form.Email)
			if err != nil {
				return domain.Event{}, nil, fmt.Errorf("onboarding: look up email: %w", err)
			}
			if existing != nil {
				return domain.Event{}, validation.FieldErrors{"email": "email already registered"}, nil
			}
		}
		credential, err := s.deps.Hasher.Hash([]byte(form.Password))
		if err != nil {
			return domain.Event{}, nil, fmt.Errorf("onboarding: hash password: %w", err)
		}
		return domain.SubmitSignup(domain.UserData{
			Name:          form.Name,
			Email:         form.Email,
			Credential:    credential,
			AcceptedTerms: form.AcceptedTerms,
		}), nil, nil

	case domain.EventSubmitWorkspace:
		name := strings.TrimSpace(in.WorkspaceName)
		if errs := validation.WorkspaceName(name); !errs.Empty() {
			return domain.Event{}, errs, nil
		}
		base := slug.Slugify(name)
		var existing []string
		if s.deps.Slugs != nil {
			var err error
			if existing, err = s.deps.Slugs.ListSlugs(ctx, base); err != nil {
				return domain.Event{}, nil, fmt.Errorf("onboarding: list slugs: %w", err)
			}
		}
		return domain.SubmitWorkspace(name, slug.Unique(base, existing)), nil, nil

	case domain.EventSubmitBilling:
		if in.Billing == nil {
			return domain.Event{}, validation.FieldErrors{"billing": "billing details are required"}, nil
		}
		form := in.Billing.Normalize()
		if errs := validation.Billing(form); !errs.Empty() {
			return domain.Event{}, errs, nil
		}
		return domain.SubmitBilling(form.ToDomain()), nil, nil
	}
	return domain.Event{Type: in.Type}, nil, nil
}

// provision creates the workspace for a context about to complete. Conflicts that surfaced after the
// earlier checks come back as field errors; any other failure is ErrProvisioningFailed.
func (s *Service) provision(ctx context.Context, c domain.Context) (*provisioning.Result, validation.FieldErrors, error) {
	if s.deps.Provisioner == nil {
		log.Printf("onboarding: no provisioner configured, completing %q without persistence", c.WorkspaceSlug)
		return nil, nil, nil
	}
	res, err := s.deps.Provisioner.Provision(ctx, c)
	switch {
	case err == nil:
		return res, nil, nil
	case errors.Is(err, provisioning.ErrTokenNotIssued) && res != nil:
		log.Printf("onboarding: workspace %s provisioned without access token: %v", res.WorkspaceID, err)
		return res, nil, nil
	case errors.Is(err, provisioning.ErrEmailTaken):
		return nil, validation.FieldErrors{"email": "email already registered"}, nil
	case errors.Is(err, provisioning.ErrSlugTaken):
		return nil, validation.FieldErrors{"workspaceName": "workspace name is already taken"}, nil
	}
	log.Printf("onboarding: provision workspace %q: %v", c.WorkspaceSlug, err)
	if s.deps.Audit != nil {
		s.deps.Audit.LogEvent(ctx, "", "", audit.ActionOnboardingFailed, "workspace", c.WorkspaceSlug)
	}
	return nil, nil, ErrProvisioningFailed
}

func (s *Service) flowOptions(sessionID string) []domain.FlowOption {
	if !s.deps.LogIgnoredEvents {
		return nil
	}
	return []domain.FlowOption{domain.WithIgnoredHook(func(state domain.State, event domain.EventType) {
		log.Printf("onboarding: session %s ignored event %q in state %s", sessionID, event, state)
	})}
}

func (s *Service) recordTransition(ctx context.Context, sessionID string, from, to domain.State, event domain.EventType) {
	add(ctx, s.metrics.transitions,
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
		attribute.String("event", string(event)),
	)
	telemetry.EmitAsync(s.deps.Emitter, ctx, telemetrydomain.NewEvent(
		telemetrydomain.EventOnboardingStep, "onboarding",
		map[string]string{"sessionId": sessionID, "from": string(from), "to": string(to), "event": string(event)},
	))
}

func (s *Service) recordCompletion(ctx context.Context, c domain.Context, res *provisioning.Result) {
	add(ctx, s.metrics.completions,
		attribute.String("plan", string(c.Plan)),
		attribute.Bool("billing_skipped", c.BillingSkipped()),
	)
	if res == nil {
		return
	}
	if s.deps.Audit != nil {
		s.deps.Audit.LogEvent(ctx, res.WorkspaceID, res.UserID, audit.ActionOnboardingComplete, "workspace", "plan="+res.Plan)
	}
	event := telemetrydomain.NewEvent(telemetrydomain.EventOnboardingCompleted, "onboarding",
		map[string]any{"plan": res.Plan, "billingSkipped": c.BillingSkipped(), "status": res.Status})
	event.WorkspaceID = res.WorkspaceID
	event.UserID = res.UserID
	telemetry.EmitAsync(s.deps.Emitter, ctx, event)
}

func (s *Service) mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

func viewOf(sess store.Session) View {
	return View{
		SessionID:     sess.ID,
		State:         sess.State,
		Context:       sess.Context,
		AllowedEvents: domain.AllowedEvents(sess.State),
		ExpiresAt:     sess.ExpiresAt,
	}
}
