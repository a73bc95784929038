package provisioning

import (
	"context"
	"errors"
	"testing"
	"time"

	onboardingdomain "quickfy/backend/internal/onboarding/domain"
	"quickfy/backend/internal/policy/engine"
	"quickfy/backend/internal/security"
)

type fakeStore struct {
	saved []Records
	err   error
}

func (f *fakeStore) Save(ctx context.Context, r Records) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, r)
	return nil
}

type fakeEvaluator struct {
	ent   engine.Entitlements
	err   error
	gotIn engine.EntitlementInput
}

func (f *fakeEvaluator) EvaluateEntitlements(ctx context.Context, in engine.EntitlementInput) (engine.Entitlements, error) {
	f.gotIn = in
	return f.ent, f.err
}

type failingIssuer struct{}

func (failingIssuer) IssueAccess(userID, workspaceID, role string) (security.AccessToken, error) {
	return security.AccessToken{}, errors.New("signer unavailable")
}

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func completeContext(withBilling bool) onboardingdomain.Context {
	c := onboardingdomain.Context{
		Plan:          onboardingdomain.PlanPro,
		UserData:      &onboardingdomain.UserData{Name: "Ada", Email: "ada@example.com", Credential: "$2a$hash", AcceptedTerms: true},
		WorkspaceName: "Analytical Engines",
		WorkspaceSlug: "analytical-engines",
	}
	if withBilling {
		c.BillingInfo = &onboardingdomain.BillingInfo{
			CompanyName: "AE Ltd", VATNumber: "GB12345678901", Address: "1 Main St",
			City: "London", PostalCode: "12345", Country: "GB",
		}
	}
	return c
}

func newTestService(t *testing.T, store Store, ev engine.Evaluator) *Service {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	s := NewService(store, ev, tokens)
	s.nowF = func() time.Time { return now }
	return s
}

func TestProvision_WithBilling(t *testing.T) {
	store := &fakeStore{}
	ev := &fakeEvaluator{ent: engine.Entitlements{MaxMembers: 50, Status: "active"}}
	s := newTestService(t, store, ev)

	res, err := s.Provision(context.Background(), completeContext(true))
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if ev.gotIn.Plan != "pro" || !ev.gotIn.BillingProvided {
		t.Errorf("evaluator input = %+v", ev.gotIn)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved = %d", len(store.saved))
	}
	r := store.saved[0]
	if r.User.Email != "ada@example.com" || r.Identity.PasswordHash != "$2a$hash" || r.Identity.UserID != r.User.ID {
		t.Errorf("user/identity = %+v / %+v", r.User, r.Identity)
	}
	if r.Workspace.Slug != "analytical-engines" || r.Workspace.MaxMembers != 50 || r.Workspace.TrialEndsAt != nil {
		t.Errorf("workspace = %+v", r.Workspace)
	}
	if r.Membership.Role != "owner" || r.Membership.WorkspaceID != r.Workspace.ID {
		t.Errorf("membership = %+v", r.Membership)
	}
	if r.Billing == nil || r.Billing.VATNumber != "GB12345678901" || r.Billing.WorkspaceID != r.Workspace.ID {
		t.Errorf("billing = %+v", r.Billing)
	}
	if res.WorkspaceID != r.Workspace.ID || res.UserID != r.User.ID || res.AccessToken == "" || res.AccessTokenExpiresAt == nil {
		t.Errorf("result = %+v", res)
	}
}

func TestProvision_SkippedBillingStartsTrial(t *testing.T) {
	store := &fakeStore{}
	ev := &fakeEvaluator{ent: engine.Entitlements{MaxMembers: 3, TrialDays: 14, Status: "trialing"}}
	s := newTestService(t, store, ev)

	res, err := s.Provision(context.Background(), completeContext(false))
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if ev.gotIn.BillingProvided {
		t.Error("billing should be reported as not provided")
	}
	r := store.saved[0]
	if r.Billing != nil {
		t.Error("no billing profile expected")
	}
	want := now.AddDate(0, 0, 14)
	if r.Workspace.TrialEndsAt == nil || !r.Workspace.TrialEndsAt.Equal(want) {
		t.Errorf("trial ends = %v, want %v", r.Workspace.TrialEndsAt, want)
	}
	if res.Status != "trialing" {
		t.Errorf("status = %q", res.Status)
	}
}

func TestProvision_WithOPAEvaluator(t *testing.T) {
	ev, err := engine.NewOPAEvaluator(context.Background(), "")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	store := &fakeStore{}
	if _, err := newTestService(t, store, ev).Provision(context.Background(), completeContext(false)); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	ws := store.saved[0].Workspace
	if ws.MaxMembers != 50 || ws.Status != "trialing" || ws.TrialEndsAt == nil {
		t.Errorf("workspace = %+v", ws)
	}
}

func TestProvision_Incomplete(t *testing.T) {
	ev := &fakeEvaluator{ent: engine.Entitlements{MaxMembers: 1, Status: "active"}}
	mutations := map[string]func(*onboardingdomain.Context){
		"no plan":       func(c *onboardingdomain.Context) { c.Plan = "" },
		"no user":       func(c *onboardingdomain.Context) { c.UserData = nil },
		"no credential": func(c *onboardingdomain.Context) { c.UserData.Credential = "" },
		"no workspace":  func(c *onboardingdomain.Context) { c.WorkspaceName = "" },
		"no slug":       func(c *onboardingdomain.Context) { c.WorkspaceSlug = "" },
		"no email":      func(c *onboardingdomain.Context) { c.UserData.Email = "" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			store := &fakeStore{}
			c := completeContext(false)
			mutate(&c)
			if _, err := newTestService(t, store, ev).Provision(context.Background(), c); !errors.Is(err, ErrIncomplete) {
				t.Errorf("err = %v, want ErrIncomplete", err)
			}
			if len(store.saved) != 0 {
				t.Error("nothing should be saved")
			}
		})
	}
}

func TestProvision_Errors(t *testing.T) {
	ctx := context.Background()
	ok := &fakeEvaluator{ent: engine.Entitlements{MaxMembers: 1, Status: "active"}}

	if _, err := NewService(&fakeStore{}, nil, nil).Provision(ctx, completeContext(true)); !errors.Is(err, ErrNoEvaluator) {
		t.Errorf("nil evaluator err = %v", err)
	}

	evalErr := errors.New("opa down")
	if _, err := newTestService(t, &fakeStore{}, &fakeEvaluator{err: evalErr}).Provision(ctx, completeContext(true)); !errors.Is(err, evalErr) {
		t.Errorf("evaluator err = %v", err)
	}

	if _, err := newTestService(t, &fakeStore{err: ErrSlugTaken}, ok).Provision(ctx, completeContext(true)); !errors.Is(err, ErrSlugTaken) {
		t.Errorf("store err = %v", err)
	}

	store := &fakeStore{}
	s := NewService(store, ok, failingIssuer{})
	res, err := s.Provision(ctx, completeContext(true))
	if !errors.Is(err, ErrTokenNotIssued) {
		t.Errorf("token err = %v", err)
	}
	if res == nil || res.WorkspaceID == "" || res.AccessToken != "" || len(store.saved) != 1 {
		t.Errorf("result = %+v, saved = %d", res, len(store.saved))
	}
}

func TestProvision_NoTokenIssuer(t *testing.T) {
	ev := &fakeEvaluator{ent: engine.Entitlements{MaxMembers: 1, Status: "active"}}
	res, err := NewService(&fakeStore{}, ev, nil).Provision(context.Background(), completeContext(true))
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if res.AccessToken != "" || res.AccessTokenExpiresAt != nil {
		t.Errorf("result = %+v, want no token", res)
	}
}
