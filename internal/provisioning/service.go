// Package provisioning turns a completed onboarding context into a user, workspace and owner membership.
package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	identitydomain "quickfy/backend/internal/identity/domain"
	membershipdomain "quickfy/backend/internal/membership/domain"
	onboardingdomain "quickfy/backend/internal/onboarding/domain"
	"quickfy/backend/internal/policy/engine"
	"quickfy/backend/internal/security"
	userdomain "quickfy/backend/internal/user/domain"
	workspacedomain "quickfy/backend/internal/workspace/domain"
)

// Sentinel errors; the onboarding service maps the conflicts to field errors.
var (
	ErrIncomplete  = errors.New("provisioning: onboarding context is incomplete")
	ErrEmailTaken  = errors.New("provisioning: email already registered")
	ErrSlugTaken   = errors.New("provisioning: workspace slug already taken")
	ErrNoEvaluator = errors.New("provisioning: entitlements evaluator is required")
)

// ErrTokenNotIssued accompanies a non-nil Result: the records are committed but the owner has no token.
var ErrTokenNotIssued = errors.New("provisioning: access token not issued")

// Records is everything created for one completed onboarding. Billing is nil when skipped.
type Records struct {
	User       *userdomain.User
	Identity   *identitydomain.Identity
	Workspace  *workspacedomain.Workspace
	Membership *membershipdomain.Membership
	Billing    *workspacedomain.BillingProfile
}

// Store persists Records atomically. Unique violations map to ErrEmailTaken and ErrSlugTaken.
type Store interface {
	Save(ctx context.Context, r Records) error
}

// TokenIssuer is implemented by *security.TokenProvider.
type TokenIssuer interface {
	IssueAccess(userID, workspaceID, role string) (security.AccessToken, error)
}

// Result describes the provisioned workspace and the owner's first access token.
type Result struct {
	UserID               string     `json:"userId"`
	WorkspaceID          string     `json:"workspaceId"`
	WorkspaceSlug        string     `json:"workspaceSlug"`
	Plan                 string     `json:"plan"`
	Status               string     `json:"status"`
	MaxMembers           int        `json:"maxMembers"`
	TrialEndsAt          *time.Time `json:"trialEndsAt,omitempty"`
	AccessToken          string     `json:"accessToken,omitempty"`
	AccessTokenExpiresAt *time.Time `json:"accessTokenExpiresAt,omitempty"`
}

// Service provisions completed onboardings.
type Service struct {
	store     Store
	evaluator engine.Evaluator
	tokens    TokenIssuer
	nowF      func() time.Time
}

// NewService returns a provisioning service. tokens may be nil; then no access token is issued.
func NewService(store Store, evaluator engine.Evaluator, tokens TokenIssuer) *Service {
	return &Service{
		store:     store,
		evaluator: evaluator,
		tokens:    tokens,
		nowF:      func() time.Time { return time.Now().UTC() },
	}
}

// BuildRecords validates c and derives the records to persist using entitlements ent.
func BuildRecords(c onboardingdomain.Context, ent engine.Entitlements, now time.Time) (Records, error) {
	if !c.Plan.Valid() || c.UserData == nil || c.UserData.Credential == "" || c.WorkspaceName == "" || c.WorkspaceSlug == "" {
		return Records{}, ErrIncomplete
	}
	user := &userdomain.User{
		ID:        uuid.New().String(),
		Email:     c.UserData.Email,
		Name:      c.UserData.Name,
		Status:    userdomain.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return Records{}, fmt.Errorf("%w: user: %v", ErrIncomplete, err)
	}
	ws := &workspacedomain.Workspace{
		ID:         uuid.New().String(),
		Name:       c.WorkspaceName,
		Slug:       c.WorkspaceSlug,
		Plan:       string(c.Plan),
		Status:     workspacedomain.WorkspaceStatus(ent.Status),
		MaxMembers: ent.MaxMembers,
		CreatedAt:  now,
	}
	if ent.TrialDays > 0 {
		ends := now.AddDate(0, 0, ent.TrialDays)
		ws.TrialEndsAt = &ends
	}
	if err := ws.Validate(); err != nil {
		return Records{}, fmt.Errorf("%w: workspace: %v", ErrIncomplete, err)
	}
	r := Records{
		User: user,
		Identity: &identitydomain.Identity{
			ID:           uuid.New().String(),
			UserID:       user.ID,
			Provider:     identitydomain.IdentityProviderLocal,
			ProviderID:   user.Email,
			PasswordHash: c.UserData.Credential,
			CreatedAt:    now,
		},
		Workspace: ws,
		Membership: &membershipdomain.Membership{
			ID:          uuid.New().String(),
			UserID:      user.ID,
			WorkspaceID: ws.ID,
			Role:        membershipdomain.RoleOwner,
			CreatedAt:   now,
		},
	}
	if b := c.BillingInfo; b != nil {
		r.Billing = &workspacedomain.BillingProfile{
			ID:          uuid.New().String(),
			WorkspaceID: ws.ID,
			CompanyName: b.CompanyName,
			VATNumber:   b.VATNumber,
			Address:     b.Address,
			City:        b.City,
			PostalCode:  b.PostalCode,
			Country:     b.Country,
			CreatedAt:   now,
		}
	}
	return r, nil
}

// Provision evaluates entitlements for c, persists every record in one transaction and issues an owner token.
// A token failure after the save returns the Result with an error wrapping ErrTokenNotIssued.
func (s *Service) Provision(ctx context.Context, c onboardingdomain.Context) (*Result, error) {
	if s.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	ent, err := s.evaluator.EvaluateEntitlements(ctx, engine.EntitlementInput{
		Plan:            string(c.Plan),
		BillingProvided: !c.BillingSkipped(),
	})
	if err != nil {
		return nil, fmt.Errorf("provisioning: evaluate entitlements: %w", err)
	}
	recs, err := BuildRecords(c, ent, s.nowF())
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, recs); err != nil {
		return nil, err
	}

	res := &Result{
		UserID:        recs.User.ID,
		WorkspaceID:   recs.Workspace.ID,
		WorkspaceSlug: recs.Workspace.Slug,
		Plan:          recs.Workspace.Plan,
		Status:        string(recs.Workspace.Status),
		MaxMembers:    recs.Workspace.MaxMembers,
		TrialEndsAt:   recs.Workspace.TrialEndsAt,
	}
	if s.tokens != nil {
		tok, err := s.tokens.IssueAccess(recs.User.ID, recs.Workspace.ID, string(membershipdomain.RoleOwner))
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrTokenNotIssued, err)
		}
		res.AccessToken = tok.Token
		res.AccessTokenExpiresAt = &tok.ExpiresAt
	}
	return res, nil
}
