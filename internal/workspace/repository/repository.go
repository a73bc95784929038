package repository

import (
	"context"

	"quickfy/backend/internal/workspace/domain"
)

// Repository defines persistence for workspaces and their billing profiles.
type Repository interface {
	// ListSlugs returns slugs equal to base or of the form base-N, for uniqueness suffixing.
	ListSlugs(ctx context.Context, base string) ([]string, error)
	Create(ctx context.Context, w *domain.Workspace) error
	CreateBillingProfile(ctx context.Context, b *domain.BillingProfile) error
}
