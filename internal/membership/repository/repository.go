package repository

import (
	"context"

	"quickfy/backend/internal/membership/domain"
)

// Repository defines persistence for workspace memberships.
type Repository interface {
	Create(ctx context.Context, m *domain.Membership) error
}
