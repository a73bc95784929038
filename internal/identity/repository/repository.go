package repository

import (
	"context"

	"quickfy/backend/internal/identity/domain"
)

// Repository defines persistence for identities.
type Repository interface {
	Create(ctx context.Context, i *domain.Identity) error
}
