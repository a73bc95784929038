package repository

import (
	"context"

	"quickfy/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
