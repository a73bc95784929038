package repository

import (
	"context"

	"quickfy/backend/internal/contact/domain"
)

// Repository defines persistence for accepted contact submissions.
type Repository interface {
	Create(ctx context.Context, s *domain.Submission) error
}
