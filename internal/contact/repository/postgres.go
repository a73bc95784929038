package repository

import (
	"context"

	"quickfy/backend/internal/contact/domain"
	"quickfy/backend/internal/db"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a contact submission repository backed by conn.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// Create persists the submission. The submission must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Submission) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contact_submissions (id, name, email, company, phone, message, client_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, s.Email, s.Company, s.Phone, s.Message, s.ClientKey, s.CreatedAt,
	)
	return err
}
