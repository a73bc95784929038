package repository

import (
	"context"
	"database/sql"
	"strings"

	"quickfy/backend/internal/db"
	"quickfy/backend/internal/workspace/domain"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a workspace repository backed by conn.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// ListSlugs returns base and every base-N slug already taken.
func (r *PostgresRepository) ListSlugs(ctx context.Context, base string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT slug FROM workspaces WHERE slug = $1 OR slug LIKE $2`,
		base, escapeLike(base)+"-%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create persists the workspace.
func (r *PostgresRepository) Create(ctx context.Context, w *domain.Workspace) error {
	var trial sql.NullTime
	if w.TrialEndsAt != nil {
		trial = sql.NullTime{Time: *w.TrialEndsAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, slug, plan, status, max_members, trial_ends_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.ID, w.Name, w.Slug, w.Plan, string(w.Status), w.MaxMembers, trial, w.CreatedAt,
	)
	return err
}

// CreateBillingProfile persists billing details for a workspace.
func (r *PostgresRepository) CreateBillingProfile(ctx context.Context, b *domain.BillingProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO billing_profiles (id, workspace_id, company_name, vat_number, address, city, postal_code, country, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.WorkspaceID, b.CompanyName, b.VATNumber, b.Address, b.City, b.PostalCode, b.Country, b.CreatedAt,
	)
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
