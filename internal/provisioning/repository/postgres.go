// Package repository persists provisioning records in a single Postgres transaction.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"quickfy/backend/internal/db"
	identityrepo "quickfy/backend/internal/identity/repository"
	membershiprepo "quickfy/backend/internal/membership/repository"
	"quickfy/backend/internal/provisioning"
	userrepo "quickfy/backend/internal/user/repository"
	workspacerepo "quickfy/backend/internal/workspace/repository"
)

const uniqueViolation = "23505"

// PostgresStore implements provisioning.Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a store that writes through conn.
func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{db: conn}
}

// Save writes user, identity, workspace, membership and optional billing profile, or nothing.
func (s *PostgresStore) Save(ctx context.Context, r provisioning.Records) error {
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := userrepo.NewPostgresRepository(tx).Create(ctx, r.User); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := identityrepo.NewPostgresRepository(tx).Create(ctx, r.Identity); err != nil {
			return fmt.Errorf("create identity: %w", err)
		}
		workspaces := workspacerepo.NewPostgresRepository(tx)
		if err := workspaces.Create(ctx, r.Workspace); err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
		if err := membershiprepo.NewPostgresRepository(tx).Create(ctx, r.Membership); err != nil {
			return fmt.Errorf("create membership: %w", err)
		}
		if r.Billing != nil {
			if err := workspaces.CreateBillingProfile(ctx, r.Billing); err != nil {
				return fmt.Errorf("create billing profile: %w", err)
			}
		}
		return nil
	})
	return mapConflict(err)
}

// mapConflict translates unique violations on email or slug into provisioning sentinels.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if err == nil || !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_email_key", "identities_provider_provider_id_key":
		return fmt.Errorf("%w: %v", provisioning.ErrEmailTaken, err)
	case "workspaces_slug_key":
		return fmt.Errorf("%w: %v", provisioning.ErrSlugTaken, err)
	}
	return err
}
