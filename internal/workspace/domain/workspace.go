package domain

import (
	"errors"
	"time"
)

// Workspace is a tenant created at the end of onboarding.
type Workspace struct {
	ID          string
	Name        string
	Slug        string
	Plan        string
	Status      WorkspaceStatus
	MaxMembers  int
	TrialEndsAt *time.Time
	CreatedAt   time.Time
}

type WorkspaceStatus string

const (
	WorkspaceStatusActive   WorkspaceStatus = "active"
	WorkspaceStatusTrialing WorkspaceStatus = "trialing"
)

// Validate validates the workspace for persistence. Returns an error describing the first validation failure.
func (w *Workspace) Validate() error {
	if w.Name == "" {
		return errors.New("name is required")
	}
	if w.Slug == "" {
		return errors.New("slug is required")
	}
	if w.Plan == "" {
		return errors.New("plan is required")
	}
	if w.Status == "" {
		w.Status = WorkspaceStatusActive
	}
	return nil
}

// BillingProfile holds invoicing details captured by the billing step.
type BillingProfile struct {
	ID          string
	WorkspaceID string
	CompanyName string
	VATNumber   string
	Address     string
	City        string
	PostalCode  string
	Country     string
	CreatedAt   time.Time
}
