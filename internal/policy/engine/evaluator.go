// Package engine evaluates workspace plan entitlements with OPA Rego.
package engine

import "context"

// Entitlements is what a new workspace is provisioned with.
type Entitlements struct {
	MaxMembers int
	TrialDays  int
	Status     string
}

// EntitlementInput describes the completed onboarding the policy decides on.
type EntitlementInput struct {
	Plan            string
	BillingProvided bool
}

// Evaluator computes entitlements for a new workspace.
type Evaluator interface {
	EvaluateEntitlements(ctx context.Context, in EntitlementInput) (Entitlements, error)
}
