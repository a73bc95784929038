// seed walks one onboarding session end to end against the configured database so a local
// stack has a workspace to look at. Idempotent: skips when the dev user already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"quickfy/backend/internal/config"
	"quickfy/backend/internal/db"
	"quickfy/backend/internal/onboarding/domain"
	onboardingservice "quickfy/backend/internal/onboarding/service"
	"quickfy/backend/internal/onboarding/store"
	"quickfy/backend/internal/onboarding/validation"
	"quickfy/backend/internal/policy/engine"
	"quickfy/backend/internal/provisioning"
	provisioningrepo "quickfy/backend/internal/provisioning/repository"
	"quickfy/backend/internal/security"
	userrepo "quickfy/backend/internal/user/repository"
	workspacerepo "quickfy/backend/internal/workspace/repository"
)

const (
	devUserEmail = "dev@example.com"
	devPassword  = "Passw0rd!dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("Seed already applied (%s exists). Skipping.", devUserEmail)
		return
	}

	evaluator, err := engine.NewOPAEvaluator(ctx, "")
	if err != nil {
		log.Fatalf("policy: %v", err)
	}
	flow := onboardingservice.NewService(onboardingservice.Deps{
		Store:       store.NewMemoryStore(time.Hour),
		Hasher:      security.NewHasher(cfg.BcryptCost),
		Provisioner: provisioning.NewService(provisioningrepo.NewPostgresStore(conn), evaluator, nil),
		Users:       users,
		Slugs:       workspacerepo.NewPostgresRepository(conn),
	})

	view, err := flow.Start(ctx)
	if err != nil {
		log.Fatalf("start session: %v", err)
	}
	steps := []onboardingservice.Input{
		{Type: domain.EventNext},
		{Type: domain.EventSelectPlan, Plan: domain.PlanPro},
		{Type: domain.EventSubmitSignup, Signup: &validation.SignupInput{
			Name: "Dev User", Email: devUserEmail, Password: devPassword, AcceptedTerms: true,
		}},
		{Type: domain.EventSubmitWorkspace, WorkspaceName: "Acme Dev"},
		{Type: domain.EventSubmitBilling, Billing: &validation.BillingInput{
			CompanyName: "Acme Dev Ltd", Address: "1 Main Street", City: "Springfield", PostalCode: "12345", Country: "US",
		}},
	}
	for _, in := range steps {
		view, err = flow.Dispatch(ctx, view.SessionID, in)
		if err != nil {
			log.Fatalf("%s: %v", in.Type, err)
		}
		if len(view.FieldErrors) > 0 {
			log.Fatalf("%s: %v", in.Type, view.FieldErrors)
		}
	}
	if view.State != domain.StateComplete || view.Workspace == nil {
		log.Fatalf("seed ended in state %s", view.State)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Workspace: %s (%s, %s)\n", view.Workspace.WorkspaceSlug, view.Workspace.Plan, view.Workspace.Status)
	fmt.Printf("Dev login: %s / %s\n", devUserEmail, devPassword)
}
