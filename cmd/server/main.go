package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickfy/backend/internal/audit"
	auditrepo "quickfy/backend/internal/audit/repository"
	"quickfy/backend/internal/config"
	contactdomain "quickfy/backend/internal/contact/domain"
	contacthandler "quickfy/backend/internal/contact/handler"
	"quickfy/backend/internal/contact/notify"
	contactrepo "quickfy/backend/internal/contact/repository"
	contactservice "quickfy/backend/internal/contact/service"
	"quickfy/backend/internal/db"
	"quickfy/backend/internal/health"
	onboardinghandler "quickfy/backend/internal/onboarding/handler"
	onboardingservice "quickfy/backend/internal/onboarding/service"
	"quickfy/backend/internal/onboarding/store"
	"quickfy/backend/internal/policy/engine"
	"quickfy/backend/internal/provisioning"
	provisioningrepo "quickfy/backend/internal/provisioning/repository"
	"quickfy/backend/internal/ratelimit"
	"quickfy/backend/internal/security"
	"quickfy/backend/internal/server"
	"quickfy/backend/internal/server/middleware"
	"quickfy/backend/internal/telemetry"
	telemetryotel "quickfy/backend/internal/telemetry/otel"
	"quickfy/backend/internal/telemetry/producer"
	userrepo "quickfy/backend/internal/user/repository"
	workspacerepo "quickfy/backend/internal/workspace/repository"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTelInsecure,
	})
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	emitters := []telemetry.EventEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		log.Printf("telemetry: writing events to kafka topic %s", cfg.TelemetryKafkaTopic)
	}
	emitter := telemetry.Multi(emitters...)

	var conn *sql.DB
	if cfg.DatabaseURL != "" {
		conn, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer conn.Close()
	} else {
		log.Println("db: DATABASE_URL not set; submissions and workspaces will not be persisted")
	}

	policySource := ""
	if cfg.EntitlementsPolicyFile != "" {
		b, err := os.ReadFile(cfg.EntitlementsPolicyFile)
		if err != nil {
			log.Fatalf("policy: read %s: %v", cfg.EntitlementsPolicyFile, err)
		}
		policySource = string(b)
	}
	evaluator, err := engine.NewOPAEvaluator(ctx, policySource)
	if err != nil {
		log.Fatalf("policy: %v", err)
	}

	var tokens provisioning.TokenIssuer
	if cfg.AuthEnabled() {
		priv, pub, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
		if err != nil {
			log.Fatalf("jwt keys: %v", err)
		}
		tokens = security.NewTokenProvider(priv, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	}

	gateOpts := []contactservice.Option{
		contactservice.WithEmitter(emitter),
		contactservice.WithMaxFieldLength(cfg.ContactMaxFieldLength),
	}
	onboardingDeps := onboardingservice.Deps{
		Hasher:           security.NewHasher(cfg.BcryptCost),
		Emitter:          emitter,
		LogIgnoredEvents: cfg.OnboardingLogIgnoredEvents,
	}
	var pinger health.Pinger
	if conn != nil {
		auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn), middleware.ClientIPFromContext)
		pinger = conn
		gateOpts = append(gateOpts,
			contactservice.WithRepository(contactrepo.NewPostgresRepository(conn)),
			contactservice.WithAuditLogger(auditLogger),
		)
		onboardingDeps.Users = userrepo.NewPostgresRepository(conn)
		onboardingDeps.Slugs = workspacerepo.NewPostgresRepository(conn)
		onboardingDeps.Audit = auditLogger
		onboardingDeps.Provisioner = provisioning.NewService(provisioningrepo.NewPostgresStore(conn), evaluator, tokens)
	}
	notifiers := []notify.Notifier{
		notify.Func(func(_ context.Context, s *contactdomain.Submission) error {
			log.Printf("contact: accepted submission %s", s.ID)
			return nil
		}),
	}
	if cfg.ContactWebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhook(cfg.ContactWebhookURL, cfg.ContactWebhookSecret))
	}
	gateOpts = append(gateOpts, contactservice.WithNotifier(notify.Multi(notifiers...)))

	limiter := ratelimit.NewFixedWindow(cfg.ContactRateLimitMax, cfg.RateLimitWindow())
	go limiter.Run(ctx, sweepInterval)
	gate := contactservice.NewGate(limiter, gateOpts...)

	sessions := store.NewMemoryStore(cfg.SessionTTL())
	go sessions.Run(ctx, sweepInterval)
	onboardingDeps.Store = sessions
	flow := onboardingservice.NewService(onboardingDeps)

	checker := health.NewChecker(pinger, evaluator)
	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewHTTPHandler(server.Routes{
			Contact:    contacthandler.NewHandler(gate),
			Onboarding: onboardinghandler.NewHandler(flow),
			Health:     checker,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	grpcSrv, healthSrv := server.NewGRPCServer(emitter)
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("listen: %v", err)
		}
		go checker.Watch(ctx, healthSrv, 10*time.Second)
		go func() {
			log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				log.Fatalf("grpc serve: %v", err)
			}
		}()
	}

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	grpcSrv.GracefulStop()

	// Let async telemetry emits finish before the exporters go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := kafkaProducer.Close(); err != nil {
		log.Printf("kafka producer close: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("server stopped")
}
