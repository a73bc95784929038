package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.GRPCAddr != ":9090" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":9090")
	}
	if cfg.JWTIssuer != "quickfy-auth" || cfg.JWTAudience != "quickfy-app" {
		t.Errorf("JWT issuer/audience = %q/%q", cfg.JWTIssuer, cfg.JWTAudience)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.ContactRateLimitMax != 3 {
		t.Errorf("ContactRateLimitMax = %d, want 3", cfg.ContactRateLimitMax)
	}
	if cfg.RateLimitWindow() != time.Minute {
		t.Errorf("RateLimitWindow = %v, want 1m", cfg.RateLimitWindow())
	}
	if cfg.ContactMaxFieldLength != 5000 {
		t.Errorf("ContactMaxFieldLength = %d, want 5000", cfg.ContactMaxFieldLength)
	}
	if cfg.SessionTTL() != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL())
	}
	if cfg.OnboardingLogIgnoredEvents {
		t.Error("OnboardingLogIgnoredEvents should default to false")
	}
	if cfg.TelemetryKafkaTopic != "quickfy-telemetry" || cfg.KafkaGroupID != "quickfy-telemetry-worker" {
		t.Errorf("kafka topic/group = %q/%q", cfg.TelemetryKafkaTopic, cfg.KafkaGroupID)
	}
	if cfg.ServiceName != "quickfy-backend" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.AuthEnabled() {
		t.Error("AuthEnabled should be false without keys")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9999")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")
	os.Setenv("CONTACT_RATE_LIMIT_MAX", "5")
	os.Setenv("CONTACT_RATE_LIMIT_WINDOW", "2m")
	os.Setenv("ONBOARDING_SESSION_TTL", "30m")
	os.Setenv("ONBOARDING_LOG_IGNORED_EVENTS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q", cfg.JWTIssuer)
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if cfg.ContactRateLimitMax != 5 || cfg.RateLimitWindow() != 2*time.Minute {
		t.Errorf("rate limit = %d per %v", cfg.ContactRateLimitMax, cfg.RateLimitWindow())
	}
	if cfg.SessionTTL() != 30*time.Minute || !cfg.OnboardingLogIgnoredEvents {
		t.Errorf("onboarding = %v, %v", cfg.SessionTTL(), cfg.OnboardingLogIgnoredEvents)
	}
}

func TestLoad_BCRYPT_COSTRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"valid middle", "12", 12, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero", "0", 12, false}, // Should default to 12
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestLoad_InvalidContactSettings(t *testing.T) {
	testCases := []struct {
		name, key, value string
	}{
		{"zero max", "CONTACT_RATE_LIMIT_MAX", "0"},
		{"bad window", "CONTACT_RATE_LIMIT_WINDOW", "soon"},
		{"negative window", "CONTACT_RATE_LIMIT_WINDOW", "-1m"},
		{"zero field length", "CONTACT_MAX_FIELD_LENGTH", "0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv(tc.key, tc.value)
			cfg, err := Load()
			if err == nil {
				t.Fatalf("Load should fail for %s=%s", tc.key, tc.value)
			}
			if cfg != nil {
				t.Error("Load should return nil config on error")
			}
		})
	}
}

func TestLoad_JWTKeysMustBePaired(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_PRIVATE_KEY", "/keys/private.pem")
	if _, err := Load(); err == nil {
		t.Error("Load should fail with only a private key")
	}

	os.Setenv("JWT_PUBLIC_KEY", "/keys/public.pem")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("AuthEnabled should be true with both keys")
	}
}

func TestLoad_ProductionWebhookNeedsSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "production")
	os.Setenv("CONTACT_WEBHOOK_URL", "https://hooks.example.com/contact")
	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without CONTACT_WEBHOOK_SECRET in production")
	}

	os.Setenv("APP_ENV", "development")
	if _, err := Load(); err != nil {
		t.Errorf("Load in development: %v", err)
	}
}

func TestAccessTTL(t *testing.T) {
	testCases := []struct {
		value string
		want  time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"invalid", 15 * time.Minute},
		{"0", 15 * time.Minute},
		{"-5m", 15 * time.Minute},
	}
	for _, tc := range testCases {
		cfg := &Config{JWTAccessTTL: tc.value}
		if got := cfg.AccessTTL(); got != tc.want {
			t.Errorf("AccessTTL(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestSessionTTL_InvalidFallsBack(t *testing.T) {
	cfg := &Config{OnboardingSessionTTL: "forever"}
	if cfg.SessionTTL() != 24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL())
	}
	cfg = &Config{ContactRateLimitWindow: ""}
	if cfg.RateLimitWindow() != time.Minute {
		t.Errorf("RateLimitWindow = %v", cfg.RateLimitWindow())
	}
}

func TestTelemetryKafkaBrokersList(t *testing.T) {
	var nilCfg *Config
	if nilCfg.TelemetryKafkaBrokersList() != nil {
		t.Error("nil config should yield nil list")
	}
	cfg := &Config{TelemetryKafkaBrokers: " kafka-1:9092, ,kafka-2:9092 "}
	want := []string{"kafka-1:9092", "kafka-2:9092"}
	if got := cfg.TelemetryKafkaBrokersList(); !reflect.DeepEqual(got, want) {
		t.Errorf("brokers = %v, want %v", got, want)
	}
}
