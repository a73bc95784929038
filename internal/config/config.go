// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the public HTTP API listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address of the gRPC health endpoint; empty disables it.
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. When empty, onboarding completes without persistence and audit is off.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAudience  string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the lifetime of the token issued on onboarding completion (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// ContactRateLimitMax is the number of contact submissions allowed per client per window.
	ContactRateLimitMax int `mapstructure:"CONTACT_RATE_LIMIT_MAX"`
	// ContactRateLimitWindow is the fixed window length (e.g. "60s").
	ContactRateLimitWindow string `mapstructure:"CONTACT_RATE_LIMIT_WINDOW"`
	// ContactMaxFieldLength caps each sanitized contact field, in characters.
	ContactMaxFieldLength int `mapstructure:"CONTACT_MAX_FIELD_LENGTH"`
	// ContactWebhookURL receives accepted submissions as JSON; empty disables delivery.
	ContactWebhookURL    string `mapstructure:"CONTACT_WEBHOOK_URL"`
	ContactWebhookSecret string `mapstructure:"CONTACT_WEBHOOK_SECRET"`

	// OnboardingSessionTTL is how long an idle onboarding session is kept (e.g. "24h").
	OnboardingSessionTTL string `mapstructure:"ONBOARDING_SESSION_TTL"`
	// OnboardingLogIgnoredEvents logs events a session's state does not accept.
	OnboardingLogIgnoredEvents bool `mapstructure:"ONBOARDING_LOG_IGNORED_EVENTS"`
	// EntitlementsPolicyFile is a Rego file overriding the built-in plan entitlements.
	EntitlementsPolicyFile string `mapstructure:"ENTITLEMENTS_POLICY_FILE"`

	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// ServiceName is the OTel service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	// OTelEndpoint is the OTLP gRPC collector address; empty disables OTel export.
	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelInsecure bool   `mapstructure:"OTEL_INSECURE"`

	// Telemetry (optional). When Kafka brokers are set, events are also written to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events (default quickfy-telemetry).
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "quickfy-auth")
	v.SetDefault("JWT_AUDIENCE", "quickfy-app")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("CONTACT_RATE_LIMIT_MAX", 3)
	v.SetDefault("CONTACT_RATE_LIMIT_WINDOW", "60s")
	v.SetDefault("CONTACT_MAX_FIELD_LENGTH", 5000)
	v.SetDefault("CONTACT_WEBHOOK_URL", "")
	v.SetDefault("CONTACT_WEBHOOK_SECRET", "")
	v.SetDefault("ONBOARDING_SESSION_TTL", "24h")
	v.SetDefault("ONBOARDING_LOG_IGNORED_EVENTS", false)
	v.SetDefault("ENTITLEMENTS_POLICY_FILE", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTEL_SERVICE_NAME", "quickfy-backend")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_INSECURE", true)
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "quickfy-telemetry")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "quickfy-telemetry-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.ContactRateLimitMax < 1 {
		return nil, errors.New("config: CONTACT_RATE_LIMIT_MAX must be at least 1")
	}
	if d, err := time.ParseDuration(cfg.ContactRateLimitWindow); err != nil || d <= 0 {
		return nil, errors.New("config: CONTACT_RATE_LIMIT_WINDOW must be a positive duration")
	}
	if cfg.ContactMaxFieldLength < 1 {
		return nil, errors.New("config: CONTACT_MAX_FIELD_LENGTH must be at least 1")
	}

	if (cfg.JWTPrivateKey == "") != (cfg.JWTPublicKey == "") {
		return nil, errors.New("config: JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set together")
	}
	if cfg.Env == "production" && cfg.ContactWebhookURL != "" && cfg.ContactWebhookSecret == "" {
		return nil, errors.New("config: CONTACT_WEBHOOK_SECRET must be set when CONTACT_WEBHOOK_URL is set in production")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RateLimitWindow parses ContactRateLimitWindow. Returns 60s if unset or invalid.
func (c *Config) RateLimitWindow() time.Duration {
	d, err := time.ParseDuration(c.ContactRateLimitWindow)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// SessionTTL parses OnboardingSessionTTL. Returns 24h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.OnboardingSessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// AuthEnabled reports whether both JWT keys are configured.
func (c *Config) AuthEnabled() bool {
	return c.JWTPrivateKey != "" && c.JWTPublicKey != ""
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
