package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/neighborly/pkg/config"
)

// Config holds all configuration for the review service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Version     string `env:"SERVICE_VERSION" envDefault:"dev"`

	// HTTP server
	HTTPPort           int      `env:"HTTP_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"neighborly"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"neighborly_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"neighborly"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis
	RedisURL            string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	SummaryCacheTTLSecs int    `env:"SUMMARY_CACHE_TTL_SECONDS" envDefault:"300"`
	IdempotencyTTLSecs  int    `env:"IDEMPOTENCY_TTL_SECONDS" envDefault:"86400"`

	// Kafka
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"neighborly-review"`

	// Elasticsearch address index for autocomplete (empty URL disables it)
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"neighborly_addresses"`

	// Identity provider
	IdPBaseURL   string   `env:"IDP_API_URL" envDefault:"https://api.clerk.com"`
	IdPSecretKey string   `env:"IDP_SECRET_KEY"`
	JWTSecret    string   `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer    string   `env:"JWT_ISSUER"`
	AdminEmails  []string `env:"ADMIN_EMAILS" envSeparator:","`

	// Scoring
	DedupTimezone string `env:"DEDUP_TIMEZONE" envDefault:"UTC"`

	// Review submission rate limit, per client IP
	ReviewRateLimitPerMin int `env:"REVIEW_RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	ReviewRateLimitBurst  int `env:"REVIEW_RATE_LIMIT_BURST" envDefault:"5"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation, empty disables)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from a local .env file, if any, and the
// environment.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load review config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if _, err := time.LoadLocation(c.DedupTimezone); err != nil {
		return fmt.Errorf("invalid DEDUP_TIMEZONE %q: %w", c.DedupTimezone, err)
	}
	if c.SummaryCacheTTLSecs < 0 {
		return fmt.Errorf("SUMMARY_CACHE_TTL_SECONDS must not be negative")
	}
	if c.IdempotencyTTLSecs <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	if c.ReviewRateLimitPerMin <= 0 || c.ReviewRateLimitBurst <= 0 {
		return fmt.Errorf("review rate limit and burst must be positive")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.ElasticsearchURL != "" {
		if _, err := url.ParseRequestURI(c.ElasticsearchURL); err != nil {
			return fmt.Errorf("invalid ELASTICSEARCH_URL: %w", err)
		}
	}
	if _, err := url.ParseRequestURI(c.IdPBaseURL); err != nil {
		return fmt.Errorf("invalid IDP_API_URL: %w", err)
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.PathEscape(c.PostgresUser), url.PathEscape(c.PostgresPass), c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// Location returns the timezone used to bucket reviews by calendar day.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DedupTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AdminSet returns the admin allow-list, lower-cased and trimmed.
func (c *Config) AdminSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.AdminEmails))
	for _, e := range c.AdminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

// SummaryCacheTTL returns the address summary cache lifetime.
func (c *Config) SummaryCacheTTL() time.Duration {
	return time.Duration(c.SummaryCacheTTLSecs) * time.Second
}

// IdempotencyTTL returns how long submission keys and consumed event ids are
// remembered.
func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempotencyTTLSecs) * time.Second
}
