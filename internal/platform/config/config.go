// Package config builds process configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures everything the process needs to start.
type Server struct {
	Addr     string
	LogLevel string

	// DatabaseURL enables the Postgres-backed stores. Empty selects the
	// in-memory stores, which is only appropriate for local runs.
	DatabaseURL string

	Redis RedisConfig
	Kafka KafkaConfig

	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	// ApprovalThreshold is the risk level at or above which soft deletes are
	// routed through the approval workflow.
	ApprovalThreshold string

	// ThrottleLimit caps destructive requests per actor per ThrottleWindow.
	ThrottleLimit  int
	ThrottleWindow time.Duration

	// AuditBuffer sizes the async audit publisher queue; 0 keeps writes
	// synchronous.
	AuditBuffer int
}

// RedisConfig configures the optional Redis client used by the deletion
// throttle.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit event fan-out.
type KafkaConfig struct {
	Seeds []string
	Topic string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:        envOr("RHELLOFLOW_ADDR", ":8080"),
		LogLevel:    envOr("RHELLOFLOW_LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("RHELLOFLOW_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("RHELLOFLOW_REDIS_URL"),
			PoolSize:     envInt("RHELLOFLOW_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("RHELLOFLOW_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Seeds: splitNonEmpty(os.Getenv("RHELLOFLOW_KAFKA_SEEDS")),
			Topic: envOr("RHELLOFLOW_KAFKA_AUDIT_TOPIC", "rhelloflow.audit"),
		},
		// The default signing key only exists so local runs start; override in
		// production.
		JWTSigningKey:     envOr("RHELLOFLOW_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:         envOr("RHELLOFLOW_JWT_ISSUER", "rhelloflow"),
		JWTAudience:       envOr("RHELLOFLOW_JWT_AUDIENCE", "rhelloflow-api"),
		ApprovalThreshold: envOr("RHELLOFLOW_APPROVAL_THRESHOLD", "critical"),
		ThrottleLimit:     envInt("RHELLOFLOW_THROTTLE_LIMIT", 30),
		ThrottleWindow:    time.Minute,
		AuditBuffer:       envInt("RHELLOFLOW_AUDIT_BUFFER", 256),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
