package config

import (
	"os"
	"strconv"
	"time"
)

// SnapshotBackend selects the durable store for conversation snapshots.
type SnapshotBackend string

const (
	SnapshotFile     SnapshotBackend = "file"
	SnapshotRedis    SnapshotBackend = "redis"
	SnapshotPostgres SnapshotBackend = "postgres"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	FlowVariant string

	SnapshotBackend SnapshotBackend
	SnapshotFile    string
	RedisURL        string
	PostgresURL     string

	TracingEnabled bool
	TracingSample  float64

	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("REG_ADDR", ":8080"),
		FlowVariant:     envOr("REG_FLOW_VARIANT", "minimal"),
		SnapshotBackend: SnapshotBackend(envOr("REG_SNAPSHOT_BACKEND", string(SnapshotFile))),
		SnapshotFile:    envOr("REG_SNAPSHOT_FILE", "conversations.json"),
		RedisURL:        os.Getenv("REG_REDIS_URL"),
		PostgresURL:     os.Getenv("REG_POSTGRES_URL"),
		TracingEnabled:  os.Getenv("REG_TRACING_ENABLED") == "true",
		TracingSample:   1.0,
		ShutdownTimeout: 10 * time.Second,
	}
	if raw := os.Getenv("REG_TRACING_SAMPLE"); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 && f <= 1 {
			cfg.TracingSample = f
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
