package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	NATSURL     string
	NATSSubject string

	StoragePath string

	DocIntelURL            string
	DocIntelTimeoutSeconds int
	DocIntelRPS            float64

	AuditPostgresDSN string

	RulesFilePath string

	ConfidenceThreshold float64
	BulkLimit           int
	PIIAccessToken      string

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		NATSURL:     mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: mustEnv("NATS_SUBJECT", "documents.ingested"),

		StoragePath: mustEnv("STORAGE_PATH", "./data/documents"),

		DocIntelURL:            mustEnv("DOCINTEL_URL", "http://localhost:7071"),
		DocIntelTimeoutSeconds: mustEnvInt("DOCINTEL_TIMEOUT_SECONDS", 60),
		DocIntelRPS:            mustEnvFloat("DOCINTEL_RPS", 5),

		AuditPostgresDSN: mustEnv("AUDIT_POSTGRES_DSN", ""),

		RulesFilePath: mustEnv("RULES_FILE", ""),

		ConfidenceThreshold: mustEnvFloat("CONFIDENCE_THRESHOLD", 0.80),
		BulkLimit:           mustEnvInt("BULK_LIMIT", 50),
		PIIAccessToken:      mustEnv("PII_ACCESS_TOKEN", ""),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
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

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
