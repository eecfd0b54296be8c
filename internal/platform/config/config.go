package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Config struct {
	Addr          string
	LedgerBaseURL string
	LedgerTimeout time.Duration
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string
	JWTSigningKey string
	LogLevel      string
}

// FromEnv reads configuration from the environment. LEDGER_API_URL is the one
// required value; everything else has a development default or is optional
// (empty DATABASE_URL/REDIS_URL/KAFKA_BROKERS select in-memory fallbacks).
func FromEnv() Config {
	addr := os.Getenv("MASKCHAIN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	timeout := 10 * time.Second
	if raw := os.Getenv("LEDGER_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			timeout = d
		}
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "maskchain.audit"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Config{
		Addr:          addr,
		LedgerBaseURL: strings.TrimRight(os.Getenv("LEDGER_API_URL"), "/"),
		LedgerTimeout: timeout,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}
}
