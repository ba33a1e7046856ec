// Package config loads service configuration from a .env file and the
// process environment, with the environment taking precedence.
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything main needs to wire the service.
type Config struct {
	Port             string
	AccountsFile     string
	TransactionsFile string
	LoadOnStart      bool
	DatabaseURL      string
	KafkaBrokers     []string
	KafkaTopic       string
	LogLevel         string
	LogFormat        string
}

// Load reads .env (missing file is fine in production) and resolves the
// configuration from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment variables")
	}
	return &Config{
		Port:             getEnv("PORT", "8080"),
		AccountsFile:     getEnv("ACCOUNTS_FILE", "accounts.csv"),
		TransactionsFile: getEnv("TRANSACTIONS_FILE", "transactions.csv"),
		LoadOnStart:      boolEnv("LOAD_ON_START", true),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		KafkaBrokers:     splitEnv("KAFKA_BROKERS"),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "bankcore.transactions"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func splitEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
