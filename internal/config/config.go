package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the DealHunter backend. It is built
// once at startup and passed into component constructors — there is no
// process-wide mutable settings singleton.
type Config struct {
	Port        int
	Version     string
	FrontendURL string

	Database  DatabaseConfig
	OpenAI    OpenAIConfig
	Email     EmailConfig
	Telemetry TelemetryConfig
}

type DatabaseConfig struct {
	// URL is the Postgres connection string. Empty means "run on the
	// in-memory store with seeded demo data".
	URL            string
	MaxConnections int
}

type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

type EmailConfig struct {
	ResendAPIKey string
	// AlertEmail is the single demo recipient; the system assumes one owner.
	AlertEmail string
	FromName   string
	FromEmail  string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:        envInt("PORT", 8000),
		Version:     envStr("DEALHUNTER_VERSION", "0.2.0"),
		FrontendURL: envStr("FRONTEND_URL", "http://localhost:3000"),
		Database: DatabaseConfig{
			URL:            envStr("DATABASE_URL", ""),
			MaxConnections: envInt("DATABASE_MAX_CONNECTIONS", 10),
		},
		OpenAI: OpenAIConfig{
			APIKey:      envStr("OPENAI_API_KEY", ""),
			Model:       envStr("OPENAI_MODEL", "gpt-4o-mini"),
			MaxTokens:   envInt("OPENAI_MAX_TOKENS", 500),
			Temperature: envFloat("OPENAI_TEMPERATURE", 0.7),
		},
		Email: EmailConfig{
			ResendAPIKey: envStr("RESEND_API_KEY", ""),
			AlertEmail:   envStr("DEMO_ALERT_EMAIL", "alerts@dealhunter.local"),
			FromName:     envStr("ALERT_FROM_NAME", "DealHunter"),
			FromEmail:    envStr("ALERT_FROM_EMAIL", "alerts@dealhunter.local"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "dealhunter-backend"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
