package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the server needs at startup. Required secrets are
// validated in Load; a missing secret is a startup failure, not a runtime error.
type Config struct {
	Port       string
	SessionTTL time.Duration

	// Login gate for the UI collaborator.
	AuthUser     string
	AuthPassword string

	// Which data source feeds sync: "netsuite" or "postgres".
	Source string

	NetSuite  NetSuiteConfig
	Postgres  PostgresConfig
	Anthropic AnthropicConfig

	Rules Rules
}

// NetSuiteConfig describes the restlet endpoint and its OAuth1 credentials.
type NetSuiteConfig struct {
	AccountID      string
	ConsumerKey    string
	ConsumerSecret string
	TokenID        string
	TokenSecret    string
	ScriptID       string
	DeployID       string
	// BaseURL overrides the account-derived restlet URL (used in tests).
	BaseURL string
}

// PostgresConfig describes the alternate warehouse source.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Table    string
}

// AnthropicConfig describes the language-model service.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// Load reads configuration from the environment. Callers are expected to have
// loaded .env beforehand (godotenv in main).
func Load() (*Config, error) {
	cfg := &Config{
		Port:         GetEnv("PORT", "8001"),
		SessionTTL:   time.Duration(GetEnvAsInt("SESSION_TTL_MINUTES", 120)) * time.Minute,
		AuthUser:     os.Getenv("APP_USER"),
		AuthPassword: os.Getenv("APP_PASSWORD"),
		Source:       GetEnv("DATA_SOURCE", "netsuite"),
		NetSuite: NetSuiteConfig{
			AccountID:      os.Getenv("NETSUITE_ACCOUNT_ID"),
			ConsumerKey:    os.Getenv("NETSUITE_CONSUMER_KEY"),
			ConsumerSecret: os.Getenv("NETSUITE_CONSUMER_SECRET"),
			TokenID:        os.Getenv("NETSUITE_TOKEN_ID"),
			TokenSecret:    os.Getenv("NETSUITE_TOKEN_SECRET"),
			ScriptID:       GetEnv("NETSUITE_SCRIPT_ID", "128"),
			DeployID:       GetEnv("NETSUITE_DEPLOY_ID", "1"),
			BaseURL:        os.Getenv("NETSUITE_BASE_URL"),
		},
		Postgres: PostgresConfig{
			Host:     GetEnv("PG_HOST", "localhost"),
			Port:     GetEnvAsInt("PG_PORT", 5432),
			User:     os.Getenv("PG_USER"),
			Password: os.Getenv("PG_PASSWORD"),
			DBName:   os.Getenv("PG_DBNAME"),
			SSLMode:  GetEnv("PG_SSLMODE", "disable"),
			Table:    GetEnv("PG_TABLE", "opportunities"),
		},
		Anthropic: AnthropicConfig{
			APIKey:    os.Getenv("ANTHROPIC_API_KEY"),
			Model:     GetEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
			MaxTokens: int64(GetEnvAsInt("ANTHROPIC_MAX_TOKENS", 2048)),
		},
		Rules: DefaultRules(),
	}

	if cfg.AuthUser == "" || cfg.AuthPassword == "" {
		return nil, fmt.Errorf("APP_USER and APP_PASSWORD must be set")
	}
	if cfg.Anthropic.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY must be set")
	}
	switch cfg.Source {
	case "netsuite":
		ns := cfg.NetSuite
		if ns.AccountID == "" || ns.ConsumerKey == "" || ns.ConsumerSecret == "" ||
			ns.TokenID == "" || ns.TokenSecret == "" {
			return nil, fmt.Errorf("NETSUITE_ACCOUNT_ID, NETSUITE_CONSUMER_KEY, NETSUITE_CONSUMER_SECRET, NETSUITE_TOKEN_ID and NETSUITE_TOKEN_SECRET must be set")
		}
	case "postgres":
		if cfg.Postgres.User == "" || cfg.Postgres.DBName == "" {
			return nil, fmt.Errorf("PG_USER and PG_DBNAME must be set")
		}
	default:
		return nil, fmt.Errorf("unknown DATA_SOURCE %q", cfg.Source)
	}

	return cfg, nil
}

// GetEnv returns an environment variable with a fallback value.
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt returns an environment variable as an integer with a fallback value.
func GetEnvAsInt(key string, fallback int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}
