package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	defaultPort         = "8080"
	defaultDBName       = "ballcrusher.db"
	defaultRateLimitRPS = 20
)

// Load reads configuration from environment variables and .env file.
// Invalid configuration is fatal.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := parse(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	return cfg
}

// parse builds a Config from lookup, which behaves like os.LookupEnv.
func parse(lookup func(string) (string, bool)) (Config, error) {
	getEnvDefault := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBName: getEnvDefault("DB_NAME", defaultDBName),
		Port:   getEnvDefault("PORT", defaultPort),
		Data: DataConfig{
			URL:  getEnvDefault("DATA_URL", ""),
			File: getEnvDefault("DATA_FILE", ""),
		},
		Slack: SlackConfig{
			Token:         getEnvDefault("SLACK_BOT_TOKEN", ""),
			ChannelID:     getEnvDefault("SLACK_CHANNEL_ID", ""),
			SigningSecret: getEnvDefault("SLACK_SIGNING_SECRET", ""),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnvDefault("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvDefault("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID:    getEnvDefault("GCP_PROJECT", ""),
		LogLevel:     log.InfoLevel,
		RateLimitRPS: defaultRateLimitRPS,
		AdminToken:   getEnvDefault("ADMIN_TOKEN", ""),
	}

	switch {
	case cfg.Data.URL == "" && cfg.Data.File == "":
		return Config{}, fmt.Errorf("one of DATA_URL or DATA_FILE must be set")
	case cfg.Data.URL != "" && cfg.Data.File != "":
		return Config{}, fmt.Errorf("only one of DATA_URL or DATA_FILE may be set")
	}

	if raw := getEnvDefault("LOG_LEVEL", ""); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
		cfg.LogLevel = level
	}

	if raw := getEnvDefault("RATE_LIMIT_RPS", ""); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps <= 0 {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q: must be a positive number", raw)
		}
		cfg.RateLimitRPS = rps
	}

	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN is not set, /reload and the Pub/Sub push endpoint are open")
	}
	if cfg.Turso.PrimaryURL != "" && cfg.Turso.AuthToken == "" {
		log.Warn("TURSO_PRIMARY_URL is set without TURSO_AUTH_TOKEN")
	}
	return cfg, nil
}
