package config

import "github.com/charmbracelet/log"

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Port      string
	Data      DataConfig
	Slack     SlackConfig
	Turso     TursoConfig
	ProjectID string
	LogLevel  log.Level
	// RateLimitRPS is the sustained request rate allowed per client on the API.
	RateLimitRPS float64
	// AdminToken guards /reload and the Pub/Sub push endpoint when set.
	AdminToken string
}

// DataConfig says where the day dataset is read from. Exactly one is set.
type DataConfig struct {
	URL  string
	File string
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
