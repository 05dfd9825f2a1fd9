package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	SlackBotToken      string `env:"SLACK_BOT_TOKEN,required"`
	SlackSigningSecret string `env:"SLACK_SIGNING_SECRET,required"`

	// TargetChannelID is the channel the daily prompt and summary go to.
	TargetChannelID string `env:"TARGET_CHANNEL_ID,required"`

	// ReportingUserID is seeded as the first admin.
	ReportingUserID string `env:"REPORTING_USER_ID"`

	DatabaseFile string `env:"DATABASE_FILE" envDefault:"musterbot.db"`
	Port         string `env:"PORT" envDefault:"8080"`
	LoggerLevel  string `env:"LOGGER_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &cfg, nil
}
