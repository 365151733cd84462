package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/kyoukaya/valorant-daily/notify"
)

const defaultSchedule = "1 0 * * *"

type config struct {
	Username string `env:"VALORANT_USERNAME,required"`
	Password string `env:"VALORANT_PASSWORD,required"`
	// Region is discovered from the account when empty.
	Region string `env:"VALORANT_REGION"`

	DiscordToken  string `env:"DISCORD_TOKEN"`
	ChannelID     string `env:"DISCORD_CHANNEL_ID"`
	Webhook       string `env:"DISCORD_WEBHOOK"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`

	// Schedule is a cron expression evaluated in UTC.
	Schedule    string        `env:"SCHEDULE" envDefault:"1 0 * * *"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
	Debug       bool          `env:"DEBUG"`
}

// loadConfig reads envFile into the process environment, if it exists, and
// parses the environment.
func loadConfig(envFile string) (config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, err
	}
	return cfg, cfg.validate()
}

// parseConfig parses an explicit environment instead of the process one.
func parseConfig(environ map[string]string) (config, error) {
	var cfg config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return config{}, err
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	if c.DiscordToken != "" && c.ChannelID == "" {
		return fmt.Errorf("DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set")
	}
	if c.Webhook != "" && !notify.ValidWebhookURL(c.Webhook) {
		return fmt.Errorf("invalid Discord webhook URL")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}
