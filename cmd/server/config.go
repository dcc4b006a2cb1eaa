package main

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string        `env:"ADDR" envDefault:":8080"`
	Environment  string        `env:"ENVIRONMENT" envDefault:"development"`
	DatabasePath string        `env:"DATABASE_PATH" envDefault:"fivemhub.db"`
	FeedInterval time.Duration `env:"FEED_REFRESH_INTERVAL" envDefault:"30s"`

	// SessionSecret signs the cookie session. An ephemeral secret is
	// generated when unset, which invalidates sessions on restart.
	SessionSecret string `env:"SESSION_SECRET"`

	DiscordClientID     string `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURI  string `env:"DISCORD_REDIRECT_URI"`

	AdminDiscordIDs []string `env:"ADMIN_DISCORD_IDS" envSeparator:","`

	// Provider endpoint overrides, set by tests only. Zero values select
	// Discord.
	discordAuthorizeURL string
	discordTokenURL     string
	discordAPIBase      string
}

func loadConfig() (Config, error) {
	// the .env file is optional
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

var errDiscordNotConfigured = errors.New("discord credentials are not configured")

// discordReady reports whether the OAuth credentials are present. Missing
// credentials do not stop the process; the login surface answers 500 until
// the environment is fixed.
func (c Config) discordReady() error {
	if c.DiscordClientID == "" || c.DiscordClientSecret == "" || c.DiscordRedirectURI == "" {
		return errDiscordNotConfigured
	}

	return nil
}

func (c Config) production() bool {
	return c.Environment == "production"
}
