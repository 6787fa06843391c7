// Package config loads the bot configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	BotToken        string        `env:"TELEGRAM_BOT_TOKEN"`
	EndpointURL     string        `env:"RSVP_ENDPOINT_URL"`
	SubmitTimeout   time.Duration `env:"RSVP_SUBMIT_TIMEOUT" envDefault:"15s"`
	NotAttendingURL string        `env:"NOT_ATTENDING_LINK_URL" envDefault:"https://padlet.com/"`
	PagesFile       string        `env:"PAGES_FILE"`

	// Optional Realtime Database mirror.
	FirebaseKeyPath     string `env:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseDatabaseURL string `env:"FIREBASE_DATABASE_URL"`

	// Chats that receive a notice for every accepted RSVP.
	OrganiserChatIDs []int64 `env:"ORGANISER_CHAT_IDS" envSeparator:","`

	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	WebhookURL    string `env:"WEBHOOK_URL"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment into a Config without validating it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FirebaseEnabled reports whether the Firebase mirror is configured.
func (c Config) FirebaseEnabled() bool {
	return c.FirebaseKeyPath != "" || c.FirebaseDatabaseURL != ""
}

// WebhookEnabled reports whether updates arrive by webhook instead of
// long polling.
func (c Config) WebhookEnabled() bool {
	return c.WebhookURL != ""
}

// Validate checks the settings the bot cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	if c.EndpointURL == "" {
		errs = append(errs, errors.New("RSVP_ENDPOINT_URL is required"))
	}
	if c.SubmitTimeout <= 0 {
		errs = append(errs, errors.New("RSVP_SUBMIT_TIMEOUT must be positive"))
	}
	if c.FirebaseEnabled() && (c.FirebaseKeyPath == "" || c.FirebaseDatabaseURL == "") {
		errs = append(errs, errors.New("FIREBASE_SERVICE_ACCOUNT_KEY_PATH and FIREBASE_DATABASE_URL must be set together"))
	}
	if c.WebhookEnabled() && c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR is required in webhook mode"))
	}
	return errors.Join(errs...)
}
