// Package config loads tally configuration from environment variables.
package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// ClientSecretFile is the default path to the Google OAuth credentials JSON
// file used by the sheets export.
const ClientSecretFile = "data/client_secret.json"

// Config holds the daemon configuration.
type Config struct {
	// Store selects the record store backend: "memory" or "postgres".
	// Environment variable: TALLY_STORE
	Store string `koanf:"TALLY_STORE"`

	// WebhookURL, when set, enables the webhook notification sink.
	// Environment variable: TALLY_WEBHOOK_URL
	WebhookURL string `koanf:"TALLY_WEBHOOK_URL"`

	// Sweep cadences, in minutes. Zero means the built-in default
	// (recurrence 60, budget 1440, reminders 30).
	RecurrenceIntervalMin int `koanf:"TALLY_RECURRENCE_INTERVAL_MIN"`
	BudgetIntervalMin     int `koanf:"TALLY_BUDGET_INTERVAL_MIN"`
	ReminderIntervalMin   int `koanf:"TALLY_REMINDER_INTERVAL_MIN"`

	// PostgreSQL connection settings, used when Store is "postgres".
	Postgres PostgresConfig

	// Sheets holds the Google Sheets export settings.
	Sheets SheetsConfig
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string `koanf:"TALLY_POSTGRES_HOST"`
	Port     int    `koanf:"TALLY_POSTGRES_PORT"`
	Database string `koanf:"TALLY_POSTGRES_DB"`
	User     string `koanf:"TALLY_POSTGRES_USER"`
	Password string `koanf:"TALLY_POSTGRES_PASSWORD"`
	SSLMode  string `koanf:"TALLY_POSTGRES_SSLMODE"`
}

// SheetsConfig holds Google Sheets export configuration.
type SheetsConfig struct {
	// Title is used when creating a new spreadsheet (ID empty).
	Title string `koanf:"TALLY_SHEETS_TITLE"`
	// ID is an existing spreadsheet to append to.
	ID string `koanf:"TALLY_SHEETS_ID"`
	// Name is the sheet (tab) name within the spreadsheet.
	Name string `koanf:"TALLY_SHEETS_NAME"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Store == "" {
		cfg.Store = "memory"
	}

	return cfg, nil
}
