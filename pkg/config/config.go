// Package config loads the daemon configuration from the environment.
package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/mtkohut/spendwatch/pkg/api"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// ListenAddr is the address the ingest HTTP server binds to.
	// Environment variable: SPENDWATCH_LISTEN_ADDR
	ListenAddr string `koanf:"SPENDWATCH_LISTEN_ADDR"`

	// LedgerURL is the base URL of the transaction ledger server.
	// Environment variable: SPENDWATCH_LEDGER_URL
	LedgerURL string `koanf:"SPENDWATCH_LEDGER_URL"`

	// LedgerToken is the personal access token for the ledger server.
	// Environment variable: SPENDWATCH_LEDGER_TOKEN
	LedgerToken string `koanf:"SPENDWATCH_LEDGER_TOKEN"`

	// CurrencyCode and CurrencySymbol define the local currency.
	// Environment variables: SPENDWATCH_CURRENCY_CODE, SPENDWATCH_CURRENCY_SYMBOL
	CurrencyCode   string `koanf:"SPENDWATCH_CURRENCY_CODE"`
	CurrencySymbol string `koanf:"SPENDWATCH_CURRENCY_SYMBOL"`

	// CurrencyDecimals is the local currency's decimal-place count.
	// Environment variable: SPENDWATCH_CURRENCY_DECIMALS (default 2)
	CurrencyDecimals int `koanf:"SPENDWATCH_CURRENCY_DECIMALS"`

	// SelfPackage identifies the bridge app itself; its notifications
	// are filtered out to avoid feedback loops.
	// Environment variable: SPENDWATCH_SELF_PACKAGE
	SelfPackage string `koanf:"SPENDWATCH_SELF_PACKAGE"`

	// SettingsBackend selects the settings store: "file" or "postgres".
	// Environment variable: SPENDWATCH_SETTINGS_BACKEND (default file)
	SettingsBackend string `koanf:"SPENDWATCH_SETTINGS_BACKEND"`

	// SettingsFile is the path of the file-backed settings store.
	// Environment variable: SPENDWATCH_SETTINGS_FILE
	SettingsFile string `koanf:"SPENDWATCH_SETTINGS_FILE"`

	// Postgres configures the postgres-backed settings store.
	Postgres PostgresConfig
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string `koanf:"POSTGRES_HOST"`
	Port     int    `koanf:"POSTGRES_PORT"`
	Database string `koanf:"POSTGRES_DB"`
	User     string `koanf:"POSTGRES_USER"`
	Password string `koanf:"POSTGRES_PASSWORD"`
	SSLMode  string `koanf:"POSTGRES_SSLMODE"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading config from environment: %w", err)
	}

	cfg := Config{
		ListenAddr:       ":8423",
		SettingsBackend:  "file",
		SettingsFile:     "data/settings.json",
		CurrencyDecimals: -1, // unset; zero is a valid count (e.g. JPY)
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required settings are present.
func (c Config) Validate() error {
	if c.LedgerURL == "" {
		return fmt.Errorf("SPENDWATCH_LEDGER_URL environment variable is required")
	}
	if c.LedgerToken == "" {
		return fmt.Errorf("SPENDWATCH_LEDGER_TOKEN environment variable is required")
	}
	if c.CurrencyCode == "" {
		return fmt.Errorf("SPENDWATCH_CURRENCY_CODE environment variable is required")
	}
	if c.SettingsBackend != "file" && c.SettingsBackend != "postgres" {
		return fmt.Errorf("SPENDWATCH_SETTINGS_BACKEND must be \"file\" or \"postgres\", got %q", c.SettingsBackend)
	}
	return nil
}

// LocalCurrency builds the local currency from the configuration.
func (c Config) LocalCurrency() api.Currency {
	decimals := c.CurrencyDecimals
	if decimals < 0 {
		decimals = api.DefaultDecimalPlaces
	}
	return api.Currency{
		Code:          c.CurrencyCode,
		Symbol:        c.CurrencySymbol,
		DecimalPlaces: &decimals,
	}
}
