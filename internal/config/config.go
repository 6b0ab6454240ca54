// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"fabriq/internal/core/types"
)

// Config holds every runtime setting of the server.
type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"fabriq"`
		Env  string `envconfig:"APP_ENV" default:"development"`
		Port int    `envconfig:"APP_PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"fabriq"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
		MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
		MinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`
	}

	Server struct {
		ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
		IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	}

	// Sequence selects the durable counter backend. The postgres backend
	// shares the main database; the file backend keeps counters in a
	// local JSON state file guarded by a lock file.
	Sequence struct {
		Backend  string `envconfig:"SEQUENCE_BACKEND" default:"postgres"`
		FilePath string `envconfig:"SEQUENCE_FILE_PATH" default:"data/sequences.json"`
	}

	// Invoice describes the issuing party printed on generated invoices.
	Invoice struct {
		OutputDir    string `envconfig:"INVOICE_OUTPUT_DIR" default:"data/invoices"`
		Currency     string `envconfig:"INVOICE_CURRENCY" default:"CHF"`
		IBAN         string `envconfig:"INVOICE_IBAN"`
		PaymentTerms string `envconfig:"INVOICE_PAYMENT_TERMS" default:"Payable within 30 days"`

		CreditorName    string `envconfig:"INVOICE_CREDITOR_NAME"`
		CreditorLine1   string `envconfig:"INVOICE_CREDITOR_LINE1"`
		CreditorLine2   string `envconfig:"INVOICE_CREDITOR_LINE2"`
		CreditorCountry string `envconfig:"INVOICE_CREDITOR_COUNTRY" default:"CH"`
	}

	// Pricing holds the shop's hourly rates and material markup.
	Pricing struct {
		DesignPerHour   types.Money `envconfig:"PRICING_DESIGN_PER_HOUR" default:"80"`
		PrintingPerHour types.Money `envconfig:"PRICING_PRINTING_PER_HOUR" default:"12"`
		HandlingPerHour types.Money `envconfig:"PRICING_HANDLING_PER_HOUR" default:"60"`
		MarginPercent   types.Money `envconfig:"PRICING_MARGIN_PERCENT" default:"30"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET" default:"your-secret-key-change-in-production"`
	}

	Log struct {
		Level string `envconfig:"LOG_LEVEL" default:"info"`
	}
}

// ConnectionString builds the postgres DSN from the DB settings.
func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Sequence.Backend != "postgres" && cfg.Sequence.Backend != "file" {
		return nil, fmt.Errorf("unknown sequence backend %q", cfg.Sequence.Backend)
	}

	return &cfg, nil
}
