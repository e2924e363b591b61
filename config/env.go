package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig carries the startup configuration of the intake pipeline.
// BOT_TOKEN and ADMIN_EMAIL are hard requirements: without a messaging
// credential or a recipient there is nothing this service can do.
type AppConfig struct {
	BotToken   string `validate:"required"`
	AdminEmail string `validate:"required,email"`

	SMTPHost string `validate:"required"`
	SMTPPort int    `validate:"gt=0"`
	SMTPUser string
	SMTPPass string

	// FromEmail defaults to AdminEmail when unset.
	FromEmail string `validate:"required,email"`

	// DataDir is where locally stored photos live. Default "data".
	DataDir string `validate:"required"`

	// StorageProvider selects the media backend: "local" (default) or "gcs".
	StorageProvider string `validate:"oneof=local gcs"`
}

// LoadAppConfig reads the environment (after .env) and validates it.
// Callers treat an error as fatal: the process must not start half-configured.
func LoadAppConfig() (*AppConfig, error) {
	godotenv.Load()

	cfg := &AppConfig{
		BotToken:        strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		AdminEmail:      strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		SMTPHost:        strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:        587,
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPass:        os.Getenv("SMTP_PASS"),
		FromEmail:       strings.TrimSpace(os.Getenv("FROM_EMAIL")),
		DataDir:         strings.TrimSpace(os.Getenv("DATA_DIR")),
		StorageProvider: strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER"))),
	}

	if raw := strings.TrimSpace(os.Getenv("SMTP_PORT")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", raw, err)
		}
		cfg.SMTPPort = port
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.AdminEmail
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.StorageProvider == "" {
		cfg.StorageProvider = "local"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
