// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the server configuration. Flags parsed in main override
// whatever the environment supplied.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"BORZA_ADDR" envDefault:":8080"`

	// DBPath is the SQLite database file path.
	DBPath string `env:"BORZA_DB" envDefault:"borza.sqlite3"`

	// IdentitySecret is the shared HS256 secret the identity provider signs
	// tokens with. Required for serving.
	IdentitySecret string `env:"BORZA_IDENTITY_SECRET"`

	// WebhookSecret verifies identity-provider webhook signatures. When
	// empty, signature checking is skipped.
	WebhookSecret string `env:"BORZA_WEBHOOK_SECRET"`

	// AdminEmail names the bootstrap admin: the first synced identity with
	// this email is created with the admin role.
	AdminEmail string `env:"BORZA_ADMIN_EMAIL"`

	// LogPath is an optional log file written in addition to stdout/stderr.
	LogPath string `env:"BORZA_LOG"`
}

// FromEnv loads configuration from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
