// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file,
when present, is loaded first with 'joho/godotenv' so developers do not need to
export variables by hand. Variables already set in the environment win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Upload limits and supported content types live here and are injected into
the media policy; nothing reads them from global state.
*/
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/folio/internal/platform/constants"
)

// # Configuration Schema

// Config holds all runtime configuration for the Folio API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis), used for draft locks
	RedisURL     string        `env:"REDIS_URL,required"`
	DraftLockTTL time.Duration `env:"DRAFT_LOCK_TTL" envDefault:"15s"`

	// Token signing
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// AuthorizedAPIKeys guards the API when non-empty (X-API-Key header).
	AuthorizedAPIKeys []string `env:"AUTHORIZED_API_KEYS" envSeparator:","`

	// Upload limits
	MaxImageSizeMB      int      `env:"MAX_IMAGE_SIZE_MB" envDefault:"8"`
	MaxAudioSizeMB      int      `env:"MAX_AUDIO_SIZE_MB" envDefault:"20"`
	SupportedImageTypes []string `env:"SUPPORTED_IMAGE_TYPES" envSeparator:"," envDefault:"image/jpeg,image/png,image/gif,image/webp"`
	SupportedAudioTypes []string `env:"SUPPORTED_AUDIO_TYPES" envSeparator:"," envDefault:"audio/mpeg,audio/mp3,audio/wav,audio/ogg,audio/webm"`

	// MaxRequestBodyMB bounds a whole JSON body, e.g. a draft carrying several images.
	MaxRequestBodyMB int `env:"MAX_REQUEST_BODY_MB" envDefault:"64"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config].
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}

	// A missing .env is normal outside local development.
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to load dotenv file: %w", err)
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.MaxImageSizeMB <= 0 || cfg.MaxAudioSizeMB <= 0 || cfg.MaxRequestBodyMB <= 0 {
		return nil, fmt.Errorf("config: upload size limits must be positive")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

/*
RequestBodyLimit returns the request body cap in bytes.

Uploads travel base64 encoded inside JSON, so the cap is never lower than the
encoded size of the largest allowed image or audio plus
[constants.RequestBodyHeadroom].
*/
func (c *Config) RequestBodyLimit() int64 {
	largest := max(c.MaxImageSizeMB, c.MaxAudioSizeMB) << 20
	encoded := int64(base64.StdEncoding.EncodedLen(largest)) + constants.RequestBodyHeadroom

	return max(int64(constants.MaxRequestBodyBytes), int64(c.MaxRequestBodyMB)<<20, encoded)
}

// AllowedOrigins returns the extra CORS origins configured for production.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}
