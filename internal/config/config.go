// Package config reads runtime settings from the environment. A .env file is
// loaded by the main package before Load is called.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`

	DBPath string `validate:"required"`
	// ProfilePath overrides the embedded profile when set.
	ProfilePath string

	LogLevel string `validate:"oneof=trace debug info warn error"`
	LogHuman bool
	LogFile  string

	// TypeSpeed and TypePause override the profile's typewriter timing.
	TypeSpeed time.Duration `validate:"gte=0"`
	TypePause time.Duration `validate:"gte=0"`

	ContactDelay time.Duration `validate:"gte=0"`
	ContactRate  float64       `validate:"gt=0"`
	ContactBurst int           `validate:"gte=1"`

	// PreferenceTTL is how long an untouched theme preference is kept.
	PreferenceTTL time.Duration `validate:"gt=0"`
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	cfg := Config{
		Port:        envOr("PORT", "8080"),
		GinMode:     envOr("GIN_MODE", "debug"),
		DBPath:      envOr("DB_PATH", "data/portfolio.db"),
		ProfilePath: envOr("PROFILE_PATH", ""),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFile:     envOr("LOG_FILE", ""),
	}
	var err error
	if cfg.LogHuman, err = envBool("LOG_HUMAN", true); err != nil {
		return cfg, err
	}
	if cfg.TypeSpeed, err = envDuration("TYPE_SPEED", 0); err != nil {
		return cfg, err
	}
	if cfg.TypePause, err = envDuration("TYPE_PAUSE", 0); err != nil {
		return cfg, err
	}
	if cfg.ContactDelay, err = envDuration("CONTACT_DELAY", 800*time.Millisecond); err != nil {
		return cfg, err
	}
	if cfg.ContactRate, err = envFloat("CONTACT_RATE", 0.2); err != nil {
		return cfg, err
	}
	if cfg.ContactBurst, err = envInt("CONTACT_BURST", 3); err != nil {
		return cfg, err
	}
	if cfg.PreferenceTTL, err = envDuration("PREFERENCE_TTL", 365*24*time.Hour); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
