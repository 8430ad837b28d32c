// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/cuesheet/internal/projector"
)

// Config is the serve-time configuration.
type Config struct {
	DBPath           string        `env:"DB_PATH"                    envDefault:"camerasheet.db"`
	Addr             string        `env:"CUESHEET_ADDR"              envDefault:":8000"`
	OSCAddr          string        `env:"CUESHEET_OSC_ADDR"`
	Version          string        `env:"APP_VERSION"                envDefault:"dev"`
	Heartbeat        time.Duration `env:"CUESHEET_HEARTBEAT"         envDefault:"20s"`
	SendTimeout      time.Duration `env:"CUESHEET_SEND_TIMEOUT"      envDefault:"5s"`
	CameraWindow     int           `env:"CUESHEET_CAMERA_WINDOW"     envDefault:"10"`
	PreviewLookahead int           `env:"CUESHEET_PREVIEW_LOOKAHEAD" envDefault:"2"`
	SessionTTL       time.Duration `env:"CUESHEET_SESSION_TTL"       envDefault:"720h"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is required"))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("CUESHEET_ADDR is required"))
	}
	if c.Heartbeat <= 0 {
		errs = append(errs, fmt.Errorf("CUESHEET_HEARTBEAT must be positive, got %s", c.Heartbeat))
	}
	if c.SendTimeout <= 0 {
		errs = append(errs, fmt.Errorf("CUESHEET_SEND_TIMEOUT must be positive, got %s", c.SendTimeout))
	}
	if c.CameraWindow <= 0 {
		errs = append(errs, fmt.Errorf("CUESHEET_CAMERA_WINDOW must be positive, got %d", c.CameraWindow))
	}
	if c.PreviewLookahead < 0 {
		errs = append(errs, fmt.Errorf("CUESHEET_PREVIEW_LOOKAHEAD must not be negative, got %d", c.PreviewLookahead))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("CUESHEET_SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	return errors.Join(errs...)
}

// Projector returns the camera view configuration.
func (c Config) Projector() projector.Config {
	return projector.Config{Window: c.CameraWindow, PreviewLookahead: c.PreviewLookahead}
}
