package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port int    `env:"PORT" envDefault:"3040"`
	Env  string `env:"ENV" envDefault:"development"`

	// Static content
	StaticDir string `env:"STATIC_DIR" envDefault:"."`
	IndexFile string `env:"INDEX_FILE" envDefault:"index.html"`

	// Chat
	RulesFile    string `env:"RULES_FILE"`
	MaxBodyBytes int64  `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs error

	if c.Port < 1 || c.Port > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	if info, err := os.Stat(c.StaticDir); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("STATIC_DIR: %w", err))
	} else if !info.IsDir() {
		errs = multierror.Append(errs, fmt.Errorf("STATIC_DIR %q is not a directory", c.StaticDir))
	}

	if c.IndexFile == "" {
		errs = multierror.Append(errs, errors.New("INDEX_FILE must not be empty"))
	}

	if c.RulesFile != "" {
		if info, err := os.Stat(c.RulesFile); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("RULES_FILE: %w", err))
		} else if info.IsDir() {
			errs = multierror.Append(errs, fmt.Errorf("RULES_FILE %q is a directory", c.RulesFile))
		}
	}

	if c.MaxBodyBytes <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes))
	}

	if _, err := c.SlogLevel(); err != nil {
		errs = multierror.Append(errs, err)
	}

	for name, d := range map[string]time.Duration{
		"READ_TIMEOUT":     c.ReadTimeout,
		"WRITE_TIMEOUT":    c.WriteTimeout,
		"IDLE_TIMEOUT":     c.IdleTimeout,
		"SHUTDOWN_TIMEOUT": c.ShutdownTimeout,
	} {
		if d <= 0 {
			errs = multierror.Append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	return errs
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
