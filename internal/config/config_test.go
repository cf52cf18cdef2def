package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 3040 {
		t.Errorf("Expected port 3040, got %d", cfg.Port)
	}
	if cfg.StaticDir != "." || cfg.IndexFile != "index.html" {
		t.Errorf("unexpected static defaults %q %q", cfg.StaticDir, cfg.IndexFile)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Errorf("Expected 1 MiB body cap, got %d", cfg.MaxBodyBytes)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected 10s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.Addr() != ":3040" {
		t.Errorf("Expected ':3040', got %q", cfg.Addr())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{
		"PORT":         "8080",
		"LOG_LEVEL":    "debug",
		"READ_TIMEOUT": "2s",
		"RULES_FILE":   "rules.yaml",
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.ReadTimeout != 2*time.Second {
		t.Errorf("Expected 2s, got %s", cfg.ReadTimeout)
	}
	if cfg.RulesFile != "rules.yaml" {
		t.Errorf("Expected 'rules.yaml', got %q", cfg.RulesFile)
	}
	level, err := cfg.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v (%v)", level, err)
	}
}

func TestParse_RejectsNonNumericPort(t *testing.T) {
	_, err := parse(env.Options{Environment: map[string]string{"PORT": "abc"}})
	if err == nil {
		t.Fatal("Expected error for non-numeric PORT")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := &Config{
		Port:            70000,
		StaticDir:       file,
		IndexFile:       "",
		RulesFile:       filepath.Join(t.TempDir(), "missing.yaml"),
		MaxBodyBytes:    0,
		LogLevel:        "chatty",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: 0,
	}

	err := cfg.Validate()
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected *multierror.Error, got %v", err)
	}
	if len(merr.Errors) != 7 {
		t.Fatalf("expected 7 errors, got %d: %v", len(merr.Errors), err)
	}
}
