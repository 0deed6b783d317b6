package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"squarefit/internal/config"
)

func TestLoad_WithEnvVars(t *testing.T) {
	t.Setenv("SQUAREFIT_TARGET", "1200")
	t.Setenv("SQUAREFIT_BACKGROUND", "#000000")
	t.Setenv("SQUAREFIT_WORKERS", "4")
	t.Setenv("SQUAREFIT_JOURNAL", "./tmp/journal.db")
	t.Setenv("SERVER_ADDR", ":9999")

	cfg := config.Load()
	if cfg.Target != 1200 {
		t.Fatalf("expected target 1200, got %d", cfg.Target)
	}
	if cfg.Background != "#000000" {
		t.Fatalf("expected background #000000, got %s", cfg.Background)
	}
	if cfg.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.Workers)
	}
	if cfg.JournalPath != "./tmp/journal.db" {
		t.Fatalf("expected journal path, got %s", cfg.JournalPath)
	}
	if cfg.ServerAddr != ":9999" {
		t.Fatalf("expected SERVER_ADDR :9999, got %s", cfg.ServerAddr)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SQUAREFIT_TARGET", "SQUAREFIT_BACKGROUND", "SQUAREFIT_WORKERS", "SQUAREFIT_JOURNAL", "SERVER_ADDR"} {
		os.Unsetenv(k)
	}

	cfg := config.Load()
	if cfg.Target != config.DefaultTarget {
		t.Fatalf("expected default target, got %d", cfg.Target)
	}
	if cfg.Workers != 1 {
		t.Fatalf("expected sequential default, got %d workers", cfg.Workers)
	}
	if cfg.JournalPath != "" {
		t.Fatalf("journal should be off by default, got %s", cfg.JournalPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("SQUAREFIT_WORKERS", "many")
	if cfg := config.Load(); cfg.Workers != 1 {
		t.Fatalf("expected fallback to 1, got %d", cfg.Workers)
	}
}

func TestLoadFile_Overlay(t *testing.T) {
	os.Unsetenv("SQUAREFIT_TARGET")
	path := filepath.Join(t.TempDir(), "squarefit.yaml")
	data := "target: 800\nbackground: \"#f0f0f0\"\nworkers: 2\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Target != 800 || cfg.Background != "#f0f0f0" || cfg.Workers != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.ServerAddr == "" {
		t.Fatalf("unset keys should keep defaults")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected defaults")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("target: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadFile(bad); err == nil {
		t.Fatalf("expected parse error")
	}

	negative := filepath.Join(dir, "neg.yaml")
	if err := os.WriteFile(negative, []byte("target: -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadFile(negative); err == nil {
		t.Fatalf("expected validation error for negative target")
	}

	huge := filepath.Join(dir, "huge.yaml")
	if err := os.WriteFile(huge, []byte("target: 4000000000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadFile(huge); !errors.Is(err, config.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for oversized target, got %v", err)
	}
}
