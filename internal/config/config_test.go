package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/anamboary")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "sup3rsecret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected 30m session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	for _, missing := range []string{"DATABASE_URL", "REDIS_URL", "ADMIN_USERNAME", "ADMIN_PASSWORD"} {
		t.Run(missing, func(t *testing.T) {
			setRequired(t)
			t.Setenv(missing, "")

			if _, err := Load(); err == nil || !strings.Contains(err.Error(), missing) {
				t.Fatalf("expected error naming %s, got %v", missing, err)
			}
		})
	}
}

func TestLoadSessionTTLOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL_SECONDS", "3600")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("expected 1h session TTL, got %s", cfg.SessionTTL)
	}
}

func TestLoadRejectsMalformedDurations(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL_SECONDS", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed SESSION_TTL_SECONDS")
	}
}
