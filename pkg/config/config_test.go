package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ARMORY_JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.App.IsDev() {
		t.Fatalf("expected dev default env, got %q", cfg.App.Env)
	}
	if cfg.Assistant.MaxToolRounds != 3 {
		t.Fatalf("expected 3 tool rounds, got %d", cfg.Assistant.MaxToolRounds)
	}
	if cfg.Assistant.HistoryLimit != 10 {
		t.Fatalf("expected history limit 10, got %d", cfg.Assistant.HistoryLimit)
	}
	if cfg.OpenAI.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected model timeout %s", cfg.OpenAI.RequestTimeout)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("ARMORY_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when jwt secret is missing")
	}
}

func TestJWTExpirationFallback(t *testing.T) {
	j := JWTConfig{ExpirationMinutes: 0}
	if j.Expiration() != time.Hour {
		t.Fatalf("expected 1h fallback, got %s", j.Expiration())
	}
	j.ExpirationMinutes = 15
	if j.Expiration() != 15*time.Minute {
		t.Fatalf("expected 15m, got %s", j.Expiration())
	}
}
