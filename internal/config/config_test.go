package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.GeminiModelID != "gemini-2.5-flash" {
		t.Errorf("unexpected default model: %s", cfg.GeminiModelID)
	}
	if cfg.ModelTimeout != 30*time.Second {
		t.Errorf("unexpected default model timeout: %s", cfg.ModelTimeout)
	}
	if cfg.HistoryLimit != 15 {
		t.Errorf("unexpected default history limit: %d", cfg.HistoryLimit)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 default CORS origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MODEL_TIMEOUT", "5s")
	t.Setenv("HISTORY_LIMIT", "4")
	t.Setenv("CORS_ORIGINS", "https://crm.example.com")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("expected port override, got %s", cfg.Port)
	}
	if cfg.ModelTimeout != 5*time.Second {
		t.Errorf("expected timeout override, got %s", cfg.ModelTimeout)
	}
	if cfg.HistoryLimit != 4 {
		t.Errorf("expected history override, got %d", cfg.HistoryLimit)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://crm.example.com" {
		t.Errorf("expected CORS override, got %v", cfg.CORSOrigins)
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("CONTEXT_CLIENT_LIMIT", "not-a-number")
	cfg := Load()
	if cfg.ClientLimit != 50 {
		t.Errorf("expected fallback client limit, got %d", cfg.ClientLimit)
	}
}
