package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9999
database:
  url: postgres://localhost/mitra
auth:
  jwt_secret: file-secret
`)

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9999 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	// untouched sections keep defaults
	if cfg.Chat.MaxMessageLen != 4000 || cfg.Chat.RealtimeWindowSessions != 10 {
		t.Fatalf("chat defaults = %+v", cfg.Chat)
	}
	if cfg.AI.GeminiModel != "gemini-2.0-flash" {
		t.Fatalf("gemini model = %q", cfg.AI.GeminiModel)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("token ttl = %v", cfg.Auth.TokenTTL)
	}
}

func TestLoadConfigEnvWinsForSecrets(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/file
auth:
  jwt_secret: file-secret
`)
	t.Setenv("DATABASE_URL", "postgres://localhost/env")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.URL != "postgres://localhost/env" {
		t.Fatalf("database url = %q, want env override", cfg.Database.URL)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("jwt secret = %q, want env override", cfg.Auth.JWTSecret)
	}
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: s
`)
	if _, err := LoadConfig(path, false); err == nil {
		t.Fatal("missing database url accepted")
	}

	// dev mode tolerates a missing jwt secret, not a missing database
	path = writeConfig(t, `
database:
  url: postgres://localhost/mitra
`)
	if _, err := LoadConfig(path, true); err != nil {
		t.Fatalf("dev config rejected: %v", err)
	}
	if _, err := LoadConfig(path, false); err == nil {
		t.Fatal("prod config without jwt secret accepted")
	}
}
