package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"trivia-quiz/internal/domain"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
trivia:
  timeout: 3s
quiz:
  amount: 5
  category: 18
  difficulty: hard
  type: boolean
  countdown: 30
redis:
  addr: localhost:6379
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Trivia.BaseURL != "https://opentdb.com" {
		t.Fatalf("expected default base url, got %q", cfg.Trivia.BaseURL)
	}
	if got := TTLDuration(cfg.Trivia.Timeout, time.Second); got != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", got)
	}

	want := domain.SessionConfig{Amount: 5, Category: 18, Difficulty: domain.DifficultyHard, Type: domain.TypeBoolean, Countdown: 30}
	if got := cfg.SessionConfig(); got != want {
		t.Fatalf("session config = %+v, want %+v", got, want)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.Countdown != domain.DefaultCountdown || cfg.Quiz.Amount != 10 {
		t.Fatalf("unexpected defaults %+v", cfg.Quiz)
	}
	if cfg.SessionConfig().Complete() {
		t.Fatalf("defaults must not pick a category/difficulty/type")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("quiz: [oops"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := TTLDuration("nonsense", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad input, got %s", got)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Log.Level != "debug" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Quiz.Countdown != domain.DefaultCountdown {
		t.Fatalf("expected default countdown, got %d", cfg.Quiz.Countdown)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TRIVIA_BASE_URL=http://trivia.local\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("TRIVIA_BASE_URL", "")
	os.Unsetenv("TRIVIA_BASE_URL")

	LoadDotEnv(path)
	defer os.Unsetenv("TRIVIA_BASE_URL")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Trivia.BaseURL != "http://trivia.local" {
		t.Fatalf("expected base url from .env, got %q", cfg.Trivia.BaseURL)
	}
}
