package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"trivia-quiz/internal/domain"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Trivia struct {
		BaseURL       string `yaml:"base_url"`
		Timeout       string `yaml:"timeout"`
		CategoriesTTL string `yaml:"categories_ttl"`
	} `yaml:"trivia"`
	Quiz struct {
		Amount     int    `yaml:"amount"`
		Category   int    `yaml:"category"`
		Difficulty string `yaml:"difficulty"`
		Type       string `yaml:"type"`
		Countdown  int    `yaml:"countdown"`
		Tick       string `yaml:"tick"`
	} `yaml:"quiz"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the built-in configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Trivia.BaseURL = "https://opentdb.com"
	cfg.Trivia.Timeout = "10s"
	cfg.Trivia.CategoriesTTL = "1h"
	cfg.Quiz.Amount = 10
	cfg.Quiz.Countdown = domain.DefaultCountdown
	cfg.Quiz.Tick = "1s"
	cfg.Redis.TTL = "10m"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads YAML config from path over the defaults, then applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment if one exists.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("read .env", "error", err)
	}
}

// applyEnv lets deployments override connection settings without a file.
func applyEnv(cfg *Config) {
	setString(&cfg.Trivia.BaseURL, "TRIVIA_BASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// SessionConfig builds the quiz defaults from the config file.
func (c Config) SessionConfig() domain.SessionConfig {
	return domain.SessionConfig{
		Amount:     c.Quiz.Amount,
		Category:   c.Quiz.Category,
		Difficulty: domain.Difficulty(c.Quiz.Difficulty),
		Type:       domain.QuestionType(c.Quiz.Type),
		Countdown:  c.Quiz.Countdown,
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
