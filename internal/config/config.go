package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	DigestChatID   int64
	DigestInterval time.Duration
	DigestAt       string // "HH:MM", takes precedence over the interval
	LogLevel       string
}

// Load reads configuration from the environment, with an optional .env
// file next to the binary, and applies sane defaults.
func Load() (Config, error) {
	// Missing .env is fine; explicit env vars always win.
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DigestChatID:   parseChatID(strings.TrimSpace(os.Getenv("DIGEST_CHAT_ID"))),
		DigestInterval: parseIntervalHours(strings.TrimSpace(os.Getenv("DIGEST_INTERVAL_HOURS"))),
		DigestAt:       strings.TrimSpace(os.Getenv("DIGEST_AT")),
		LogLevel:       strings.TrimSpace(os.Getenv("LOG_LEVEL")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "schedule_planner.db"
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func parseChatID(raw string) int64 {
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func parseIntervalHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
