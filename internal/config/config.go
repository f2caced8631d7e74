// Package config loads gateway settings from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/subosito/gotenv"
)

// Config holds everything the gateway reads from the environment.
type Config struct {
	Environment string
	Region      string
	Port        string

	TranscribeBucket       string
	TranscribePollInterval time.Duration
	TranscribeMaxAttempts  int
	PollyVoiceID           string

	LogLevel  string
	LogFormat string
}

// Load reads configuration, layering an optional .env file under the real
// environment. Missing values fall back to defaults; only the transcribe
// bucket has no sensible default and stays empty when unset.
func Load() *Config {
	if err := gotenv.Load(); err != nil {
		slog.Debug("no .env file found, using OS environment")
	}

	interval, err := time.ParseDuration(getEnv("TRANSCRIBE_POLL_INTERVAL", "5s"))
	if err != nil {
		interval = 5 * time.Second
	}
	attempts, err := strconv.Atoi(getEnv("TRANSCRIBE_MAX_ATTEMPTS", "60"))
	if err != nil || attempts < 1 {
		attempts = 60
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "dev"),
		Region:      getEnv("AWS_REGION", ""),
		Port:        getEnv("PORT", "8080"),

		TranscribeBucket:       getEnv("TRANSCRIBE_BUCKET", ""),
		TranscribePollInterval: interval,
		TranscribeMaxAttempts:  attempts,
		PollyVoiceID:           getEnv("POLLY_VOICE_ID", "Joanna"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
