// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     string
	LogLevel string

	// GeminiAPIKey enables the AI path. Empty means AI is disabled and
	// every operation runs its deterministic fallback.
	GeminiAPIKey string

	// FirestoreProject selects the Firestore-backed store. Empty means
	// the in-memory store.
	FirestoreProject string

	InsightTTL        time.Duration
	OCRMaxConcurrent  int
	OCRTimeoutSeconds int

	CORSAllowedOrigins string
}

func Load() Config {
	return Config{
		Port:     mustEnv("PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:     mustEnv("GEMINI_API_KEY", ""),
		FirestoreProject: mustEnv("FIRESTORE_PROJECT", ""),

		InsightTTL:        time.Duration(mustEnvInt("INSIGHT_TTL_HOURS", 24)) * time.Hour,
		OCRMaxConcurrent:  mustEnvInt("OCR_MAX_CONCURRENT", 4),
		OCRTimeoutSeconds: mustEnvInt("OCR_TIMEOUT_SECONDS", 30),

		CORSAllowedOrigins: mustEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
