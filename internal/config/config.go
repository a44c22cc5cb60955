package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	// Chat
	ReplyDelay         time.Duration
	SessionIdleTimeout time.Duration
	SweepInterval      time.Duration
	// Contact form handoff target
	ContactRecipient string
	// Optional YAML business profile overriding the built-in one
	ProfileFile string
	// Logging
	LogLevel  string
	LogFormat string
	// Marks the session cookie Secure; enable behind HTTPS
	SecureCookies bool
	// Problems found while loading, logged once the logger exists
	Warnings []string
}

func Load() Config {
	_ = godotenv.Load()
	var warnings []string
	cfg := Config{
		Port:               getEnvDefault("PORT", "8080"),
		AllowedOrigin:      getEnvDefault("ALLOWED_ORIGIN", "*"),
		ReplyDelay:         getEnvDurationDefault("REPLY_DELAY", 1200*time.Millisecond, &warnings),
		SessionIdleTimeout: getEnvDurationDefault("SESSION_IDLE_TIMEOUT", 15*time.Minute, &warnings),
		SweepInterval:      getEnvDurationDefault("SESSION_SWEEP_INTERVAL", time.Minute, &warnings),
		ContactRecipient:   os.Getenv("CONTACT_RECIPIENT"),
		ProfileFile:        os.Getenv("PROFILE_FILE"),
		LogLevel:           getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:          getEnvDefault("LOG_FORMAT", "json"),
		SecureCookies:      getEnvBoolDefault("SECURE_COOKIES", false),
	}
	if cfg.AllowedOrigin == "*" {
		warnings = append(warnings, "ALLOWED_ORIGIN is *, any site can call the chat API")
	}
	if cfg.ContactRecipient == "" {
		warnings = append(warnings, "CONTACT_RECIPIENT is not set; contact drafts go to the profile email")
	}
	cfg.Warnings = warnings
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration, warnings *[]string) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d >= 0 {
			return d
		}
		*warnings = append(*warnings, fmt.Sprintf("invalid %s=%q, using %s", key, v, def))
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}
