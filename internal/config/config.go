package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath       string
	OIDCIssuer         string
	OIDCClientID       string
	OIDCClientSecret   string
	OIDCRedirectURL    string
	SessionSecret      string
	LogLevel           string
	Port               string
	BusyTimeout        time.Duration
	WriteRetryAttempts int
	WriteRetryDelay    time.Duration
	RequestTimeout     time.Duration
	StrictTimeMatching bool
}

// Load reads the environment, after filling it from a .env file when one
// exists in the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()

	config := Config{
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/visit-scheduler.db"),
		OIDCIssuer:       os.Getenv("OIDC_ISSUER"),
		OIDCClientID:     os.Getenv("OIDC_CLIENT_ID"),
		OIDCClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		OIDCRedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		Port:             envOrDefault("PORT", "8080"),
	}

	if config.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}

	var err error
	if config.BusyTimeout, err = durationOrDefault("BUSY_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if config.WriteRetryAttempts, err = intOrDefault("WRITE_RETRY_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}
	if config.WriteRetryAttempts < 1 {
		return Config{}, fmt.Errorf("WRITE_RETRY_ATTEMPTS must be at least 1")
	}
	if config.WriteRetryDelay, err = durationOrDefault("WRITE_RETRY_DELAY", 100*time.Millisecond); err != nil {
		return Config{}, err
	}
	if config.RequestTimeout, err = durationOrDefault("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if config.StrictTimeMatching, err = boolOrDefault("STRICT_TIME_MATCHING", false); err != nil {
		return Config{}, err
	}

	return config, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return parsed, nil
}

func durationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return parsed, nil
}

func boolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return parsed, nil
}
