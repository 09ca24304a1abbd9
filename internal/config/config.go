package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config enumerates every option the backend reads from the environment.
// Anything else in the environment is ignored.
type Config struct {
	Port        string
	Environment string

	// Verification policy
	CodeLength      int
	CodeTTL         time.Duration
	MaxAttempts     int
	RateLimitWindow time.Duration

	// Storage
	UseMemoryStore         bool
	DBHost                 string
	DBPort                 string
	DBUser                 string
	DBPass                 string
	DBName                 string
	InstanceConnectionName string // Cloud SQL socket, e.g. "project:region:instance"

	// SMS gateway
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
}

// Load builds a Config from the environment, applying defaults for anything
// unset. Missing Twilio credentials are a supported configuration outside
// production; the SMS service enforces the production requirement.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		CodeLength:      getEnvInt("CODE_LENGTH", 6),
		CodeTTL:         time.Duration(getEnvInt("CODE_TTL_MINUTES", 10)) * time.Minute,
		MaxAttempts:     getEnvInt("MAX_VERIFICATION_ATTEMPTS", 5),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 30)) * time.Minute,

		UseMemoryStore:         os.Getenv("USE_MEMORY_STORE") == "true",
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		DBUser:                 getEnv("DB_USER", "postgres"),
		DBPass:                 os.Getenv("DB_PASS"),
		DBName:                 getEnv("DB_NAME", "onlyfriends"),
		InstanceConnectionName: os.Getenv("INSTANCE_CONNECTION_NAME"),

		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
	}

	if cfg.CodeLength <= 0 {
		return nil, fmt.Errorf("CODE_LENGTH must be positive, got %d", cfg.CodeLength)
	}
	if cfg.CodeTTL <= 0 {
		return nil, fmt.Errorf("CODE_TTL_MINUTES must be positive")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("MAX_VERIFICATION_ATTEMPTS must be positive, got %d", cfg.MaxAttempts)
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW_MINUTES must be positive")
	}
	if cfg.Production() && cfg.UseMemoryStore {
		return nil, fmt.Errorf("USE_MEMORY_STORE is not allowed in production")
	}

	return cfg, nil
}

// Production reports whether the server runs in production mode.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// TwilioConfigured reports whether all SMS gateway credentials are present.
func (c *Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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
