package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	JWTSecret     string
	TokenTTL      time.Duration
	OIDCIssuerURL string // optional; enables JWKS verification when set

	LeadDeskBaseURL   string
	LeadDeskAuthToken string
	LeadDeskTimeout   time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:              getEnv("PORT", "8080"),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		OIDCIssuerURL:     os.Getenv("OIDC_ISSUER_URL"),
		LeadDeskBaseURL:   getEnv("LEADDESK_BASE_URL", "https://api.leaddesk.com"),
		LeadDeskAuthToken: os.Getenv("LEADDESK_AUTH_TOKEN"),
	}

	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	tokenTTL, err := strconv.Atoi(getEnv("TOKEN_TTL_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES: %w", err)
	}
	config.TokenTTL = time.Duration(tokenTTL) * time.Minute

	leadDeskTimeout, err := strconv.Atoi(getEnv("LEADDESK_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADDESK_TIMEOUT: %w", err)
	}
	config.LeadDeskTimeout = time.Duration(leadDeskTimeout) * time.Second

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
