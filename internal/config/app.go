package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds the settings of the HTTP service itself.
type AppConfig struct {
	Port        string
	Environment string
	BaseURL     string // public URL of the portal UI, used in email links

	CORSOrigins []string
	BodyLimit   string

	JWTSecret string
	TokenTTL  time.Duration

	ProfileCompletionThreshold int

	AuthRateLimit  int // requests per minute per client on /api/auth
	AdminSetupKey  string
	EnableMetrics  bool
	RequestTimeout time.Duration
}

func NewAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:                       getEnv("PORT", "8080"),
		Environment:                getEnv("ENVIRONMENT", "development"),
		BaseURL:                    strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		CORSOrigins:                getEnvAsList("CORS_ORIGINS", "http://localhost:3000"),
		BodyLimit:                  getEnv("BODY_LIMIT", "2M"),
		JWTSecret:                  os.Getenv("JWT_SECRET"),
		TokenTTL:                   getEnvAsDuration("TOKEN_TTL", "24h"),
		ProfileCompletionThreshold: getEnvAsInt("PROFILE_COMPLETION_THRESHOLD", 80),
		AuthRateLimit:              getEnvAsInt("AUTH_RATE_LIMIT", 20),
		AdminSetupKey:              os.Getenv("ADMIN_SETUP_KEY"),
		EnableMetrics:              getEnvAsBool("ENABLE_METRICS", true),
		RequestTimeout:             getEnvAsDuration("REQUEST_TIMEOUT", "15s"),
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	if cfg.ProfileCompletionThreshold < 0 || cfg.ProfileCompletionThreshold > 100 {
		return nil, errors.New("PROFILE_COMPLETION_THRESHOLD must be between 0 and 100")
	}
	return cfg, nil
}

func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, defaultValue)); err == nil {
		return d
	}
	d, _ := time.ParseDuration(defaultValue)
	return d
}

func getEnvAsList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
