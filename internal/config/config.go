package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	AutoClockOut AutoClockOutConfig
	Review       ReviewConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// AutoClockOutConfig controls the end-of-day sweep that force-closes
// sessions still open at the day boundary (23:59 local time).
type AutoClockOutConfig struct {
	Enabled  bool
	Timezone string
	Interval time.Duration
}

// ReviewConfig holds the rejection-reason validation rules. The source
// system required a reason for time-correction rejections but not for
// leave rejections; both are configurable here pending product clarification.
type ReviewConfig struct {
	RequireLeaveRejectReason      bool
	RequireCorrectionRejectReason bool
	StuckCorrectionGrace          time.Duration
}

func Load() (*Config, error) {
	// A missing .env file is fine in deployed environments; real env vars win.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "shiftlog"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Auto clock-out sweep configuration
	sweepInterval, err := time.ParseDuration(getEnv("AUTO_CLOCKOUT_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_CLOCKOUT_INTERVAL: %w", err)
	}

	config.AutoClockOut = AutoClockOutConfig{
		Enabled:  getEnvBool("AUTO_CLOCKOUT_ENABLED", false),
		Timezone: getEnv("AUTO_CLOCKOUT_TIMEZONE", "UTC"),
		Interval: sweepInterval,
	}

	// Review workflow configuration
	stuckGrace, err := time.ParseDuration(getEnv("REVIEW_STUCK_CORRECTION_GRACE", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REVIEW_STUCK_CORRECTION_GRACE: %w", err)
	}

	config.Review = ReviewConfig{
		RequireLeaveRejectReason:      getEnvBool("REVIEW_REQUIRE_LEAVE_REJECT_REASON", false),
		RequireCorrectionRejectReason: getEnvBool("REVIEW_REQUIRE_CORRECTION_REJECT_REASON", true),
		StuckCorrectionGrace:          stuckGrace,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.AutoClockOut.Timezone); err != nil {
		return fmt.Errorf("invalid AUTO_CLOCKOUT_TIMEZONE: %w", err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
