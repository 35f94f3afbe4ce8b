package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	EmailProviderConsole  = "console"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderResend   = "resend"
)

type Config struct {
	HTTPHost             string
	HTTPPort             string
	MySQLDSN             string
	JWTSecret            string
	SessionTTL           time.Duration
	ResetTokenTTL        time.Duration
	ResetCleanupInterval time.Duration
	BcryptCost           int
	PasswordMinLength    int
	FrontendURL          string
	EmailProvider        string
	EmailFrom            string
	SendGridAPIKey       string
	ResendAPIKey         string
	LogLevel             string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	cfg := &Config{
		HTTPHost:             getEnv("HTTP_HOST", ""),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		MySQLDSN:             mysqlDSN,
		JWTSecret:            jwtSecret,
		SessionTTL:           getDurationEnv("SESSION_TTL", 7*24*time.Hour),
		ResetTokenTTL:        getSecondsEnv("RESET_TOKEN_TTL", time.Hour),
		ResetCleanupInterval: getDurationEnv("RESET_CLEANUP_INTERVAL", time.Hour),
		BcryptCost:           getIntEnv("BCRYPT_COST", bcrypt.DefaultCost),
		PasswordMinLength:    getIntEnv("PASSWORD_MIN_LENGTH", 6),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		EmailProvider:        getEnv("EMAIL_PROVIDER", EmailProviderConsole),
		EmailFrom:            getEnv("EMAIL_FROM", "noreply@vibast.io"),
		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		ResendAPIKey:         os.Getenv("RESEND_API_KEY"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return c.MySQLDSN
}

func (c *Config) validate() error {
	switch c.EmailProvider {
	case EmailProviderConsole:
	case EmailProviderSendGrid:
		if c.SendGridAPIKey == "" {
			return errors.New("SENDGRID_API_KEY is required when EMAIL_PROVIDER=sendgrid")
		}
	case EmailProviderResend:
		if c.ResendAPIKey == "" {
			return errors.New("RESEND_API_KEY is required when EMAIL_PROVIDER=resend")
		}
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

// getSecondsEnv reads a TTL expressed in seconds, matching how the reset
// token expiry is conventionally configured.
func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
