package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	GinMode       string
	Port          string
	SessionSecret string

	// Secret used to verify session tokens issued by the identity provider.
	IdentitySecret string

	// Shared secret expected on the maintenance trigger endpoint.
	CronSecret string

	// Calendar OAuth client (optional; calendar routes are disabled when empty)
	CalendarClientID     string
	CalendarClientSecret string
	CalendarRedirectURL  string

	// Outbound mail (optional; mail is skipped when host is empty)
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "collective"),
		DBPassword: getEnv("DB_PASSWORD", "collective"),
		DBName:     getEnv("DB_NAME", "collective"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		GinMode:       getEnv("GIN_MODE", "debug"),
		Port:          getEnv("PORT", "8080"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),

		IdentitySecret: getEnv("IDENTITY_SECRET", ""),
		CronSecret:     getEnv("CRON_SECRET", ""),

		CalendarClientID:     getEnv("CALENDAR_CLIENT_ID", ""),
		CalendarClientSecret: getEnv("CALENDAR_CLIENT_SECRET", ""),
		CalendarRedirectURL:  getEnv("CALENDAR_REDIRECT_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
	}

	cfg.validate()
	return cfg
}

// validate fails fast on secrets the server cannot run without.
func (c *Config) validate() {
	if c.IdentitySecret == "" {
		log.Fatal("IDENTITY_SECRET is required")
	}
	if c.CronSecret == "" {
		log.Fatal("CRON_SECRET is required")
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
