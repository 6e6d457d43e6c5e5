package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	LogLevel   string
	Database   DatabaseConfig
	Auth       AuthConfig
	SMTP       SMTPConfig
	Digest     DigestConfig
	Events     EventsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether mail delivery credentials are present.
// Without them the notifier falls back to logging digests.
func (c SMTPConfig) Configured() bool {
	return c.Username != "" && c.Password != ""
}

type DigestConfig struct {
	Interval          time.Duration
	FallbackRecipient string
}

// EventsConfig selects an optional broker for digest events.
// Backend is one of "none", "rabbitmq" or "pubsub".
type EventsConfig struct {
	Backend string
	Channel string

	RabbitMQURL string

	PubSubProjectID       string
	PubSubCredentialsFile string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "taskdeck"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "taskdeck_db"),
		UseSSL:   getEnvBool("DB_SSL", false),
	}

	authConfig := AuthConfig{
		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
	}

	smtpConfig := SMTPConfig{
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:     getEnvInt("SMTP_PORT", 587),
		Username: getEnv("EMAIL_USER", ""),
		Password: getEnv("EMAIL_PASS", ""),
		From:     getEnv("EMAIL_FROM", getEnv("EMAIL_USER", "")),
	}

	digestConfig := DigestConfig{
		Interval:          getEnvDuration("DIGEST_INTERVAL", 5*time.Minute),
		FallbackRecipient: getEnv("DIGEST_FALLBACK_RECIPIENT", getEnv("EMAIL_USER", "")),
	}

	eventsConfig := EventsConfig{
		Backend:               getEnv("EVENTS_BACKEND", "none"),
		Channel:               getEnv("EVENTS_CHANNEL", "task-digests"),
		RabbitMQURL:           getEnv("RABBITMQ_URL", ""),
		PubSubProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
		PubSubCredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Database:   dbConfig,
		Auth:       authConfig,
		SMTP:       smtpConfig,
		Digest:     digestConfig,
		Events:     eventsConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
			return value
		}
	}
	return defaultValue
}
