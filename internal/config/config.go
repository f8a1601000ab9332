package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Auth      AuthConfig
	FCM       FCMConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// FCMConfig contains credentials for the Firebase Cloud Messaging
// HTTP API used for push reminders.
type FCMConfig struct {
	ServerKey string
	BaseURL   string
}

// SchedulerConfig holds the cron expressions for the reminder sweeps.
type SchedulerConfig struct {
	PregnancyCheckCron string
	SeparationCron     string
	MilestoneCron      string
	Timezone           string
}

// Load reads environment variables (optionally from the provided file)
// and materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	tokenTTL, err := time.ParseDuration(getenvWithDefault("AUTH_TOKEN_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "dairyherd"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  tokenTTL,
		},
		FCM: FCMConfig{
			ServerKey: os.Getenv("FCM_SERVER_KEY"),
			BaseURL:   getenvWithDefault("FCM_BASE_URL", "https://fcm.googleapis.com"),
		},
		Scheduler: SchedulerConfig{
			PregnancyCheckCron: getenvWithDefault("PREGNANCY_CHECK_CRON", "0 10 * * *"),
			SeparationCron:     getenvWithDefault("SEPARATION_CRON", "0 9 * * *"),
			MilestoneCron:      getenvWithDefault("MILESTONE_CRON", "0 8 * * 1"),
			Timezone:           getenvWithDefault("TIMEZONE", "UTC"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}

	// FCM_SERVER_KEY may be empty; push delivery is then disabled and
	// reminders fall back to durable notifications only.
	if c.FCM.BaseURL == "" {
		return errors.New("FCM_BASE_URL must not be empty")
	}

	switch {
	case c.Scheduler.PregnancyCheckCron == "":
		return errors.New("PREGNANCY_CHECK_CRON must be provided")
	case c.Scheduler.SeparationCron == "":
		return errors.New("SEPARATION_CRON must be provided")
	case c.Scheduler.MilestoneCron == "":
		return errors.New("MILESTONE_CRON must be provided")
	case c.Scheduler.Timezone == "":
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
