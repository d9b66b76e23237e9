package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"restaurant-service/cache"
	"restaurant-service/database"
	awspkg "restaurant-service/pkg/aws"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the restaurant service.
type Config struct {
	Port     string
	Env      string
	Database database.Settings

	JWTSecret string

	// Menu cache is disabled when RedisURL is empty
	RedisURL     string
	MenuCacheTTL time.Duration

	BootstrapAdminUsername string
	AllowedOrigins         []string
}

type secretMapSource interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments use the environment
	_ = godotenv.Load()

	cfg, err := configFromEnv()
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		awsCfg, err := awspkg.LoadAWSConfig(context.Background())
		if err != nil {
			return nil, err
		}
		name := getEnv("APP_SECRET_NAME", "restaurant/APP_SECRETS")
		if err := applySecrets(context.Background(), cfg, awspkg.NewSecretsClient(awsCfg), name); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configFromEnv() (*Config, error) {
	ttl := cache.DefaultTTL
	if raw := os.Getenv("MENU_CACHE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid MENU_CACHE_TTL %q", raw)
		}
		ttl = d
	}

	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),
		Database: database.Settings{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     os.Getenv("POSTGRES_DB"),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		JWTSecret:              os.Getenv("JWT_SECRET"),
		RedisURL:               os.Getenv("REDIS_URL"),
		MenuCacheTTL:           ttl,
		BootstrapAdminUsername: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_USERNAME")),
		AllowedOrigins:         splitList(os.Getenv("ALLOWED_ORIGINS")),
	}, nil
}

// applySecrets overrides DB credentials and the JWT secret with the
// non-empty values of a JSON secret.
func applySecrets(ctx context.Context, cfg *Config, sm secretMapSource, name string) error {
	m, err := sm.GetSecretMap(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	overrides := map[string]*string{
		"POSTGRES_USER":     &cfg.Database.User,
		"POSTGRES_PASSWORD": &cfg.Database.Password,
		"POSTGRES_DB":       &cfg.Database.Name,
		"POSTGRES_HOST":     &cfg.Database.Host,
		"POSTGRES_PORT":     &cfg.Database.Port,
		"JWT_SECRET":        &cfg.JWTSecret,
	}
	for key, dst := range overrides {
		if v, ok := m[key]; ok && v != "" {
			*dst = v
		}
	}
	return nil
}

func (c *Config) validate() error {
	db := c.Database
	if db.User == "" || db.Password == "" || db.Name == "" || db.Host == "" {
		return fmt.Errorf("database config incomplete")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
