package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

// DatabaseConfig конфигурация БД
type DatabaseConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Name     string
	Schema   string
	SSLMode  string
}

// DSN строка подключения для lib/pq (используется и sqlx, и pq.Listener)
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Name, c.SSLMode,
	)
}

// Load загружает конфигурацию из окружения (и .env, если он есть)
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := normalizeEnv(getEnv("APP_ENV", "development"))

	cfg := &Config{
		Environment: env,
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			CookieSecret:   getEnv("COOKIE_SECRET", ""),
			CSRFKey:        getEnv("CSRF_KEY", ""),
			SessionTTL:     getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			TrustedOrigins: splitList(getEnv("TRUSTED_ORIGINS", "localhost:8080,127.0.0.1:8080")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Username: getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "gym"),
			Schema:   getEnv("DB_SCHEMA", "gym"),
			SSLMode:  getEnv("DB_SSLMODE", getSSLMode(env)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Bot: BotConfig{
			Token: getEnv("BOT_TOKEN", ""),
			Debug: getEnvAsBool("BOT_DEBUG", env != "production"),
		},
		Assistant: AssistantConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Mail: MailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("MAIL_FROM", "Gym Panel <noreply@example.com>"),
			AdminEmail:   getEnv("ADMIN_EMAIL", ""),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate проверяет обязательные параметры, собирая все ошибки сразу
func validate(cfg *Config) error {
	var err error

	if cfg.Database.Username == "" {
		err = multierr.Append(err, errors.New("DB_USER is required"))
	}
	if cfg.Database.Password == "" && cfg.IsProduction() {
		err = multierr.Append(err, errors.New("DB_PASSWORD is required in production"))
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("DB_PORT %d is out of range", cfg.Database.Port))
	}
	if cfg.IsProduction() {
		if cfg.HTTP.CookieSecret == "" {
			err = multierr.Append(err, errors.New("COOKIE_SECRET is required in production"))
		}
		if cfg.HTTP.CSRFKey == "" {
			err = multierr.Append(err, errors.New("CSRF_KEY is required in production"))
		}
	}
	if cfg.HTTP.SessionTTL <= 0 {
		err = multierr.Append(err, errors.New("SESSION_TTL must be positive"))
	}

	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// getSSLMode возвращает режим SSL в зависимости от окружения
func getSSLMode(env string) string {
	if env == "production" {
		return "require"
	}
	return "disable"
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	if value == "" {
		return []string{}
	}

	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
