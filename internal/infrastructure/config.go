package infrastructure

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	SecretKey string
	Algorithm string

	AllowedOrigins []string
	IdleTimeout    time.Duration
	WriteTimeout   time.Duration

	InternalAPIKey string

	AppEnv   string
	LogLevel string
}

// LoadConfig reads the process environment.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:           envOr(getenv, "PORT", "8080"),
		DBHost:         envOr(getenv, "DB_HOST", "localhost"),
		DBPort:         envOr(getenv, "DB_PORT", "5432"),
		DBUser:         getenv("DB_USER"),
		DBPassword:     getenv("DB_PASSWORD"),
		DBName:         getenv("DB_NAME"),
		DBSSLMode:      envOr(getenv, "DB_SSLMODE", "disable"),
		SecretKey:      getenv("SECRET_KEY"),
		Algorithm:      envOr(getenv, "ALGORITHM", "HS256"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS")),
		InternalAPIKey: getenv("INTERNAL_API_KEY"),
		AppEnv:         envOr(getenv, "APP_ENV", "production"),
		LogLevel:       envOr(getenv, "LOG_LEVEL", "info"),
	}

	var err error
	cfg.IdleTimeout, err = durationEnv(getenv, "WS_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.WriteTimeout, err = durationEnv(getenv, "WS_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY environment variable is not set")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	switch cfg.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("ALGORITHM %q is not supported", cfg.Algorithm)
	}

	return cfg, nil
}

// DatabaseURL renders the lib/pq keyword/value connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
