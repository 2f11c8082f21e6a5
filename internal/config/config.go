package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSessionSecret = "stockdesk-dev-secret-change-me"

// Session backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds everything the console reads from the environment.
type Config struct {
	Port           string
	APIBaseURL     string
	ImageBaseURL   string
	APITimeout     time.Duration
	PageSize       int
	SessionSecret  string
	SessionBackend string
	DatabaseURL    string
	CookieSecure   bool
}

// Load reads .env (when present) and then the process environment.
func Load(logger *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
		logger.Info("no .env file found, using process environment")
	}

	cfg := &Config{
		Port:           getenv("APP_PORT", "8080"),
		APIBaseURL:     strings.TrimRight(getenv("API_BASE_URL", "http://localhost:5268/api"), "/"),
		ImageBaseURL:   strings.TrimRight(getenv("IMAGE_BASE_URL", "http://localhost:5268"), "/"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionBackend: strings.ToLower(getenv("SESSION_BACKEND", BackendMemory)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
	}

	var err error
	if cfg.APITimeout, err = time.ParseDuration(getenv("API_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	if cfg.PageSize, err = strconv.Atoi(getenv("PAGE_SIZE", "5")); err != nil || cfg.PageSize <= 0 {
		return nil, fmt.Errorf("invalid PAGE_SIZE %q", os.Getenv("PAGE_SIZE"))
	}
	if cfg.CookieSecure, err = strconv.ParseBool(getenv("COOKIE_SECURE", "false")); err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	if cfg.SessionSecret == "" {
		if cfg.SessionBackend == BackendPostgres || cfg.CookieSecure {
			return nil, errors.New("SESSION_SECRET is required with the postgres session backend or secure cookies")
		}
		logger.Warn("SESSION_SECRET not set, using development secret")
		cfg.SessionSecret = devSessionSecret
	}

	switch cfg.SessionBackend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres session backend")
		}
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
