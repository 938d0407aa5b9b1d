package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type envConfig struct {
	APP_ENV string

	API_BASE_URL string
	HTTP_TIMEOUT time.Duration

	LOG_FILE_PATH string
	LOG_LEVEL     string

	CREDENTIAL_DIR string
	SESSION_DIR    string
	REMEMBER_TTL   time.Duration

	LOADER_DELAY time.Duration
}

// DefaultEnvConfig is populated by LoadEnvConfig.
var DefaultEnvConfig = defaults()

func defaults() envConfig {
	return envConfig{
		APP_ENV:        "development",
		API_BASE_URL:   "http://localhost/todo-app",
		HTTP_TIMEOUT:   0,
		LOG_FILE_PATH:  "",
		LOG_LEVEL:      "warn",
		CREDENTIAL_DIR: defaultCredentialDir(),
		SESSION_DIR:    defaultSessionDir(),
		REMEMBER_TTL:   10 * time.Hour,
		LOADER_DELAY:   3 * time.Second,
	}
}

// LoadEnvConfig loads .env (if present) and then reads the process environment
// into DefaultEnvConfig. Unset variables keep their defaults.
func LoadEnvConfig(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := defaults()
	cfg.APP_ENV = getEnv("APP_ENV", cfg.APP_ENV)
	cfg.API_BASE_URL = strings.TrimRight(getEnv("API_BASE_URL", cfg.API_BASE_URL), "/")
	cfg.LOG_FILE_PATH = getEnv("LOG_FILE_PATH", cfg.LOG_FILE_PATH)
	cfg.LOG_LEVEL = getEnv("LOG_LEVEL", cfg.LOG_LEVEL)
	cfg.CREDENTIAL_DIR = getEnv("CREDENTIAL_DIR", cfg.CREDENTIAL_DIR)
	cfg.SESSION_DIR = getEnv("SESSION_DIR", cfg.SESSION_DIR)

	var err error
	if cfg.HTTP_TIMEOUT, err = getDuration("HTTP_TIMEOUT", cfg.HTTP_TIMEOUT); err != nil {
		return err
	}
	if cfg.REMEMBER_TTL, err = getDuration("REMEMBER_TTL", cfg.REMEMBER_TTL); err != nil {
		return err
	}
	if cfg.LOADER_DELAY, err = getDuration("LOADER_DELAY", cfg.LOADER_DELAY); err != nil {
		return err
	}
	if cfg.REMEMBER_TTL <= 0 {
		return fmt.Errorf("REMEMBER_TTL must be positive, got %s", cfg.REMEMBER_TTL)
	}

	DefaultEnvConfig = cfg
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func defaultCredentialDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "taskflow")
	}
	return filepath.Join(dir, "taskflow")
}

// defaultSessionDir keeps per-terminal session files in the user's cache
// directory rather than the shared temp directory.
func defaultSessionDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), fmt.Sprintf("taskflow-%d", os.Getuid()), "sessions")
	}
	return filepath.Join(dir, "taskflow", "sessions")
}
