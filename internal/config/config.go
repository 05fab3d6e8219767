// Package config reads process configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Profile store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds every setting the server needs.
type Config struct {
	Port          string
	DataArchive   string
	WatchData     bool
	ProfileStore  string
	ProfileDBPath string
	DatabaseURL   string
	ModelDir      string
	PredictorURL  string
	PDFFontPath   string
	ProvidersFile string
	GuidanceFile  string
	LogLevel      string
	LogFormat     string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DataArchive:   getEnv("DATA_ARCHIVE", "chatdata.zip"),
		WatchData:     getEnvBool("WATCH_DATA", false),
		ProfileStore:  strings.ToLower(getEnv("PROFILE_STORE", StoreSQLite)),
		ProfileDBPath: getEnv("PROFILE_DB_PATH", "./data"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		ModelDir:      getEnv("MODEL_DIR", "./models"),
		PredictorURL:  os.Getenv("PREDICTOR_URL"),
		PDFFontPath:   os.Getenv("PDF_FONT_PATH"),
		ProvidersFile: os.Getenv("PROVIDERS_FILE"),
		GuidanceFile:  os.Getenv("GUIDANCE_FILE"),
		LogLevel:      strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.ProfileStore {
	case StoreSQLite, StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when PROFILE_STORE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("PROFILE_STORE must be sqlite, postgres or memory, got %q", c.ProfileStore))
	}
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR, got %q", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	default:
		return fallback
	}
}
