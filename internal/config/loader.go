package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration for the pipeline service.
type Config struct {
	HTTPPort               int
	SQLiteDSN              string
	DefaultDurationMinutes int
	LockWaitTimeout        time.Duration
}

// Load parses configuration from the process environment. A .env file in the
// working directory is folded in first when present; real environment
// variables win over file entries.
//
// Optional values fall back to defaults; invalid values are collected and
// reported together.
func Load() (Config, error) {
	// godotenv never overrides variables already exported.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:               8080,
		SQLiteDSN:              "file:pipeline.db",
		DefaultDurationMinutes: 30,
		LockWaitTimeout:        10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PIPELINE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PIPELINE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("PIPELINE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if durationValue := strings.TrimSpace(os.Getenv("PIPELINE_DEFAULT_DURATION_MINUTES")); durationValue != "" {
		minutes, err := strconv.Atoi(durationValue)
		if err != nil || minutes <= 0 {
			invalid = append(invalid, "PIPELINE_DEFAULT_DURATION_MINUTES")
		} else {
			cfg.DefaultDurationMinutes = minutes
		}
	}

	if waitValue := strings.TrimSpace(os.Getenv("PIPELINE_LOCK_WAIT_TIMEOUT")); waitValue != "" {
		wait, err := time.ParseDuration(waitValue)
		if err != nil || wait <= 0 {
			invalid = append(invalid, "PIPELINE_LOCK_WAIT_TIMEOUT")
		} else {
			cfg.LockWaitTimeout = wait
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
