// Package config loads the service configuration from the environment,
// with an optional .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	// EventJournalPath is the path of the JSON event journal file.
	EventJournalPath string

	// ReadModelURL is the SQLite DSN of the read-model database.
	ReadModelURL string

	// WorkerPollInterval is how often the projection worker polls the log.
	WorkerPollInterval time.Duration

	// CommandRetryLimit is the number of extra attempts after a command
	// fails with a concurrency conflict.
	CommandRetryLimit int

	// CommandRetryBackoff is the first retry delay; it doubles per attempt.
	CommandRetryBackoff time.Duration

	// ProjectionBatchSize caps how many events one poll cycle processes.
	ProjectionBatchSize int

	// ResetReadModelOnBoot drops and rebuilds the read model at startup.
	ResetReadModelOnBoot bool

	// ListenAddr is the address of the WebSocket notification endpoint.
	ListenAddr string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is merged in first when present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		EventJournalPath:     getEnv("EVENT_JOURNAL_PATH", "journal.json"),
		ReadModelURL:         getEnv("READ_MODEL_URL", ":memory:"),
		WorkerPollInterval:   time.Second,
		CommandRetryLimit:    3,
		CommandRetryBackoff:  time.Millisecond,
		ProjectionBatchSize:  64,
		ResetReadModelOnBoot: true,
		ListenAddr:           getEnv("LISTEN_ADDR", ":8080"),
	}

	var err error
	if cfg.WorkerPollInterval, err = getDurationMs("WORKER_POLL_INTERVAL_MS", cfg.WorkerPollInterval); err != nil {
		return nil, err
	}
	if cfg.CommandRetryLimit, err = getInt("COMMAND_RETRY_LIMIT", cfg.CommandRetryLimit); err != nil {
		return nil, err
	}
	if cfg.CommandRetryBackoff, err = getDurationMs("COMMAND_RETRY_BACKOFF_MS", cfg.CommandRetryBackoff); err != nil {
		return nil, err
	}
	if cfg.ProjectionBatchSize, err = getInt("PROJECTION_BATCH_SIZE", cfg.ProjectionBatchSize); err != nil {
		return nil, err
	}
	if cfg.ResetReadModelOnBoot, err = getBool("RESET_READ_MODEL_ON_BOOT", cfg.ResetReadModelOnBoot); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDurationMs(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
