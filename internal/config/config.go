// Package config loads and validates application configuration from
// environment variables, applying defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the runtime configuration for cmd/icsigd.
type Config struct {
	// Port is the HTTP listen port.
	Port int
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
	// SnapshotPath is where directory snapshots are saved/restored.
	SnapshotPath string
	// ExpectedUsers sizes the seed bloom-filter cache.
	ExpectedUsers uint64
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (Config, error) {
	cfg := Config{
		Port:          8080,
		LogLevel:      "info",
		SnapshotPath:  "./data/snapshot.cbor",
		ExpectedUsers: 10_000,
	}

	if v := os.Getenv("ICSIGD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("ICSIGD_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("ICSIGD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ICSIGD_SNAPSHOT_PATH"); v != "" {
		cfg.SnapshotPath = v
	}
	if v := os.Getenv("ICSIGD_EXPECTED_USERS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("ICSIGD_EXPECTED_USERS: %w", err)
		}
		cfg.ExpectedUsers = n
	}

	if dir := filepath.Dir(cfg.SnapshotPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return Config{}, fmt.Errorf("snapshot dir: %w", err)
		}
	}
	return cfg, nil
}
