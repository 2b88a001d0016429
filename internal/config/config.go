// Package config layers environment variables (loaded via godotenv) and
// command-line flags into the settings the server needs to start: listen
// address and log level. Flags, when set, win over the environment.
package config

import "os"

// Config holds the fully resolved startup configuration.
type Config struct {
	Addr     string
	LogLevel string
}

// Defaults mirror spec.md §6: listen on 0.0.0.0:8765.
func Defaults() Config {
	return Config{
		Addr:     "0.0.0.0:8765",
		LogLevel: "info",
	}
}

// FromEnv starts from Defaults and overrides with DOODLEPARTY_ADDR and
// DOODLEPARTY_LOG_LEVEL when present. The caller is expected to have
// already loaded a .env file via godotenv before calling this (see
// cmd/server).
func FromEnv() Config {
	cfg := Defaults()
	if v := os.Getenv("DOODLEPARTY_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("DOODLEPARTY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}
