package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted after the configuration file is read.
const (
	EnvLogLevel  = "LOTBUILDER_LOG_LEVEL"
	EnvBaseURL   = "LOTBUILDER_BASE_URL"
	EnvOutputDir = "LOTBUILDER_OUTPUT_DIR"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env files from the working directory. Variables that
// are already set in the process environment are never overwritten.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load environment file", "file", name, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "file", name)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = NormalizeLogLevel(v)
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.Site.BaseURL = v
		applySiteDefaults(cfg)
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.Output.Directory = v
	}
}
