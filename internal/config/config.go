// File path: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAdminToken is the secret accepted when ADMIN_TOKEN is unset.
const DefaultAdminToken = "admin_token"

// Config holds the process-level settings. It is resolved once at startup and
// handed to the components as plain values.
type Config struct {
	Port           int
	AdminToken     string
	DBPath         string
	CSVDir         string
	BackupDir      string
	BackupSchedule string
}

// DefaultConfig returns the baseline configuration used when no overrides are
// supplied.
func DefaultConfig() Config {
	return Config{
		Port:           3000,
		AdminToken:     DefaultAdminToken,
		DBPath:         "timebank.sqlite",
		CSVDir:         "csv_data",
		BackupDir:      ".",
		BackupSchedule: "0 0 * * *",
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// LoadDotEnv loads variables from the given .env files (or ./.env) without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(files ...string) (bool, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := files[:0:0]
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return false, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return false, fmt.Errorf("load env files: %w", err)
	}
	return true, nil
}

// Load builds a Config from defaults and environment variables.
func Load() (Config, error) {
	cfg := DefaultConfig()
	if value := strings.TrimSpace(os.Getenv("PORT")); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse PORT: %w", err)
		}
		cfg.Port = port
	}
	if value, ok := os.LookupEnv("ADMIN_TOKEN"); ok {
		cfg.AdminToken = value
	}
	if value := strings.TrimSpace(os.Getenv("TIMEBANK_DB_PATH")); value != "" {
		cfg.DBPath = value
	}
	if value := strings.TrimSpace(os.Getenv("TIMEBANK_CSV_DIR")); value != "" {
		cfg.CSVDir = value
	}
	if value := strings.TrimSpace(os.Getenv("TIMEBANK_BACKUP_DIR")); value != "" {
		cfg.BackupDir = value
	}
	if value := strings.TrimSpace(os.Getenv("TIMEBANK_BACKUP_SCHEDULE")); value != "" {
		cfg.BackupSchedule = value
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("database path required")
	}
	return nil
}
