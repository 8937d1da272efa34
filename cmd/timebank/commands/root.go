// File path: cmd/timebank/commands/root.go
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicodishanthj/timebank/internal/common"
	"github.com/nicodishanthj/timebank/internal/config"
	"github.com/nicodishanthj/timebank/internal/sqlite"
)

var (
	envFile string
	dbPath  string

	settings config.Config
)

var rootCmd = &cobra.Command{
	Use:   "timebank",
	Short: "Record time usage in half-hour slots",
	Long: `timebank stores how each half hour of the day was spent.

Records are loaded from per-day CSV files (ingest) or posted to the HTTP
API (serve), and the SQLite database is copied aside on a daily schedule.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite database (overrides TIMEBANK_DB_PATH)")
}

func loadSettings(cmd *cobra.Command, args []string) error {
	logger := common.Logger()
	loaded, err := config.LoadDotEnv(envFile)
	if err != nil {
		logger.Warn("timebank: .env file not loaded", "error", err)
	} else if loaded {
		logger.Info("timebank: environment loaded", "file", envFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if trimmed := strings.TrimSpace(dbPath); trimmed != "" {
		cfg.DBPath = trimmed
	}
	settings = cfg
	return nil
}

func openStore() (*sqlite.Store, error) {
	store, err := sqlite.Open(settings.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", settings.DBPath, err)
	}
	common.Logger().Info("timebank: database ready", "path", store.Path())
	return store, nil
}
