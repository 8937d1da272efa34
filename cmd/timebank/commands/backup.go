// File path: cmd/timebank/commands/backup.go
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicodishanthj/timebank/internal/backup"
)

var backupDir string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the database to a timestamped backup file",
	RunE:  runBackup,
}

func init() {
	backupCmd.Flags().StringVar(&backupDir, "dir", "", "backup directory (overrides TIMEBANK_BACKUP_DIR)")
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	dir := settings.BackupDir
	if backupDir != "" {
		dir = backupDir
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	scheduler, err := backup.NewScheduler(store, dir, settings.BackupSchedule)
	if err != nil {
		return err
	}
	path, err := scheduler.RunOnce(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
