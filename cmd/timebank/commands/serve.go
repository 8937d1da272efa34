// File path: cmd/timebank/commands/serve.go
package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nicodishanthj/timebank/internal/admin"
	"github.com/nicodishanthj/timebank/internal/api"
	"github.com/nicodishanthj/timebank/internal/backup"
	"github.com/nicodishanthj/timebank/internal/common"
)

var (
	servePort     int
	serveNoBackup bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the record API",
	Long: `Serve the HTTP API:

  GET  /health
  GET  /record/list
  POST /record/search   {"dateBegin": "...", "dateEnd": "..."}
  POST /record/create   (requires the admin_token header)

The database is backed up on TIMEBANK_BACKUP_SCHEDULE unless --no-backup is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveNoBackup, "no-backup", false, "disable the scheduled database backup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := common.Logger()
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := settings
	if servePort > 0 {
		cfg.Port = servePort
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if !serveNoBackup {
		scheduler, err := backup.NewScheduler(store, cfg.BackupDir, cfg.BackupSchedule)
		if err != nil {
			return err
		}
		if err := scheduler.Start(); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := scheduler.Stop(stopCtx); err != nil {
				logger.Warn("timebank: backup scheduler stop", "error", err)
			}
		}()
	}

	handler, err := api.NewServer(store, admin.NewGate(cfg.AdminToken))
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("timebank: server listening", "addr", server.Addr, "health", "/health")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("timebank: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
