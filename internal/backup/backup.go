// File path: internal/backup/backup.go
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nicodishanthj/timebank/internal/common"
	"github.com/nicodishanthj/timebank/internal/common/telemetry"
)

// DefaultSchedule runs the backup every day at midnight.
const DefaultSchedule = "0 0 * * *"

// Source is the database being backed up.
type Source interface {
	Path() string
	Checkpoint(ctx context.Context) error
}

// FileName returns the backup name for src taken at now:
// "timebank.sqlite" -> "timebank.<unix seconds>.sqlite".
func FileName(src string, now time.Time) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".sqlite"
	}
	return fmt.Sprintf("%s.%d%s", stem, now.Unix(), ext)
}

// Copy writes a verbatim copy of src into dir and returns its path.
func Copy(src, dir string, now time.Time) (string, error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return "", fmt.Errorf("open backup source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	dst := filepath.Join(dir, FileName(src, now))
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("copy backup: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close backup file: %w", err)
	}
	return dst, nil
}

// Run checkpoints source and copies its file into dir.
func Run(ctx context.Context, source Source, dir string, now time.Time) (string, error) {
	if source == nil {
		return "", errors.New("backup: source required")
	}
	if err := source.Checkpoint(ctx); err != nil {
		return "", err
	}
	return Copy(source.Path(), dir, now)
}

// Scheduler triggers Run on a cron schedule. Jobs run on the cron goroutine
// and never block the caller.
type Scheduler struct {
	source   Source
	dir      string
	schedule string
	clock    func() time.Time
	logger   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewScheduler validates the schedule and returns an idle scheduler.
func NewScheduler(source Source, dir, schedule string) (*Scheduler, error) {
	if source == nil {
		return nil, errors.New("backup: source required")
	}
	if strings.TrimSpace(schedule) == "" {
		schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("backup: parse schedule %q: %w", schedule, err)
	}
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	return &Scheduler{
		source:   source,
		dir:      dir,
		schedule: schedule,
		clock:    time.Now,
		logger:   common.Logger(),
	}, nil
}

// RunOnce performs a single backup and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	path, err := Run(ctx, s.source, s.dir, s.clock())
	if err != nil {
		telemetry.RecordBackup("error")
		s.logger.Warn("backup: failed", "error", err)
		return "", err
	}
	telemetry.RecordBackup("ok")
	s.logger.Info("backup: written", "path", path)
	return path, nil
}

// Start begins the schedule. Calling Start twice is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		_, _ = s.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("backup: schedule job: %w", err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("backup: scheduler started", "schedule", s.schedule, "dir", s.dir)
	return nil
}

// Stop halts the schedule and waits for a running backup to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	done := c.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
