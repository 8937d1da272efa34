// File path: internal/ingest/driver.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/nicodishanthj/timebank/internal/common"
	"github.com/nicodishanthj/timebank/internal/common/telemetry"
	"github.com/nicodishanthj/timebank/internal/timeslot"
)

// Upserter is the storage surface the driver writes through.
type Upserter interface {
	UpsertAll(ctx context.Context, records []timeslot.Record) error
}

// FileResult describes the outcome of ingesting one file.
type FileResult struct {
	Path        string `json:"path"`
	Date        string `json:"date"`
	Rows        int    `json:"rows"`
	Records     int    `json:"records"`
	SkippedRows int    `json:"skipped_rows"`
}

// Summary aggregates a directory run.
type Summary struct {
	Files       int      `json:"files"`
	Rows        int      `json:"rows"`
	Records     int      `json:"records"`
	SkippedRows int      `json:"skipped_rows"`
	FailedFiles []string `json:"failed_files,omitempty"`
}

// SourceError reports a day file that could not be opened or parsed.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string { return fmt.Sprintf("ingest %s: %v", e.Path, e.Err) }

func (e *SourceError) Unwrap() error { return e.Err }

// Driver loads day files into a store.
type Driver struct {
	store  Upserter
	logger *slog.Logger
}

// NewDriver returns a driver writing to store. A nil logger uses the shared
// process logger.
func NewDriver(store Upserter, logger *slog.Logger) (*Driver, error) {
	if store == nil {
		return nil, errors.New("ingest: store required")
	}
	if logger == nil {
		logger = common.Logger()
	}
	return &Driver{store: store, logger: logger}, nil
}

// IngestFile reads one day file and upserts its records. Re-ingesting the same
// file leaves the store unchanged.
func (d *Driver) IngestFile(ctx context.Context, path string) (FileResult, error) {
	ctx, end := telemetry.StartSpan(ctx, "ingest.file")
	result := FileResult{Path: path, Date: DateFromPath(path)}
	defer func() { end("path", path, "records", result.Records) }()

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return result, &SourceError{Path: path, Err: err}
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return result, &SourceError{Path: path, Err: err}
	}
	records, skipped := RecordsFromRows(d.logger, result.Date, rows)
	result.Rows = len(rows)
	result.SkippedRows = skipped
	if err := d.store.UpsertAll(ctx, records); err != nil {
		return result, err
	}
	result.Records = len(records)
	telemetry.RecordIngestFile(skipped)
	d.logger.Info("ingest: file loaded", "path", path, "date", result.Date, "rows", result.Rows, "records", result.Records, "skipped", skipped)
	return result, nil
}

// IngestDir ingests every *.csv file in dir in name order. Files that cannot be
// read or parsed are logged and listed in the summary; a storage failure
// aborts the run.
func (d *Driver) IngestDir(ctx context.Context, dir string) (Summary, error) {
	summary := Summary{}
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return summary, fmt.Errorf("glob %s: %w", dir, err)
	}
	sort.Strings(paths)
	d.logger.Info("ingest: scanning directory", "dir", dir, "files", len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		result, err := d.IngestFile(ctx, path)
		if err != nil {
			var sourceErr *SourceError
			if !errors.As(err, &sourceErr) {
				return summary, err
			}
			d.logger.Warn("ingest: file skipped", "path", path, "error", err)
			summary.FailedFiles = append(summary.FailedFiles, path)
			continue
		}
		summary.Files++
		summary.Rows += result.Rows
		summary.Records += result.Records
		summary.SkippedRows += result.SkippedRows
	}
	return summary, nil
}
