// File path: internal/sqlite/records.go
package sqlite

import (
	"context"
	"fmt"

	"github.com/nicodishanthj/timebank/internal/common/telemetry"
	"github.com/nicodishanthj/timebank/internal/timeslot"
)

// StorageError reports any failure of the underlying database. Callers do not
// distinguish causes beyond the message.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

const upsertRecordQuery = `INSERT OR REPLACE INTO record(date, time_index_begin, time_index_end, type_str, remark)
        VALUES(:date, :time_index_begin, :time_index_end, :type_str, :remark)`

const selectRecordColumns = `SELECT date, time_index_begin, time_index_end, type_str, remark FROM record`

const recordOrder = ` ORDER BY date DESC, time_index_end DESC`

// Upsert writes rec, replacing any row with the same date and slot bounds.
func (s *Store) Upsert(ctx context.Context, rec timeslot.Record) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if _, err := s.db.NamedExecContext(ctx, upsertRecordQuery, rec); err != nil {
		return &StorageError{Op: fmt.Sprintf("upsert %s [%d,%d)", rec.Date, rec.TimeIndexBegin, rec.TimeIndexEnd), Err: err}
	}
	telemetry.RecordUpserts(1)
	return nil
}

// UpsertAll upserts records in order and stops at the first failure. Records
// written before the failure remain committed.
func (s *Store) UpsertAll(ctx context.Context, records []timeslot.Record) error {
	for _, rec := range records {
		if err := s.Upsert(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// List returns every record, newest date first and latest slot first within
// a day.
func (s *Store) List(ctx context.Context) ([]timeslot.Record, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	records := []timeslot.Record{}
	if err := s.db.SelectContext(ctx, &records, selectRecordColumns+recordOrder); err != nil {
		return nil, &StorageError{Op: "list records", Err: err}
	}
	return records, nil
}

// SearchByDateRange returns records whose date lies in [begin, end], with the
// same ordering as List. ISO dates compare correctly as strings.
func (s *Store) SearchByDateRange(ctx context.Context, begin, end string) ([]timeslot.Record, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	records := []timeslot.Record{}
	query := selectRecordColumns + ` WHERE date BETWEEN ? AND ?` + recordOrder
	if err := s.db.SelectContext(ctx, &records, query, begin, end); err != nil {
		return nil, &StorageError{Op: "search records", Err: err}
	}
	return records, nil
}
