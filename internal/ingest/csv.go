// File path: internal/ingest/csv.go
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/nicodishanthj/timebank/internal/timeslot"
)

// Column names expected in the CSV header.
const (
	ColumnTime   = "Time"
	ColumnType   = "Type"
	ColumnRemark = "Remark"
)

// Row is one line of a day file before it is converted to slot records.
type Row struct {
	Time   string
	Type   string
	Remark string
}

// DateFromPath returns the file name up to its first dot, which names the
// day the file describes ("csv_data/2024-01-01.csv" -> "2024-01-01").
func DateFromPath(path string) string {
	name := filepath.Base(path)
	if idx := strings.Index(name, "."); idx >= 0 {
		return name[:idx]
	}
	return name
}

// ReadRows parses a CSV document with a Time, Type and Remark header. Columns
// are matched by name so their order does not matter.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	timeCol, ok := columns[ColumnTime]
	if !ok {
		return nil, fmt.Errorf("csv header missing %q column", ColumnTime)
	}
	typeCol, hasType := columns[ColumnType]
	remarkCol, hasRemark := columns[ColumnRemark]

	var rows []Row
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read csv row %d: %w", len(rows)+2, err)
		}
		row := Row{Time: field(fields, timeCol)}
		if hasType {
			row.Type = field(fields, typeCol)
		}
		if hasRemark {
			row.Remark = field(fields, remarkCol)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// RecordsFromRows expands every row into single-slot records for date. Rows
// whose time range cannot be parsed are logged and skipped; the number of
// skipped rows is returned alongside the records.
func RecordsFromRows(logger *slog.Logger, date string, rows []Row) ([]timeslot.Record, int) {
	records := []timeslot.Record{}
	skipped := 0
	for _, row := range rows {
		begin, end, err := timeslot.ParseTimeRange(row.Time)
		if err != nil {
			skipped++
			if logger != nil {
				logger.Warn("ingest: invalid time range", "date", date, "time", row.Time, "error", err)
			}
			continue
		}
		records = append(records, timeslot.Expand(date, begin, end, row.Type, row.Remark)...)
	}
	return records, skipped
}
