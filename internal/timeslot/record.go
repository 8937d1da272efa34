// File path: internal/timeslot/record.go
package timeslot

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for Record.Date.
const DateLayout = "2006-01-02"

// Record is a time entry for one day. Persisted records always cover exactly
// one slot; interval records received from callers may cover several and are
// split with Expand before storage.
type Record struct {
	Date           string `json:"date" db:"date"`
	TimeIndexBegin int    `json:"timeIndexBegin" db:"time_index_begin"`
	TimeIndexEnd   int    `json:"timeIndexEnd" db:"time_index_end"`
	Type           string `json:"type" db:"type_str"`
	Remark         string `json:"remark" db:"remark"`
}

// Expand splits the record into one record per slot in
// [TimeIndexBegin, TimeIndexEnd).
func (r Record) Expand() []Record {
	return Expand(r.Date, r.TimeIndexBegin, r.TimeIndexEnd, r.Type, r.Remark)
}

// Expand returns one single-slot record for each index in [begin, end). An
// empty or reversed range yields an empty slice.
func Expand(date string, begin, end int, typ, remark string) []Record {
	if begin >= end {
		return []Record{}
	}
	out := make([]Record, 0, end-begin)
	for i := begin; i < end; i++ {
		out = append(out, Record{
			Date:           date,
			TimeIndexBegin: i,
			TimeIndexEnd:   i + 1,
			Type:           typ,
			Remark:         remark,
		})
	}
	return out
}

// Validate checks the date format and slot bounds of an interval record.
// Reversed ranges are accepted.
func (r Record) Validate() error {
	date := strings.TrimSpace(r.Date)
	if date == "" {
		return &Error{Kind: KindInvalidRecord, Input: r.Date, Err: fmt.Errorf("date is required")}
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return &Error{Kind: KindInvalidRecord, Input: r.Date, Err: err}
	}
	if r.TimeIndexBegin < 0 || r.TimeIndexBegin > SlotsPerDay {
		return &Error{Kind: KindInvalidRecord, Input: fmt.Sprint(r.TimeIndexBegin), Err: fmt.Errorf("timeIndexBegin out of range")}
	}
	if r.TimeIndexEnd < 0 || r.TimeIndexEnd > SlotsPerDay {
		return &Error{Kind: KindInvalidRecord, Input: fmt.Sprint(r.TimeIndexEnd), Err: fmt.Errorf("timeIndexEnd out of range")}
	}
	return nil
}
