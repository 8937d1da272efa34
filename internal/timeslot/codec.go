// File path: internal/timeslot/codec.go
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
)

// SlotsPerDay is the number of half-hour slots in a day.
const SlotsPerDay = 48

// Kind enumerates the codec failure modes.
type Kind int

const (
	KindInvalidTimeOfDay Kind = iota + 1
	KindInvalidTimeRange
	KindInvalidRecord
)

func (k Kind) String() string {
	switch k {
	case KindInvalidTimeOfDay:
		return "invalid_time_of_day"
	case KindInvalidTimeRange:
		return "invalid_time_range"
	case KindInvalidRecord:
		return "invalid_record"
	default:
		return "unknown"
	}
}

// Error reports a value that could not be converted to slot indexes.
type Error struct {
	Kind  Kind
	Input string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Input, e.Err)
	}
	return fmt.Sprintf("%s %q", e.Kind, e.Input)
}

func (e *Error) Unwrap() error { return e.Err }

// ParseTimeOfDay converts "HH:MM" to a slot index. Only the literal minute
// string "30" selects the second half of the hour; anything else counts as :00.
func ParseTimeOfDay(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, &Error{Kind: KindInvalidTimeOfDay, Input: s, Err: fmt.Errorf("expected HH:MM")}
	}
	hour, err := strconv.ParseUint(parts[0], 10, 31)
	if err != nil {
		return 0, &Error{Kind: KindInvalidTimeOfDay, Input: s, Err: err}
	}
	index := int(hour) * 2
	if parts[1] == "30" {
		index++
	}
	return index, nil
}

// ParseTimeRange converts "HH:MM-HH:MM" to a begin/end slot pair. The pair is
// not ordered; a reversed range expands to zero records.
func ParseTimeRange(s string) (begin, end int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, &Error{Kind: KindInvalidTimeRange, Input: s, Err: fmt.Errorf("expected HH:MM-HH:MM")}
	}
	begin, err = ParseTimeOfDay(parts[0])
	if err != nil {
		return 0, 0, &Error{Kind: KindInvalidTimeRange, Input: s, Err: err}
	}
	end, err = ParseTimeOfDay(parts[1])
	if err != nil {
		return 0, 0, &Error{Kind: KindInvalidTimeRange, Input: s, Err: err}
	}
	return begin, end, nil
}

// FormatSlot renders a slot index as "HH:MM".
func FormatSlot(index int) string {
	minutes := "00"
	if index%2 == 1 {
		minutes = "30"
	}
	return fmt.Sprintf("%02d:%s", index/2, minutes)
}
