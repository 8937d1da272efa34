// File path: internal/timeslot/record_test.go
package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	records := Expand("2024-01-01", 18, 21, "work", "x")
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, 18+i, rec.TimeIndexBegin)
		assert.Equal(t, rec.TimeIndexBegin+1, rec.TimeIndexEnd)
		assert.Equal(t, "2024-01-01", rec.Date)
		assert.Equal(t, "work", rec.Type)
		assert.Equal(t, "x", rec.Remark)
	}
}

func TestExpandEmptyRanges(t *testing.T) {
	equal := Expand("2024-01-01", 5, 5, "work", "")
	assert.NotNil(t, equal)
	assert.Empty(t, equal)

	reversed := Expand("2024-01-01", 7, 3, "work", "")
	assert.NotNil(t, reversed)
	assert.Empty(t, reversed)
}

func TestRecordExpandMatchesExpand(t *testing.T) {
	rec := Record{Date: "2024-02-03", TimeIndexBegin: 0, TimeIndexEnd: 2, Type: "sleep", Remark: "zz"}
	assert.Equal(t, Expand("2024-02-03", 0, 2, "sleep", "zz"), rec.Expand())
}

func TestRecordValidate(t *testing.T) {
	valid := Record{Date: "2024-01-01", TimeIndexBegin: 10, TimeIndexEnd: 12}
	require.NoError(t, valid.Validate())

	reversed := Record{Date: "2024-01-01", TimeIndexBegin: 12, TimeIndexEnd: 10}
	require.NoError(t, reversed.Validate())

	for name, rec := range map[string]Record{
		"missing date":  {TimeIndexBegin: 1, TimeIndexEnd: 2},
		"bad date":      {Date: "2024/01/01", TimeIndexBegin: 1, TimeIndexEnd: 2},
		"negative":      {Date: "2024-01-01", TimeIndexBegin: -1, TimeIndexEnd: 2},
		"past midnight": {Date: "2024-01-01", TimeIndexBegin: 1, TimeIndexEnd: 49},
	} {
		err := rec.Validate()
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), KindInvalidRecord.String(), name)
	}
}
