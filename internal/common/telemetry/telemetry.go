// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"expvar"
	"strings"
	"sync"
	"time"

	"github.com/nicodishanthj/timebank/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

var (
	initOnce sync.Once

	recordsUpserted   *expvar.Int
	ingestFiles       *expvar.Int
	ingestRowsSkipped *expvar.Int
	adminStrikes      *expvar.Int
	adminBanned       *expvar.Int
	backupsTotal      *expvar.Map

	requestTotal     *expvar.Map
	requestLatencyMS *expvar.Map
)

func ensureInit() {
	initOnce.Do(func() {
		recordsUpserted = expvar.NewInt("timebank_records_upserted_total")
		ingestFiles = expvar.NewInt("timebank_ingest_files_total")
		ingestRowsSkipped = expvar.NewInt("timebank_ingest_rows_skipped_total")
		adminStrikes = expvar.NewInt("timebank_admin_strikes_total")
		adminBanned = expvar.NewInt("timebank_admin_banned_total")
		backupsTotal = expvar.NewMap("timebank_backups_total")

		requestTotal = expvar.NewMap("timebank_http_requests_total")
		requestLatencyMS = expvar.NewMap("timebank_http_request_latency_ms")
	})
}

// StartSpan logs the start of a named unit of work and returns a func that
// logs its end along with the elapsed time.
func StartSpan(ctx context.Context, name string) (context.Context, func(attrs ...interface{})) {
	ensureInit()
	sp := &span{name: name, start: time.Now()}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	logger := common.Logger()
	logger.Debug("trace: start", "span", name)
	return ctx, func(attrs ...interface{}) {
		logger.Debug("trace: end", append([]interface{}{"span", name, "dur", time.Since(sp.start)}, attrs...)...)
	}
}

// SpanDuration reports how long the span stored in ctx has been running.
func SpanDuration(ctx context.Context) time.Duration {
	sp, _ := ctx.Value(spanKey{}).(*span)
	if sp == nil {
		return 0
	}
	return time.Since(sp.start)
}

func RecordUpserts(n int) {
	ensureInit()
	if n > 0 {
		recordsUpserted.Add(int64(n))
	}
}

func RecordIngestFile(skippedRows int) {
	ensureInit()
	ingestFiles.Add(1)
	if skippedRows > 0 {
		ingestRowsSkipped.Add(int64(skippedRows))
	}
}

func RecordStrike() {
	ensureInit()
	adminStrikes.Add(1)
}

func RecordBannedRequest() {
	ensureInit()
	adminBanned.Add(1)
}

// RecordBackup counts backup attempts by outcome ("ok" or "error").
func RecordBackup(outcome string) {
	ensureInit()
	backupsTotal.Add(outcome, 1)
}

// RecordRequest counts a served HTTP request under its route pattern.
func RecordRequest(route string, duration time.Duration) {
	ensureInit()
	key := strings.TrimSpace(route)
	if key == "" {
		key = "unmatched"
	}
	requestTotal.Add(key, 1)
	if duration > 0 {
		requestLatencyMS.Add(key, duration.Milliseconds())
	}
}

// Snapshot returns the current value of an integer counter, for diagnostics
// and tests.
func Snapshot(name string) int64 {
	ensureInit()
	if v, ok := expvar.Get(name).(*expvar.Int); ok {
		return v.Value()
	}
	return 0
}
