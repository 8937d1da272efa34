// File path: internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodishanthj/timebank/internal/admin"
	"github.com/nicodishanthj/timebank/internal/sqlite"
	"github.com/nicodishanthj/timebank/internal/timeslot"
)

const testToken = "s3cret"

type failingStore struct{ err error }

func (f failingStore) UpsertAll(context.Context, []timeslot.Record) error { return f.err }

func (f failingStore) List(context.Context) ([]timeslot.Record, error) { return nil, f.err }

func (f failingStore) SearchByDateRange(context.Context, string, string) ([]timeslot.Record, error) {
	return nil, f.err
}

func newTestServer(t *testing.T) (*Server, *sqlite.Store, *admin.Gate) {
	t.Helper()
	store, err := sqlite.OpenWithConfig(sqlite.Config{Path: filepath.Join(t.TempDir(), "timebank.sqlite")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	gate := admin.NewGate(testToken)
	srv, err := NewServer(store, gate)
	require.NoError(t, err)
	return srv, store, gate
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:40000"
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeRecords(t *testing.T, rec *httptest.ResponseRecorder) []timeslot.Record {
	t.Helper()
	var records []timeslot.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	return records
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var msg messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	return msg.Message
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestListEmptyIsArray(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/record/list", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateThenList(t *testing.T) {
	srv, _, gate := newTestServer(t)
	interval := map[string]interface{}{
		"date": "2024-01-01", "timeIndexBegin": 18, "timeIndexEnd": 21, "type": "work", "remark": "x",
	}
	rec := doJSON(t, srv, http.MethodPost, "/record/create", interval, map[string]string{"admin_token": testToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeRecords(t, rec)
	assert.Equal(t, timeslot.Expand("2024-01-01", 18, 21, "work", "x"), created)
	assert.Zero(t, gate.Strikes("192.0.2.1"))

	rec = doJSON(t, srv, http.MethodGet, "/record/list", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeRecords(t, rec)
	require.Len(t, listed, 3)
	assert.Equal(t, 21, listed[0].TimeIndexEnd)
	assert.Contains(t, rec.Body.String(), `"timeIndexBegin":20`)
}

func TestCreateReversedRangeIsEmpty(t *testing.T) {
	srv, _, _ := newTestServer(t)
	interval := timeslot.Record{Date: "2024-01-01", TimeIndexBegin: 7, TimeIndexEnd: 3, Type: "x"}
	rec := doJSON(t, srv, http.MethodPost, "/record/create", interval, map[string]string{"admin_token": testToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateRejectsBadBody(t *testing.T) {
	srv, _, gate := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/record/create", bytes.NewBufferString("{not json"))
	req.RemoteAddr = "192.0.2.1:40000"
	req.Header.Set("admin_token", testToken)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, gate.Strikes("192.0.2.1"))

	rec = doJSON(t, srv, http.MethodPost, "/record/create", timeslot.Record{Date: "yesterday", TimeIndexEnd: 1}, map[string]string{"admin_token": testToken})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAuthFailuresAndBan(t *testing.T) {
	srv, store, gate := newTestServer(t)
	interval := timeslot.Record{Date: "2024-01-01", TimeIndexBegin: 0, TimeIndexEnd: 1}
	forwarded := map[string]string{"X-Forwarded-For": "203.0.113.9"}

	rec := doJSON(t, srv, http.MethodPost, "/record/create", interval, forwarded)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "admin_token missing", decodeMessage(t, rec))

	for i := 0; i < 2; i++ {
		rec = doJSON(t, srv, http.MethodPost, "/record/create", interval, map[string]string{"X-Forwarded-For": "203.0.113.9", "admin_token": "wrong"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "admin_token invalid", decodeMessage(t, rec))
	}
	assert.Equal(t, 3, gate.Strikes("203.0.113.9"))

	rec = doJSON(t, srv, http.MethodPost, "/record/create", interval, map[string]string{"X-Forwarded-For": "203.0.113.9", "admin_token": testToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "This ip has been banned: 203.0.113.9", decodeMessage(t, rec))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	// the peer address behind the proxy is a different client
	rec = doJSON(t, srv, http.MethodPost, "/record/create", interval, map[string]string{"admin_token": testToken})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearch(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertAll(ctx, timeslot.Expand("2024-01-01", 10, 12, "a", "")))
	require.NoError(t, store.UpsertAll(ctx, timeslot.Expand("2024-01-03", 10, 12, "b", "")))

	rec := doJSON(t, srv, http.MethodPost, "/record/search", searchRequest{DateBegin: "2024-01-01", DateEnd: "2024-01-02"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decodeRecords(t, rec)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-01-01", records[0].Date)
	assert.Equal(t, 12, records[0].TimeIndexEnd)
	assert.Equal(t, 11, records[1].TimeIndexEnd)

	req := httptest.NewRequest(http.MethodPost, "/record/search", bytes.NewBufferString("[]"))
	bad := httptest.NewRecorder()
	srv.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestStorageFailuresReturnMessage(t *testing.T) {
	gate := admin.NewGate(testToken)
	srv, err := NewServer(failingStore{err: &sqlite.StorageError{Op: "list records", Err: errors.New("disk I/O error")}}, gate)
	require.NoError(t, err)

	rec := doJSON(t, srv, http.MethodGet, "/record/list", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "storage list records: disk I/O error", decodeMessage(t, rec))

	rec = doJSON(t, srv, http.MethodPost, "/record/search", searchRequest{DateBegin: "a", DateEnd: "b"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	interval := timeslot.Record{Date: "2024-01-01", TimeIndexBegin: 0, TimeIndexEnd: 1}
	rec = doJSON(t, srv, http.MethodPost, "/record/create", interval, map[string]string{"admin_token": testToken})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, gate.Strikes("192.0.2.1"))
}

func TestCORSPreflight(t *testing.T) {
	srv, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/record/create", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "admin_token, content-type")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(nil, admin.NewGate(""))
	require.Error(t, err)
	_, err = NewServer(failingStore{}, nil)
	require.Error(t, err)
}
