// File path: internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/nicodishanthj/timebank/internal/admin"
	"github.com/nicodishanthj/timebank/internal/common"
	"github.com/nicodishanthj/timebank/internal/common/telemetry"
	"github.com/nicodishanthj/timebank/internal/timeslot"
)

// RecordStore is the storage surface used by the handlers.
type RecordStore interface {
	UpsertAll(ctx context.Context, records []timeslot.Record) error
	List(ctx context.Context) ([]timeslot.Record, error)
	SearchByDateRange(ctx context.Context, begin, end string) ([]timeslot.Record, error)
}

// Server exposes the record endpoints over HTTP.
type Server struct {
	router chi.Router
	store  RecordStore
	gate   *admin.Gate
}

// NewServer builds the router. The gate guards /record/create.
func NewServer(store RecordStore, gate *admin.Gate) (*Server, error) {
	if store == nil {
		return nil, errors.New("api: record store required")
	}
	if gate == nil {
		return nil, errors.New("api: admin gate required")
	}
	srv := &Server{
		router: chi.NewRouter(),
		store:  store,
		gate:   gate,
	}
	srv.routes()
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			dur := time.Since(start)
			telemetry.RecordRequest(route, dur)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", dur, "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router.Get("/record/list", s.handleRecordList)
	s.router.Post("/record/search", s.handleRecordSearch)
	s.router.Post("/record/create", s.handleRecordCreate)
	s.router.Get("/debug/vars", expvar.Handler().ServeHTTP)
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, messageResponse{Message: err.Error()})
}
