// File path: internal/api/record_handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nicodishanthj/timebank/internal/admin"
	"github.com/nicodishanthj/timebank/internal/common"
	"github.com/nicodishanthj/timebank/internal/common/telemetry"
	"github.com/nicodishanthj/timebank/internal/timeslot"
)

type searchRequest struct {
	DateBegin string `json:"dateBegin"`
	DateEnd   string `json:"dateEnd"`
}

func (s *Server) handleRecordList(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRecordSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode search form: %w", err))
		return
	}
	records, err := s.store.SearchByDateRange(r.Context(), req.DateBegin, req.DateEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	common.Logger().Debug("api: search served", "begin", req.DateBegin, "end", req.DateEnd, "records", len(records))
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRecordCreate(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx, end := telemetry.StartSpan(r.Context(), "api.record_create")
	client, err := s.gate.AuthorizeRequest(r)
	if err != nil {
		end("client", client, "status", "rejected")
		status := http.StatusBadRequest
		var gateErr *admin.Error
		if errors.As(err, &gateErr) {
			status = gateErr.StatusCode()
		}
		writeError(w, status, err)
		return
	}

	var interval timeslot.Record
	if err := json.NewDecoder(r.Body).Decode(&interval); err != nil {
		end("client", client, "status", "bad_body")
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode record: %w", err))
		return
	}
	if err := interval.Validate(); err != nil {
		end("client", client, "status", "invalid")
		writeError(w, http.StatusBadRequest, err)
		return
	}

	records := interval.Expand()
	if err := s.store.UpsertAll(ctx, records); err != nil {
		end("client", client, "status", "storage_error")
		writeError(w, http.StatusBadRequest, err)
		return
	}
	end("client", client, "records", len(records))
	logger.Info("api: records created", "client", client, "date", interval.Date, "records", len(records))
	writeJSON(w, http.StatusOK, records)
}
