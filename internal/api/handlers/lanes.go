package handlers

import (
	"context"
	"errors"
	"fmt"
	"lane-posting-service/internal/api/dto"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/platform/obs"
	"lane-posting-service/internal/ports"
	"lane-posting-service/internal/services/generation"
	"lane-posting-service/internal/services/validation"
	"net/http"

	"go.uber.org/zap"
)

// LaneGenerator is the slice of the orchestrator the HTTP layer needs.
type LaneGenerator interface {
	ValidateBatch(ctx context.Context, lanes []domain.Lane, failFast bool) validation.BatchReport
	Generate(ctx context.Context, lanes []domain.Lane, opts generation.Options) (*generation.Result, error)
}

// LaneHandler exposes lane validation and posting generation.
type LaneHandler struct {
	Generator LaneGenerator
	// Optional; enables {"pending": true} generate requests.
	Source   ports.LaneSource
	Defaults generation.Options
}

func (h *LaneHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.ValidateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lanes, err := dto.ToDomainLanes(req.Lanes)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report := h.Generator.ValidateBatch(r.Context(), lanes, req.FailFast)

	status := http.StatusOK
	if !report.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, r, status, report)
}

// Generate runs a posting batch. The JSON result is returned unless the
// query has format=csv, in which case a successful batch is sent as
// text/csv.
func (h *LaneHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lanes, err := h.requestedLanes(r.Context(), req)
	if err != nil {
		var badReq badRequestError
		if errors.As(err, &badReq) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		obs.Logger(r.Context()).Error("load pending lanes failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	opts := req.Options.Apply(h.Defaults)
	res, err := h.Generator.Generate(r.Context(), lanes, opts)
	if err != nil {
		status := generateStatus(err)
		if status >= http.StatusInternalServerError {
			obs.Logger(r.Context()).Error("generate batch failed", zap.Error(err))
		}
		if res == nil {
			writeError(w, r, status, err.Error())
			return
		}
		writeJSON(w, r, status, res)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "postings-"+res.BatchID+".csv"))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(res.CSV)); err != nil {
			obs.Logger(r.Context()).Warn("write csv failed", zap.Error(err))
		}
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func (h *LaneHandler) requestedLanes(ctx context.Context, req dto.GenerateRequest) ([]domain.Lane, error) {
	if !req.Pending {
		lanes, err := dto.ToDomainLanes(req.Lanes)
		if err != nil {
			return nil, badRequestError{msg: err.Error()}
		}
		return lanes, nil
	}

	if len(req.Lanes) > 0 {
		return nil, badRequestError{msg: "lanes and pending are mutually exclusive"}
	}
	if h.Source == nil {
		return nil, badRequestError{msg: "pending lanes are not available without a lane store"}
	}
	lanes, err := h.Source.ListLanesByStatus(ctx, domain.LaneStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending lanes: %w", err)
	}
	return lanes, nil
}

func generateStatus(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, generation.ErrEmptyBatch):
		return http.StatusBadRequest
	case errors.As(err, &verr), errors.Is(err, generation.ErrNoSuccessfulLanes):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		// Verification and commit failures.
		return http.StatusInternalServerError
	}
}
