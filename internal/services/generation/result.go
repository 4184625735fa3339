package generation

import (
	"errors"
	"lane-posting-service/internal/domain"
	"time"
)

// ErrorDetail is one entry of a structured failure payload.
type ErrorDetail struct {
	Kind     string `json:"kind"`
	LaneID   string `json:"lane_id,omitempty"`
	Field    string `json:"field,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Message  string `json:"message"`
}

// Outcome of one lane task.
type LaneResult struct {
	LaneID               string        `json:"lane_id"`
	Success              bool          `json:"success"`
	ReferenceID          string        `json:"reference_id,omitempty"`
	Pairs                int           `json:"pairs"`
	Postings             int           `json:"postings"`
	SyntheticPostings    int           `json:"synthetic_postings"`
	Rows                 int           `json:"rows"`
	UsedRelaxedDiversity bool          `json:"used_relaxed_diversity,omitempty"`
	ShortfallReason      string        `json:"shortfall_reason,omitempty"`
	Degraded             bool          `json:"degraded,omitempty"`
	Duration             time.Duration `json:"duration_ns"`
	Errors               []ErrorDetail `json:"errors,omitempty"`

	rows []domain.Row
}

type Statistics struct {
	TotalLanes        int           `json:"total_lanes"`
	SuccessfulLanes   int           `json:"successful_lanes"`
	FailedLanes       int           `json:"failed_lanes"`
	TotalPostings     int           `json:"total_postings"`
	SyntheticPostings int           `json:"synthetic_postings"`
	TotalRows         int           `json:"total_rows"`
	Chunks            int           `json:"chunks"`
	Duration          time.Duration `json:"duration_ns"`
}

// Result of a Generate call. Success is false whenever Generate also
// returns an error; CSV and Chunks are then empty.
type Result struct {
	Success    bool          `json:"success"`
	BatchID    string        `json:"batch_id"`
	State      State         `json:"state"`
	CSV        string        `json:"csv,omitempty"`
	Chunks     []string      `json:"chunks,omitempty"`
	Statistics Statistics    `json:"statistics"`
	Lanes      []LaneResult  `json:"lanes"`
	Errors     []ErrorDetail `json:"errors,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// Describe flattens err into structured details, one per violation for
// validation errors.
func Describe(laneID string, err error) []ErrorDetail {
	if err == nil {
		return nil
	}

	var (
		verr   *domain.ValidationError
		cityE  *domain.CityNotFoundError
		weight *domain.WeightPolicyError
		csvE   *domain.CsvVerificationError
		txE    *domain.TransactionError
	)
	switch {
	case errors.As(err, &verr):
		out := make([]ErrorDetail, 0, len(verr.Details))
		for _, d := range verr.Details {
			id := d.LaneID
			if id == "" {
				id = laneID
			}
			out = append(out, ErrorDetail{
				Kind:     domain.KindValidation,
				LaneID:   id,
				Field:    d.Field,
				Rule:     d.Rule,
				Expected: d.Expected,
				Actual:   d.Actual,
				Message:  d.String(),
			})
		}
		if len(out) == 0 {
			out = append(out, ErrorDetail{Kind: domain.KindValidation, LaneID: laneID, Message: err.Error()})
		}
		return out
	case errors.As(err, &cityE):
		return []ErrorDetail{{
			Kind:    domain.KindCityNotFound,
			LaneID:  laneID,
			Field:   cityE.Role,
			Actual:  cityE.City + ", " + cityE.State,
			Message: err.Error(),
		}}
	case errors.As(err, &weight):
		return []ErrorDetail{{
			Kind:     domain.KindWeightPolicy,
			LaneID:   laneID,
			Field:    "weight",
			Expected: "fixed > 0 or 0 < min <= max",
			Message:  err.Error(),
		}}
	case errors.As(err, &csvE):
		out := make([]ErrorDetail, 0, len(csvE.Issues))
		for _, issue := range csvE.Issues {
			out = append(out, ErrorDetail{Kind: domain.KindCsvVerification, Message: issue})
		}
		return out
	case errors.As(err, &txE):
		return []ErrorDetail{{
			Kind:    domain.KindTransaction,
			LaneID:  laneID,
			Field:   txE.Op,
			Message: err.Error(),
		}}
	}
	return []ErrorDetail{{Kind: domain.KindInternal, LaneID: laneID, Message: err.Error()}}
}
