package validation

import (
	"errors"
	"lane-posting-service/internal/domain"
)

type BatchOptions struct {
	// Stop at the first invalid lane. Remaining lanes are left unchecked.
	FailOnFirstError bool
}

// Outcome of validating one lane in a batch.
type LaneSummary struct {
	LaneID string              `json:"lane_id"`
	Valid  bool                `json:"valid"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

// Aggregate result of validating a batch of lanes.
type BatchReport struct {
	Valid        bool                `json:"valid"`
	ValidCount   int                 `json:"valid_count"`
	InvalidCount int                 `json:"invalid_count"`
	Checked      int                 `json:"checked"`
	Lanes        []LaneSummary       `json:"lanes"`
	Errors       []domain.FieldError `json:"errors,omitempty"`
}

// Invalid returns the ids of lanes that failed validation.
func (r BatchReport) Invalid() map[string]bool {
	out := make(map[string]bool, r.InvalidCount)
	for _, l := range r.Lanes {
		if !l.Valid {
			out[l.LaneID] = true
		}
	}
	return out
}

// ValidateBatch validates every lane and aggregates the outcome. A lane id
// that repeats an earlier one in the batch is itself a violation.
func ValidateBatch(lanes []domain.Lane, opts BatchOptions) BatchReport {
	report := BatchReport{Lanes: make([]LaneSummary, 0, len(lanes))}
	seen := make(map[string]bool, len(lanes))

	for _, l := range lanes {
		var details []domain.FieldError
		if err := ValidateLane(l); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				details = verr.Details
			}
		}
		if l.ID != "" {
			if seen[l.ID] {
				details = append(details, domain.FieldError{
					LaneID:   l.ID,
					Field:    "id",
					Rule:     "unique",
					Expected: "an id not used by another lane in the batch",
					Actual:   l.ID,
				})
			}
			seen[l.ID] = true
		}

		summary := LaneSummary{LaneID: l.ID, Valid: len(details) == 0, Errors: details}
		report.Lanes = append(report.Lanes, summary)
		report.Checked++
		if summary.Valid {
			report.ValidCount++
			continue
		}
		report.InvalidCount++
		report.Errors = append(report.Errors, details...)
		if opts.FailOnFirstError {
			break
		}
	}

	report.Valid = len(lanes) > 0 && report.InvalidCount == 0 && report.Checked == len(lanes)
	return report
}
