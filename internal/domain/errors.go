package domain

import (
	"fmt"
	"strings"
)

// Error kinds reported in structured failure payloads.
const (
	KindValidation      = "ValidationError"
	KindCityNotFound    = "CityNotFoundError"
	KindWeightPolicy    = "WeightPolicyError"
	KindCsvVerification = "CsvVerificationError"
	KindTransaction     = "TransactionError"
	KindInternal        = "InternalError"
)

// FieldError is a single rule violation.
type FieldError struct {
	LaneID   string `json:"lane_id,omitempty"`
	Field    string `json:"field"`
	Rule     string `json:"rule"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

func (f FieldError) String() string {
	var b strings.Builder
	b.WriteString(f.Field)
	b.WriteString(": ")
	b.WriteString(f.Rule)
	if f.Expected != "" {
		fmt.Fprintf(&b, " (expected %s", f.Expected)
		if f.Actual != "" {
			fmt.Fprintf(&b, ", got %q", f.Actual)
		}
		b.WriteString(")")
	}
	return b.String()
}

// ValidationError collects every schema or business-rule violation found
// on one subject. It is recoverable: the lane fails, the batch continues.
type ValidationError struct {
	Message string
	Details []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.String())
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

// CityNotFoundError reports missing reference data for a lane endpoint.
type CityNotFoundError struct {
	City  string
	State string
	Role  string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("%s city not found: %s, %s", e.Role, e.City, e.State)
}

// WeightPolicyError reports a malformed weight configuration.
type WeightPolicyError struct {
	LaneID string
	Reason string
}

func (e *WeightPolicyError) Error() string {
	return fmt.Sprintf("weight policy for lane %s: %s", e.LaneID, e.Reason)
}

// CsvVerificationError reports structural or business defects in assembled output.
type CsvVerificationError struct {
	Issues []string
}

func (e *CsvVerificationError) Error() string {
	const maxShown = 5
	shown := e.Issues
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	msg := fmt.Sprintf("csv verification failed with %d issue(s): %s", len(e.Issues), strings.Join(shown, "; "))
	if len(e.Issues) > maxShown {
		msg += "; ..."
	}
	return msg
}

// TransactionError wraps the failure that aborted a generation transaction.
type TransactionError struct {
	TxID string
	Op   string
	Err  error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s: operation %q: %v", e.TxID, e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }
