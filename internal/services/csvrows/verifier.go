package csvrows

import (
	"errors"
	"fmt"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/services/validation"
	"slices"
)

// Verify re-parses generated CSV text and checks header order and count,
// every row against the row schema, the email/phone row pairing of each
// posting, and that at least minRows data rows are present. Defects are
// returned together as a *domain.CsvVerificationError.
func Verify(text string, minRows int) ([]domain.Row, error) {
	header, rows, err := ParseCSV(text)
	if err != nil {
		return nil, &domain.CsvVerificationError{Issues: []string{err.Error()}}
	}

	var issues []string
	if len(header) != domain.HeaderCount {
		issues = append(issues, fmt.Sprintf("header has %d fields, want %d", len(header), domain.HeaderCount))
	} else if !slices.Equal(header, domain.Headers) {
		for i, h := range header {
			if h != domain.Headers[i] {
				issues = append(issues, fmt.Sprintf("header field %d is %q, want %q", i+1, h, domain.Headers[i]))
			}
		}
	}

	for i, row := range rows {
		err := validation.ValidateRow("", row)
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			for _, d := range verr.Details {
				issues = append(issues, fmt.Sprintf("row %d: %s", i+1, d))
			}
		}
	}

	issues = append(issues, checkPostingPairs(rows)...)

	if len(rows) < minRows {
		issues = append(issues, fmt.Sprintf("found %d data rows, want at least %d", len(rows), minRows))
	}

	if len(issues) > 0 {
		return rows, &domain.CsvVerificationError{Issues: issues}
	}
	return rows, nil
}

// checkPostingPairs confirms rows come in consecutive groups, one per
// contact method in order, sharing the same origin and destination.
func checkPostingPairs(rows []domain.Row) []string {
	per := RowsPerPosting()
	if len(rows)%per != 0 {
		return []string{fmt.Sprintf("%d data rows is not a multiple of %d contact methods", len(rows), per)}
	}

	var issues []string
	for start := 0; start < len(rows); start += per {
		first := rows[start]
		for k, method := range domain.ContactMethods {
			r := rows[start+k]
			if r[domain.HeaderContactMethod] != method {
				issues = append(issues, fmt.Sprintf("row %d: contact method %q, want %q", start+k+1, r[domain.HeaderContactMethod], method))
			}
			if k > 0 && !samePosting(first, r) {
				issues = append(issues, fmt.Sprintf("row %d: lane cities differ from row %d", start+k+1, start+1))
			}
		}
	}
	return issues
}

func samePosting(a, b domain.Row) bool {
	for _, h := range []string{
		domain.HeaderOriginCity, domain.HeaderOriginState,
		domain.HeaderDestinationCity, domain.HeaderDestinationState,
		domain.HeaderReferenceID,
	} {
		if a[h] != b[h] {
			return false
		}
	}
	return true
}
