// Package csvrows expands lanes and their alternate pairs into rows of the
// marketplace bulk-upload format, and formats, parses, chunks and verifies
// the resulting CSV text.
package csvrows

import "lane-posting-service/internal/domain"

const (
	// Marketplace limit on data rows per uploaded file.
	MaxRowsPerFile = 499
	// Postings per lane when quota filling is on: 1 base + 5 alternates.
	DefaultMinimumPostings = 6
)

// Constant column values; both rate columns stay blank.
const (
	yes = "yes"
	no  = "no"
)

// RowsPerPosting is the number of rows each posting expands to.
func RowsPerPosting() int { return len(domain.ContactMethods) }

// MinimumRowsPerLane is the row floor for a lane generated with quota filling.
func MinimumRowsPerLane(minimumPostings int) int {
	if minimumPostings <= 0 {
		minimumPostings = DefaultMinimumPostings
	}
	return minimumPostings * RowsPerPosting()
}

func blankRow() domain.Row {
	row := make(domain.Row, domain.HeaderCount)
	for _, h := range domain.Headers {
		row[h] = ""
	}
	return row
}
