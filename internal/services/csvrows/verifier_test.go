package csvrows

import (
	"errors"
	"lane-posting-service/internal/domain"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtRows(t *testing.T) []domain.Row {
	t.Helper()
	out, err := NewBuilder(0, nil).BuildRows(testLane(), chicago, atlanta, nil, true)
	require.NoError(t, err)
	StampReferenceID(out.Rows, "RR00077")
	return out.Rows
}

func verificationIssues(t *testing.T, err error) []string {
	t.Helper()
	var verr *domain.CsvVerificationError
	require.True(t, errors.As(err, &verr), "expected *domain.CsvVerificationError, got %v", err)
	return verr.Issues
}

func TestVerifyAcceptsBuiltRows(t *testing.T) {
	text, err := FormatCSV(builtRows(t))
	require.NoError(t, err)

	rows, err := Verify(text, 12)
	require.NoError(t, err)
	assert.Len(t, rows, 12)
}

func TestVerifyReportsRowDefects(t *testing.T) {
	rows := builtRows(t)
	rows[0][domain.HeaderWeight] = "heavy"
	rows[3][domain.HeaderDestinationCity] = "Macon"

	text, err := FormatCSV(rows)
	require.NoError(t, err)

	_, err = Verify(text, 14)
	issues := verificationIssues(t, err)
	joined := strings.Join(issues, "\n")
	assert.Contains(t, joined, "row 1: Weight (lbs)*: integer")
	assert.Contains(t, joined, "row 4: lane cities differ from row 3")
	assert.Contains(t, joined, "found 12 data rows, want at least 14")
}

func TestVerifyReportsHeaderDefects(t *testing.T) {
	text, err := FormatCSV(builtRows(t)[:2])
	require.NoError(t, err)

	swapped := strings.Replace(text, "Pickup Earliest*,Pickup Latest", "Pickup Latest,Pickup Earliest*", 1)
	_, err = Verify(swapped, 0)
	issues := verificationIssues(t, err)
	assert.Contains(t, issues, `header field 1 is "Pickup Latest", want "Pickup Earliest*"`)

	_, err = Verify("only,three,fields", 0)
	assert.Contains(t, verificationIssues(t, err), "header has 3 fields, want 24")

	_, err = Verify("", 0)
	verificationIssues(t, err)
}
