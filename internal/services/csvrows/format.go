package csvrows

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"lane-posting-service/internal/domain"
	"strings"
)

// FormatCSV renders the header line and rows as CRLF-joined CSV text.
// Fields containing a comma, quote or line break are double-quoted.
// There is no trailing line break.
func FormatCSV(rows []domain.Row) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.UseCRLF = true

	if err := w.Write(domain.Headers); err != nil {
		return "", fmt.Errorf("format csv: header: %w", err)
	}

	record := make([]string, domain.HeaderCount)
	for i, row := range rows {
		for j, h := range domain.Headers {
			record[j] = row[h]
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("format csv: row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("format csv: %w", err)
	}
	return strings.TrimSuffix(b.String(), "\r\n"), nil
}

// ParseCSV is the inverse of FormatCSV. It returns the header as found and
// the data rows keyed by that header. Every record must have as many
// fields as the header.
func ParseCSV(text string) ([]string, []domain.Row, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("parse csv: empty input")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: header: %w", err)
	}

	var rows []domain.Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return header, rows, fmt.Errorf("parse csv: %w", err)
		}
		row := make(domain.Row, len(header))
		for i, h := range header {
			row[h] = record[i]
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// Chunk splits rows into ordered groups of at most size rows
// (MaxRowsPerFile if size is out of range).
func Chunk(rows []domain.Row, size int) [][]domain.Row {
	if size <= 0 || size > MaxRowsPerFile {
		size = MaxRowsPerFile
	}
	chunks := make([][]domain.Row, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

// FormatChunks chunks rows and formats each chunk as a standalone CSV file
// with its own header line.
func FormatChunks(rows []domain.Row, size int) ([]string, error) {
	chunks := Chunk(rows, size)
	out := make([]string, 0, len(chunks))
	for i, c := range chunks {
		text, err := FormatCSV(c)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i+1, err)
		}
		out = append(out, text)
	}
	return out, nil
}
