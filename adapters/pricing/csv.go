package pricing

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"azure-bom-cost/core/normalize"
	"azure-bom-cost/internal/errors"
)

// ReadCSV reads a headed CSV into rows. Blank cells are left out of the
// row so that they read as absent.
func ReadCSV(r io.Reader) ([]normalize.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Parsing("failed to read CSV header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []normalize.Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Parsing("failed to read CSV row", err)
		}
		row := make(normalize.Row, len(header))
		for i, v := range rec {
			if i >= len(header) || strings.TrimSpace(v) == "" {
				continue
			}
			row[header[i]] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadCSV reads a CSV file
func LoadCSV(path string) ([]normalize.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeConfig, err, "failed to open %s", path)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		if e, ok := errors.As(err); ok {
			return nil, e.WithContext("path", path)
		}
		return nil, err
	}
	return rows, nil
}

// WriteCSV writes rows under the canonical retail headings and returns
// the number of rows written. Columns outside the canonical set are
// dropped.
func WriteCSV(w io.Writer, rows []normalize.Row) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(normalize.CanonicalHeadings); err != nil {
		return 0, err
	}

	lower := make(map[string]string)
	rec := make([]string, len(normalize.CanonicalHeadings))
	for _, row := range rows {
		for k := range lower {
			delete(lower, k)
		}
		for k, v := range row {
			lower[strings.ToLower(k)] = normalize.Text(v)
		}
		for i, h := range normalize.CanonicalHeadings {
			rec[i] = lower[strings.ToLower(h)]
		}
		if err := cw.Write(rec); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(rows), cw.Error()
}

// DownloadCSV fetches every retail row matching filter and writes a
// snapshot usable as an offline retail source
func (c *RetailClient) DownloadCSV(ctx context.Context, w io.Writer, filter string) (int, error) {
	rows, err := c.Fetch(ctx, filter)
	if err != nil {
		return 0, err
	}
	return WriteCSV(w, rows)
}
