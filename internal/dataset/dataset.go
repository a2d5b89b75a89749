package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fs-kitamura/factorplot/internal/stats"
)

// Dataset is a named two-factor observation table. XLabel and
// SeriesLabel name the grouping factors, ValueLabel the measurement.
type Dataset struct {
	Name         string
	XLabel       string
	SeriesLabel  string
	ValueLabel   string
	Observations []stats.Observation
}

// Columns selects which CSV headers feed each role. Header matching is
// case-insensitive with spaces and dashes treated as underscores.
type Columns struct {
	X      string
	Series string
	Value  string
}

// ReadCSV parses a CSV stream into a Dataset using the given column
// selection. Cells are trimmed; the measurement column must parse as a
// float on every row, so a bad value fails here rather than surfacing
// as NaN during aggregation.
func ReadCSV(r io.Reader, name string, cols Columns) (*Dataset, error) {
	if cols.X == "" || cols.Series == "" || cols.Value == "" {
		return nil, fmt.Errorf("x, series, and value columns are all required")
	}

	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	xIdx, seriesIdx, valueIdx := -1, -1, -1
	for i, h := range headers {
		switch normalizeHeader(h) {
		case normalizeHeader(cols.X):
			xIdx = i
		case normalizeHeader(cols.Series):
			seriesIdx = i
		case normalizeHeader(cols.Value):
			valueIdx = i
		}
	}
	if xIdx < 0 {
		return nil, fmt.Errorf("column %q not found in header", cols.X)
	}
	if seriesIdx < 0 {
		return nil, fmt.Errorf("column %q not found in header", cols.Series)
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("column %q not found in header", cols.Value)
	}

	ds := &Dataset{
		Name:        name,
		XLabel:      strings.TrimSpace(headers[xIdx]),
		SeriesLabel: strings.TrimSpace(headers[seriesIdx]),
		ValueLabel:  strings.TrimSpace(headers[valueIdx]),
	}

	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", rowNum, err)
		}

		raw := strings.TrimSpace(row[valueIdx])
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: measurement %q is not numeric", rowNum, raw)
		}

		ds.Observations = append(ds.Observations, stats.Observation{
			X:      strings.TrimSpace(row[xIdx]),
			Series: strings.TrimSpace(row[seriesIdx]),
			Value:  value,
		})
	}

	if len(ds.Observations) == 0 {
		return nil, fmt.Errorf("CSV contains no data rows")
	}

	return ds, nil
}

// Summarize runs the grouped aggregation over the dataset's rows.
func (d *Dataset) Summarize() ([]stats.Group, error) {
	groups, err := stats.Summarize(d.Observations)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", d.Name, err)
	}
	return groups, nil
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
