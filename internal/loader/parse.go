package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

// timestampLayouts are tried in order for the timestamp column.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// stringColumns are never inferred as numeric.
var stringColumns = map[string]bool{
	solar.ColumnCountry: true,
	solar.ColumnRegion:  true,
}

// parseTimestamp parses one timestamp cell in UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// parseCSV reads a whole delimited station file into a typed table. Any
// malformed record fails the parse; rows are never dropped.
func parseCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return table.New(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	cells := make([][]string, len(header))
	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rows+1, err)
		}
		for i, v := range record {
			cells[i] = append(cells[i], strings.TrimSpace(v))
		}
		rows++
	}

	tbl := table.New(rows)
	for i, name := range header {
		if err := addColumn(tbl, name, cells[i]); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func addColumn(tbl *table.Table, name string, values []string) error {
	if name == solar.ColumnTimestamp {
		times := make([]time.Time, len(values))
		for i, v := range values {
			t, err := parseTimestamp(v)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			times[i] = t
		}
		return tbl.AddTimes(name, times)
	}

	if !stringColumns[name] {
		if floats, ok := parseFloats(values); ok {
			return tbl.AddFloats(name, floats)
		}
	}
	return tbl.AddStrings(name, values)
}

// parseFloats converts a column when every non-empty cell is numeric and at
// least one cell is present. Empty cells become NaN.
func parseFloats(values []string) ([]float64, bool) {
	out := make([]float64, len(values))
	present := 0
	for i, v := range values {
		if v == "" || strings.EqualFold(v, "nan") {
			out[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
		present++
	}
	return out, present > 0
}
