// Package export writes a measurement table to Parquet or gzip-compressed CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"

	"github.com/klauspost/pgzip"
	"github.com/parquet-go/parquet-go"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

// Measurement is the Parquet row layout: provenance, time and the irradiance
// metric set. Missing values are stored as NaN; a missing timestamp as 0.
type Measurement struct {
	Country     string  `parquet:"country,dict"`
	Region      string  `parquet:"region,dict"`
	TimestampMs int64   `parquet:"timestamp_ms"`
	GHI         float64 `parquet:"ghi"`
	DNI         float64 `parquet:"dni"`
	DHI         float64 `parquet:"dhi"`
}

// Rows converts a table into Measurement rows.
func Rows(t *table.Table) []Measurement {
	n := t.Len()
	rows := make([]Measurement, n)

	countries, _ := t.Strings(solar.ColumnCountry)
	regions, _ := t.Strings(solar.ColumnRegion)
	times, _ := t.Times(solar.ColumnTimestamp)
	ghi := floatsOrNaN(t, solar.GHI)
	dni := floatsOrNaN(t, solar.DNI)
	dhi := floatsOrNaN(t, solar.DHI)

	for i := 0; i < n; i++ {
		r := &rows[i]
		if countries != nil {
			r.Country = countries[i]
		}
		if regions != nil {
			r.Region = regions[i]
		}
		if times != nil && !times[i].IsZero() {
			r.TimestampMs = times[i].UnixMilli()
		}
		r.GHI, r.DNI, r.DHI = ghi[i], dni[i], dhi[i]
	}
	return rows
}

func floatsOrNaN(t *table.Table, m solar.Metric) []float64 {
	if v, ok := t.Floats(string(m)); ok {
		return v
	}
	v := make([]float64, t.Len())
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}

// WriteParquet writes the irradiance rows of t to w.
func WriteParquet(w io.Writer, t *table.Table) (int, error) {
	writer := parquet.NewGenericWriter[Measurement](w)
	n, err := writer.Write(Rows(t))
	if err != nil {
		writer.Close()
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return n, fmt.Errorf("close parquet writer: %w", err)
	}
	return n, nil
}

// ReadParquet reads back every Measurement of a Parquet file.
func ReadParquet(path string) ([]Measurement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parquet open: %w", err)
	}

	reader := parquet.NewGenericReader[Measurement](pf)
	defer reader.Close()

	out := make([]Measurement, 0, pf.NumRows())
	buf := make([]Measurement, 1000)
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}

// WriteCSVGzip writes every column of t as gzip-compressed CSV.
func WriteCSVGzip(w io.Writer, t *table.Table) error {
	gz := pgzip.NewWriter(w)
	if err := gz.SetConcurrency(256*1024, runtime.NumCPU()); err != nil {
		return err
	}

	cw := csv.NewWriter(gz)
	columns := t.Columns()
	if err := cw.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for i := 0; i < t.Len(); i++ {
		for j, name := range columns {
			record[j] = t.Cell(name, i)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return gz.Close()
}
