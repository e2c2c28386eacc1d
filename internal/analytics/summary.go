package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

// Stats is the descriptive summary of one metric within one group.
// Std is the sample standard deviation; it is NaN for fewer than two values.
type Stats struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// SummaryRow holds the statistics of one country, aligned with Summary.Metrics.
type SummaryRow struct {
	Country string
	Values  []Stats
}

// Summary is a table keyed by country with mean/std/min/max per metric.
type Summary struct {
	Metrics []solar.Metric
	Rows    []SummaryRow
}

// Empty reports whether no requested metric was present.
func (s *Summary) Empty() bool {
	return s == nil || len(s.Metrics) == 0 || len(s.Rows) == 0
}

// Get returns the statistics of one country and metric.
func (s *Summary) Get(country string, m solar.Metric) (Stats, bool) {
	if s.Empty() {
		return Stats{}, false
	}
	col := -1
	for i, sm := range s.Metrics {
		if sm == m {
			col = i
			break
		}
	}
	if col < 0 {
		return Stats{}, false
	}
	for _, row := range s.Rows {
		if row.Country == country {
			return row.Values[col], true
		}
	}
	return Stats{}, false
}

// SummaryStats groups rows by Country and summarizes each requested metric.
// Metrics that are not numeric columns of t are skipped. Countries are sorted
// ascending and all values are rounded with Round.
func SummaryStats(t *table.Table, metrics []solar.Metric) *Summary {
	present := presentMetrics(t, metrics)
	countries, ok := t.Strings(solar.ColumnCountry)
	if len(present) == 0 || !ok || t.Empty() {
		return &Summary{}
	}

	groups := make(map[string][]int)
	for i, c := range countries {
		groups[c] = append(groups[c], i)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	summary := &Summary{Metrics: present, Rows: make([]SummaryRow, 0, len(keys))}
	for _, country := range keys {
		rows := groups[country]
		row := SummaryRow{Country: country, Values: make([]Stats, len(present))}
		for j, m := range present {
			col, _ := t.Floats(string(m))
			row.Values[j] = describe(gather(col, rows))
		}
		summary.Rows = append(summary.Rows, row)
	}
	return summary
}

// gather picks the non-missing values at rows.
func gather(col []float64, rows []int) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := col[r]; !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func describe(xs []float64) Stats {
	nan := math.NaN()
	switch len(xs) {
	case 0:
		return Stats{Mean: nan, Std: nan, Min: nan, Max: nan}
	case 1:
		return Stats{Mean: Round(xs[0]), Std: nan, Min: Round(xs[0]), Max: Round(xs[0])}
	}
	return Stats{
		Mean: Round(stat.Mean(xs, nil)),
		Std:  Round(stat.StdDev(xs, nil)),
		Min:  Round(floats.Min(xs)),
		Max:  Round(floats.Max(xs)),
	}
}
