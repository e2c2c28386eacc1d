// Package analytics computes the derived tables behind the dashboard:
// per-country summary statistics, top regions by mean metric value, and the
// correlation matrix across irradiance metrics.
//
// Every function is a pure query over a loaded table. Lack of data is never
// an error: results report it through Empty().
package analytics

import (
	"math"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

// Round rounds to 2 decimal places, half away from zero. NaN passes through.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// presentMetrics keeps the metrics that exist as numeric columns, in order,
// without duplicates.
func presentMetrics(t *table.Table, metrics []solar.Metric) []solar.Metric {
	seen := make(map[solar.Metric]bool, len(metrics))
	var out []solar.Metric
	for _, m := range metrics {
		if seen[m] {
			continue
		}
		if _, ok := t.Floats(string(m)); ok {
			out = append(out, m)
			seen[m] = true
		}
	}
	return out
}
