package analytics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

// Matrix is a symmetric Pearson correlation matrix over Metrics.
type Matrix struct {
	Metrics []solar.Metric
	values  *mat.SymDense
}

// Empty reports whether fewer than two metrics were available.
func (m *Matrix) Empty() bool {
	return m == nil || m.values == nil
}

// Size returns the number of metrics on each axis, 0 when empty.
func (m *Matrix) Size() int {
	if m.Empty() {
		return 0
	}
	return len(m.Metrics)
}

// At returns the coefficient at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.values.At(i, j)
}

// Lookup returns the coefficient of two metrics.
func (m *Matrix) Lookup(a, b solar.Metric) (float64, bool) {
	if m.Empty() {
		return 0, false
	}
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.values.At(i, j), true
}

func (m *Matrix) index(metric solar.Metric) int {
	for i, x := range m.Metrics {
		if x == metric {
			return i
		}
	}
	return -1
}

// Correlate computes pairwise Pearson correlation between the metrics present
// as numeric columns of t. Each pair uses only rows where both values exist.
// The diagonal is 1; pairs with fewer than two complete rows or no variance
// are NaN. The result is empty when fewer than two metrics are present.
func Correlate(t *table.Table, metrics []solar.Metric) *Matrix {
	present := presentMetrics(t, metrics)
	if len(present) < 2 {
		return &Matrix{}
	}

	cols := make([][]float64, len(present))
	for i, m := range present {
		cols[i], _ = t.Floats(string(m))
	}

	n := len(present)
	values := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		values.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			values.SetSym(i, j, Round(pearson(cols[i], cols[j])))
		}
	}
	return &Matrix{Metrics: present, values: values}
}

// pearson correlates the complete pairs of x and y.
func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return math.Max(-1, math.Min(1, r))
}
