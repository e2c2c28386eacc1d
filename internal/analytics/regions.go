package analytics

import (
	"math"
	"sort"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

// TopRegionLimit caps the rows returned by TopRegions.
const TopRegionLimit = 10

// RegionMean is the mean metric value of one (Country, Region) group.
type RegionMean struct {
	Country string
	Region  string
	Value   float64
}

// TopRegions ranks regions by mean metric value.
type TopRegions struct {
	Metric solar.Metric
	Rows   []RegionMean
}

// Empty reports whether there is nothing to rank.
func (r *TopRegions) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

type regionKey struct {
	country, region string
}

// TopRegionsFor groups rows by (Country, Region), averages metric and returns
// the ten highest means in descending order. Equal means keep the order in
// which their group was first encountered; groups without any value sort last.
// Rows without a region are not grouped. The result is empty when t has no
// Region column, no row with a region, or no such metric.
func TopRegionsFor(t *table.Table, metric solar.Metric) *TopRegions {
	out := &TopRegions{Metric: metric}

	regions, ok := t.Strings(solar.ColumnRegion)
	if !ok {
		return out
	}
	values, ok := t.Floats(string(metric))
	if !ok {
		return out
	}
	countries, ok := t.Strings(solar.ColumnCountry)
	if !ok {
		countries = make([]string, t.Len())
	}

	type acc struct {
		sum   float64
		count int
	}
	var order []regionKey
	groups := make(map[regionKey]*acc)
	for i := range regions {
		if regions[i] == "" {
			continue
		}
		k := regionKey{countries[i], regions[i]}
		a, seen := groups[k]
		if !seen {
			a = &acc{}
			groups[k] = a
			order = append(order, k)
		}
		if v := values[i]; !math.IsNaN(v) {
			a.sum += v
			a.count++
		}
	}

	rows := make([]RegionMean, 0, len(order))
	for _, k := range order {
		a := groups[k]
		mean := math.NaN()
		if a.count > 0 {
			mean = a.sum / float64(a.count)
		}
		rows = append(rows, RegionMean{Country: k.country, Region: k.region, Value: mean})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Value, rows[j].Value
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a > b
	})

	if len(rows) > TopRegionLimit {
		rows = rows[:TopRegionLimit]
	}
	for i := range rows {
		rows[i].Value = Round(rows[i].Value)
	}
	out.Rows = rows
	return out
}
