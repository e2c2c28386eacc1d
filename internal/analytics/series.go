package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

// Distribution is the metric values of one country, missing values removed.
type Distribution struct {
	Country string
	Values  []float64
}

// Distributions splits a metric by Country for box plotting. Countries are
// returned in first-encounter order; countries with no values are omitted.
func Distributions(t *table.Table, metric solar.Metric) []Distribution {
	values, ok := t.Floats(string(metric))
	if !ok {
		return nil
	}
	countries, ok := t.Strings(solar.ColumnCountry)
	if !ok {
		return nil
	}

	index := make(map[string]int)
	var out []Distribution
	for i, c := range countries {
		if math.IsNaN(values[i]) {
			continue
		}
		j, seen := index[c]
		if !seen {
			j = len(out)
			index[c] = j
			out = append(out, Distribution{Country: c})
		}
		out[j].Values = append(out[j].Values, values[i])
	}
	return out
}

// Point is one timestamped observation.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is the time-ordered observations of one country.
type Series struct {
	Country string
	Points  []Point
}

// TimeSeries splits a metric into one time-sorted series per Country. It
// returns nil when t has no timestamp column or no such metric.
func TimeSeries(t *table.Table, metric solar.Metric) []Series {
	times, ok := t.Times(solar.ColumnTimestamp)
	if !ok {
		return nil
	}
	values, ok := t.Floats(string(metric))
	if !ok {
		return nil
	}
	countries, ok := t.Strings(solar.ColumnCountry)
	if !ok {
		return nil
	}

	index := make(map[string]int)
	var out []Series
	for i, c := range countries {
		if math.IsNaN(values[i]) || times[i].IsZero() {
			continue
		}
		j, seen := index[c]
		if !seen {
			j = len(out)
			index[c] = j
			out = append(out, Series{Country: c})
		}
		out[j].Points = append(out[j].Points, Point{Time: times[i], Value: values[i]})
	}
	for _, s := range out {
		sort.SliceStable(s.Points, func(a, b int) bool {
			return s.Points[a].Time.Before(s.Points[b].Time)
		})
	}
	return out
}
