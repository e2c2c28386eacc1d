// Package chart renders the dashboard figures with gonum/plot: a per-country
// box plot of a metric and a per-country time series.
package chart

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/analytics"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

// Default image size.
const (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

func axisLabel(metric solar.Metric) string {
	return fmt.Sprintf("%s (%s)", metric, solar.Unit)
}

// BoxPlot draws the distribution of metric for every country in t.
// Countries without values are left out; an empty table yields an empty plot.
func BoxPlot(t *table.Table, metric solar.Metric) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Distribution by Country", metric)
	p.X.Label.Text = solar.ColumnCountry
	p.Y.Label.Text = axisLabel(metric)

	dists := analytics.Distributions(t, metric)
	names := make([]string, 0, len(dists))
	for i, d := range dists {
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(d.Values))
		if err != nil {
			return nil, fmt.Errorf("box plot for %s: %w", d.Country, err)
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
		names = append(names, d.Country)
	}
	if len(names) > 0 {
		p.NominalX(names...)
	}
	return p, nil
}

// TimeSeries draws one line per country over the timestamp column. A table
// without timestamps yields an empty plot.
func TimeSeries(t *table.Table, metric solar.Metric) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Over Time", metric)
	p.X.Label.Text = "Time"
	p.Y.Label.Text = axisLabel(metric)

	series := analytics.TimeSeries(t, metric)
	if len(series) == 0 {
		return p, nil
	}
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}

	for i, s := range series {
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X = float64(pt.Time.Unix())
			xys[j].Y = pt.Value
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("time series for %s: %w", s.Country, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.Country, line)
	}
	p.Legend.Top = true
	return p, nil
}

// WritePNG encodes p as a PNG image of the default size.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
