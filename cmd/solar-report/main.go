// solar-report - one-shot cross-country solar potential report
//
// Prints the metric description, summary statistics, top regions and the
// correlation matrix for a country selection. Charts are written as PNG when
// -charts is set.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/solar-report ./cmd/solar-report

package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/analytics"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/chart"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/common"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/loader"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "YAML config file (overrides environment defaults)")
	dataDir := flag.String("data-dir", "", "Directory holding the station CSV files")
	countries := flag.String("countries", "Benin", "Comma separated country selection")
	metricFlag := flag.String("metric", "GHI", "Metric to analyze (GHI, DNI, DHI)")
	chartDir := flag.String("charts", "", "Write boxplot.png and timeseries.png to this directory")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "solar-report v%s - Solar Potential Report\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Countries: %s\n\n", strings.Join(solar.CountryNames(), ", "))
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := common.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	log := cfg.NewLogger()
	log.SetOutput(os.Stderr)

	metric, ok := solar.ParseMetric(*metricFlag)
	if !ok {
		log.Fatalf("Unknown metric %q", *metricFlag)
	}

	var selection []string
	for _, c := range strings.Split(*countries, ",") {
		if c = strings.TrimSpace(c); c != "" {
			selection = append(selection, c)
		}
	}
	if len(selection) == 0 {
		log.Fatal("Please select at least one country to view the analysis.")
	}

	log.Info("=========================================================")
	log.Infof("Solar Report v%s", Version)
	log.Info("=========================================================")

	ld := loader.New(cfg.DataDir, log)
	batch := ld.LoadAll(selection)
	for _, f := range batch.Failures {
		log.Warn(f.Error())
	}
	if !batch.OK() {
		log.Fatal("No data available for the selected countries.")
	}

	printReport(os.Stdout, batch.Table, metric)

	if *chartDir != "" {
		if err := writeCharts(*chartDir, batch.Table, metric, log); err != nil {
			log.Fatalf("Chart error: %v", err)
		}
	}

	log.Info("=========================================================")
	log.Info(ld.Stats().String())
	log.Info("=========================================================")
}

func printReport(out io.Writer, t *table.Table, metric solar.Metric) {
	fmt.Fprintf(out, "%s\n%s\n\n", metric, solar.Describe(string(metric)))

	fmt.Fprintln(out, "Summary Statistics")
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	summary := analytics.SummaryStats(t, []solar.Metric{metric})
	fmt.Fprintln(w, "Country\tmean\tstd\tmin\tmax")
	for _, row := range summary.Rows {
		st := row.Values[0]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row.Country, format(st.Mean), format(st.Std), format(st.Min), format(st.Max))
	}
	w.Flush()

	fmt.Fprintf(out, "\nTop Regions by %s\n", metric)
	if top := analytics.TopRegionsFor(t, metric); !top.Empty() {
		w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Country\tRegion\t%s\n", metric)
		for _, r := range top.Rows {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Country, r.Region, format(r.Value))
		}
		w.Flush()
	}

	fmt.Fprintln(out, "\nCorrelation Matrix")
	matrix := analytics.Correlate(t, solar.Metrics)
	if matrix.Empty() {
		fmt.Fprintln(out, "Not enough metrics available for correlation analysis.")
		return
	}
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := make([]string, 0, matrix.Size())
	for _, m := range matrix.Metrics {
		header = append(header, string(m))
	}
	fmt.Fprintf(w, "\t%s\n", strings.Join(header, "\t"))
	for i, m := range matrix.Metrics {
		cells := make([]string, matrix.Size())
		for j := range cells {
			cells[j] = format(matrix.At(i, j))
		}
		fmt.Fprintf(w, "%s\t%s\n", m, strings.Join(cells, "\t"))
	}
	w.Flush()
}

func format(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

func writeCharts(dir string, t *table.Table, metric solar.Metric, log *logrus.Logger) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	charts := []struct {
		name string
		draw func(*table.Table, solar.Metric) (*plot.Plot, error)
	}{
		{"boxplot.png", chart.BoxPlot},
		{"timeseries.png", chart.TimeSeries},
	}
	for _, c := range charts {
		p, err := c.draw(t, metric)
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		path := filepath.Join(dir, c.name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := chart.WritePNG(f, p); err != nil {
			f.Close()
			return fmt.Errorf("%s: %w", c.name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Infof("Wrote %s", path)
	}
	return nil
}
