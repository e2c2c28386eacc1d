// solar-export - export the combined station table to Parquet or gzip CSV
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/solar-export ./cmd/solar-export

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/common"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/export"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/loader"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "YAML config file (overrides environment defaults)")
	dataDir := flag.String("data-dir", "", "Directory holding the station CSV files")
	countries := flag.String("countries", strings.Join(solar.CountryNames(), ","), "Comma separated country selection")
	format := flag.String("format", "parquet", "Output format: parquet or csv.gz")
	output := flag.String("o", "", "Output file (default solar.<format>)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "solar-export v%s - Station Data Exporter\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
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

	if *format != "parquet" && *format != "csv.gz" {
		log.Fatalf("Unknown format %q", *format)
	}
	path := *output
	if path == "" {
		path = "solar." + *format
	}

	log.Info("=========================================================")
	log.Infof("Solar Export v%s", Version)
	log.Info("=========================================================")

	startTime := time.Now()
	ld := loader.New(cfg.DataDir, log)
	batch := ld.LoadAll(strings.Split(*countries, ","))
	if !batch.OK() {
		log.Fatal("No data available for the selected countries.")
	}

	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Cannot create %s: %v", path, err)
	}
	w := bufio.NewWriterSize(f, 1024*1024)

	rows := batch.Table.Len()
	switch *format {
	case "parquet":
		rows, err = export.WriteParquet(w, batch.Table)
	case "csv.gz":
		err = export.WriteCSVGzip(w, batch.Table)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("Export error: %v", err)
	}

	elapsed := time.Since(startTime)
	log.Info("=========================================================")
	log.Infof("Output:  %s (%s)", path, *format)
	log.Infof("Rows:    %d", rows)
	log.Infof("Elapsed: %v", elapsed.Round(time.Millisecond))
	log.Info(ld.Stats().String())
	log.Info("=========================================================")
}
