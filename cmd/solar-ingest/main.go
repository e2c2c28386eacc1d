// solar-ingest - station measurement ingestion into ClickHouse
//
// Loads the selected country files, inserts them through the ch-go native
// protocol and prints the per-country means computed by the warehouse.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/solar-ingest ./cmd/solar-ingest

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ClickHouse/ch-go"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/common"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/loader"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/warehouse"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "YAML config file (overrides environment defaults)")
	dataDir := flag.String("data-dir", "", "Directory holding the station CSV files")
	chHost := flag.String("ch-host", "", "ClickHouse address (default from CLICKHOUSE_HOST/PORT)")
	chTable := flag.String("ch-table", "measurements", "ClickHouse table")
	countries := flag.String("countries", strings.Join(solar.CountryNames(), ","), "Comma separated country selection")
	truncate := flag.Bool("truncate", false, "Truncate table before insert")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "solar-ingest v%s - Station Measurement Ingester\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ingests the Benin, Sierra Leone and Togo station files into ClickHouse.\n\n")
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
	addr := cfg.ClickHouseAddr()
	if *chHost != "" {
		addr = *chHost
	}
	log := cfg.NewLogger()

	log.Info("=========================================================")
	log.Infof("Solar Ingest v%s", Version)
	log.Info("=========================================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutdown requested...")
		cancel()
	}()

	tableFQN := fmt.Sprintf("%s.%s", cfg.ClickHouseDatabase, *chTable)
	log.Infof("Connecting to ClickHouse at %s...", addr)
	log.Infof("Table: %s", tableFQN)

	db, err := warehouse.Open(ctx, warehouse.Options{
		Addr:     addr,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUser,
		Password: cfg.ClickHousePassword,
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer db.Close()

	if err := warehouse.EnsureTable(ctx, db, tableFQN); err != nil {
		log.Fatalf("Create table failed: %v", err)
	}
	if *truncate {
		log.Infof("Truncating table %s...", tableFQN)
		if err := warehouse.Truncate(ctx, db, tableFQN); err != nil {
			log.Warnf("Truncate warning: %v", err)
		}
	}

	conn, err := ch.Dial(ctx, ch.Options{
		Address:     addr,
		Database:    cfg.ClickHouseDatabase,
		User:        cfg.ClickHouseUser,
		Password:    cfg.ClickHousePassword,
		Compression: ch.CompressionLZ4,
	})
	if err != nil {
		log.Fatalf("ClickHouse native connection failed: %v", err)
	}
	defer conn.Close()

	startTime := time.Now()
	ld := loader.New(cfg.DataDir, log)
	batch := warehouse.NewMeasurementBatch()
	totalRecords := 0

	for _, country := range strings.Split(*countries, ",") {
		if ctx.Err() != nil {
			break
		}
		country = strings.TrimSpace(country)
		tbl, err := ld.Load(country)
		if err != nil {
			log.Warnf("[%s] %v", country, err)
			continue
		}

		n := batch.AddTable(tbl)
		if err := warehouse.Flush(ctx, conn, tableFQN, batch); err != nil {
			log.Fatalf("[%s] Insert error: %v", country, err)
		}
		batch.Reset()
		log.Infof("[%s] Inserted %d records", country, n)
		totalRecords += n
	}

	means, err := warehouse.CountryMeans(ctx, db, tableFQN)
	if err != nil {
		log.Fatalf("Query error: %v", err)
	}

	elapsed := time.Since(startTime)

	log.Info("=========================================================")
	log.Info("Warehouse Means")
	log.Info("=========================================================")
	for _, m := range means {
		log.Infof("%-14s rows=%-9d GHI=%8.2f DNI=%8.2f DHI=%8.2f", m.Country, m.Rows, m.GHI, m.DNI, m.DHI)
	}

	log.Info("=========================================================")
	log.Info("Final Statistics")
	log.Info("=========================================================")
	log.Infof("Total Records: %d", totalRecords)
	log.Infof("Elapsed:       %v", elapsed.Round(time.Millisecond))
	log.Infof("Rate:          %.0f records/sec", float64(totalRecords)/elapsed.Seconds())
	log.Info(ld.Stats().String())
	log.Info("=========================================================")
}
