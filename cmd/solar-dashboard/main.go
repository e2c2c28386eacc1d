// solar-dashboard - HTTP dashboard over the West African station datasets
//
// Serves summary statistics, top regions, correlation and charts for any
// selection of Benin, Sierra Leone and Togo.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/solar-dashboard ./cmd/solar-dashboard

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/api"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/cache"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/common"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/loader"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "YAML config file (overrides environment defaults)")
	dataDir := flag.String("data-dir", "", "Directory holding the station CSV files")
	listen := flag.String("listen", "", "HTTP listen address")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "solar-dashboard v%s - Solar Potential Dashboard\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Endpoints:\n")
		fmt.Fprintf(os.Stderr, "  /api/dashboard?countries=Benin,Togo&metric=GHI\n")
		fmt.Fprintf(os.Stderr, "  /api/charts/boxplot.png, /api/charts/timeseries.png\n")
		fmt.Fprintf(os.Stderr, "  /metrics, /healthz\n\n")
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
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	log := cfg.NewLogger()

	log.Info("=========================================================")
	log.Infof("Solar Dashboard v%s", Version)
	log.Info("=========================================================")
	log.Infof("Data dir:  %s", cfg.DataDir)
	log.Infof("Listen:    %s", cfg.ListenAddr)
	log.Infof("Cache:     %d entries, ttl %v", cfg.CacheSize, cfg.CacheTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ld := loader.New(cfg.DataDir, log)
	loads := cache.New(ld, cfg.CacheSize, cfg.CacheTTL)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewServer(loads, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown requested...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Shutdown error: %v", err)
		}
	}

	hits, misses := loads.Stats()
	log.Info("=========================================================")
	log.Infof("Cache: %d hits, %d misses", hits, misses)
	log.Info(ld.Stats().String())
	log.Info("=========================================================")
}
