// Package api serves the solar dashboard over HTTP: JSON tables for the
// summary, top regions and correlation views, PNG charts, and Prometheus
// metrics.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/cache"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/loader"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
)

// User-visible warnings, worded as on the dashboard page.
const (
	WarnNoSelection = "Please select at least one country to view the analysis."
	WarnNoData      = "No data available for the selected countries."
	WarnNoCorrelate = "Not enough metrics available for correlation analysis."
	WarnNotNumeric  = "%s has non-numeric values in at least one selected country and was left out of the analysis."
	defaultCountry  = "Benin"
	defaultMetric   = solar.GHI
)

// Server routes dashboard requests to the load cache and analytics.
type Server struct {
	router  *mux.Router
	loads   *cache.Cache
	metrics *Metrics
	log     *logrus.Logger
}

// NewServer builds the router. A nil logger defaults to logrus.New().
func NewServer(loads *cache.Cache, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	s := &Server{
		router:  mux.NewRouter(),
		loads:   loads,
		metrics: NewMetrics(),
		log:     log,
	}
	s.routes()
	return s
}

// Metrics exposes the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) routes() {
	s.router.Use(s.instrument)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/countries", s.handleCountries).Methods(http.MethodGet)
	api.HandleFunc("/metrics/{metric}", s.handleDescribe).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/top-regions", s.handleTopRegions).Methods(http.MethodGet)
	api.HandleFunc("/correlation", s.handleCorrelation).Methods(http.MethodGet)
	api.HandleFunc("/charts/boxplot.png", s.handleBoxPlot).Methods(http.MethodGet)
	api.HandleFunc("/charts/timeseries.png", s.handleTimeSeries).Methods(http.MethodGet)

	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// =============================================================================
// Selection
// =============================================================================

// selection is the country set and metric of one request.
type selection struct {
	Countries []string
	Metric    solar.Metric
}

// parseSelection reads repeated ?country= values or a comma separated
// ?countries= list, plus ?metric=. Countries default to Benin and the metric
// to GHI, the dashboard's initial state. An explicit empty ?countries= means
// nothing is selected. Repeated countries count once.
func parseSelection(r *http.Request) (selection, error) {
	q := r.URL.Query()
	sel := selection{Metric: defaultMetric}

	countries := q["country"]
	if list, ok := q["countries"]; ok {
		for _, v := range list {
			for _, c := range strings.Split(v, ",") {
				if c = strings.TrimSpace(c); c != "" {
					countries = append(countries, c)
				}
			}
		}
		sel.Countries = cache.Unique(countries)
	} else if len(countries) > 0 {
		sel.Countries = cache.Unique(countries)
	} else {
		sel.Countries = []string{defaultCountry}
	}

	if code := q.Get("metric"); code != "" {
		m, ok := solar.ParseMetric(code)
		if !ok {
			return sel, fmt.Errorf("unknown metric %q", code)
		}
		sel.Metric = m
	}
	return sel, nil
}

// load resolves a selection through the cache and records telemetry.
// The returned warnings are the per-country failures in request order,
// followed by metrics that lost their numeric type in the combined table.
func (s *Server) load(sel selection) (*loader.Batch, []string) {
	batch, hit := s.loads.LoadAll(sel.Countries)
	if hit {
		s.metrics.CacheRequests.WithLabelValues("hit").Inc()
	} else {
		s.metrics.CacheRequests.WithLabelValues("miss").Inc()
		for _, c := range batch.Loaded {
			s.metrics.LoadsTotal.WithLabelValues(c, "ok").Inc()
		}
		for _, f := range batch.Failures {
			label := f.Country
			if _, ok := solar.ParseCountry(label); !ok {
				label = "unknown"
			}
			s.metrics.LoadsTotal.WithLabelValues(label, "error").Inc()
		}
	}

	warnings := make([]string, 0, len(batch.Failures)+len(batch.Demoted)+1)
	for _, f := range batch.Failures {
		warnings = append(warnings, f.Error())
	}
	for _, m := range batch.Demoted {
		warnings = append(warnings, fmt.Sprintf(WarnNotNumeric, m))
	}
	if !batch.OK() {
		warnings = append(warnings, WarnNoData)
	}
	return batch, warnings
}

// =============================================================================
// Responses
// =============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnf("Encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
