package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dashboard's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	LoadsTotal      *prometheus.CounterVec
	CacheRequests   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates collectors registered on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solar_country_loads_total",
				Help: "Country loads by result",
			},
			[]string{"country", "result"},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solar_load_cache_requests_total",
				Help: "Load cache lookups by result",
			},
			[]string{"result"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solar_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
	m.Registry.MustRegister(m.LoadsTotal, m.CacheRequests, m.RequestDuration)
	return m
}
